package usecases

import (
	"context"
	"strings"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/lintang-b-s/Navisafe/pkg/spatialindex"
	"github.com/lintang-b-s/Navisafe/pkg/util"
	"go.uber.org/zap"
)

// PlaceService answers stateless place lookups outside of any session.
type PlaceService struct {
	log      *zap.Logger
	searcher navigation.PlaceSearcher
	index    SpatialIndex
}

// NewPlaceService. index may be nil when no gazetteer is loaded.
func NewPlaceService(log *zap.Logger, searcher navigation.PlaceSearcher, index SpatialIndex) *PlaceService {
	return &PlaceService{
		log:      log,
		searcher: searcher,
		index:    index,
	}
}

func (ps *PlaceService) Search(ctx context.Context, query string) ([]datastructure.Place, error) {
	if strings.TrimSpace(query) == "" {
		return []datastructure.Place{}, nil
	}
	places, err := ps.searcher.Search(ctx, query)
	if err != nil {
		return nil, util.WrapErrorf(err, navigation.ErrSearchFailed, "search for %q failed", query)
	}
	return places, nil
}

func (ps *PlaceService) Nearby(lat, lon, radius float64, limit int) ([]spatialindex.NearbyPlace, error) {
	if ps.index == nil {
		return nil, util.WrapErrorf(ErrNoSpatialIndex, util.ErrUnavailable, "nearby search unavailable")
	}
	return ps.index.Nearby(lat, lon, radius, limit), nil
}
