package static

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agnivade/levenshtein"
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/spatialindex"
	"go.uber.org/zap"
)

type placesFile struct {
	Places []datastructure.Place `toml:"places"`
}

// PlaceIndex is an in-memory place searcher over a fixed gazetteer.
type PlaceIndex struct {
	places []datastructure.Place
	rt     *spatialindex.Rtree
	limit  int
	log    *zap.Logger
}

// NewPlaceIndex indexes places. limit <= 0 returns every match.
func NewPlaceIndex(places []datastructure.Place, limit int, log *zap.Logger) *PlaceIndex {
	owned := make([]datastructure.Place, len(places))
	copy(owned, places)

	rt := spatialindex.NewRtree()
	rt.Build(owned, log)
	return &PlaceIndex{
		places: owned,
		rt:     rt,
		limit:  limit,
		log:    log,
	}
}

// LoadPlacesTOML reads a [[places]] fixture file.
func LoadPlacesTOML(path string) ([]datastructure.Place, error) {
	var f placesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("decode places file %s: %w", path, err)
	}
	for i, p := range f.Places {
		if p.ID == "" {
			f.Places[i].ID = fmt.Sprintf("%d", i+1)
		}
		if strings.TrimSpace(p.Name) == "" {
			return nil, fmt.Errorf("places file %s: entry %d has no name", path, i)
		}
	}
	return f.Places, nil
}

// LoadPlaces picks the loader by extension: .toml fixtures or a bzip2 gazetteer.
func LoadPlaces(path string) ([]datastructure.Place, error) {
	if strings.HasSuffix(path, ".toml") {
		return LoadPlacesTOML(path)
	}
	return datastructure.ReadPlaces(path)
}

// Search returns the places whose name or address contains query (case-insensitive),
// closest names first.
func (pi *PlaceIndex) Search(ctx context.Context, query string) ([]datastructure.Place, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []datastructure.Place{}, nil
	}

	type scored struct {
		place  datastructure.Place
		prefix bool
		dist   int
	}
	matches := make([]scored, 0)
	for i, p := range pi.places {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !p.Matches(q) {
			continue
		}
		name := strings.ToLower(p.Name)
		matches = append(matches, scored{
			place:  p,
			prefix: strings.HasPrefix(name, q),
			dist:   levenshtein.ComputeDistance(q, name),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].prefix != matches[j].prefix {
			return matches[i].prefix
		}
		return matches[i].dist < matches[j].dist
	})

	n := len(matches)
	if pi.limit > 0 && n > pi.limit {
		n = pi.limit
	}
	out := make([]datastructure.Place, n)
	for i := 0; i < n; i++ {
		out[i] = matches[i].place
	}
	return out, nil
}

// Nearby returns at most limit places within radius km of (lat, lon), nearest first.
func (pi *PlaceIndex) Nearby(lat, lon, radius float64, limit int) []spatialindex.NearbyPlace {
	return pi.rt.SearchWithinRadius(lat, lon, radius, limit)
}

func (pi *PlaceIndex) Len() int {
	return len(pi.places)
}
