package spatialindex

import (
	"math"
	"sort"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/geo"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

type Rtree struct {
	tr *rtree.RTreeG[datastructure.Place]
}

// NearbyPlace is a place with its great-circle distance (in km) from the query point.
type NearbyPlace struct {
	Place    datastructure.Place `json:"place"`
	Distance float64             `json:"distance_km"`
}

func NewRtree() *Rtree {
	var tr rtree.RTreeG[datastructure.Place]
	return &Rtree{
		tr: &tr,
	}
}

// Build. insert every place as a point entry.
func (rt *Rtree) Build(places []datastructure.Place, log *zap.Logger) {
	log.Info("Building R-tree spatial index...", zap.Int("places", len(places)))
	for _, p := range places {
		if !p.Coordinate.Valid() {
			log.Warn("skipping place with invalid coordinate", zap.String("id", p.ID))
			continue
		}
		point := [2]float64{p.GetLon(), p.GetLat()}
		rt.tr.Insert(point, point, p)
	}
	log.Info("R-tree spatial index built.", zap.Int("entries", rt.tr.Len()))
}

func (rt *Rtree) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius returns at most limit places within radius (in km) from (qLat, qLon), nearest first.
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radius float64, limit int) []NearbyPlace {
	// the box corners lie on the diagonal, so widen it to cover the whole circle.
	lower, upper := geo.BoundingBox(qLat, qLon, radius*math.Sqrt2)

	results := make([]NearbyPlace, 0, 10)
	rt.tr.Search(lower, upper,
		func(min, max [2]float64, data datastructure.Place) bool {
			dist := geo.CalculateHaversineDistance(qLat, qLon, data.GetLat(), data.GetLon())
			if dist <= radius {
				results = append(results, NearbyPlace{Place: data, Distance: dist})
			}
			return true
		})

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
