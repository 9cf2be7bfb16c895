package usecases

import (
	"github.com/lintang-b-s/Navisafe/pkg/spatialindex"
)

type SpatialIndex interface {
	Nearby(lat, lon, radius float64, limit int) []spatialindex.NearbyPlace
}
