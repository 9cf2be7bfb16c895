package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

func ProjectPointToLineCoord(pointA Coordinate, pointB Coordinate,
	snap Coordinate) Coordinate {
	pointAS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointA.Lat, pointA.Lon))
	pointBS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(pointB.Lat, pointB.Lon))
	snapS2 := s2.PointFromLatLng(s2.LatLngFromDegrees(snap.Lat, snap.Lon))
	projection := s2.Project(snapS2, pointAS2, pointBS2)
	projectLatLng := s2.LatLngFromPoint(projection)
	return NewCoordinate(projectLatLng.Lat.Degrees(), projectLatLng.Lng.Degrees())
}

// return in meter
func PointLinePerpendicularDistance(pointA Coordinate, pointB Coordinate,
	snap Coordinate) float64 {
	projectionPoint := ProjectPointToLineCoord(pointA, pointB, snap)

	dist := CalculateHaversineDistance(snap.GetLat(), snap.GetLon(), projectionPoint.GetLat(), projectionPoint.GetLon())

	return dist * 1000
}

// DistanceToPath returns the distance in meter from p to the closest segment of path.
// a single point path degrades to point distance, an empty path returns +Inf.
func DistanceToPath(path []Coordinate, p Coordinate) float64 {
	switch len(path) {
	case 0:
		return math.Inf(1)
	case 1:
		return CalculateHaversineDistance(path[0].Lat, path[0].Lon, p.Lat, p.Lon) * 1000
	}

	best := math.Inf(1)
	for i := 1; i < len(path); i++ {
		best = math.Min(best, PointLinePerpendicularDistance(path[i-1], path[i], p))
	}
	return best
}
