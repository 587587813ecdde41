// Package spatial aggregates incident coordinates on the sphere.
package spatial

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s2"
)

// Point is a latitude/longitude pair in degrees
type Point struct {
	Lat float64
	Lon float64
}

// Valid reports whether p holds finite, in-range coordinates
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// WeightedCentroid returns the spherical centroid of points: the normalized
// weighted sum of their unit vectors. Invalid points and non-positive weights
// are skipped; ok is false when nothing remains.
func WeightedCentroid(points []Point, weights []float64) (Point, bool) {
	var sum r3.Vector
	n := 0
	for i, p := range points {
		if !p.Valid() {
			continue
		}
		w := 1.0
		if i < len(weights) {
			w = weights[i]
		}
		if w <= 0 {
			continue
		}
		v := s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)).Vector
		sum = sum.Add(v.Mul(w))
		n++
	}
	if n == 0 || sum.Norm() == 0 {
		return Point{}, false
	}

	ll := s2.LatLngFromPoint(s2.Point{Vector: sum.Normalize()})
	return Point{Lat: ll.Lat.Degrees(), Lon: ll.Lng.Degrees()}, true
}
