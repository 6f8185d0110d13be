// Package geo provides great-circle distance math for the route engine.
package geo

import (
	"math"

	"routeengine/internal/model"
)

// EarthRadiusKm is the mean Earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two points in km.
func DistanceKm(a, b model.GeoPoint) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// ValidPoint reports whether p is a usable coordinate pair: finite values
// inside the WGS84 range.
func ValidPoint(p model.GeoPoint) bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lng, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Matrix holds integer-scaled pairwise costs with the depot at index 0.
// Distances are meters, travel times seconds; both are what a combinatorial
// solver expects instead of floating-point kilometers.
type Matrix struct {
	DistM     [][]int
	TravelSec [][]int
}

// BuildMatrix computes the full distance and travel-time matrices for a depot
// and a stop list. speedKph must be > 0.
func BuildMatrix(depot model.GeoPoint, stops []model.StopIn, speedKph float64) Matrix {
	n := len(stops) + 1
	pts := make([]model.GeoPoint, n)
	pts[0] = depot
	for i, s := range stops {
		pts[i+1] = *s.Location
	}
	m := Matrix{DistM: make([][]int, n), TravelSec: make([][]int, n)}
	for i := 0; i < n; i++ {
		m.DistM[i] = make([]int, n)
		m.TravelSec[i] = make([]int, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			km := DistanceKm(pts[i], pts[j])
			m.DistM[i][j] = int(math.Round(km * 1000))
			m.TravelSec[i][j] = int(math.Round(km / speedKph * 3600))
		}
	}
	return m
}
