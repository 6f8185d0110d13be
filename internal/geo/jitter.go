package geo

import (
	"math"
	"math/rand"

	"routeengine/internal/model"
)

// DefaultJitterRadiusKm bounds synthetic positions around the hub.
const DefaultJitterRadiusKm = 2.0

// SyntheticPoint returns a random coordinate within radiusKm of hub.
//
// This is the documented v1 stand-in for real geocoding: when a stop arrives
// without coordinates the caller may ask for a jittered position around the
// depot instead of failing the request. The jitter is random per call; whether
// downstream consumers depend on that randomness (or would prefer stable
// output) is an unresolved question, so the behavior is kept exactly as the
// platform has always shipped it. Callers must tag such stops APPROXIMATE.
func SyntheticPoint(hub model.GeoPoint, radiusKm float64) model.GeoPoint {
	if radiusKm <= 0 {
		radiusKm = 2.0
	}
	// Uniform over the disk, then converted to degree offsets.
	ang := rand.Float64() * 2 * math.Pi
	r := radiusKm * math.Sqrt(rand.Float64())
	dLat := r / 110.574 * math.Sin(ang)
	lngScale := 111.320 * math.Cos(hub.Lat*math.Pi/180)
	if lngScale < 1e-6 {
		lngScale = 1e-6
	}
	dLng := r / lngScale * math.Cos(ang)
	return model.GeoPoint{Lat: hub.Lat + dLat, Lng: hub.Lng + dLng}
}
