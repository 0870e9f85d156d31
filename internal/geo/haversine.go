// Package geo provides great-circle distance math for geofence membership.
package geo

import "math"

// earthRadiusMeters is the spherical Earth radius used by the haversine
// formula. Geofence radii are tens to hundreds of meters, so the spherical
// approximation error is irrelevant here.
const earthRadiusMeters = 6371000

// Haversine returns the great-circle distance in meters between two
// coordinates. Pure and deterministic. Invalid inputs (NaN, Inf) propagate
// as NaN; callers must treat a NaN distance as "not in zone", which any
// `distance <= radius` comparison already does.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// ValidCoordinate reports whether a latitude/longitude pair is a real
// position. Requests with out-of-range coordinates are rejected before they
// reach the attendance engine.
func ValidCoordinate(lat, lon float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return false
	}
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
