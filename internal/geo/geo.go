// Package geo provides the pure geographic helpers used by gig matching:
// great-circle distance, travel-time estimation and region labeling.
package geo

import "math"

const (
	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371.0

	// avgTravelSpeedKmh is the assumed door-to-door travel speed used to
	// turn a distance into a rough travel-time estimate.
	avgTravelSpeedKmh = 40.0

	// MinTravelMin is the floor of any travel estimate.
	MinTravelMin = 10

	// MaxTravelMin is the ceiling of any travel estimate.
	MaxTravelMin = 180
)

// HaversineKm returns the great-circle distance in kilometers between two
// coordinates given in decimal degrees. Identical coordinates yield 0 and the
// function is symmetric in its argument pairs. NaN inputs propagate NaN.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// EstimateTravelMin returns a rough travel-time estimate in minutes for the
// given distance. The estimate is non-decreasing in distance and clamped to
// [MinTravelMin, MaxTravelMin].
func EstimateTravelMin(distanceKm float64) int {
	minutes := int(math.Round(distanceKm / avgTravelSpeedKmh * 60))
	if minutes < MinTravelMin {
		return MinTravelMin
	}
	if minutes > MaxTravelMin {
		return MaxTravelMin
	}
	return minutes
}
