package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHaversineKm_IdenticalCoordinatesIsZero(t *testing.T) {
	require.Equal(t, 0.0, HaversineKm(-23.55, -46.63, -23.55, -46.63))
	require.Equal(t, 0.0, HaversineKm(0, 0, 0, 0))
}

func TestHaversineKm_Symmetric(t *testing.T) {
	d1 := HaversineKm(-23.55, -46.63, -22.90, -43.20)
	d2 := HaversineKm(-22.90, -43.20, -23.55, -46.63)
	require.InDelta(t, d1, d2, 1e-9)
}

func TestHaversineKm_EquatorialDegree(t *testing.T) {
	// One degree of longitude at the equator is ~111.19 km.
	require.InDelta(t, 111.19, HaversineKm(0, 0, 0, 1), 0.1)
}

func TestHaversineKm_SaoPauloToRio(t *testing.T) {
	// Roughly 360 km between the two city centers.
	d := HaversineKm(-23.5505, -46.6333, -22.9068, -43.1729)
	require.InDelta(t, 360, d, 15)
}

func TestHaversineKm_NaNPropagates(t *testing.T) {
	require.True(t, math.IsNaN(HaversineKm(math.NaN(), 0, 0, 0)))
}

func TestEstimateTravelMin_Floor(t *testing.T) {
	require.Equal(t, 10, EstimateTravelMin(0))
	require.Equal(t, 10, EstimateTravelMin(1))
}

func TestEstimateTravelMin_Ceiling(t *testing.T) {
	require.Equal(t, 180, EstimateTravelMin(1000))
	require.Equal(t, 180, EstimateTravelMin(1e9))
}

func TestEstimateTravelMin_NonDecreasing(t *testing.T) {
	prev := EstimateTravelMin(0)
	for km := 1.0; km <= 500; km += 1.0 {
		cur := EstimateTravelMin(km)
		require.GreaterOrEqual(t, cur, prev, "estimate decreased at %.0f km", km)
		prev = cur
	}
}
