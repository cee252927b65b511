package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Distance is symmetric and zero for identical points.
func TestHaversineDistanceKm_SymmetryAndZero(t *testing.T) {
	phnomPenh := Point{Lat: 11.5564, Lng: 104.9282}
	takeo := Point{Lat: 10.9908, Lng: 104.7850}

	assert.Equal(t, 0.0, HaversineDistanceKm(phnomPenh, phnomPenh))
	assert.InDelta(t, HaversineDistanceKm(phnomPenh, takeo), HaversineDistanceKm(takeo, phnomPenh), 1e-9)
}

// Phnom Penh to Takeo is roughly 65 km by straight line.
func TestHaversineDistanceKm_KnownDistance(t *testing.T) {
	phnomPenh := Point{Lat: 11.5564, Lng: 104.9282}
	takeo := Point{Lat: 10.9908, Lng: 104.7850}

	d := HaversineDistanceKm(phnomPenh, takeo)
	assert.InDelta(t, 65, d, 5)
}

// One degree of latitude is about 111.2 km.
func TestHaversineDistanceKm_OneDegreeLatitude(t *testing.T) {
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 1, Lng: 0}
	assert.InDelta(t, 111.2, HaversineDistanceKm(a, b), 0.2)
}
