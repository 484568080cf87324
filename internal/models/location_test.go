package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	newYork := Location{Lat: 40.7128, Lon: -74.0060}
	losAngeles := Location{Lat: 34.0522, Lon: -118.2437}

	distance := newYork.DistanceKm(losAngeles)
	assert.InDelta(t, 3936, distance, 50, "NYC to LA should be roughly 3936 km")

	assert.Equal(t, 0.0, newYork.DistanceKm(newYork), "distance to self is zero")

	// symmetric
	assert.InDelta(t, distance, losAngeles.DistanceKm(newYork), 1e-9)
}

func TestDistanceKmShortRange(t *testing.T) {
	a := Location{Lat: 40.7128, Lon: -74.0060}
	b := Location{Lat: 40.7308, Lon: -74.0060} // ~2km north

	assert.InDelta(t, 2.0, a.DistanceKm(b), 0.1)
}

func TestLocationValid(t *testing.T) {
	assert.False(t, Location{}.Valid(), "zero value is unset")
	assert.False(t, Location{Lat: 91, Lon: 0.1}.Valid())
	assert.False(t, Location{Lat: 40, Lon: -181}.Valid())
	assert.True(t, Location{Lat: 40.7128, Lon: -74.0060}.Valid())
	assert.True(t, Location{Lat: -33.8688, Lon: 151.2093}.Valid())
}

func TestLocationScan(t *testing.T) {
	var loc Location
	err := loc.Scan("POINT(-74.0060 40.7128)")
	assert.NoError(t, err)
	assert.InDelta(t, 40.7128, loc.Lat, 1e-4)
	assert.InDelta(t, -74.0060, loc.Lon, 1e-4)
}
