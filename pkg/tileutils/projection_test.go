package tileutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointToTile(t *testing.T) {
	tests := []struct {
		name     string
		lng, lat float64
		zoom     int
		tile     TileCoords
	}{
		{"origin zoom 0", 0, 0, 0, TileCoords{Z: 0}},
		{"origin zoom 10", 0, 0, 10, TileCoords{Z: 10, X: 512, Y: 512}},
		{"washington", -77.03239381313323, 38.91326516559442, 10, TileCoords{Z: 10, X: 292, Y: 391}},
		{"west edge", -180, 0, 0, TileCoords{Z: 0}},
		{"west edge north", -180, 85, 2, TileCoords{Z: 2}},
		{"east edge wraps", 180, 85, 2, TileCoords{Z: 2}},
		{"past west edge", -185, 85, 2, TileCoords{Z: 2, X: 3}},
		{"past east edge", 185, 85, 2, TileCoords{Z: 2}},
		{"south of mercator", -175, -95, 2, TileCoords{Z: 2, Y: 3}},
		{"north of mercator", -175, 95, 2, TileCoords{Z: 2}},
		{"south pole", 0, -90, 5, TileCoords{Z: 5, X: 16, Y: 31}},
	}
	for _, tt := range tests {
		test := tt
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			tile := PointToTile(test.lng, test.lat, test.zoom)
			assert.Equal(t, test.tile, tile)
			assert.True(t, tile.Valid())
		})
	}
}

func TestPointToTileFraction(t *testing.T) {
	f := PointToTileFraction(-95.93965530395508, 41.26000108568697, 9)
	assert.InDelta(t, 119.552490, f[0], 1e-6)
	assert.InDelta(t, 191.471191, f[1], 1e-6)

	// clamped latitudes never produce non-finite values
	for _, lat := range []float64{90, -90, 1000, -1000} {
		f := PointToTileFraction(0, lat, 3)
		assert.False(t, math.IsInf(f[1], 0) || math.IsNaN(f[1]))
		assert.GreaterOrEqual(t, f[1], 0.0)
		assert.LessOrEqual(t, f[1], 8.0)
	}

	// the east edge is not wrapped for fractional coordinates
	assert.Equal(t, 4.0, PointToTileFraction(180, 0, 2)[0])
}

func TestTileFractionToPoint(t *testing.T) {
	for _, p := range [][2]float64{{0, 0}, {-77.03, 38.91}, {151.2, -33.86}, {-179.9, 84}} {
		f := PointToTileFraction(p[0], p[1], 12)
		back := TileFractionToPoint(f[0], f[1], 12)
		assert.InDelta(t, p[0], back[0], 1e-9)
		assert.InDelta(t, p[1], back[1], 1e-9)
	}

	nw := TileFractionToPoint(0, 0, 0)
	assert.InDelta(t, -180, nw[0], 1e-9)
	assert.InDelta(t, MaxLatitude, nw[1], 1e-9)
}
