package tileutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuadkey(t *testing.T) {
	assert.Equal(t, "00001033", TileCoords{Z: 8, X: 11, Y: 3}.Quadkey())
	assert.Equal(t, "0320100322", TileCoords{Z: 10, X: 292, Y: 391}.Quadkey())
	assert.Equal(t, "", TileCoords{}.Quadkey())
}

func TestQuadkeyToTile(t *testing.T) {
	tile, err := QuadkeyToTile("00001033")
	require.Nil(t, err)
	assert.Equal(t, TileCoords{Z: 8, X: 11, Y: 3}, tile)

	tile, err = QuadkeyToTile("03")
	require.Nil(t, err)
	assert.Equal(t, TileCoords{Z: 2, X: 1, Y: 1}, tile)

	tile, err = QuadkeyToTile("")
	require.Nil(t, err)
	assert.Equal(t, TileCoords{}, tile)

	_, err = QuadkeyToTile("0124")
	assert.ErrorIs(t, err, ErrInvalidQuadkey)
	_, err = QuadkeyToTile("01a")
	assert.ErrorIs(t, err, ErrInvalidQuadkey)
	_, err = QuadkeyToTile("00000000000000000000000000000")
	assert.ErrorIs(t, err, ErrInvalidQuadkey)
}

func TestQuadkeyRoundTrip(t *testing.T) {
	for z := 0; z <= 6; z++ {
		n := 1 << z
		for x := 0; x < n; x++ {
			for y := 0; y < n; y++ {
				tile := TileCoords{Z: z, X: x, Y: y}
				back, err := QuadkeyToTile(tile.Quadkey())
				require.Nil(t, err)
				require.Equal(t, tile, back)
			}
		}
	}

	deep := TileCoords{Z: MaxZoom, X: (1 << MaxZoom) - 1, Y: 12345}
	back, err := QuadkeyToTile(deep.Quadkey())
	require.Nil(t, err)
	assert.Equal(t, deep, back)
}
