package tileutils

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tile1 = TileCoords{Z: 10, X: 5, Y: 10}

func TestTileBoundingBox(t *testing.T) {
	bbox := tile1.BoundingBox()
	expected := [4]float64{-178.242188, 84.706049, -177.890625, 84.738387}
	for i := range expected {
		assert.InDelta(t, expected[i], bbox[i], 1e-6)
	}

	for _, tc := range []TileCoords{
		{Z: 5, X: 13, Y: 11},
		{Z: 5, X: 20, Y: 11},
		{Z: 8, X: 143, Y: 121},
		{Z: 17, X: 999, Y: 1000},
	} {
		b := tc.Bound()
		assert.Less(t, b.Min[0], b.Max[0], "east is less than west for %s", tc)
		assert.Less(t, b.Min[1], b.Max[1], "south is less than north for %s", tc)
	}
}

func TestTilePolygon(t *testing.T) {
	p := TileCoords{}.Polygon()
	require.Len(t, p, 1)
	assert.True(t, p[0].Closed())
	b := p.Bound()
	assert.InDelta(t, -180, b.Min[0], 1e-9)
	assert.InDelta(t, 180, b.Max[0], 1e-9)
	assert.InDelta(t, MaxLatitude, b.Max[1], 1e-9)
	assert.InDelta(t, -MaxLatitude, b.Min[1], 1e-9)
}

func TestTileParent(t *testing.T) {
	parent, err := tile1.Parent()
	require.Nil(t, err)
	assert.Equal(t, TileCoords{Z: 9, X: 2, Y: 5}, parent)

	_, err = TileCoords{}.Parent()
	assert.ErrorIs(t, err, ErrNoParent)
}

func TestTileChildren(t *testing.T) {
	children := TileCoords{Z: 9, X: 2, Y: 5}.Children()
	assert.Equal(t, [4]TileCoords{
		{Z: 10, X: 4, Y: 10},
		{Z: 10, X: 5, Y: 10},
		{Z: 10, X: 5, Y: 11},
		{Z: 10, X: 4, Y: 11},
	}, children)
	for _, c := range children {
		p, err := c.Parent()
		require.Nil(t, err)
		assert.Equal(t, TileCoords{Z: 9, X: 2, Y: 5}, p)
	}
}

func TestTileSiblings(t *testing.T) {
	assert.Equal(t, []TileCoords{
		{Z: 10, X: 4, Y: 10},
		{Z: 10, X: 5, Y: 10},
		{Z: 10, X: 5, Y: 11},
		{Z: 10, X: 4, Y: 11},
	}, tile1.Siblings())

	assert.Equal(t, []TileCoords{{}}, TileCoords{}.Siblings())
}

func TestHasSiblings(t *testing.T) {
	tiles := []TileCoords{
		{Z: 5, X: 0, Y: 1},
		{Z: 5, X: 1, Y: 1},
		{Z: 5, X: 1, Y: 0},
	}
	assert.True(t, HasSiblings(TileCoords{Z: 5, X: 0, Y: 0}, tiles...))
	assert.True(t, HasSiblings(TileCoords{Z: 5, X: 0, Y: 0}))
	assert.False(t, HasSiblings(TileCoords{Z: 5, X: 0, Y: 1}, tiles...), "tile is not its own sibling")
	assert.False(t, HasSiblings(TileCoords{Z: 5, X: 2, Y: 0}, tiles...))
}

func TestTileValid(t *testing.T) {
	assert.True(t, TileCoords{}.Valid())
	assert.True(t, TileCoords{Z: 2, X: 3, Y: 3}.Valid())
	assert.False(t, TileCoords{Z: 2, X: 4, Y: 3}.Valid())
	assert.False(t, TileCoords{Z: 2, X: -1, Y: 0}.Valid())
	assert.False(t, TileCoords{Z: MaxZoom + 1}.Valid())
	assert.False(t, TileCoords{Z: -1}.Valid())
}

func TestParseTileCoords(t *testing.T) {
	tc, err := ParseTileCoords(" 10/5/10\r")
	require.Nil(t, err)
	assert.Equal(t, tile1, tc)
	assert.Equal(t, "10/5/10", tc.String())

	_, err = ParseTileCoords("10/5")
	assert.ErrorContains(t, err, "expected 3 coordinates")
	_, err = ParseTileCoords("10/a/5")
	assert.ErrorContains(t, err, "invalid coordinate")
	_, err = ParseTileCoords("1/5/0")
	assert.ErrorIs(t, err, ErrInvalidTile)
}

func TestBboxToTile(t *testing.T) {
	tests := []struct {
		name string
		bbox orb.Bound
		tile TileCoords
	}{
		{
			name: "big",
			bbox: orb.Bound{Min: orb.Point{-84.72656249999999, 11.178401873711785}, Max: orb.Point{-5.625, 61.60639637138628}},
			tile: TileCoords{Z: 2, X: 1, Y: 1},
		},
		{
			name: "no area",
			bbox: orb.Bound{Min: orb.Point{-84, 11}, Max: orb.Point{-84, 11}},
			tile: TileCoords{Z: 28, X: 71582788, Y: 125964677},
		},
		{
			name: "dc",
			bbox: orb.Bound{Min: orb.Point{-77.04615354537964, 38.899967510782346}, Max: orb.Point{-77.03664779663086, 38.90728142481329}},
			tile: TileCoords{Z: 15, X: 9371, Y: 12534},
		},
		{
			name: "crossing 0 lat/lng",
			bbox: orb.Bound{Min: orb.Point{-10, -10}, Max: orb.Point{10, 10}},
			tile: TileCoords{Z: 0, X: 0, Y: 0},
		},
	}
	for _, tt := range tests {
		test := tt
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, test.tile, BboxToTile(test.bbox))
		})
	}
}
