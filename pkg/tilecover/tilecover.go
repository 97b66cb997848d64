// Package tilecover computes the minimal set of web mercator tiles covering a geometry,
// at a single zoom or merged up across a zoom range.
package tilecover

import (
	"fmt"

	"github.com/flightaware/tilecover/pkg/tileutils"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Tiles returns the tiles covering the geometry. The geometry is covered at zr.Max and
// complete groups of four siblings are merged into their parent down to zr.Min.
func Tiles(g orb.Geometry, zr ZoomRange) (tileutils.TileSet, error) {
	if err := zr.Validate(); err != nil {
		return nil, err
	}
	set, err := Geometry(g, zr.Max)
	if err != nil {
		return nil, err
	}
	return MergeUp(set, zr), nil
}

// TilesAll returns the tiles covering all the geometries. Every geometry is covered at
// zr.Max and the union is merged, so groups completed by different geometries merge too.
func TilesAll(geoms []orb.Geometry, zr ZoomRange) (tileutils.TileSet, error) {
	if err := zr.Validate(); err != nil {
		return nil, err
	}
	set := make(tileutils.TileSet)
	for i, g := range geoms {
		s, err := Geometry(g, zr.Max)
		if err != nil {
			return nil, fmt.Errorf("geometry %d: %w", i, err)
		}
		set.Union(s)
	}
	return MergeUp(set, zr), nil
}

// Indexes returns the quadkeys of the tiles covering the geometry, ordered like
// tileutils.TileSet.Tiles.
func Indexes(g orb.Geometry, zr ZoomRange) ([]string, error) {
	set, err := Tiles(g, zr)
	if err != nil {
		return nil, err
	}
	tiles := set.Tiles()
	keys := make([]string, len(tiles))
	for i, t := range tiles {
		keys[i] = t.Quadkey()
	}
	return keys, nil
}

// FeatureCollection returns the tiles covering the geometry as polygon features.
// Each feature has the tile's x, y, z and quadkey as properties.
func FeatureCollection(g orb.Geometry, zr ZoomRange) (*geojson.FeatureCollection, error) {
	set, err := Tiles(g, zr)
	if err != nil {
		return nil, err
	}
	return TilesToFeatureCollection(set.Tiles()), nil
}

// TilesToFeatureCollection converts tiles into polygon features
func TilesToFeatureCollection(tiles []tileutils.TileCoords) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Features = make([]*geojson.Feature, 0, len(tiles))
	for _, t := range tiles {
		fc.Append(TileFeature(t))
	}
	return fc
}

// TileFeature converts a tile into a polygon feature of its bounds
func TileFeature(t tileutils.TileCoords) *geojson.Feature {
	f := geojson.NewFeature(t.Polygon())
	f.ID = t.Quadkey()
	f.Properties["x"] = t.X
	f.Properties["y"] = t.Y
	f.Properties["z"] = t.Z
	f.Properties["quadkey"] = t.Quadkey()
	return f
}

// ToLngLat returns the lng/lat of a position inside a tile, given as fractions of the tile
// size from its top left corner.
func ToLngLat(t tileutils.TileCoords, xOffset, yOffset float64) orb.Point {
	return tileutils.TileFractionToPoint(float64(t.X)+xOffset, float64(t.Y)+yOffset, t.Z)
}
