package tilecover

import (
	"fmt"

	"github.com/flightaware/tilecover/pkg/tileutils"
	"github.com/paulmach/orb"
)

// Geometry returns the tiles covering the geometry at a single zoom.
// Only points, line strings, polygons and their multi variants are supported.
func Geometry(g orb.Geometry, zoom int) (tileutils.TileSet, error) {
	if err := Zoom(zoom).Validate(); err != nil {
		return nil, err
	}

	set := make(tileutils.TileSet)
	switch g := g.(type) {
	case orb.Point:
		coverPoint(g, zoom, set)
	case orb.MultiPoint:
		for _, p := range g {
			coverPoint(p, zoom, set)
		}
	case orb.LineString:
		coverLine(g, zoom, set)
	case orb.MultiLineString:
		for _, ls := range g {
			coverLine(ls, zoom, set)
		}
	case orb.Polygon:
		coverPolygon(g, zoom, set)
	case orb.MultiPolygon:
		for _, p := range g {
			coverPolygon(p, zoom, set)
		}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}

	return set, nil
}

func coverPoint(p orb.Point, zoom int, set tileutils.TileSet) {
	set.Add(tileutils.PointToTile(p[0], p[1], zoom))
}

// coverPolygon adds the tiles of the outer ring, minus the inside of every hole.
// Tiles crossed by a hole's boundary stay covered, the polygon still reaches into them.
func coverPolygon(p orb.Polygon, zoom int, set tileutils.TileSet) {
	if len(p) == 0 {
		return
	}

	outer, fill := rasterizeRing(projectRing(p[0], zoom), zoom)
	outer.Union(fill)
	if outer.Len() == 0 {
		// degenerate outer ring, e.g. collapsed onto a tile edge or a single point.
		// fall back to its outline so the polygon is never dropped.
		coverLine(orb.LineString(p[0]), zoom, set)
		return
	}

	holeBoundaries := make(tileutils.TileSet)
	for _, r := range p[1:] {
		boundary, inside := rasterizeRing(projectRing(r, zoom), zoom)
		inside.Difference(boundary)
		outer.Difference(inside)
		holeBoundaries.Union(boundary)
	}
	outer.Union(holeBoundaries)

	set.Union(outer)
}
