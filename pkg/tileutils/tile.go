package tileutils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

var (
	// ErrNoParent is returned when asking for the parent of the zoom 0 tile.
	ErrNoParent = errors.New("tile at zoom 0 has no parent")

	// ErrInvalidTile is returned when tile coordinates are outside the grid for their zoom.
	ErrInvalidTile = errors.New("invalid tile coordinates")
)

// TileCoords identifies a single tile in the z/x/y web mercator scheme.
// It is a comparable value and can be used as a map key.
type TileCoords struct {
	Z int `json:"z"`
	X int `json:"x"`
	Y int `json:"y"`
}

// Valid reports whether the tile's x/y are inside the grid for its zoom
func (t TileCoords) Valid() bool {
	if t.Z < MinZoom || t.Z > MaxZoom {
		return false
	}
	n := 1 << t.Z
	return t.X >= 0 && t.X < n && t.Y >= 0 && t.Y < n
}

func (t TileCoords) String() string {
	return fmt.Sprintf("%d/%d/%d", t.Z, t.X, t.Y)
}

// Parent returns the tile one zoom level up containing this tile
func (t TileCoords) Parent() (TileCoords, error) {
	if t.Z <= 0 {
		return TileCoords{}, ErrNoParent
	}
	return TileCoords{
		Z: t.Z - 1,
		X: t.X >> 1,
		Y: t.Y >> 1,
	}, nil
}

// Children returns the 4 tiles at the next zoom level, starting at the top left and going
// clockwise.
func (t TileCoords) Children() [4]TileCoords {
	x, y, z := t.X<<1, t.Y<<1, t.Z+1
	return [4]TileCoords{
		{Z: z, X: x, Y: y},
		{Z: z, X: x + 1, Y: y},
		{Z: z, X: x + 1, Y: y + 1},
		{Z: z, X: x, Y: y + 1},
	}
}

// Siblings returns the quadrant group the tile belongs to, including the tile itself,
// in Children order. The zoom 0 tile is alone in its group.
func (t TileCoords) Siblings() []TileCoords {
	parent, err := t.Parent()
	if err != nil {
		return []TileCoords{t}
	}
	children := parent.Children()
	return children[:]
}

// HasSiblings reports whether every one of the given tiles is in the tile's quadrant group
// and is not the tile itself.
func HasSiblings(t TileCoords, tiles ...TileCoords) bool {
	group := t.Siblings()
	for _, c := range tiles {
		if c == t {
			return false
		}
		found := false
		for _, s := range group {
			if s == c {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Bound returns the lng/lat bound of the tile
func (t TileCoords) Bound() orb.Bound {
	nw := TileFractionToPoint(float64(t.X), float64(t.Y), t.Z)
	se := TileFractionToPoint(float64(t.X+1), float64(t.Y+1), t.Z)
	return orb.Bound{
		Min: orb.Point{nw[0], se[1]},
		Max: orb.Point{se[0], nw[1]},
	}
}

// BoundingBox returns the tile bounds as [lng_min, lat_min, lng_max, lat_max]
func (t TileCoords) BoundingBox() [4]float64 {
	b := t.Bound()
	return [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]}
}

// Polygon returns the tile outline as a closed lng/lat polygon
func (t TileCoords) Polygon() orb.Polygon {
	return t.Bound().ToPolygon()
}

// ParseTileCoords parses a z/x/y string
func ParseTileCoords(s string) (TileCoords, error) {
	coords := strings.Split(strings.TrimSpace(s), "/")
	if len(coords) != 3 {
		return TileCoords{}, fmt.Errorf("expected 3 coordinates but got %d: %s", len(coords), s)
	}
	vals := [3]int{}
	for i, c := range coords {
		v, err := strconv.Atoi(c)
		if err != nil {
			return TileCoords{}, fmt.Errorf("invalid coordinate %q: %w", c, err)
		}
		vals[i] = v
	}
	tc := TileCoords{Z: vals[0], X: vals[1], Y: vals[2]}
	if !tc.Valid() {
		return TileCoords{}, fmt.Errorf("%w: %s", ErrInvalidTile, tc)
	}
	return tc, nil
}

// BboxToTile returns the smallest tile containing the whole lng/lat bounding box
func BboxToTile(bound orb.Bound) TileCoords {
	topLeft := PointToTile(bound.Min[0], bound.Max[1], MaxZoom)
	bottomRight := PointToTile(bound.Max[0], bound.Min[1], MaxZoom)

	z := MaxZoom
	x0, y0, x1, y1 := topLeft.X, topLeft.Y, bottomRight.X, bottomRight.Y
	for z > 0 && (x0 != x1 || y0 != y1) {
		x0, y0, x1, y1 = x0>>1, y0>>1, x1>>1, y1>>1
		z--
	}
	return TileCoords{Z: z, X: x0, Y: y0}
}
