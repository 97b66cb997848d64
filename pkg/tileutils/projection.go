package tileutils

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	// MaxZoom is the deepest zoom level tiles can be computed for.
	MaxZoom = 28
	// MinZoom is the zoom of the single whole-world tile.
	MinZoom = 0

	// MaxLatitude is the web mercator latitude limit. Latitudes beyond it are clamped.
	MaxLatitude = 85.05112877980659
)

// tileCount returns the number of tiles along one axis at the zoom
func tileCount(zoom int) float64 {
	return float64(uint64(1) << uint(zoom))
}

// wrapLng folds a longitude into [-180, 180]. Values already in range are untouched,
// so 180 stays on the right edge of the map instead of jumping to the left edge.
func wrapLng(lng float64) float64 {
	if lng >= -180 && lng <= 180 {
		return lng
	}
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}

func clampLat(lat float64) float64 {
	return math.Max(-MaxLatitude, math.Min(MaxLatitude, lat))
}

// PointToTileFraction converts a lng/lat coordinate into fractional tile coordinates at the
// given zoom, where one unit is one tile. x is in [0, 2^zoom] and y in [0, 2^zoom].
func PointToTileFraction(lng, lat float64, zoom int) orb.Point {
	n := tileCount(zoom)
	lng = wrapLng(lng)
	sin := math.Sin(clampLat(lat) * math.Pi / 180)

	x := n * (lng/360 + 0.5)
	y := n * (0.5 - 0.25*math.Log((1+sin)/(1-sin))/math.Pi)

	return orb.Point{
		math.Max(0, math.Min(n, x)),
		math.Max(0, math.Min(n, y)),
	}
}

// PointToTile returns the tile containing the lng/lat coordinate.
// The right edge of the map (lng 180) is the same meridian as the left edge and wraps to x=0.
// The bottom edge is clamped into the last row.
func PointToTile(lng, lat float64, zoom int) TileCoords {
	f := PointToTileFraction(lng, lat, zoom)
	return FractionToTile(f, zoom)
}

// FractionToTile floors a fractional tile coordinate into the tile containing it
func FractionToTile(f orb.Point, zoom int) TileCoords {
	maxTile := (1 << zoom) - 1
	x := int(math.Floor(f[0]))
	y := int(math.Floor(f[1]))
	if x > maxTile {
		x = 0
	}
	return TileCoords{
		Z: zoom,
		X: clampInt(x, 0, maxTile),
		Y: clampInt(y, 0, maxTile),
	}
}

// TileFractionToPoint is the inverse of PointToTileFraction
func TileFractionToPoint(x, y float64, zoom int) orb.Point {
	n := tileCount(zoom)
	lng := x/n*360 - 180
	lat := math.Atan(math.Sinh(math.Pi*(1-2*y/n))) * 180 / math.Pi
	return orb.Point{lng, lat}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
