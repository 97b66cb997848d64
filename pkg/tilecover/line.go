package tilecover

import (
	"math"

	"github.com/flightaware/tilecover/pkg/tileutils"
	"github.com/paulmach/orb"
)

// cellAt returns the tile containing a fractional coordinate, clamped into the grid.
// Unlike tileutils.FractionToTile it never wraps, so a line ending on the east edge of the
// map stays on the east side.
func cellAt(p orb.Point, zoom int) tileutils.TileCoords {
	maxTile := (1 << zoom) - 1
	return tileutils.TileCoords{
		Z: zoom,
		X: min(maxTile, max(0, int(math.Floor(p[0])))),
		Y: min(maxTile, max(0, int(math.Floor(p[1])))),
	}
}

// coverLine adds every tile the line string passes through. Tiles are half-open, a line
// running along a tile edge covers the tiles to the right of / below that edge.
func coverLine(ls orb.LineString, zoom int, set tileutils.TileSet) {
	if len(ls) == 0 {
		return
	}

	start := tileutils.PointToTileFraction(ls[0][0], ls[0][1], zoom)
	set.Add(cellAt(start, zoom))

	for i := 0; i < len(ls)-1; i++ {
		stop := tileutils.PointToTileFraction(ls[i+1][0], ls[i+1][1], zoom)
		walkSegment(start, stop, zoom, set)
		set.Add(cellAt(stop, zoom))
		start = stop
	}
}

// walkSegment is a grid traversal: starting from the tile of a it steps to the next tile
// boundary crossed, in x or y, until it passes b. When the segment goes exactly through a
// tile corner both neighbours are visited, there are never diagonal gaps.
func walkSegment(a, b orb.Point, zoom int, set tileutils.TileSet) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	if dx == 0 && dy == 0 {
		return
	}

	sx, sy := -1.0, -1.0
	if dx > 0 {
		sx = 1
	}
	if dy > 0 {
		sy = 1
	}

	x := math.Floor(a[0])
	y := math.Floor(a[1])

	tMaxX, tDeltaX := math.Inf(1), math.Inf(1)
	if dx != 0 {
		d := 0.0
		if dx > 0 {
			d = 1
		}
		tMaxX = math.Abs((d + x - a[0]) / dx)
		tDeltaX = math.Abs(sx / dx)
	}

	tMaxY, tDeltaY := math.Inf(1), math.Inf(1)
	if dy != 0 {
		d := 0.0
		if dy > 0 {
			d = 1
		}
		tMaxY = math.Abs((d + y - a[1]) / dy)
		tDeltaY = math.Abs(sy / dy)
	}

	set.Add(cellAt(orb.Point{x, y}, zoom))
	for tMaxX < 1 || tMaxY < 1 {
		if tMaxX < tMaxY {
			tMaxX += tDeltaX
			x += sx
		} else {
			tMaxY += tDeltaY
			y += sy
		}
		set.Add(cellAt(orb.Point{x, y}, zoom))
	}
}
