package tilecover

import (
	"math"

	"github.com/flightaware/tilecover/pkg/tileutils"
	"github.com/paulmach/orb"
	"golang.org/x/exp/slices"
)

// latticeEpsilon is how close, in tile units, a ring coordinate must be to a tile edge to
// be treated as lying on it. It absorbs the error of projecting tile corners back and forth.
const latticeEpsilon = 1e-9

// edge is a non-horizontal ring edge, stored bottom-up for the scanline
type edge struct {
	yMin, yMax float64
	xAtYMin    float64
	slope      float64 // dx/dy
}

func (e edge) xAt(y float64) float64 {
	return e.xAtYMin + (y-e.yMin)*e.slope
}

// projectRing converts a lng/lat ring into fractional tile coordinates, snapping values
// within latticeEpsilon of a tile edge onto it.
func projectRing(r []orb.Point, zoom int) []orb.Point {
	out := make([]orb.Point, len(r))
	for i, p := range r {
		f := tileutils.PointToTileFraction(p[0], p[1], zoom)
		out[i] = orb.Point{snap(f[0]), snap(f[1])}
	}
	return out
}

func snap(v float64) float64 {
	if r := math.Round(v); math.Abs(v-r) < latticeEpsilon {
		return r
	}
	return v
}

// distinctPoints counts distinct points in the ring, stopping once it reaches limit
func distinctPoints(ring []orb.Point, limit int) int {
	seen := make([]orb.Point, 0, limit)
	for _, p := range ring {
		if !slices.Contains(seen, p) {
			seen = append(seen, p)
			if len(seen) == limit {
				break
			}
		}
	}
	return len(seen)
}

// rasterizeRing computes the tiles covered by a ring given in fractional tile coordinates.
//
// boundary holds the tiles whose interior is crossed by one of the ring's edges.
// fill holds the tiles whose row center line overlaps the inside of the ring, using the
// even-odd rule. A ring with fewer than 3 distinct points covers nothing.
func rasterizeRing(ring []orb.Point, zoom int) (boundary, fill tileutils.TileSet) {
	boundary = make(tileutils.TileSet)
	fill = make(tileutils.TileSet)
	if distinctPoints(ring, 3) < 3 {
		return boundary, fill
	}

	// treat the ring as closed whether or not the last point repeats the first
	if ring[0] != ring[len(ring)-1] {
		ring = append(ring[:len(ring):len(ring)], ring[0])
	}

	edges := make([]edge, 0, len(ring))
	for i := 0; i < len(ring)-1; i++ {
		a, b := ring[i], ring[i+1]
		walkInterior(a, b, zoom, boundary)

		// horizontal edges never cross a scanline
		if a[1] == b[1] {
			continue
		}
		if a[1] > b[1] {
			a, b = b, a
		}
		edges = append(edges, edge{
			yMin:    a[1],
			yMax:    b[1],
			xAtYMin: a[0],
			slope:   (b[0] - a[0]) / (b[1] - a[1]),
		})
	}

	scanlineFill(edges, zoom, fill)
	return boundary, fill
}

// scanlineFill fills, row by row, the tiles between pairs of edge crossings of the row's
// center line. Edges are half-open on y, yMin <= y < yMax, so a vertex lying exactly on a
// center line is counted by only one of the edges sharing it.
func scanlineFill(edges []edge, zoom int, fill tileutils.TileSet) {
	if len(edges) == 0 {
		return
	}
	maxTile := (1 << zoom) - 1

	slices.SortFunc(edges, func(a, b edge) int {
		switch {
		case a.yMin < b.yMin:
			return -1
		case a.yMin > b.yMin:
			return 1
		}
		return 0
	})
	yMax := edges[0].yMax
	for _, e := range edges {
		yMax = math.Max(yMax, e.yMax)
	}

	rowStart := max(0, int(math.Floor(edges[0].yMin)))
	rowEnd := min(maxTile, int(math.Ceil(yMax))-1)

	active := make([]edge, 0)
	crossings := make([]float64, 0)
	next := 0
	for row := rowStart; row <= rowEnd; row++ {
		yc := float64(row) + 0.5
		for next < len(edges) && edges[next].yMin <= yc {
			active = append(active, edges[next])
			next++
		}

		crossings = crossings[:0]
		kept := active[:0]
		for _, e := range active {
			if e.yMax <= yc {
				continue
			}
			kept = append(kept, e)
			crossings = append(crossings, e.xAt(yc))
		}
		active = kept
		if len(crossings) < 2 {
			continue
		}

		slices.Sort(crossings)
		for i := 0; i+1 < len(crossings); i += 2 {
			xa, xb := crossings[i], crossings[i+1]
			if xb <= xa {
				continue
			}
			// a span ending exactly on a tile edge does not reach into the next column
			colStart := max(0, int(math.Floor(xa)))
			colEnd := min(maxTile, int(math.Ceil(xb))-1)
			for x := colStart; x <= colEnd; x++ {
				fill.Add(tileutils.TileCoords{Z: zoom, X: x, Y: row})
			}
		}
	}
}

// walkInterior adds every tile whose open interior the segment a-b passes through.
// The segment is cut at each tile edge it crosses and every piece is attributed to the tile
// containing its midpoint. Segments running along a tile edge touch no interior.
func walkInterior(a, b orb.Point, zoom int, set tileutils.TileSet) {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	if dx == 0 && dy == 0 {
		return
	}
	if dx == 0 && a[0] == math.Floor(a[0]) {
		return
	}
	if dy == 0 && a[1] == math.Floor(a[1]) {
		return
	}

	cuts := []float64{0, 1}
	cuts = appendLatticeCuts(cuts, a[0], b[0])
	cuts = appendLatticeCuts(cuts, a[1], b[1])
	slices.Sort(cuts)

	maxTile := (1 << zoom) - 1
	for i := 1; i < len(cuts); i++ {
		if cuts[i] <= cuts[i-1] {
			continue
		}
		t := (cuts[i-1] + cuts[i]) / 2
		x := a[0] + t*dx
		y := a[1] + t*dy
		set.Add(tileutils.TileCoords{
			Z: zoom,
			X: min(maxTile, max(0, int(math.Floor(x)))),
			Y: min(maxTile, max(0, int(math.Floor(y)))),
		})
	}
}

// appendLatticeCuts appends the segment parameters, in (0, 1), at which the coordinate
// going from v0 to v1 crosses an integer.
func appendLatticeCuts(cuts []float64, v0, v1 float64) []float64 {
	d := v1 - v0
	if d == 0 {
		return cuts
	}
	lo, hi := math.Min(v0, v1), math.Max(v0, v1)
	for k := math.Floor(lo) + 1; k < hi; k++ {
		cuts = append(cuts, (k-v0)/d)
	}
	return cuts
}
