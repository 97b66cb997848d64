package tilecover

import (
	"github.com/flightaware/tilecover/pkg/tileutils"
	"github.com/paulmach/orb"
)

// fractionRing converts tile space coordinates at zoom into a lng/lat ring
func fractionRing(zoom int, points ...orb.Point) orb.Ring {
	r := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		r = append(r, tileutils.TileFractionToPoint(p[0], p[1], zoom))
	}
	return append(r, r[0])
}

// fractionRect is a lng/lat ring of the rectangle between two tile space corners
func fractionRect(zoom int, x0, y0, x1, y1 float64) orb.Ring {
	return fractionRing(zoom,
		orb.Point{x0, y0},
		orb.Point{x1, y0},
		orb.Point{x1, y1},
		orb.Point{x0, y1},
	)
}

func tiles(z int, xy ...[2]int) tileutils.TileSet {
	s := make(tileutils.TileSet)
	for _, c := range xy {
		s.Add(tileutils.TileCoords{Z: z, X: c[0], Y: c[1]})
	}
	return s
}

func rect(z, x0, y0, x1, y1 int) tileutils.TileSet {
	s := make(tileutils.TileSet)
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			s.Add(tileutils.TileCoords{Z: z, X: x, Y: y})
		}
	}
	return s
}
