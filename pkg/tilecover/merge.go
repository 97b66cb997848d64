package tilecover

import (
	"github.com/flightaware/tilecover/pkg/tileutils"
)

// MergeUp replaces every complete quadrant group of four sibling tiles by their parent,
// level by level from zr.Max up to zr.Min. Groups missing a tile are left at their zoom, so
// the result can hold tiles of mixed zooms. The input set is not modified.
func MergeUp(set tileutils.TileSet, zr ZoomRange) tileutils.TileSet {
	out := make(tileutils.TileSet, len(set))
	out.Union(set)
	if zr.Min >= zr.Max {
		return out
	}

	// worklist of candidate tiles per zoom, parents get queued as they are created
	byZoom := make(map[int][]tileutils.TileCoords)
	for t := range set {
		byZoom[t.Z] = append(byZoom[t.Z], t)
	}

	for z := zr.Max; z > zr.Min; z-- {
		for _, t := range byZoom[z] {
			// only look at each group once, from its top left tile
			if t.X&1 != 0 || t.Y&1 != 0 {
				continue
			}
			if !out.Has(t) {
				continue
			}
			siblings := t.Siblings()
			complete := true
			for _, s := range siblings {
				if !out.Has(s) {
					complete = false
					break
				}
			}
			if !complete {
				continue
			}

			for _, s := range siblings {
				out.Remove(s)
			}
			parent, err := t.Parent()
			if err != nil {
				// z > zr.Min >= 0, every tile here has a parent
				panic(err)
			}
			out.Add(parent)
			byZoom[z-1] = append(byZoom[z-1], parent)
		}
		delete(byZoom, z)
	}

	return out
}
