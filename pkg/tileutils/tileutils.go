package tileutils

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/paulmach/orb"
)

// BoundingBox is a lat/lon set of coordinates for a bounding box
type BoundingBox struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// BoundingBoxFromBound converts an orb bound into a BoundingBox
func BoundingBoxFromBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		Left:   b.Min[0],
		Right:  b.Max[0],
		Bottom: b.Min[1],
		Top:    b.Max[1],
	}
}

// ListTiles returns a list of all the tiles within the given zooms based on the TileJSON bounds
func ListTiles(zooms []int, tj *TileJSON) []TileCoords {
	if len(zooms) == 0 || len(tj.Bounds) != 4 {
		return nil
	}
	tiles := make([]TileCoords, 0, 2<<zooms[len(zooms)-1])
	for _, z := range zooms {
		newTiles := TilesInBbox(BoundingBox{
			Left:   tj.Bounds[0],
			Right:  tj.Bounds[2],
			Bottom: tj.Bounds[1],
			Top:    tj.Bounds[3],
		}, z)
		tiles = append(tiles, newTiles...)
	}
	return tiles
}

// TilesInBbox returns a list of all tiles within that lat/lon bounding box at the specified zoom level.
// Unlike PointToTile, the right and bottom edges are clamped into the grid rather than wrapped.
func TilesInBbox(bbox BoundingBox, zoom int) []TileCoords {
	tileMax := (1 << zoom) - 1
	nw := PointToTileFraction(bbox.Left, bbox.Top, zoom)
	se := PointToTileFraction(bbox.Right, bbox.Bottom, zoom)
	xMin := clampInt(int(math.Floor(nw[0])), 0, tileMax)
	yMin := clampInt(int(math.Floor(nw[1])), 0, tileMax)
	xMax := clampInt(int(math.Floor(se[0])), 0, tileMax)
	yMax := clampInt(int(math.Floor(se[1])), 0, tileMax)
	if xMax < xMin || yMax < yMin {
		return nil
	}

	tiles := make([]TileCoords, 0, (xMax-xMin+1)*(yMax-yMin+1))

	// cluster tiles in "steps" so we aren't iterating over the whole globe
	// instead, try to keep the tiles clustered together
	numSteps := 4.0
	stepX := int(math.Ceil(float64(xMax-xMin+1)/numSteps)) + 1
	stepY := int(math.Ceil(float64(yMax-yMin+1)/numSteps)) + 1
	for sY := 0; sY < int(numSteps); sY++ {
		stepYMin := yMin + (sY * stepY)
		stepYMax := yMin + ((sY + 1) * stepY)
		if stepYMax > yMax {
			stepYMax = yMax + 1
		}
		for sX := 0; sX < int(numSteps); sX++ {
			stepXMin := xMin + (sX * stepX)
			stepXMax := xMin + ((sX + 1) * stepX)
			if stepXMax > xMax {
				stepXMax = xMax + 1
			}
			for i := stepXMin; i < stepXMax; i++ {
				for j := stepYMin; j < stepYMax; j++ {
					tiles = append(tiles, TileCoords{
						Z: zoom,
						X: i,
						Y: j,
					})
				}
			}
		}
	}
	return tiles
}

// RoundRobinTiles assigns tiles to workers in round robin fashion
func RoundRobinTiles(input []TileCoords, numWorkers int) [][]TileCoords {
	if numWorkers < 1 {
		numWorkers = 1
	}
	out := make([][]TileCoords, numWorkers)
	for i, v := range input {
		index := i % numWorkers
		out[index] = append(out[index], v)
	}
	return out
}

// TilesFromFile reads tile coordinates from a file where each line is a z/x/y tile
func TilesFromFile(filename string) ([]TileCoords, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read file (%s): %w", filename, err)
	}
	lines := strings.Split(string(data), "\n")
	tiles := make([]TileCoords, 0, len(lines))
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		tc, err := ParseTileCoords(l)
		if err != nil {
			return nil, fmt.Errorf("invalid line %d: %w", i+1, err)
		}
		tiles = append(tiles, tc)
	}
	return tiles, nil
}
