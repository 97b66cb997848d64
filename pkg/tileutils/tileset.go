package tileutils

import (
	"golang.org/x/exp/slices"
)

// TileSet is a set of unique tiles. The zero value is not usable, create one with
// NewTileSet or make.
type TileSet map[TileCoords]struct{}

// NewTileSet creates a set holding the given tiles
func NewTileSet(tiles ...TileCoords) TileSet {
	s := make(TileSet, len(tiles))
	for _, t := range tiles {
		s[t] = struct{}{}
	}
	return s
}

func (s TileSet) Add(t TileCoords) {
	s[t] = struct{}{}
}

func (s TileSet) Has(t TileCoords) bool {
	_, ok := s[t]
	return ok
}

func (s TileSet) Remove(t TileCoords) {
	delete(s, t)
}

func (s TileSet) Len() int {
	return len(s)
}

// Union adds every tile of other to s
func (s TileSet) Union(other TileSet) {
	for t := range other {
		s[t] = struct{}{}
	}
}

// Difference removes every tile of other from s
func (s TileSet) Difference(other TileSet) {
	for t := range other {
		delete(s, t)
	}
}

// Equal reports whether both sets hold the same tiles
func (s TileSet) Equal(other TileSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

// Tiles returns the tiles sorted by zoom, then row, then column
func (s TileSet) Tiles() []TileCoords {
	out := make([]TileCoords, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	SortTiles(out)
	return out
}

// SortTiles sorts tiles in place by zoom, then row, then column
func SortTiles(tiles []TileCoords) {
	slices.SortFunc(tiles, func(a, b TileCoords) int {
		if a.Z != b.Z {
			return a.Z - b.Z
		}
		if a.Y != b.Y {
			return a.Y - b.Y
		}
		return a.X - b.X
	})
}
