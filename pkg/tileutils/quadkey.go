package tileutils

import (
	"errors"
	"fmt"
)

// ErrInvalidQuadkey is returned when decoding a quadkey with characters other than 0-3,
// or one deeper than MaxZoom.
var ErrInvalidQuadkey = errors.New("invalid quadkey")

// Quadkey encodes the tile as a base-4 string, one digit per zoom level starting at zoom 1.
// The zoom 0 tile is the empty string.
func (t TileCoords) Quadkey() string {
	key := make([]byte, t.Z)
	for i := t.Z; i > 0; i-- {
		digit := byte('0')
		mask := 1 << (i - 1)
		if t.X&mask != 0 {
			digit++
		}
		if t.Y&mask != 0 {
			digit += 2
		}
		key[t.Z-i] = digit
	}
	return string(key)
}

// QuadkeyToTile decodes a quadkey back into its tile
func QuadkeyToTile(key string) (TileCoords, error) {
	z := len(key)
	if z > MaxZoom {
		return TileCoords{}, fmt.Errorf("%w: %q is deeper than zoom %d", ErrInvalidQuadkey, key, MaxZoom)
	}
	t := TileCoords{Z: z}
	for i := z; i > 0; i-- {
		mask := 1 << (i - 1)
		switch key[z-i] {
		case '0':
		case '1':
			t.X |= mask
		case '2':
			t.Y |= mask
		case '3':
			t.X |= mask
			t.Y |= mask
		default:
			return TileCoords{}, fmt.Errorf("%w: digit %q at index %d", ErrInvalidQuadkey, key[z-i], z-i)
		}
	}
	return t, nil
}
