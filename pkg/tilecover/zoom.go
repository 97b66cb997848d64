package tilecover

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flightaware/tilecover/pkg/tileutils"
)

// ZoomRange is the zoom levels a covering is computed for. Tiles are computed at Max and
// merged up to, at most, Min. A single zoom has Min == Max.
type ZoomRange struct {
	Min int
	Max int
}

// Zoom returns the range holding the single zoom z
func Zoom(z int) ZoomRange {
	return ZoomRange{Min: z, Max: z}
}

// NewZoomRange creates a validated zoom range
func NewZoomRange(minZoom, maxZoom int) (ZoomRange, error) {
	zr := ZoomRange{Min: minZoom, Max: maxZoom}
	if err := zr.Validate(); err != nil {
		return ZoomRange{}, err
	}
	return zr, nil
}

// ParseZoomRange parses either a single zoom ("12") or a range ("4-12")
func ParseZoomRange(s string) (ZoomRange, error) {
	first, second, isRange := strings.Cut(strings.TrimSpace(s), "-")
	lo, err := strconv.Atoi(first)
	if err != nil {
		return ZoomRange{}, fmt.Errorf("invalid zoom %q: %w", s, err)
	}
	hi := lo
	if isRange {
		if hi, err = strconv.Atoi(second); err != nil {
			return ZoomRange{}, fmt.Errorf("invalid zoom %q: %w", s, err)
		}
	}
	return NewZoomRange(lo, hi)
}

// Zooms lists every zoom of the range, from Min to Max
func (zr ZoomRange) Zooms() []int {
	if zr.Max < zr.Min {
		return nil
	}
	zooms := make([]int, 0, zr.Max-zr.Min+1)
	for z := zr.Min; z <= zr.Max; z++ {
		zooms = append(zooms, z)
	}
	return zooms
}

// Validate checks both ends are valid zooms and min <= max
func (zr ZoomRange) Validate() error {
	for _, z := range []int{zr.Min, zr.Max} {
		if z < tileutils.MinZoom || z > tileutils.MaxZoom {
			return fmt.Errorf("%w: %d not in [%d, %d]", ErrZoomOutOfRange, z, tileutils.MinZoom, tileutils.MaxZoom)
		}
	}
	if zr.Max < zr.Min {
		return fmt.Errorf("%w: %d < %d", ErrInvalidZoomRange, zr.Max, zr.Min)
	}
	return nil
}

func (zr ZoomRange) String() string {
	if zr.Min == zr.Max {
		return strconv.Itoa(zr.Max)
	}
	return fmt.Sprintf("%d-%d", zr.Min, zr.Max)
}
