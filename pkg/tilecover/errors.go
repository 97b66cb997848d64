package tilecover

import "errors"

var (
	// ErrInvalidZoomRange is returned when the max zoom of a range is below its min zoom.
	ErrInvalidZoomRange = errors.New("tilecover: max zoom is less than min zoom")

	// ErrZoomOutOfRange is returned for zooms below 0 or above tileutils.MaxZoom.
	ErrZoomOutOfRange = errors.New("tilecover: zoom out of range")

	// ErrUnsupportedGeometry is returned for geometries other than points, line strings,
	// polygons and their multi variants.
	ErrUnsupportedGeometry = errors.New("tilecover: unsupported geometry type")
)
