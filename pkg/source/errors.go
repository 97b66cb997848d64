package source

import "errors"

var (
	// ErrNoGeometry is returned when the input holds no geometry at all.
	ErrNoGeometry = errors.New("no geometry found")

	// ErrUnsupportedGeoJSON is returned for GeoJSON objects that are not a geometry, a feature
	// or a feature collection.
	ErrUnsupportedGeoJSON = errors.New("unsupported geojson type")
)
