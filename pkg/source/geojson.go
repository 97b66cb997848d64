// Package source loads the geometries to cover, from GeoJSON documents or a PostGIS query.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Stdin is the filename that makes ReadFile read from standard input
const Stdin = "-"

// ParseGeoJSON decodes a GeoJSON geometry, feature or feature collection into its geometries.
// Geometry collections are flattened and features without a geometry are skipped.
func ParseGeoJSON(data []byte) ([]orb.Geometry, error) {
	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("unable to parse geojson: %w", err)
	}

	var geoms []orb.Geometry
	switch header.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = flatten(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse feature: %w", err)
		}
		geoms = flatten(geoms, f.Geometry)
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("unable to parse geometry: %w", err)
		}
		geoms = flatten(geoms, g.Geometry())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGeoJSON, header.Type)
	}

	if len(geoms) == 0 {
		return nil, ErrNoGeometry
	}
	return geoms, nil
}

// ReadGeoJSON reads a whole GeoJSON document from r
func ReadGeoJSON(r io.Reader) ([]orb.Geometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read geojson: %w", err)
	}
	return ParseGeoJSON(data)
}

// ReadFile reads a GeoJSON file, or standard input when filename is Stdin
func ReadFile(filename string) ([]orb.Geometry, error) {
	if filename == Stdin {
		return ReadGeoJSON(os.Stdin)
	}
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	geoms, err := ReadGeoJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return geoms, nil
}

func flatten(geoms []orb.Geometry, g orb.Geometry) []orb.Geometry {
	switch g := g.(type) {
	case nil:
		return geoms
	case orb.Collection:
		for _, c := range g {
			geoms = flatten(geoms, c)
		}
		return geoms
	default:
		return append(geoms, g)
	}
}
