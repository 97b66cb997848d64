package tileutils

import (
	"encoding/json"
	"fmt"
	"os"
)

const tileJSONVersion = "3.0.0"

// TileJSON describes a tileset produced from a covering
type TileJSON struct {
	TileJSON     string        `json:"tilejson"`
	Attribution  string        `json:"attribution,omitempty"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Version      string        `json:"version,omitempty"`
	MinZoom      int           `json:"minzoom"`
	MaxZoom      int           `json:"maxzoom"`
	Bounds       []float64     `json:"bounds,omitempty"`
	Center       []float64     `json:"center,omitempty"`
	Tiles        []string      `json:"tiles,omitempty"`
	VectorLayers []VectorLayer `json:"vector_layers"`
}

// VectorLayer is a single layer present in the tiles
type VectorLayer struct {
	ID          string            `json:"id"`
	Description string            `json:"description,omitempty"`
	MinZoom     int               `json:"minzoom"`
	MaxZoom     int               `json:"maxzoom"`
	Fields      map[string]string `json:"fields"`
}

// NewTileJSON builds the TileJSON of a tileset covering bbox between minZoom and maxZoom
// with a single vector layer.
func NewTileJSON(name, layer string, bbox BoundingBox, minZoom, maxZoom int) *TileJSON {
	centerZoom := minZoom + (maxZoom-minZoom)/2
	return &TileJSON{
		TileJSON: tileJSONVersion,
		Name:     name,
		MinZoom:  minZoom,
		MaxZoom:  maxZoom,
		Bounds:   []float64{bbox.Left, bbox.Bottom, bbox.Right, bbox.Top},
		Center: []float64{
			(bbox.Left + bbox.Right) / 2,
			(bbox.Bottom + bbox.Top) / 2,
			float64(centerZoom),
		},
		VectorLayers: []VectorLayer{{
			ID:      layer,
			MinZoom: minZoom,
			MaxZoom: maxZoom,
			Fields:  map[string]string{},
		}},
	}
}

// ParseTileJSON reads a TileJSON document. Zooms that are not set are reported as -1.
func ParseTileJSON(filename string) (*TileJSON, error) {
	jsonBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	tj := TileJSON{
		MinZoom: -1,
		MaxZoom: -1,
	}
	if err := json.Unmarshal(jsonBytes, &tj); err != nil {
		return nil, fmt.Errorf("unable to parse tilejson (%s): %w", filename, err)
	}
	return &tj, nil
}

// WriteTileJSON writes the TileJSON document to filename
func WriteTileJSON(tj *TileJSON, filename string) error {
	data, err := json.MarshalIndent(tj, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}
