package tileutils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/twpayne/go-mbtiles"
)

type MbTilesMetadata map[string]string

type MbTilesFormat string

const (
	MbTilesFormatPbf  MbTilesFormat = "pbf"
	MbTilesFormatJpg  MbTilesFormat = "jpg"
	MbTilesFormatPng  MbTilesFormat = "png"
	MbTilesFormatWebP MbTilesFormat = "webp"
)

type CreateMetadataOptions struct {
	Filename string
	Version  string
	Format   MbTilesFormat
}

// CreateMetadata generates the (name,value) metadata pairs for .mbtiles files.
// Since name is required, it falls back to the filename if not provided.
// format is also required, so it falls back to pbf if not provided.
func CreateMetadata(tj *TileJSON, opts CreateMetadataOptions) MbTilesMetadata {
	format := opts.Format
	if format == "" {
		format = MbTilesFormatPbf
	}
	meta := MbTilesMetadata{
		"name":   tj.Name,
		"format": string(format),
		"type":   "overlay",
	}
	if tj.Name == "" && opts.Filename != "" {
		meta["name"] = opts.Filename
	}
	if tj.Description != "" {
		meta["description"] = tj.Description
	}
	if tj.Attribution != "" {
		meta["attribution"] = tj.Attribution
	}
	// command line version wins over the one in the TileJSON
	if v := firstNonEmpty(opts.Version, tj.Version); v != "" {
		meta["version"] = v
	}
	if tj.MinZoom != -1 {
		meta["minzoom"] = strconv.Itoa(tj.MinZoom)
	}
	if tj.MaxZoom != -1 {
		meta["maxzoom"] = strconv.Itoa(tj.MaxZoom)
	}
	if len(tj.Bounds) == 4 {
		meta["bounds"] = strings.Join(floatToString(tj.Bounds), ",")
	}
	if len(tj.Center) == 2 || len(tj.Center) == 3 {
		center := strings.Join(floatToString(tj.Center[:2]), ",")
		if len(tj.Center) == 3 {
			center += fmt.Sprintf(",%d", int(tj.Center[2]))
		}
		meta["center"] = center
	}

	// mbtiles spec requires the json field for vector format and it's not meaningful for rasters
	if format == MbTilesFormatPbf {
		if metaJSONBytes, err := json.Marshal(CreateMetadataJSON(tj)); err == nil {
			meta["json"] = string(metaJSONBytes)
		}
	}

	return meta
}

// CreateMetadataJSON generates a mbtiles MetadataJson object based on the TileJSON input
func CreateMetadataJSON(tj *TileJSON) *mbtiles.MetadataJson {
	layers := make([]mbtiles.MetadataJsonVectorLayer, 0, len(tj.VectorLayers))
	for _, l := range tj.VectorLayers {
		l := l
		fields := l.Fields
		if fields == nil {
			fields = map[string]string{}
		}
		layers = append(layers, mbtiles.MetadataJsonVectorLayer{
			ID:      &l.ID,
			Fields:  fields,
			MinZoom: &l.MinZoom,
			MaxZoom: &l.MaxZoom,
		})
	}
	return &mbtiles.MetadataJson{VectorLayers: layers}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
