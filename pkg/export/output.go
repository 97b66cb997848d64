package export

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/flightaware/tilecover/pkg/tileutils"
)

// OutputOptions selects and configures the tile writer
type OutputOptions struct {
	Path    string    // output directory or .mbtiles file, tiles are only logged if empty
	MbTiles bool      // write an mbtiles file, implied by a .mbtiles Path
	Version string    // tileset version written to mbtiles metadata
	Dump    io.Writer // when Path is empty, decoded tiles are written here
	Logger  *slog.Logger
}

// IsMbTiles reports whether the output is an mbtiles file
func (o OutputOptions) IsMbTiles() bool {
	return o.MbTiles || strings.HasSuffix(o.Path, ".mbtiles")
}

// OpenOutput creates the writer for the output, writes the tileset description next to it
// (mbtiles metadata, or a tiles.json in the output directory) and returns a function to call
// once every tile is written.
func OpenOutput(opts OutputOptions, tj *tileutils.TileJSON) (Output, func(), error) {
	if opts.Path == "" {
		w, closer, err := (&tileutils.DummyWriter{Logger: opts.Logger, Dump: opts.Dump}).New()
		return Output{Writer: w}, closer, err
	}

	if opts.IsMbTiles() {
		mbWriter := &tileutils.MbTilesWriter{
			Filename: opts.Path,
			Logger:   opts.Logger,
		}
		w, closer, err := mbWriter.New()
		if err != nil {
			return Output{}, nil, err
		}
		meta := tileutils.CreateMetadata(tj, tileutils.CreateMetadataOptions{
			Filename: filepath.Base(opts.Path),
			Version:  opts.Version,
			Format:   tileutils.MbTilesFormatPbf,
		})
		if err := mbWriter.BulkWriteMetadata(meta); err != nil {
			closer()
			return Output{}, nil, err
		}
		return Output{Writer: w, Bulk: mbWriter}, closer, nil
	}

	w, closer, err := (&tileutils.FileWriter{Path: opts.Path}).New()
	if err != nil {
		return Output{}, nil, err
	}
	dirTJ := *tj
	dirTJ.Tiles = []string{"{z}/{x}/{y}.mvt"}
	if err := tileutils.WriteTileJSON(&dirTJ, filepath.Join(opts.Path, "tiles.json")); err != nil {
		return Output{}, nil, fmt.Errorf("unable to write tilejson: %w", err)
	}
	return Output{Writer: w}, closer, nil
}
