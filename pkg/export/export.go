// Package export writes a covering out as a vector tileset: one MVT per covered tile holding
// the covered geometries clipped to that tile.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/flightaware/tilecover/pkg/tileutils"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/maptile"
	"github.com/twpayne/go-mbtiles"
)

const (
	// DefaultLayer is the name of the vector layer when none is given
	DefaultLayer = "coverage"

	mbTilesBatchSize = 10
)

// ErrNoTiles is returned when asked to export an empty tile list.
var ErrNoTiles = errors.New("no tiles to export")

// Options controls an export.
type Options struct {
	Layer            string        // vector layer name, DefaultLayer if empty
	NumWorkers       int           // number of workers, runtime.NumCPU() if 0
	Gzip             bool          // gzip tile data, mbtiles expects it
	ProgressInterval time.Duration // how often progress is logged, never if 0
	Logger           *slog.Logger
}

// Stats summarizes a finished export
type Stats struct {
	Tiles   int
	Written int
	Failed  int
	Elapsed time.Duration
}

// Output is where tiles are written. Bulk is optional, tiles are batched to it when set.
type Output struct {
	Writer tileutils.TileWriter
	Bulk   tileutils.TileBulkWriter
}

type workerParams struct {
	num      int
	wg       *sync.WaitGroup
	tiles    []tileutils.TileCoords
	features []*geojson.Feature
	opts     Options
	out      Output
	progress *progress
}

// Export encodes an MVT for every tile and writes it to out. Tiles are split round robin
// between the workers so they process neighbouring tiles at the same time.
// Tiles that fail to encode or write are logged and counted, the export goes on.
func Export(ctx context.Context, geoms []orb.Geometry, tiles []tileutils.TileCoords, out Output, opts Options) (Stats, error) {
	if len(tiles) == 0 {
		return Stats{}, ErrNoTiles
	}
	if opts.Layer == "" {
		opts.Layer = DefaultLayer
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	numWorkers := opts.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	numWorkers = min(numWorkers, len(tiles))

	features := make([]*geojson.Feature, len(geoms))
	for i, g := range geoms {
		features[i] = geojson.NewFeature(g)
		features[i].Properties["index"] = i
	}

	start := time.Now()
	prog := newProgress(len(tiles))
	stopReporter := make(chan struct{})
	if opts.ProgressInterval > 0 {
		go prog.report(opts.Logger, opts.ProgressInterval, stopReporter)
	}

	var wg sync.WaitGroup
	rrTiles := tileutils.RoundRobinTiles(tiles, numWorkers)
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go tileWorker(ctx, workerParams{
			num:      i,
			wg:       &wg,
			tiles:    rrTiles[i],
			features: features,
			opts:     opts,
			out:      out,
			progress: prog,
		})
	}
	wg.Wait()
	close(stopReporter)

	written, failed := prog.totals()
	stats := Stats{
		Tiles:   len(tiles),
		Written: written,
		Failed:  failed,
		Elapsed: time.Since(start),
	}
	opts.Logger.Info("export finished",
		"tiles", stats.Tiles, "written", stats.Written, "failed", stats.Failed, "elapsed", stats.Elapsed)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// EncodeTile builds the MVT of a tile holding the features clipped to it.
// The features are not modified.
func EncodeTile(t tileutils.TileCoords, layer string, features []*geojson.Feature, gzip bool) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		clone := geojson.NewFeature(orb.Clone(f.Geometry))
		clone.Properties = f.Properties.Clone()
		fc.Append(clone)
	}

	layers := mvt.NewLayers(map[string]*geojson.FeatureCollection{layer: fc})
	layers.ProjectToTile(maptile.New(uint32(t.X), uint32(t.Y), maptile.Zoom(t.Z)))
	layers.Clip(mvt.MapboxGLDefaultExtentBound)
	dropClipped(layers)

	data, err := mvt.Marshal(layers)
	if err != nil {
		return nil, fmt.Errorf("unable to encode tile %s: %w", t, err)
	}
	if gzip {
		return tileutils.Gzip(data)
	}
	return data, nil
}

// dropClipped removes the features clipping left without geometry, the ones that miss
// the tile. mvt.Marshal cannot encode a nil geometry.
func dropClipped(layers mvt.Layers) {
	for _, l := range layers {
		kept := l.Features[:0]
		for _, f := range l.Features {
			if f.Geometry != nil {
				kept = append(kept, f)
			}
		}
		l.Features = kept
	}
}

func tileWorker(ctx context.Context, params workerParams) {
	defer params.wg.Done()
	logger := params.opts.Logger.With("worker", params.num)
	logger.Debug("worker started", "tiles", len(params.tiles), "gzip", params.opts.Gzip)

	batch := make([]mbtiles.TileData, 0, mbTilesBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := params.out.Bulk.BulkWrite(batch); err != nil {
			logger.Error("error writing tiles", "count", len(batch), "error", err)
			params.progress.add(0, len(batch))
		} else {
			params.progress.add(len(batch), 0)
		}
		batch = batch[:0]
	}

	for _, c := range params.tiles {
		if ctx.Err() != nil {
			logger.Warn("export cancelled")
			break
		}
		start := time.Now()
		data, err := EncodeTile(c, params.opts.Layer, params.features, params.opts.Gzip)
		if err != nil {
			logger.Error("error during tile generation", "tile", c.String(), "error", err)
			params.progress.add(0, 1)
			continue
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			logger.Warn("slow tile", "tile", c.String(), "elapsed", elapsed)
		}

		if params.out.Bulk != nil {
			batch = append(batch, mbtiles.TileData{Z: c.Z, X: c.X, Y: c.Y, Data: data})
			if len(batch) == mbTilesBatchSize {
				flush()
			}
			continue
		}
		if err := params.out.Writer.Write(c.Z, c.X, c.Y, data); err != nil {
			logger.Error("error writing tile", "tile", c.String(), "error", err)
			params.progress.add(0, 1)
			continue
		}
		params.progress.add(1, 0)
	}
	flush()
}
