package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/flightaware/tilecover/pkg/export"
	"github.com/flightaware/tilecover/pkg/logging"
	"github.com/flightaware/tilecover/pkg/source"
	"github.com/flightaware/tilecover/pkg/tilecover"
	"github.com/flightaware/tilecover/pkg/tileutils"

	"github.com/alexflint/go-arg"
	"github.com/joho/godotenv"
	"github.com/paulmach/orb"
)

const progressUpdateRate = 15 * time.Second

type Args struct {
	Input      string `arg:"positional" help:"input GeoJSON file, - reads stdin" default:"-"`
	Zoom       string `arg:"-z,--zoom,required" help:"zoom or zoom range to cover at (eg: 12 or 4-12)"`
	Format     string `arg:"-F,--format" help:"output format when printing tiles: zxy, quadkey or geojson" default:"zxy"`
	Dsn        string `arg:"-d,--dsn,env:TILECOVER_DSN" help:"database connection string (dsn) for postgis, reads geometries with --query instead of the input file"`
	Query      string `arg:"-q,--query" help:"query returning the geometries to cover in a geom column"`
	Output     string `arg:"-o,--output" help:"export the covering as vector tiles to this directory or .mbtiles file"`
	MbTiles    bool   `arg:"--mbtiles" help:"output mbtiles instead of files (automatically selected if output filename ends in '.mbtiles')"`
	Dump       bool   `arg:"--dump" help:"export tiles and print their content instead of writing them"`
	NumWorkers int    `arg:"-w,--workers" help:"number of export workers to spawn"`
	Name       string `arg:"--name" help:"tileset name, defaults to the input file name"`
	Layer      string `arg:"--layer" help:"vector layer name of exported tiles" default:"coverage"`
	Version    string `arg:"--tileversion" help:"version of the tileset (string) written to mbtiles metadata"`
	TilesFile  string `arg:"-f,--file" help:"a list of tiles to also export, from a file where each line is a z/x/y tile coordinate"`
	Bounds     bool   `arg:"--bounds" help:"use every tile of the geometries' bounding box at each zoom of the range instead of the covering"`
	Debug      bool   `arg:"--debug" help:"debug logging"`
}

func (Args) Description() string {
	return "compute the tiles covering a geometry, print them or export them as vector tiles"
}

func main() {
	_ = godotenv.Load(".env")

	args := Args{
		NumWorkers: runtime.NumCPU(),
	}
	p := arg.MustParse(&args)
	if args.Dsn != "" && args.Query == "" {
		p.Fail("--query is required with --dsn")
	}
	logger := logging.Setup(args.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, args, os.Stdout, logger); err != nil {
		logger.Error("tilecover failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args Args, stdout io.Writer, logger *slog.Logger) error {
	zr, err := tilecover.ParseZoomRange(args.Zoom)
	if err != nil {
		return err
	}
	geoms, err := loadGeometries(ctx, args, logger)
	if err != nil {
		return err
	}
	logger.Debug("geometries loaded", "count", len(geoms))

	var tiles []tileutils.TileCoords
	if args.Bounds {
		b := geometriesBound(geoms)
		tiles = tileutils.ListTiles(zr.Zooms(), &tileutils.TileJSON{
			Bounds: []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]},
		})
		tileutils.SortTiles(tiles)
		logger.Info("bounding box tiles listed", "zoom", zr.String(), "tiles", len(tiles))
	} else {
		set, err := tilecover.TilesAll(geoms, zr)
		if err != nil {
			return err
		}
		tiles = set.Tiles()
		logger.Info("covering computed", "zoom", zr.String(), "tiles", len(tiles))
	}

	if args.Output == "" && !args.Dump {
		return printTiles(stdout, tiles, args.Format)
	}
	return exportTiles(ctx, args, geoms, tiles, zr, stdout, logger)
}

func loadGeometries(ctx context.Context, args Args, logger *slog.Logger) ([]orb.Geometry, error) {
	if args.Dsn == "" {
		return source.ReadFile(args.Input)
	}
	pg, err := source.NewPostGIS(ctx, args.Dsn, logger)
	if err != nil {
		return nil, err
	}
	defer pg.Close()
	return pg.Geometries(ctx, args.Query)
}

func printTiles(w io.Writer, tiles []tileutils.TileCoords, format string) error {
	switch format {
	case "zxy":
		for _, t := range tiles {
			if _, err := fmt.Fprintln(w, t.String()); err != nil {
				return err
			}
		}
	case "quadkey":
		for _, t := range tiles {
			if _, err := fmt.Fprintln(w, t.Quadkey()); err != nil {
				return err
			}
		}
	case "geojson":
		data, err := json.Marshal(tilecover.TilesToFeatureCollection(tiles))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, string(data)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	return nil
}

func exportTiles(ctx context.Context, args Args, geoms []orb.Geometry, tiles []tileutils.TileCoords, zr tilecover.ZoomRange, stdout io.Writer, logger *slog.Logger) error {
	if args.TilesFile != "" {
		extraTiles, err := tileutils.TilesFromFile(args.TilesFile)
		if err != nil {
			return err
		}
		logger.Info("read tile coordinates from file", "count", len(extraTiles))
		set := tileutils.NewTileSet(tiles...)
		set.Union(tileutils.NewTileSet(extraTiles...))
		tiles = set.Tiles()
	}

	name := args.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(args.Input), filepath.Ext(args.Input))
	}
	minZoom, maxZoom := zr.Min, zr.Max
	for _, t := range tiles {
		minZoom = min(minZoom, t.Z)
		maxZoom = max(maxZoom, t.Z)
	}
	tj := tileutils.NewTileJSON(name, args.Layer, tileutils.BoundingBoxFromBound(geometriesBound(geoms)), minZoom, maxZoom)

	outOpts := export.OutputOptions{
		Path:    args.Output,
		MbTiles: args.MbTiles,
		Version: args.Version,
		Logger:  logger,
	}
	if args.Output == "" {
		outOpts.Dump = stdout
	}
	out, closer, err := export.OpenOutput(outOpts, tj)
	if err != nil {
		return err
	}
	defer closer()

	stats, err := export.Export(ctx, geoms, tiles, out, export.Options{
		Layer:            args.Layer,
		NumWorkers:       args.NumWorkers,
		Gzip:             outOpts.IsMbTiles(),
		ProgressInterval: progressUpdateRate,
		Logger:           logger,
	})
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d tiles failed", stats.Failed, stats.Tiles)
	}
	return nil
}

func geometriesBound(geoms []orb.Geometry) orb.Bound {
	bound := geoms[0].Bound()
	for _, g := range geoms[1:] {
		bound = bound.Union(g.Bound())
	}
	return bound
}
