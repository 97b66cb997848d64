// Package server exposes tile covering over HTTP.
//
//	POST /cover?zoom=4-12&format=zxy   body: GeoJSON geometry, feature or feature collection
//	GET  /tile/:z/:x/:y                 bounds, quadkey, parent and children of a tile
//	GET  /quadkey/:key                  same, by quadkey
//	GET  /bbox?bbox=w,s,e,n             same, for the smallest tile containing the bounds
//	GET  /metrics                       prometheus metrics
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/flightaware/tilecover/pkg/source"
	"github.com/flightaware/tilecover/pkg/tilecover"
	"github.com/flightaware/tilecover/pkg/tileutils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Output formats of the cover endpoint
const (
	FormatZXY     = "zxy"
	FormatQuadkey = "quadkey"
	FormatGeoJSON = "geojson"
)

// Server answers cover requests within the limits of its config
type Server struct {
	cfg    Config
	logger *slog.Logger
}

// New creates the fiber app of the cover service
func New(cfg Config, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, logger: logger}

	f := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             cfg.MaxBodyBytes,
		ErrorHandler:          s.errorHandler,
	})

	f.Use(recover.New())
	if cfg.AccessLog {
		f.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${ip}]:${port} ${status} - ${method} ${path} ${queryParams} ${latency}\n",
			Output: os.Stderr,
		}))
	}
	f.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	f.Post("/cover", s.coverHandler)
	f.Get("/tile/:z/:x/:y", s.tileHandler)
	f.Get("/quadkey/:key", s.quadkeyHandler)
	f.Get("/bbox", s.bboxHandler)
	f.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return f
}

func (s *Server) coverHandler(c *fiber.Ctx) error {
	start := time.Now()
	status := fiber.StatusOK
	defer func() {
		requestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
		requestDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	res, err := s.cover(c)
	if err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else {
			status = fiber.StatusInternalServerError
		}
		return err
	}
	return c.JSON(res)
}

func (s *Server) cover(c *fiber.Ctx) (any, error) {
	zr, err := tilecover.ParseZoomRange(c.Query("zoom"))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if zr.Max > s.cfg.MaxZoom {
		rejectedTotal.WithLabelValues("max_zoom").Inc()
		return nil, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("zoom %d is above the limit of %d", zr.Max, s.cfg.MaxZoom))
	}
	format := c.Query("format", FormatZXY)
	if format != FormatZXY && format != FormatQuadkey && format != FormatGeoJSON {
		return nil, fiber.NewError(fiber.StatusBadRequest, "unknown format "+format)
	}

	geoms, err := source.ParseGeoJSON(c.Body())
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if n := boundTiles(geoms, zr.Max); n > s.cfg.MaxBoundTiles {
		rejectedTotal.WithLabelValues("max_bound_tiles").Inc()
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("geometry bounds span %d tiles at zoom %d, the limit is %d", n, zr.Max, s.cfg.MaxBoundTiles))
	}

	set, err := tilecover.TilesAll(geoms, zr)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if set.Len() > s.cfg.MaxTiles {
		rejectedTotal.WithLabelValues("max_tiles").Inc()
		return nil, fiber.NewError(fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("covering has %d tiles, the limit is %d", set.Len(), s.cfg.MaxTiles))
	}
	tilesPerRequest.Observe(float64(set.Len()))
	s.logger.Debug("cover", "geometries", len(geoms), "zoom", zr.String(), "tiles", set.Len())

	tiles := set.Tiles()
	switch format {
	case FormatQuadkey:
		keys := make([]string, len(tiles))
		for i, t := range tiles {
			keys[i] = t.Quadkey()
		}
		return keys, nil
	case FormatGeoJSON:
		return tilecover.TilesToFeatureCollection(tiles), nil
	default:
		zxy := make([]string, len(tiles))
		for i, t := range tiles {
			zxy[i] = t.String()
		}
		return zxy, nil
	}
}

// TileInfo describes a single tile
type TileInfo struct {
	Z        int                    `json:"z"`
	X        int                    `json:"x"`
	Y        int                    `json:"y"`
	Quadkey  string                 `json:"quadkey"`
	Bbox     [4]float64             `json:"bbox"`
	Parent   *tileutils.TileCoords  `json:"parent,omitempty"`
	Children []tileutils.TileCoords `json:"children,omitempty"`
}

func newTileInfo(t tileutils.TileCoords) TileInfo {
	info := TileInfo{
		Z:       t.Z,
		X:       t.X,
		Y:       t.Y,
		Quadkey: t.Quadkey(),
		Bbox:    t.BoundingBox(),
	}
	if parent, err := t.Parent(); err == nil {
		info.Parent = &parent
	}
	if t.Z < tileutils.MaxZoom {
		children := t.Children()
		info.Children = children[:]
	}
	return info
}

func (s *Server) tileHandler(c *fiber.Ctx) error {
	t, err := tileutils.ParseTileCoords(c.Params("z") + "/" + c.Params("x") + "/" + c.Params("y"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(newTileInfo(t))
}

func (s *Server) quadkeyHandler(c *fiber.Ctx) error {
	t, err := tileutils.QuadkeyToTile(c.Params("key"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(newTileInfo(t))
}

func (s *Server) bboxHandler(c *fiber.Ctx) error {
	b, err := parseBbox(c.Query("bbox"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(newTileInfo(tileutils.BboxToTile(b)))
}

// parseBbox reads "west,south,east,north" in degrees
func parseBbox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q, want west,south,east,north", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("invalid bbox %q: %w", s, err)
		}
		v[i] = f
	}
	if v[0] > v[2] || v[1] > v[3] {
		return orb.Bound{}, fmt.Errorf("invalid bbox %q, west/south above east/north", s)
	}
	return orb.Bound{Min: orb.Point{v[0], v[1]}, Max: orb.Point{v[2], v[3]}}, nil
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

// boundTiles counts the tiles of the geometries' bounding box at zoom
func boundTiles(geoms []orb.Geometry, zoom int) int {
	if len(geoms) == 0 {
		return 0
	}
	b := geoms[0].Bound()
	for _, g := range geoms[1:] {
		b = b.Union(g.Bound())
	}
	topLeft := tileutils.PointToTileFraction(b.Min[0], b.Max[1], zoom)
	bottomRight := tileutils.PointToTileFraction(b.Max[0], b.Min[1], zoom)
	w := int(bottomRight[0]) - int(topLeft[0]) + 1
	h := int(bottomRight[1]) - int(topLeft[1]) + 1
	return w * h
}
