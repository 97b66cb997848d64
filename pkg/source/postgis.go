package source

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
)

const (
	acquireRetries    = 5
	acquireRetryDelay = 100 * time.Millisecond
)

// PostGIS loads geometries from a PostGIS database.
// Queries must return their geometry in a column named geom, in any SRID.
type PostGIS struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger
}

// NewPostGIS opens a connection pool to the database described by dsn
func NewPostGIS(ctx context.Context, dsn string, logger *slog.Logger) (*PostGIS, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid dsn: %w", err)
	}
	config.MinConns = 1
	config.MaxConns = int32(runtime.NumCPU())
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pool: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostGIS{Pool: pool, Logger: logger}, nil
}

// Close releases every connection of the pool
func (p *PostGIS) Close() {
	p.Pool.Close()
}

// Geometries runs query and returns its geometries, reprojected to WGS84.
// Rows with a NULL geometry are skipped.
func (p *PostGIS) Geometries(ctx context.Context, query string, args ...any) ([]orb.Geometry, error) {
	conn, err := p.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not acquire connection: %w", err)
	}
	defer conn.Release()

	start := time.Now()
	rows, err := conn.Query(ctx, geometryQuery(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	data, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("unable to read rows: %w", err)
	}
	p.Logger.Debug("geometry query", "rows", len(data), "elapsed", time.Since(start))

	geoms, err := decodeWKB(data)
	if err != nil {
		return nil, err
	}
	if len(geoms) == 0 {
		return nil, ErrNoGeometry
	}
	return geoms, nil
}

func (p *PostGIS) acquire(ctx context.Context) (*pgxpool.Conn, error) {
	var lastErr error
	for i := 0; i < acquireRetries; i++ {
		conn, err := p.Pool.Acquire(ctx)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		p.Logger.Warn("could not acquire connection, waiting to retry", "attempt", i, "error", err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(acquireRetryDelay):
		}
	}
	return nil, lastErr
}

// geometryQuery wraps a user query so it returns WKB in lng/lat
func geometryQuery(query string) string {
	query = strings.TrimSpace(strings.ReplaceAll(query, ";", ""))
	return "SELECT ST_AsBinary(ST_Transform(t.geom, 4326)) FROM (" + query + ") AS t"
}

func decodeWKB(rows [][]byte) ([]orb.Geometry, error) {
	geoms := make([]orb.Geometry, 0, len(rows))
	for i, b := range rows {
		if b == nil {
			continue
		}
		g, err := wkb.Unmarshal(b)
		if err != nil {
			return nil, fmt.Errorf("row %d: unable to decode geometry: %w", i, err)
		}
		geoms = flatten(geoms, g)
	}
	return geoms, nil
}
