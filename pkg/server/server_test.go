package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/flightaware/tilecover/pkg/tileutils"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pointBody = `{"type": "Point", "coordinates": [79.08096313476562, 21.135184856708992]}`
	worldBody = `{"type": "Feature", "properties": {}, "geometry": {"type": "Polygon",
		"coordinates": [[[-180, -85], [180, -85], [180, 85], [-180, 85], [-180, -85]]]}}`
)

func do(t *testing.T, app *fiber.App, method, target, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.Nil(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.Nil(t, err)
	return resp.StatusCode, data
}

func TestCover(t *testing.T) {
	app := New(DefaultConfig(), nil)

	tests := []struct {
		name   string
		target string
		body   string
		out    []string
	}{
		{name: "point", target: "/cover?zoom=1-15", body: pointBody, out: []string{"15/23582/14415"}},
		{name: "quadkey", target: "/cover?zoom=15&format=quadkey", body: pointBody, out: []string{"123310002013332"}},
		{name: "merged", target: "/cover?zoom=0-3", body: worldBody, out: []string{"0/0/0"}},
		{name: "single zoom", target: "/cover?zoom=1", body: worldBody, out: []string{"1/0/0", "1/1/0", "1/0/1", "1/1/1"}},
	}
	for _, tt := range tests {
		test := tt
		t.Run(test.name, func(t *testing.T) {
			status, data := do(t, app, http.MethodPost, test.target, test.body)
			require.Equal(t, http.StatusOK, status, string(data))
			var out []string
			require.Nil(t, json.Unmarshal(data, &out))
			assert.Equal(t, test.out, out)
		})
	}
}

func TestCoverGeoJSON(t *testing.T) {
	app := New(DefaultConfig(), nil)
	status, data := do(t, app, http.MethodPost, "/cover?zoom=15&format=geojson", pointBody)
	require.Equal(t, http.StatusOK, status, string(data))

	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.Nil(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, "123310002013332", fc.Features[0].Properties["quadkey"])
	assert.Equal(t, 23582.0, fc.Features[0].Properties["x"])
}

func TestCoverErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxZoom = 12
	cfg.MaxTiles = 10
	cfg.MaxBoundTiles = 1000
	app := New(cfg, nil)

	tests := []struct {
		name   string
		target string
		body   string
		status int
		msg    string
	}{
		{name: "no zoom", target: "/cover", body: pointBody, status: http.StatusBadRequest, msg: "invalid zoom"},
		{name: "inverted zoom", target: "/cover?zoom=5-3", body: pointBody, status: http.StatusBadRequest, msg: "max zoom is less than min zoom"},
		{name: "above max zoom", target: "/cover?zoom=13", body: pointBody, status: http.StatusBadRequest, msg: "above the limit"},
		{name: "format", target: "/cover?zoom=3&format=wkt", body: pointBody, status: http.StatusBadRequest, msg: "unknown format"},
		{name: "body", target: "/cover?zoom=3", body: "{", status: http.StatusBadRequest, msg: "unable to parse geojson"},
		{name: "bounds", target: "/cover?zoom=12", body: worldBody, status: http.StatusRequestEntityTooLarge, msg: "geometry bounds span"},
		{name: "tiles", target: "/cover?zoom=2", body: worldBody, status: http.StatusRequestEntityTooLarge, msg: "covering has 16 tiles"},
	}
	for _, tt := range tests {
		test := tt
		t.Run(test.name, func(t *testing.T) {
			status, data := do(t, app, http.MethodPost, test.target, test.body)
			assert.Equal(t, test.status, status)
			var out map[string]string
			require.Nil(t, json.Unmarshal(data, &out))
			assert.Contains(t, out["error"], test.msg)
		})
	}
}

func TestTileInfo(t *testing.T) {
	app := New(DefaultConfig(), nil)

	status, data := do(t, app, http.MethodGet, "/tile/1/0/0", "")
	require.Equal(t, http.StatusOK, status, string(data))
	var info TileInfo
	require.Nil(t, json.Unmarshal(data, &info))
	assert.Equal(t, "0", info.Quadkey)
	assert.Equal(t, &tileutils.TileCoords{}, info.Parent)
	assert.Len(t, info.Children, 4)
	assert.InDelta(t, -180, info.Bbox[0], 1e-9)
	assert.InDelta(t, 0, info.Bbox[1], 1e-9)

	status, data = do(t, app, http.MethodGet, "/tile/0/0/0", "")
	require.Equal(t, http.StatusOK, status)
	info = TileInfo{}
	require.Nil(t, json.Unmarshal(data, &info))
	assert.Nil(t, info.Parent)
	assert.Equal(t, "", info.Quadkey)

	status, data = do(t, app, http.MethodGet, "/quadkey/0320100322", "")
	require.Equal(t, http.StatusOK, status)
	info = TileInfo{}
	require.Nil(t, json.Unmarshal(data, &info))
	assert.Equal(t, 10, info.Z)
	assert.Equal(t, 292, info.X)
	assert.Equal(t, 391, info.Y)

	status, _ = do(t, app, http.MethodGet, "/tile/1/5/0", "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, app, http.MethodGet, "/tile/a/0/0", "")
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = do(t, app, http.MethodGet, "/quadkey/04", "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestBboxInfo(t *testing.T) {
	app := New(DefaultConfig(), nil)

	status, data := do(t, app, http.MethodGet, "/bbox?bbox=1,1,2,2", "")
	require.Equal(t, http.StatusOK, status, string(data))
	var info TileInfo
	require.Nil(t, json.Unmarshal(data, &info))
	want := tileutils.BboxToTile(orb.Bound{Min: orb.Point{1, 1}, Max: orb.Point{2, 2}})
	assert.Equal(t, want.Z, info.Z)
	assert.Equal(t, want.X, info.X)
	assert.Equal(t, want.Y, info.Y)
	assert.LessOrEqual(t, info.Bbox[0], 1.0)
	assert.LessOrEqual(t, info.Bbox[1], 1.0)
	assert.GreaterOrEqual(t, info.Bbox[2], 2.0)
	assert.GreaterOrEqual(t, info.Bbox[3], 2.0)

	// straddles the equator and the prime meridian
	status, data = do(t, app, http.MethodGet, "/bbox?bbox=-1,-1,1,1", "")
	require.Equal(t, http.StatusOK, status)
	info = TileInfo{}
	require.Nil(t, json.Unmarshal(data, &info))
	assert.Equal(t, 0, info.Z)

	for _, q := range []string{"", "1,2,3", "a,1,2,2", "2,2,1,1"} {
		status, _ = do(t, app, http.MethodGet, "/bbox?bbox="+q, "")
		assert.Equal(t, http.StatusBadRequest, status, q)
	}
}

func TestMetrics(t *testing.T) {
	app := New(DefaultConfig(), nil)
	status, _ := do(t, app, http.MethodPost, "/cover?zoom=3", pointBody)
	require.Equal(t, http.StatusOK, status)

	status, data := do(t, app, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), "tilecover_requests_total")
	assert.Contains(t, string(data), "tilecover_request_duration_ms")
}
