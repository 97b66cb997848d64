package tileutils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/twpayne/go-mbtiles"
)

const (
	mbTilesInsertRetries = 5
	mbTilesRetryDelay    = 100 * time.Millisecond
)

// TileWriter abstracts how to write out tiles, allowing for different formats and implementations
type TileWriter interface {
	// New prepares the writer for use and returns it along with a function releasing its resources
	New() (TileWriter, func(), error)
	// Write commits a tile with tileData at the Z/X/Y coordinate
	Write(z, x, y int, tileData []byte) error
}

// TileBulkWriter extends the TileWriter interface to include the ability to write out tiles in bulk
type TileBulkWriter interface {
	// BulkWrite commits a slice of tiles
	BulkWrite(data []mbtiles.TileData) error
}

// FileWriter writes tiles out to a directory structure.
// The directories are organized under the Path provided,
// like Path/{z}/{x}/{y}.mvt
type FileWriter struct {
	Path      string
	Extension string // defaults to mvt
}

func (fw *FileWriter) Write(z, x, y int, tileData []byte) error {
	basePath := path.Join(fw.Path, strconv.Itoa(z), strconv.Itoa(x))
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return fmt.Errorf("error making directory for output (%s): %w", basePath, err)
	}
	ext := fw.Extension
	if ext == "" {
		ext = "mvt"
	}
	filename := path.Join(basePath, fmt.Sprintf("%d.%s", y, ext))
	return os.WriteFile(filename, tileData, 0644)
}

func (fw *FileWriter) New() (TileWriter, func(), error) {
	if err := os.MkdirAll(fw.Path, 0755); err != nil {
		return nil, nil, err
	}
	return fw, func() {}, nil
}

// DummyWriter doesn't write any tiles. It logs info about each tile and,
// when Dump is set, writes the decoded tile content to it.
type DummyWriter struct {
	Logger *slog.Logger
	Dump   io.Writer
}

func (dw *DummyWriter) Write(z, x, y int, tileData []byte) error {
	dw.logger().Info("tile", "tile", TileCoords{Z: z, X: x, Y: y}.String(), "bytes", len(tileData))
	if dw.Dump != nil {
		return DumpTile(dw.Dump, tileData)
	}
	return nil
}

func (dw *DummyWriter) New() (TileWriter, func(), error) {
	return dw, func() {}, nil
}

func (dw *DummyWriter) logger() *slog.Logger {
	if dw.Logger == nil {
		return slog.Default()
	}
	return dw.Logger
}

// MbTilesWriter outputs tiles to a mbtiles file.
//
// Parameters:
//   - Filename: the output file to be written
//   - Writer: an instance of mbtiles.Writer to be used when writing the tiles
//   - Logger: where retried writes are reported, slog.Default() if nil
type MbTilesWriter struct {
	Filename string
	Writer   *mbtiles.Writer
	Logger   *slog.Logger
}

func (w *MbTilesWriter) Write(z, x, y int, tileData []byte) error {
	return w.retry(func() error {
		return w.Writer.InsertTile(z, x, y, tileData)
	})
}

func (w *MbTilesWriter) BulkWrite(data []mbtiles.TileData) error {
	return w.retry(func() error {
		return w.Writer.BulkInsertTile(data)
	})
}

func (w *MbTilesWriter) retry(fn func() error) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var err error
	for i := 0; i < mbTilesInsertRetries; i++ {
		if err = fn(); err == nil {
			return nil
		}
		logger.Warn("error during database write, waiting to retry", "attempt", i, "error", err)
		time.Sleep(mbTilesRetryDelay)
	}
	return err
}

func (w *MbTilesWriter) WriteMetadata(name, value string) error {
	return w.Writer.InsertMetadata(name, value)
}

func (w *MbTilesWriter) BulkWriteMetadata(meta MbTilesMetadata) error {
	for name, value := range meta {
		if err := w.WriteMetadata(name, value); err != nil {
			return fmt.Errorf("error writing metadata %s: %w", name, err)
		}
	}
	return nil
}

func (w *MbTilesWriter) New() (TileWriter, func(), error) {
	// sqlite3 relies on you to create the file first
	if err := os.MkdirAll(path.Dir(w.Filename), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.Create(w.Filename)
	if err != nil {
		return nil, nil, err
	}
	f.Close()

	// create a mbtiles writer, which is a wrapper around sqlite3
	writer, err := mbtiles.NewWriter(w.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("error creating writer: %w", err)
	}
	if err := writer.CreateTiles(); err != nil {
		return nil, nil, fmt.Errorf("error creating tiles table: %w", err)
	}
	if err := writer.CreateMetadata(); err != nil {
		return nil, nil, fmt.Errorf("error creating metadata table: %w", err)
	}
	// the index is rebuilt on close, inserts are faster without it
	if err := writer.DeleteTileIndex(); err != nil {
		return nil, nil, fmt.Errorf("error deleting tile index: %w", err)
	}
	if err := writer.SetOptimizations(mbtiles.Optimizations{
		JournalModeMemory: true,
	}); err != nil {
		return nil, nil, fmt.Errorf("error setting optimizations: %w", err)
	}

	w.Writer = writer
	return w,
		func() {
			w.Writer.CreateTileIndex()
			w.Writer.Close()
		},
		nil
}
