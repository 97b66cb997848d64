package tileutils

import (
	"bytes"
	"sync"

	gziplib "github.com/klauspost/compress/gzip"
)

// export workers gzip every tile, writers are reused between tiles
var gzipWriters = sync.Pool{
	New: func() any {
		// BestCompression is a valid level, NewWriterLevel cannot fail
		w, _ := gziplib.NewWriterLevel(nil, gziplib.BestCompression)
		return w
	},
}

// Gzip compresses tile data, mbtiles stores vector tiles gzipped
func Gzip(data []byte) ([]byte, error) {
	w := gzipWriters.Get().(*gziplib.Writer)
	defer gzipWriters.Put(w)

	buf := bytes.NewBuffer(make([]byte, 0, len(data)/2+64))
	w.Reset(buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsGzipped reports whether data starts with the gzip magic bytes
func IsGzipped(data []byte) bool {
	return len(data) > 2 && data[0] == 0x1f && data[1] == 0x8b
}
