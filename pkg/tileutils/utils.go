package tileutils

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/paulmach/orb/encoding/mvt"
)

// DecodeTile unmarshals an MVT tile, gzipped or not
func DecodeTile(data []byte) (mvt.Layers, error) {
	if IsGzipped(data) {
		return mvt.UnmarshalGzipped(data)
	}
	return mvt.Unmarshal(data)
}

// DumpTile writes the layers of an MVT tile as indented JSON
func DumpTile(w io.Writer, data []byte) error {
	layers, err := DecodeTile(data)
	if err != nil {
		return fmt.Errorf("unable to decode tile: %w", err)
	}
	for _, l := range layers {
		jsonBytes, err := json.MarshalIndent(l, "", "    ")
		if err != nil {
			return fmt.Errorf("layer=%s: %w", l.Name, err)
		}
		if _, err := fmt.Fprintln(w, string(jsonBytes)); err != nil {
			return err
		}
	}
	return nil
}

func floatToString(input []float64) []string {
	out := make([]string, len(input))
	for i := range input {
		out[i] = fmt.Sprintf("%f", input[i])
	}
	return out
}
