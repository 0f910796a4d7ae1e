package archive

import (
	"encoding/json"
	"fmt"

	"github.com/protomaps/go-pmtiles/pmtiles"
)

// tileJSON renders a TileJSON 3.0.0 document for an archive. Descriptive
// fields come from the archive's embedded metadata; geometry and zoom
// bounds come from the header.
func tileJSON(h pmtiles.HeaderV3, metadata []byte, baseURL, name string) ([]byte, error) {
	var meta map[string]interface{}
	if err := json.Unmarshal(metadata, &meta); err != nil {
		return nil, fmt.Errorf("archive %q: parse metadata: %w", name, err)
	}

	doc := map[string]interface{}{
		"tilejson": "3.0.0",
		"scheme":   "xyz",
		"tiles":    []string{baseURL + "/" + name + "/{z}/{x}/{y}." + CanonicalExt(h.TileType)},
		"minzoom":  h.MinZoom,
		"maxzoom":  h.MaxZoom,
		"bounds": []float64{
			float64(h.MinLonE7) / 1e7,
			float64(h.MinLatE7) / 1e7,
			float64(h.MaxLonE7) / 1e7,
			float64(h.MaxLatE7) / 1e7,
		},
		"center": []float64{
			float64(h.CenterLonE7) / 1e7,
			float64(h.CenterLatE7) / 1e7,
			float64(h.CenterZoom),
		},
	}

	for _, key := range []string{"name", "description", "attribution", "version", "vector_layers"} {
		if v, ok := meta[key]; ok {
			doc[key] = v
		}
	}

	return json.Marshal(doc)
}
