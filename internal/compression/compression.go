// Package compression maps an archive compression tag to a byte
// transform for tile data and archive-internal structures.
package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/protomaps/go-pmtiles/pmtiles"
)

// ErrUnsupported means the archive declares a codec this gateway
// cannot decode. Fatal for the request; never passed through silently.
var ErrUnsupported = errors.New("compression: unsupported codec")

func Decompress(data []byte, c pmtiles.Compression) ([]byte, error) {
	switch c {
	case pmtiles.NoCompression, pmtiles.UnknownCompression:
		return data, nil
	case pmtiles.Gzip:
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("compression: open gzip stream: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("compression: inflate: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: tag %d", ErrUnsupported, c)
	}
}
