// Package archive exposes tile archives to the gateway. The container
// format itself (header layout, tile index, directory encoding) is
// handled by the go-pmtiles primitives; this package wraps them behind
// a small Reader interface plus the per-request tile validation.
package archive

import (
	"context"

	"github.com/protomaps/go-pmtiles/pmtiles"
)

// TileCoord identifies one tile within an archive.
type TileCoord struct {
	Z uint8
	X uint32
	Y uint32
}

// Reader is one archive. GetZxy reports found=false for a coordinate
// the archive simply has no tile for, which is not an error.
type Reader interface {
	GetHeader(ctx context.Context) (pmtiles.HeaderV3, error)
	GetTileJSON(ctx context.Context, baseURL string) ([]byte, error)
	GetZxy(ctx context.Context, coord TileCoord) (data []byte, found bool, err error)
}
