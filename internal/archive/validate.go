package archive

import (
	"errors"
	"fmt"

	"github.com/protomaps/go-pmtiles/pmtiles"
)

// ErrOutOfRange means the requested zoom lies outside the archive's
// [MinZoom, MaxZoom]. Maps to a 404 with an empty body.
var ErrOutOfRange = errors.New("archive: zoom out of range")

// ExtensionMismatchError means the requested file extension does not
// match the archive's tile type. Maps to a 400 naming both sides.
type ExtensionMismatchError struct {
	Requested string
	Actual    string
}

func (e *ExtensionMismatchError) Error() string {
	return fmt.Sprintf("bad request: requested .%s but archive has type .%s", e.Requested, e.Actual)
}

// CanonicalExt returns the file extension an archive's tile type is
// served under. Unknown tile types have no extension.
func CanonicalExt(t pmtiles.TileType) string {
	switch t {
	case pmtiles.Mvt:
		return "mvt"
	case pmtiles.Png:
		return "png"
	case pmtiles.Jpeg:
		return "jpg"
	case pmtiles.Webp:
		return "webp"
	case pmtiles.Avif:
		return "avif"
	}
	return ""
}

// ContentType returns the MIME type tiles of the given type are served
// with.
func ContentType(t pmtiles.TileType) string {
	switch t {
	case pmtiles.Mvt:
		return "application/x-protobuf"
	case pmtiles.Png:
		return "image/png"
	case pmtiles.Jpeg:
		return "image/jpeg"
	case pmtiles.Webp:
		return "image/webp"
	case pmtiles.Avif:
		return "image/avif"
	}
	return "application/octet-stream"
}

// ValidateTile decides whether a tile request may proceed to the data
// path. It must run before any tile read so a rejected request never
// costs an object-store round trip.
//
// allowLegacyPbf additionally accepts the ".pbf" extension for vector
// archives. TODO: drop the flag and the exception once the last
// deployed clients requesting .pbf are gone.
func ValidateTile(h pmtiles.HeaderV3, coord TileCoord, ext string, allowLegacyPbf bool) error {
	if coord.Z < h.MinZoom || coord.Z > h.MaxZoom {
		return ErrOutOfRange
	}

	canonical := CanonicalExt(h.TileType)
	if ext == canonical {
		return nil
	}
	if allowLegacyPbf && h.TileType == pmtiles.Mvt && ext == "pbf" {
		return nil
	}
	return &ExtensionMismatchError{Requested: ext, Actual: canonical}
}
