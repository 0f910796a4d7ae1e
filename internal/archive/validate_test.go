package archive

import (
	"testing"

	"github.com/protomaps/go-pmtiles/pmtiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(t pmtiles.TileType, minZoom, maxZoom uint8) pmtiles.HeaderV3 {
	return pmtiles.HeaderV3{TileType: t, MinZoom: minZoom, MaxZoom: maxZoom}
}

func TestValidateTileZoomBounds(t *testing.T) {
	h := header(pmtiles.Mvt, 2, 10)

	assert.ErrorIs(t, ValidateTile(h, TileCoord{Z: 1}, "mvt", false), ErrOutOfRange)
	assert.ErrorIs(t, ValidateTile(h, TileCoord{Z: 11}, "mvt", false), ErrOutOfRange)
	assert.NoError(t, ValidateTile(h, TileCoord{Z: 2}, "mvt", false))
	assert.NoError(t, ValidateTile(h, TileCoord{Z: 10}, "mvt", false))
}

func TestValidateTileExtensionTable(t *testing.T) {
	cases := []struct {
		tileType pmtiles.TileType
		ext      string
	}{
		{pmtiles.Mvt, "mvt"},
		{pmtiles.Png, "png"},
		{pmtiles.Jpeg, "jpg"},
		{pmtiles.Webp, "webp"},
		{pmtiles.Avif, "avif"},
	}

	exts := []string{"mvt", "png", "jpg", "webp", "avif", "pbf", "gif"}

	for _, c := range cases {
		h := header(c.tileType, 0, 14)
		for _, ext := range exts {
			err := ValidateTile(h, TileCoord{Z: 5}, ext, false)
			if ext == c.ext {
				assert.NoError(t, err, "type %d ext %s", c.tileType, ext)
			} else {
				var mismatch *ExtensionMismatchError
				require.ErrorAs(t, err, &mismatch, "type %d ext %s", c.tileType, ext)
				assert.Equal(t, ext, mismatch.Requested)
				assert.Equal(t, c.ext, mismatch.Actual)
			}
		}
	}
}

func TestValidateTileLegacyPbf(t *testing.T) {
	h := header(pmtiles.Mvt, 0, 14)

	assert.NoError(t, ValidateTile(h, TileCoord{Z: 5}, "pbf", true))

	var mismatch *ExtensionMismatchError
	assert.ErrorAs(t, ValidateTile(h, TileCoord{Z: 5}, "pbf", false), &mismatch)

	// The exception is for vector archives only.
	assert.ErrorAs(t, ValidateTile(header(pmtiles.Png, 0, 14), TileCoord{Z: 5}, "pbf", true), &mismatch)
}

func TestExtensionMismatchMessageNamesBothSides(t *testing.T) {
	err := ValidateTile(header(pmtiles.Mvt, 0, 14), TileCoord{Z: 5}, "png", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "png")
	assert.Contains(t, err.Error(), "mvt")
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/x-protobuf", ContentType(pmtiles.Mvt))
	assert.Equal(t, "image/png", ContentType(pmtiles.Png))
	assert.Equal(t, "image/jpeg", ContentType(pmtiles.Jpeg))
	assert.Equal(t, "image/webp", ContentType(pmtiles.Webp))
	assert.Equal(t, "image/avif", ContentType(pmtiles.Avif))
	assert.Equal(t, "application/octet-stream", ContentType(pmtiles.UnknownTileType))
}
