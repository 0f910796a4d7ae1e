package http

import (
	"regexp"
	"strconv"

	"tilegate/internal/archive"
)

var (
	tilePattern     = regexp.MustCompile(`^/([0-9a-zA-Z/!\-_.*'()]+)/(\d+)/(\d+)/(\d+)\.([a-z]+)$`)
	metadataPattern = regexp.MustCompile(`^/([0-9a-zA-Z/!\-_.*'()]+)\.json$`)
)

type tileRequest struct {
	name  string
	coord archive.TileCoord
	ext   string
}

// parseTilePath matches /<archive>/<z>/<x>/<y>.<ext>. Paths that do
// not parse are not errors; the caller falls through to the other
// route shapes.
func parseTilePath(path string) (*tileRequest, bool) {
	m := tilePattern.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}
	z, err := strconv.ParseUint(m[2], 10, 8)
	if err != nil {
		return nil, false
	}
	x, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return nil, false
	}
	y, err := strconv.ParseUint(m[4], 10, 32)
	if err != nil {
		return nil, false
	}
	return &tileRequest{
		name:  m[1],
		coord: archive.TileCoord{Z: uint8(z), X: uint32(x), Y: uint32(y)},
		ext:   m[5],
	}, true
}

// parseMetadataPath matches /<archive>.json, the bare metadata request
// carrying no tile coordinate.
func parseMetadataPath(path string) (string, bool) {
	m := metadataPattern.FindStringSubmatch(path)
	if m == nil {
		return "", false
	}
	return m[1], true
}
