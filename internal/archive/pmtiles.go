package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/protomaps/go-pmtiles/pmtiles"

	"tilegate/internal/compression"
	"tilegate/internal/source"
)

const (
	// headerPrefetch covers the fixed header plus the root directory,
	// which the container format keeps inside the first 16 KiB.
	headerPrefetch = 16384

	// maxDirDepth bounds the root-to-leaf directory walk.
	maxDirDepth = 3
)

// pmtilesReader reads one archive through the range source. The header
// and root directory are resolved once and reused; every later range
// read is conditional on the ETag seen at resolve time, so a swapped
// archive object is detected instead of mixing bytes from two versions.
type pmtilesReader struct {
	name string
	src  *source.Adapter

	mu    sync.Mutex
	state *readerState
}

type readerState struct {
	etag   string
	header pmtiles.HeaderV3
	root   []pmtiles.EntryV3
}

func NewReader(name string, src *source.Adapter) Reader {
	return &pmtilesReader{name: name, src: src}
}

func (r *pmtilesReader) GetHeader(ctx context.Context) (pmtiles.HeaderV3, error) {
	st, err := r.snapshot(ctx)
	if err != nil {
		return pmtiles.HeaderV3{}, err
	}
	return st.header, nil
}

func (r *pmtilesReader) GetZxy(ctx context.Context, coord TileCoord) ([]byte, bool, error) {
	var data []byte
	var found bool
	err := r.withState(ctx, func(st *readerState) error {
		var err error
		data, found, err = r.getZxy(ctx, st, coord)
		return err
	})
	return data, found, err
}

func (r *pmtilesReader) GetTileJSON(ctx context.Context, baseURL string) ([]byte, error) {
	var out []byte
	err := r.withState(ctx, func(st *readerState) error {
		metadata, err := r.fetchMetadata(ctx, st)
		if err != nil {
			return err
		}
		out, err = tileJSON(st.header, metadata, baseURL, r.name)
		return err
	})
	return out, err
}

// withState runs fn against resolved archive state, re-resolving once
// if a conditional read reports the archive changed underneath us.
func (r *pmtilesReader) withState(ctx context.Context, fn func(*readerState) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		st, err := r.snapshot(ctx)
		if err != nil {
			return err
		}
		err = fn(st)
		if errors.Is(err, source.ErrConditionFailed) {
			r.invalidate(st)
			continue
		}
		return err
	}
	return fmt.Errorf("archive %q changed while reading", r.name)
}

func (r *pmtilesReader) snapshot(ctx context.Context) (*readerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != nil {
		return r.state, nil
	}

	res, err := r.src.FetchRange(ctx, r.name, 0, headerPrefetch, "")
	if err != nil {
		return nil, err
	}
	if len(res.Data) < pmtiles.HeaderV3LenBytes {
		return nil, fmt.Errorf("archive %q: truncated header (%d bytes)", r.name, len(res.Data))
	}

	header, err := pmtiles.DeserializeHeader(res.Data[:pmtiles.HeaderV3LenBytes])
	if err != nil {
		return nil, fmt.Errorf("archive %q: parse header: %w", r.name, err)
	}

	// Bounds-check each side separately; summing first can wrap on a
	// corrupt header and slip past a single comparison.
	if header.RootOffset > uint64(len(res.Data)) ||
		header.RootLength > uint64(len(res.Data))-header.RootOffset {
		return nil, fmt.Errorf("archive %q: root directory outside prefetch window", r.name)
	}
	rootBytes := res.Data[header.RootOffset : header.RootOffset+header.RootLength]

	// Directory blocks carry their own framing; DeserializeEntries
	// undoes it itself.
	r.state = &readerState{
		etag:   res.ETag,
		header: header,
		root:   pmtiles.DeserializeEntries(bytes.NewBuffer(rootBytes), header.InternalCompression),
	}
	return r.state, nil
}

func (r *pmtilesReader) invalidate(st *readerState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == st {
		r.state = nil
	}
}

func (r *pmtilesReader) getZxy(ctx context.Context, st *readerState, coord TileCoord) ([]byte, bool, error) {
	id := pmtiles.ZxyToID(coord.Z, coord.X, coord.Y)
	entries := st.root

	for depth := 0; depth < maxDirDepth; depth++ {
		entry, ok := pmtiles.FindTile(entries, id)
		if !ok {
			return nil, false, nil
		}

		if entry.RunLength > 0 {
			res, err := r.src.FetchRange(ctx, r.name,
				int64(st.header.TileDataOffset+entry.Offset), int64(entry.Length), st.etag)
			if err != nil {
				return nil, false, err
			}
			data, err := compression.Decompress(res.Data, st.header.TileCompression)
			if err != nil {
				return nil, false, err
			}
			return data, true, nil
		}

		// RunLength 0 points at a leaf directory.
		res, err := r.src.FetchRange(ctx, r.name,
			int64(st.header.LeafDirectoryOffset+entry.Offset), int64(entry.Length), st.etag)
		if err != nil {
			return nil, false, err
		}
		entries = pmtiles.DeserializeEntries(bytes.NewBuffer(res.Data), st.header.InternalCompression)
	}

	return nil, false, fmt.Errorf("archive %q: directory depth exceeds %d", r.name, maxDirDepth)
}

func (r *pmtilesReader) fetchMetadata(ctx context.Context, st *readerState) ([]byte, error) {
	if st.header.MetadataLength == 0 {
		return []byte("{}"), nil
	}
	res, err := r.src.FetchRange(ctx, r.name,
		int64(st.header.MetadataOffset), int64(st.header.MetadataLength), st.etag)
	if err != nil {
		return nil, err
	}
	return compression.Decompress(res.Data, st.header.InternalCompression)
}
