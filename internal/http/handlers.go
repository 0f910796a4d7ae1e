package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"tilegate/internal/archive"
	"tilegate/internal/cache"
	"tilegate/internal/config"
	"tilegate/internal/fonts"
	"tilegate/internal/listing"
	"tilegate/internal/objstore"
	"tilegate/internal/source"
)

// ArchiveResolver hands out a Reader per archive name.
type ArchiveResolver interface {
	Reader(name string) archive.Reader
}

// Handlers is the top-level request pipeline: edge-cache lookup, then
// routing, then an asynchronous cache write. The stored entry is
// CORS-free and canonical; CORS headers are applied per serve.
type Handlers struct {
	config   *config.Config
	logger   *zap.Logger
	cache    cache.Cache
	archives ArchiveResolver
	fonts    *fonts.Resolver
	listings *listing.Store
	store    objstore.Store

	group  singleflight.Group
	writes sync.WaitGroup
}

func New(cfg *config.Config, logger *zap.Logger, edgeCache cache.Cache, archives ArchiveResolver,
	fontResolver *fonts.Resolver, listings *listing.Store, store objstore.Store) *Handlers {
	return &Handlers{
		config:   cfg,
		logger:   logger,
		cache:    edgeCache,
		archives: archives,
		fonts:    fontResolver,
		listings: listings,
		store:    store,
	}
}

func (h *Handlers) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	origin := h.allowOrigin(r)

	if r.Method == http.MethodOptions {
		h.preflight(w, origin)
		return
	}

	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}

	if entry, ok := h.cache.Get(key); ok {
		h.serve(w, r, entry, origin)
		return
	}

	// Identical concurrent misses share one materialization.
	v, err, _ := h.group.Do(key, func() (interface{}, error) {
		return h.materialize(r)
	})
	if err != nil {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		h.serve(w, r, &cache.Entry{
			Status: http.StatusInternalServerError,
			Header: http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
			Body:   []byte("Internal Server Error"),
		}, origin)
		return
	}
	entry := v.(*cache.Entry)

	if cacheable(entry.Status) {
		h.writes.Add(1)
		go func() {
			defer h.writes.Done()
			h.cache.Set(key, entry)
		}()
	}

	h.serve(w, r, entry, origin)
}

// Wait blocks until pending edge-cache writes finish. Called during
// shutdown so in-flight writes are not abandoned mid-update.
func (h *Handlers) Wait() {
	h.writes.Wait()
}

// materialize routes a cache miss. Failures with a defined HTTP
// mapping become entries here; anything else propagates to ServeHTTP's
// generic error path and is never cached.
func (h *Handlers) materialize(r *http.Request) (*cache.Entry, error) {
	ctx := r.Context()
	path := r.URL.Path

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return h.textEntry(http.StatusMethodNotAllowed, "Method Not Allowed"), nil
	}
	if path == "/list" {
		return h.handleList(ctx)
	}
	switch {
	case strings.HasPrefix(path, "/fonts/"):
		return h.handleFont(ctx, strings.TrimPrefix(path, "/fonts/"))
	case strings.HasPrefix(path, "/styles/"):
		return h.handleStyle(ctx, path)
	}
	return h.handleTile(ctx, r)
}

func (h *Handlers) handleList(ctx context.Context) (*cache.Entry, error) {
	records, err := h.listings.List(ctx)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	return h.dataEntry(http.StatusOK, "application/json", body), nil
}

func (h *Handlers) handleFont(ctx context.Context, path string) (*cache.Entry, error) {
	data, err := h.fonts.Resolve(ctx, path)
	if errors.Is(err, objstore.ErrNotFound) {
		return h.textEntry(http.StatusNotFound, "Not Found"), nil
	}
	if err != nil {
		return nil, err
	}
	return h.dataEntry(http.StatusOK, "application/x-protobuf", data), nil
}

func (h *Handlers) handleStyle(ctx context.Context, path string) (*cache.Entry, error) {
	obj, err := h.store.Get(ctx, strings.TrimPrefix(path, "/"), nil)
	if errors.Is(err, objstore.ErrNotFound) {
		return h.textEntry(http.StatusNotFound, "Not Found"), nil
	}
	if err != nil {
		return nil, err
	}
	return h.dataEntry(http.StatusOK, styleContentType(path), obj.Body), nil
}

func (h *Handlers) handleTile(ctx context.Context, r *http.Request) (*cache.Entry, error) {
	if req, ok := parseTilePath(r.URL.Path); ok {
		return h.handleTileData(ctx, req)
	}
	if name, ok := parseMetadataPath(r.URL.Path); ok {
		return h.handleTileJSON(ctx, r, name)
	}
	return h.textEntry(http.StatusNotFound, "Invalid URL"), nil
}

func (h *Handlers) handleTileData(ctx context.Context, req *tileRequest) (*cache.Entry, error) {
	reader := h.archives.Reader(req.name)

	header, err := reader.GetHeader(ctx)
	if errors.Is(err, source.ErrNotFound) {
		return h.textEntry(http.StatusNotFound, "Archive not found"), nil
	}
	if err != nil {
		return nil, err
	}

	// Validation runs before the data path so a rejected request never
	// costs a tile read.
	if err := archive.ValidateTile(header, req.coord, req.ext, h.config.LegacyPbf); err != nil {
		var mismatch *archive.ExtensionMismatchError
		switch {
		case errors.Is(err, archive.ErrOutOfRange):
			return h.emptyEntry(http.StatusNotFound), nil
		case errors.As(err, &mismatch):
			return h.textEntry(http.StatusBadRequest, mismatch.Error()), nil
		}
		return nil, err
	}

	data, found, err := reader.GetZxy(ctx, req.coord)
	if errors.Is(err, source.ErrNotFound) {
		return h.textEntry(http.StatusNotFound, "Archive not found"), nil
	}
	if err != nil {
		return nil, err
	}
	if !found {
		return h.emptyEntry(http.StatusNoContent), nil
	}
	return h.dataEntry(http.StatusOK, archive.ContentType(header.TileType), data), nil
}

func (h *Handlers) handleTileJSON(ctx context.Context, r *http.Request, name string) (*cache.Entry, error) {
	host := h.config.PublicHostname
	if host == "" {
		host = r.Host
	}

	data, err := h.archives.Reader(name).GetTileJSON(ctx, "https://"+host)
	if errors.Is(err, source.ErrNotFound) {
		return h.textEntry(http.StatusNotFound, "Archive not found"), nil
	}
	if err != nil {
		return nil, err
	}
	return h.dataEntry(http.StatusOK, "application/json", data), nil
}

// serve writes an entry plus the per-request CORS headers. Vary: Origin
// is always set so a shared cache upstream never hands one origin's
// CORS header to another.
func (h *Handlers) serve(w http.ResponseWriter, r *http.Request, entry *cache.Entry, origin string) {
	entry = entry.Clone()
	header := w.Header()
	for k, v := range entry.Header {
		header[k] = v
	}
	header.Add("Vary", "Origin")
	if origin != "" {
		header.Set("Access-Control-Allow-Origin", origin)
	}
	w.WriteHeader(entry.Status)
	if r.Method != http.MethodHead && len(entry.Body) > 0 {
		w.Write(entry.Body)
	}
}

func (h *Handlers) preflight(w http.ResponseWriter, origin string) {
	header := w.Header()
	header.Add("Vary", "Origin")
	if origin != "" {
		header.Set("Access-Control-Allow-Origin", origin)
		header.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		header.Set("Access-Control-Allow-Headers", "Content-Type")
		header.Set("Access-Control-Max-Age", "86400")
	}
	w.WriteHeader(http.StatusNoContent)
}

// allowOrigin echoes the request origin when the allow-list matches it
// or contains the wildcard. No Origin header means no CORS headers.
func (h *Handlers) allowOrigin(r *http.Request) string {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return ""
	}
	for _, allowed := range h.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return origin
		}
	}
	return ""
}

func (h *Handlers) textEntry(status int, msg string) *cache.Entry {
	return &cache.Entry{
		Status: status,
		Header: http.Header{
			"Content-Type":  []string{"text/plain; charset=utf-8"},
			"Cache-Control": []string{h.config.CacheControl},
		},
		Body: []byte(msg),
	}
}

func (h *Handlers) dataEntry(status int, contentType string, body []byte) *cache.Entry {
	return &cache.Entry{
		Status: status,
		Header: http.Header{
			"Content-Type":  []string{contentType},
			"Cache-Control": []string{h.config.CacheControl},
		},
		Body: body,
	}
}

func (h *Handlers) emptyEntry(status int) *cache.Entry {
	return &cache.Entry{
		Status: status,
		Header: http.Header{"Cache-Control": []string{h.config.CacheControl}},
	}
}

// cacheable reports whether a materialized response may populate the
// edge cache: successes and the well-defined 4xx family only. The
// generic failure path never gets here.
func cacheable(status int) bool {
	switch status {
	case http.StatusOK, http.StatusNoContent,
		http.StatusBadRequest, http.StatusNotFound, http.StatusMethodNotAllowed:
		return true
	}
	return false
}

func styleContentType(path string) string {
	switch {
	case strings.HasSuffix(path, ".png"):
		return "image/png"
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	}
	return "application/octet-stream"
}
