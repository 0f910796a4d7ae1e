// Package source adapts object-store range reads into the contract the
// archive reader expects: one call yields exactly one of bytes, an
// ETag-condition failure, or a not-found.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tilegate/internal/objstore"
)

var (
	// ErrNotFound means the archive object is absent. Fatal for the
	// request; maps to a 404 upstream.
	ErrNotFound = errors.New("source: archive not found")

	// ErrConditionFailed means the archive object exists but the ETag
	// the caller supplied is stale. The caller must discard any state
	// derived under that ETag and re-resolve without a condition.
	ErrConditionFailed = errors.New("source: etag no longer matches")
)

type Result struct {
	Data         []byte
	ETag         string
	CacheControl string
	Expires      time.Time
}

// Adapter turns (archive, offset, length, etag) into a Result. It does
// no retrying; retry policy belongs to the caller, which the two error
// kinds above exist to support.
type Adapter struct {
	store  objstore.Store
	prefix string
}

func New(store objstore.Store, prefix string) *Adapter {
	return &Adapter{store: store, prefix: prefix}
}

// Key maps an archive name to its object key.
func (a *Adapter) Key(archive string) string {
	if a.prefix != "" {
		return a.prefix + "/" + archive + ".pmtiles"
	}
	return archive + ".pmtiles"
}

func (a *Adapter) FetchRange(ctx context.Context, archive string, offset, length int64, etag string) (*Result, error) {
	if offset < 0 || length <= 0 {
		return nil, fmt.Errorf("source: invalid range %d+%d", offset, length)
	}

	obj, err := a.store.Get(ctx, a.Key(archive), &objstore.GetOptions{
		Offset:  offset,
		Length:  length,
		IfMatch: etag,
	})
	if err != nil {
		switch {
		case errors.Is(err, objstore.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, objstore.ErrPreconditionFailed):
			return nil, ErrConditionFailed
		}
		return nil, err
	}

	return &Result{
		Data:         obj.Body,
		ETag:         obj.ETag,
		CacheControl: obj.CacheControl,
		Expires:      obj.Expires,
	}, nil
}
