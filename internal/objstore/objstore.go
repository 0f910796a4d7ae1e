// Package objstore is the object-store boundary of the gateway. Archive
// bytes, fonts and style assets all live behind the Store interface; the
// production implementation talks to S3, tests use the in-memory store.
package objstore

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound means the object does not exist at all.
	ErrNotFound = errors.New("objstore: object not found")

	// ErrPreconditionFailed means the object exists but the IfMatch
	// condition was not satisfied. Callers holding state derived from
	// the old ETag must drop it and re-fetch unconditionally.
	ErrPreconditionFailed = errors.New("objstore: etag precondition failed")
)

// GetOptions narrows a Get to a byte range and/or an ETag condition.
// Length 0 means the whole object from Offset onward.
type GetOptions struct {
	Offset  int64
	Length  int64
	IfMatch string
}

type Object struct {
	Body         []byte
	ETag         string
	ContentType  string
	CacheControl string
	Expires      time.Time
	Size         int64
}

type Store interface {
	Get(ctx context.Context, key string, opts *GetOptions) (*Object, error)
}
