// Package fonts resolves composite font-family glyph requests against
// the object store.
package fonts

import (
	"context"
	"errors"
	"strings"

	"tilegate/internal/objstore"
)

type Resolver struct {
	store objstore.Store
}

func New(store objstore.Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve takes the decoded path below /fonts/, shaped
// "<family>[,<family>...]/<glyph range>", and returns the glyph data of
// the first family that exists. Listed order is priority order: the
// first family is the primary, the rest are fallbacks, never merges.
func (r *Resolver) Resolve(ctx context.Context, path string) ([]byte, error) {
	segments := strings.SplitN(path, "/", 2)
	if len(segments) != 2 || segments[0] == "" || segments[1] == "" {
		return nil, objstore.ErrNotFound
	}

	for _, family := range strings.Split(segments[0], ",") {
		obj, err := r.store.Get(ctx, "fonts/"+family+"/"+segments[1], nil)
		if err != nil {
			if errors.Is(err, objstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		return obj.Body, nil
	}

	return nil, objstore.ErrNotFound
}
