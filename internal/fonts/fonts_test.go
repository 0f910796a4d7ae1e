package fonts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tilegate/internal/objstore"
)

func TestResolvePrimaryHit(t *testing.T) {
	store := objstore.NewMemoryStore()
	store.Put("fonts/Noto Sans Regular/0-255.pbf", []byte("noto glyphs"), "")
	store.Put("fonts/Arial/0-255.pbf", []byte("arial glyphs"), "")

	r := New(store)

	data, err := r.Resolve(context.Background(), "Noto Sans Regular,Arial/0-255.pbf")
	require.NoError(t, err)
	assert.Equal(t, []byte("noto glyphs"), data)
}

func TestResolveFallbackOrder(t *testing.T) {
	store := objstore.NewMemoryStore()
	store.Put("fonts/B/0-255.pbf", []byte("b glyphs"), "")

	r := New(store)

	// A is missing, so the request falls through to B.
	data, err := r.Resolve(context.Background(), "A,B/0-255.pbf")
	require.NoError(t, err)
	assert.Equal(t, []byte("b glyphs"), data)
}

func TestResolveAllMiss(t *testing.T) {
	r := New(objstore.NewMemoryStore())

	_, err := r.Resolve(context.Background(), "A,B/0-255.pbf")
	assert.ErrorIs(t, err, objstore.ErrNotFound)
}

func TestResolveMalformedPath(t *testing.T) {
	r := New(objstore.NewMemoryStore())

	for _, path := range []string{"", "just-a-family", "/0-255.pbf", "Family/"} {
		_, err := r.Resolve(context.Background(), path)
		assert.ErrorIs(t, err, objstore.ErrNotFound, "path %q", path)
	}
}
