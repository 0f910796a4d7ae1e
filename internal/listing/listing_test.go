package listing

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "worlds.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestListEmpty(t *testing.T) {
	s := openTestStore(t)

	out, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, out)

	// An empty mapping must serialize as {}.
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestPutAndList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	updated := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx, "midgard", Record{
		DisplayName:   "Midgard",
		MapDescriptor: json.RawMessage(`{"style":"dark"}`),
		LayerKeys:     json.RawMessage(`["roads","water"]`),
		LastUpdated:   updated,
	}))
	require.NoError(t, s.Put(ctx, "asgard", Record{
		DisplayName:   "Asgard",
		MapDescriptor: json.RawMessage(`{}`),
		LayerKeys:     json.RawMessage(`[]`),
		LastUpdated:   updated,
	}))

	out, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Midgard", out["midgard"].DisplayName)
	assert.JSONEq(t, `{"style":"dark"}`, string(out["midgard"].MapDescriptor))
	assert.Equal(t, updated, out["midgard"].LastUpdated)
}

func TestPutUpsertsExistingWorld(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := Record{DisplayName: "Old", MapDescriptor: json.RawMessage(`{}`), LayerKeys: json.RawMessage(`[]`)}
	require.NoError(t, s.Put(ctx, "midgard", rec))

	rec.DisplayName = "New"
	require.NoError(t, s.Put(ctx, "midgard", rec))

	out, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "New", out["midgard"].DisplayName)
}

func TestListMalformedRowFailsWholeRequest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "good", Record{
		DisplayName:   "Good",
		MapDescriptor: json.RawMessage(`{}`),
		LayerKeys:     json.RawMessage(`[]`),
	}))

	// Corrupt a row behind the Store's back.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO worlds (world_name, display_name, map_descriptor, layer_keys, last_updated)
		VALUES ('bad', 'Bad', '{not json', '[]', 0)`)
	require.NoError(t, err)

	_, err = s.List(ctx)
	var malformed *MalformedRecordError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "bad", malformed.World)
	assert.Equal(t, "map_descriptor", malformed.Field)
}

func TestPutRequiresWorldName(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Put(context.Background(), "  ", Record{}))
}
