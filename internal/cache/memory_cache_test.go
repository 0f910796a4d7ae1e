package cache

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textEntry(body string) *Entry {
	return &Entry{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte(body),
	}
}

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(1024, time.Hour)

	_, ok := c.Get("/a")
	assert.False(t, ok)

	c.Set("/a", textEntry("hello"))
	got, ok := c.Get("/a")
	require.True(t, ok)
	assert.Equal(t, []byte("hello"), got.Body)
	assert.Equal(t, http.StatusOK, got.Status)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	// Room for two 4-byte bodies, not three.
	c := NewMemoryCache(8, time.Hour)

	c.Set("/a", textEntry("aaaa"))
	c.Set("/b", textEntry("bbbb"))

	// Touch /a so /b becomes the eviction candidate.
	_, ok := c.Get("/a")
	require.True(t, ok)

	c.Set("/c", textEntry("cccc"))

	_, ok = c.Get("/a")
	assert.True(t, ok)
	_, ok = c.Get("/b")
	assert.False(t, ok)
	_, ok = c.Get("/c")
	assert.True(t, ok)
}

func TestMemoryCacheTTLExpiry(t *testing.T) {
	c := NewMemoryCache(1024, time.Minute)
	current := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return current }

	c.Set("/a", textEntry("hello"))
	_, ok := c.Get("/a")
	require.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = c.Get("/a")
	assert.False(t, ok)
}

func TestMemoryCacheReplaceAdjustsBytes(t *testing.T) {
	c := NewMemoryCache(10, time.Hour)

	c.Set("/a", textEntry("aaaaaaaa"))
	c.Set("/a", textEntry("aa"))
	c.Set("/b", textEntry("bbbbbbbb"))

	_, ok := c.Get("/a")
	assert.True(t, ok)
	_, ok = c.Get("/b")
	assert.True(t, ok)
}

func TestEntryCloneIsolatesHeaders(t *testing.T) {
	orig := textEntry("body")
	clone := orig.Clone()
	clone.Header.Set("Access-Control-Allow-Origin", "https://example.com")

	assert.Empty(t, orig.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, orig.Body, clone.Body)
}
