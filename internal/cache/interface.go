package cache

import "net/http"

// Entry is one materialized response stored under its canonical
// request URL (path plus query). Stored entries carry no CORS headers;
// those are applied fresh on every serve so one stored copy stays
// valid for all origins.
type Entry struct {
	Status int
	Header http.Header
	Body   []byte
}

// Clone returns a copy whose headers are safe to mutate (serving adds
// per-origin headers).
func (e *Entry) Clone() *Entry {
	header := make(http.Header, len(e.Header))
	for k, v := range e.Header {
		header[k] = append([]string(nil), v...)
	}
	return &Entry{Status: e.Status, Header: header, Body: e.Body}
}

type Cache interface {
	Get(key string) (*Entry, bool)
	Set(key string, entry *Entry)
	Clear()
}
