package objstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// MemoryStore is an in-process Store used by tests and bucket-less
// local runs. ETags are content hashes, so replacing an object under
// the same key invalidates conditional reads the way S3 does.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

type memObject struct {
	data        []byte
	etag        string
	contentType string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memObject)}
}

func (m *MemoryStore) Put(key string, data []byte, contentType string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sum := sha256.Sum256(data)
	m.objects[key] = memObject{
		data:        data,
		etag:        `"` + hex.EncodeToString(sum[:])[:16] + `"`,
		contentType: contentType,
	}
}

func (m *MemoryStore) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
}

func (m *MemoryStore) Get(ctx context.Context, key string, opts *GetOptions) (*Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	body := obj.data
	if opts != nil {
		if opts.IfMatch != "" && opts.IfMatch != obj.etag {
			return nil, ErrPreconditionFailed
		}
		if opts.Offset > 0 || opts.Length > 0 {
			if opts.Offset >= int64(len(obj.data)) {
				return nil, ErrNotFound
			}
			end := int64(len(obj.data))
			if opts.Length > 0 && opts.Offset+opts.Length < end {
				end = opts.Offset + opts.Length
			}
			body = obj.data[opts.Offset:end]
		}
	}

	out := make([]byte, len(body))
	copy(out, body)
	return &Object{
		Body:        out,
		ETag:        obj.etag,
		ContentType: obj.contentType,
		Size:        int64(len(out)),
	}, nil
}
