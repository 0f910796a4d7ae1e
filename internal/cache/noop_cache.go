package cache

type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(key string) (*Entry, bool) {
	return nil, false
}

func (c *NoopCache) Set(key string, entry *Entry) {
}

func (c *NoopCache) Clear() {
}
