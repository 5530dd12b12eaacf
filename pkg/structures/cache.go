package structures

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultCacheSize is the number of decoded documents kept in memory
	DefaultCacheSize = 1024
	// DefaultCacheTTL bounds how long a decoded document is reused
	DefaultCacheTTL = 10 * time.Minute
)

// DocumentCache keeps decoded documents between parse attempts.
//
// The loader retries unresolved documents on every pass, and the watch
// command reloads whole trees repeatedly. Entries are keyed by path, size and
// modification time so an edited file is decoded again. A nil *DocumentCache
// is valid and caches nothing.
type DocumentCache struct {
	cache  *lru.LRU[string, any]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewDocumentCache creates a cache holding up to size documents for ttl
func NewDocumentCache(size int, ttl time.Duration) *DocumentCache {
	if size < 1 {
		size = DefaultCacheSize
	}
	return &DocumentCache{
		cache: lru.NewLRU[string, any](size, nil, ttl),
	}
}

// Stats returns the number of cache hits and misses so far
func (c *DocumentCache) Stats() (hits, misses int64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached documents
func (c *DocumentCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// Purge drops every cached document
func (c *DocumentCache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}

func (c *DocumentCache) get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.cache.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

func (c *DocumentCache) add(key string, v any) {
	if c == nil {
		return
	}
	c.cache.Add(key, v)
}

func cacheKey(kind, path string, info os.FileInfo) string {
	return kind + "\x00" + path + "\x00" +
		strconv.FormatInt(info.Size(), 10) + "\x00" +
		strconv.FormatInt(info.ModTime().UnixNano(), 10)
}

// decodeDocument reads a single YAML document into T, going through the cache.
// Unknown fields are rejected.
func decodeDocument[T any](c *DocumentCache, kind, path string) (T, error) {
	var zero T

	info, err := os.Stat(path)
	if err != nil {
		return zero, fmt.Errorf("failed to read document: %w", err)
	}
	if info.IsDir() {
		return zero, fmt.Errorf("failed to read document: %s is a directory", path)
	}

	key := cacheKey(kind, path, info)
	if v, ok := c.get(key); ok {
		if doc, ok := v.(T); ok {
			return doc, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("failed to read document: %w", err)
	}

	var doc T
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return zero, &DocumentError{
				Document: path,
				Errors:   []ValidationError{{Field: "document", Message: "document is empty"}},
			}
		}
		return zero, fmt.Errorf("failed to parse document %s: %w", path, err)
	}

	c.add(key, doc)
	return doc, nil
}
