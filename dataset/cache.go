package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Loader reads a table from a file path
type Loader func(path string) (*Table, error)

// CacheStats reports the cache hit and miss counts
type CacheStats struct {
	Hits    int `json:"hits"`
	Misses  int `json:"misses"`
	Entries int `json:"entries"`
}

// Cache memoizes table loads keyed by file identity: the absolute path, size and modification
// time. A file that changes on disk is loaded again. Callers always receive their own copy.
type Cache struct {
	load Loader

	mutex   sync.RWMutex
	entries map[string]cacheEntry
	hits    int
	misses  int
}

type fileIdentity struct {
	size    int64
	modTime time.Time
}

func (f fileIdentity) Equal(o fileIdentity) bool {
	return f.size == o.size && f.modTime.Equal(o.modTime)
}

type cacheEntry struct {
	identity fileIdentity
	table    *Table
}

// NewCache creates a cache around load. If load is nil the workbook loader with default
// options is used.
func NewCache(load Loader) *Cache {
	if load == nil {
		load = func(path string) (*Table, error) {
			return Load(path, nil)
		}
	}
	return &Cache{
		load:    load,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the table for path, loading it when absent or when the file has changed
func (c *Cache) Get(path string) (*Table, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve %s, %w", path, err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("unable to stat %s, %w", absPath, err)
	}
	id := fileIdentity{size: info.Size(), modTime: info.ModTime()}

	c.mutex.RLock()
	entry, found := c.entries[absPath]
	c.mutex.RUnlock()

	if found && entry.identity.Equal(id) {
		c.mutex.Lock()
		c.hits++
		c.mutex.Unlock()
		return entry.table.Clone(), nil
	}

	table, err := c.load(absPath)
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	c.misses++
	c.entries[absPath] = cacheEntry{
		identity: id,
		table:    table,
	}
	c.mutex.Unlock()

	return table.Clone(), nil
}

// Invalidate drops every cached table
func (c *Cache) Invalidate() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Stats returns the hit and miss counts since the cache was created
func (c *Cache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return CacheStats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
}
