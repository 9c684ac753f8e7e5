package ppm

import (
	"sync"

	"github.com/ironsheep/fern-ppm/internal/raster"
)

// Cache provides thread-safe caching of decoded rasters to avoid redundant
// disk reads.
//
// Rasters are keyed by the exact path string passed to Load. Different paths
// to the same file result in separate entries. Entries stay in memory until
// Evict or Clear removes them; callers that rewrite a file must Evict it so
// the next Load sees the new contents.
//
// Cached rasters are shared between callers and must be treated as
// read-only.
type Cache struct {
	mu      sync.RWMutex
	rasters map[string]*raster.Raster
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		rasters: make(map[string]*raster.Raster),
	}
}

// Load returns the cached raster for path, decoding the file on a miss.
func (c *Cache) Load(path string) (*raster.Raster, error) {
	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	r, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rasters[path] = r
	c.mu.Unlock()

	return r, nil
}

// Evict removes path from the cache. Unknown paths are ignored.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*raster.Raster)
	c.mu.Unlock()
}
