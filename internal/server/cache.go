package server

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/ironsheep/image-mosaic/internal/imaging"
	"github.com/ironsheep/image-mosaic/internal/library"
)

// libraryKey identifies a built tile library. The same tile directory built
// into a different thumbnail directory, size or resampler is a different
// library.
type libraryKey struct {
	TileDir   string
	ThumbDir  string
	TileSize  int
	Resampler string
}

// libraryCache keeps built tile libraries for the lifetime of the server, so
// that repeated tool calls neither rescan the tile directory nor decode the
// same thumbnails twice.
type libraryCache struct {
	mu        sync.RWMutex
	libraries map[libraryKey]*library.Library
	logger    log.FieldLogger
}

func newLibraryCache(logger log.FieldLogger) *libraryCache {
	return &libraryCache{
		libraries: make(map[libraryKey]*library.Library),
		logger:    logger,
	}
}

// Load returns the cached library for key, building it on a miss. The second
// result reports whether the library came from the cache.
func (c *libraryCache) Load(key libraryKey) (*library.Library, bool, error) {
	c.mu.RLock()
	lib, ok := c.libraries[key]
	c.mu.RUnlock()
	if ok {
		return lib, true, nil
	}

	resampler, err := imaging.ResamplerByName(key.Resampler)
	if err != nil {
		return nil, false, err
	}
	lib, err = library.Build(key.TileDir, library.BuildOptions{
		ThumbDir:  key.ThumbDir,
		ThumbSize: key.TileSize,
		Resampler: resampler,
		Logger:    c.logger,
	})
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another call may have built the same library meanwhile; keep the first
	// so its decoded tiles are not lost.
	if existing, ok := c.libraries[key]; ok {
		return existing, true, nil
	}
	c.libraries[key] = lib
	return lib, false, nil
}

// Evict removes the library for key.
func (c *libraryCache) Evict(key libraryKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.libraries, key)
}

// Clear removes all libraries.
func (c *libraryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.libraries = make(map[libraryKey]*library.Library)
}

// Len returns the number of cached libraries.
func (c *libraryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.libraries)
}
