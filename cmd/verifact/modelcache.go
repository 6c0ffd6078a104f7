// cmd/verifact/modelcache.go
package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ModelCache persists the last known working model identifier in a single
// JSON file with a short freshness window. The file is overwritten wholesale
// on each successful resolution, never merged.
type ModelCache struct {
	dir   string
	path  string
	mutex sync.Mutex
}

// NewModelCache creates a model cache rooted at dir.
func NewModelCache(dir string) *ModelCache {
	return &ModelCache{
		dir:  dir,
		path: filepath.Join(dir, ModelCacheFile),
	}
}

// Load returns the cached entry when present and fresh. Stale, missing, or
// unreadable files report a miss.
func (c *ModelCache) Load() (ModelCacheEntry, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var entry ModelCacheEntry

	data, err := os.ReadFile(c.path)
	if err != nil {
		return entry, false
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return ModelCacheEntry{}, false
	}
	if entry.ModelName == "" || entry.Timestamp.IsZero() {
		return ModelCacheEntry{}, false
	}
	if time.Since(entry.Timestamp) >= ModelCacheTTL {
		return ModelCacheEntry{}, false
	}
	return entry, true
}

// Save overwrites the cache with the given model, atomically.
func (c *ModelCache) Save(modelName string, availableModels []string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		Logger().Warning("Failed to create cache directory: %v", err)
		return
	}

	entry := ModelCacheEntry{
		ModelName:       modelName,
		AvailableModels: availableModels,
		Timestamp:       time.Now(),
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		Logger().Warning("Failed to encode model cache: %v", err)
		return
	}

	tmp, err := os.CreateTemp(c.dir, "model-*.tmp")
	if err != nil {
		Logger().Warning("Failed to create temp model cache file: %v", err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		Logger().Warning("Failed to write model cache: %v", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		Logger().Warning("Failed to close temp model cache file: %v", err)
		return
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		Logger().Warning("Failed to replace model cache: %v", err)
	}
}

// Clear deletes the cache file. Used when the cached identifier turns out
// to be poisoned.
func (c *ModelCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		Logger().Warning("Failed to remove model cache: %v", err)
	}
}
