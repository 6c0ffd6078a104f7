// cmd/verifact/store.go
package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ResultStore persists verification results keyed by claim hash in a single
// JSON file. Reads and writes are best-effort: any I/O or parse failure
// degrades to an empty map or a skipped save with a warning, never an error
// to the caller.
type ResultStore struct {
	dir   string
	path  string
	mutex sync.Mutex
}

// NewResultStore creates a store rooted at dir.
func NewResultStore(dir string) *ResultStore {
	return &ResultStore{
		dir:  dir,
		path: filepath.Join(dir, VerificationCacheFile),
	}
}

// Load reads the store and filters out entries older than the retention
// window. Entries without a parseable timestamp are grandfathered.
func (s *ResultStore) Load() map[string]VerificationResult {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	results := make(map[string]VerificationResult)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			Logger().Warning("Failed to load verification cache: %v", err)
		}
		return results
	}

	var raw map[string]VerificationResult
	if err := json.Unmarshal(data, &raw); err != nil {
		Logger().Warning("Failed to parse verification cache: %v", err)
		return results
	}

	cutoff := time.Now().AddDate(0, 0, -CacheTTLDays)
	for key, value := range raw {
		if value.Timestamp != "" {
			if ts, perr := time.ParseInLocation(TimestampLayout, value.Timestamp, time.Local); perr == nil {
				if ts.Before(cutoff) {
					continue
				}
			}
			// Unparsable timestamps are kept, same as legacy entries
		}
		results[key] = value
	}
	return results
}

// Save enforces the entry cap, stamps missing timestamps, and writes the
// file atomically via a temp file in the same directory. A crash mid-write
// leaves the previous file intact.
func (s *ResultStore) Save(results map[string]VerificationResult) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		Logger().Warning("Failed to create cache directory: %v", err)
		return
	}

	// Keep only the most recently stamped entries when over the cap. The
	// timestamp layout sorts lexicographically in time order, so a plain
	// string sort suffices; entries without a timestamp evict first.
	if len(results) > MaxCacheEntries {
		type entry struct {
			key   string
			value VerificationResult
		}
		entries := make([]entry, 0, len(results))
		for key, value := range results {
			entries = append(entries, entry{key, value})
		}
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].value.Timestamp != entries[j].value.Timestamp {
				return entries[i].value.Timestamp > entries[j].value.Timestamp
			}
			return entries[i].key < entries[j].key
		})
		trimmed := make(map[string]VerificationResult, MaxCacheEntries)
		for _, e := range entries[:MaxCacheEntries] {
			trimmed[e.key] = e.value
		}
		results = trimmed
	}

	// Ensure every entry carries a timestamp
	now := time.Now().Format(TimestampLayout)
	for key, value := range results {
		if value.Timestamp == "" {
			value.Timestamp = now
			results[key] = value
		}
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		Logger().Warning("Failed to encode verification cache: %v", err)
		return
	}

	tmp, err := os.CreateTemp(s.dir, "verification-*.tmp")
	if err != nil {
		Logger().Warning("Failed to create temp cache file: %v", err)
		return
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		Logger().Warning("Failed to write verification cache: %v", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		Logger().Warning("Failed to close temp cache file: %v", err)
		return
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		Logger().Warning("Failed to replace verification cache: %v", err)
	}
}

// Sweep rewrites the store through a load/save cycle, applying the TTL and
// size rules to the on-disk file.
func (s *ResultStore) Sweep() {
	s.Save(s.Load())
}

// Len reports how many live entries the store currently holds.
func (s *ResultStore) Len() int {
	return len(s.Load())
}
