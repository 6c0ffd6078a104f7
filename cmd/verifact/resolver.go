// cmd/verifact/resolver.go
package main

import (
	"context"
	"fmt"
)

// sessionModelKey is where the session-level cache stores the model name.
const sessionModelKey = "model:session"

// ModelResolver finds a callable model identifier while minimizing
// quota-bearing list-models calls. Resolution order, each level
// short-circuiting on success:
//
//  1. session (in-memory) cached identifier
//  2. file-backed cache with a 24-hour freshness window
//  3. the fixed known-good list, in preference order
//  4. a list-models discovery call, preferred names first
//
// A success at any level is persisted to both cache levels. Binding an
// identifier here is cheap and does not prove the model will respond; that
// is validated at generation time by the orchestrator.
type ModelResolver struct {
	client    ModelClient
	fileCache *ModelCache
	session   *Cache
	known     []string
}

// NewModelResolver creates a resolver over the given client and caches.
func NewModelResolver(client ModelClient, fileCache *ModelCache, session *Cache, known []string) *ModelResolver {
	return &ModelResolver{
		client:    client,
		fileCache: fileCache,
		session:   session,
		known:     known,
	}
}

// Resolve returns a model identifier, or an initialization error when every
// level of the chain fails.
func (r *ModelResolver) Resolve(ctx context.Context) (string, error) {
	if r.client == nil {
		return "", NewInitError("model client not configured", nil)
	}

	// Session cache first: no file read, no API call
	if value, ok := r.session.Get(sessionModelKey); ok {
		if name, ok := value.(string); ok {
			if err := r.bind(name); err == nil {
				return name, nil
			}
			r.session.Delete(sessionModelKey)
		}
	}

	// File cache persists across processes with a 24h freshness window
	if entry, ok := r.fileCache.Load(); ok {
		if err := r.bind(entry.ModelName); err == nil {
			r.session.SetWithTTL(sessionModelKey, entry.ModelName, ModelCacheTTL)
			return entry.ModelName, nil
		}
		// Stale or unusable entry: drop the file and keep going
		r.fileCache.Clear()
	}

	// Known-good identifiers avoid the quota cost of discovery
	for _, name := range r.known {
		if err := r.bind(name); err == nil {
			r.Persist(name, []string{name})
			return name, nil
		}
	}

	// Last resort: quota-bearing discovery call
	models, err := r.client.ListGenerationModels(ctx)
	if err == nil {
		for _, name := range preferredFirst(r.known, models) {
			if bindErr := r.bind(name); bindErr == nil {
				r.Persist(name, models)
				return name, nil
			}
		}
	}

	return "", NewInitError(
		"no available model found; check the API key and model access", err)
}

// Invalidate clears both cache levels. Called when a generation attempt
// proves the cached identifier is poisoned.
func (r *ModelResolver) Invalidate() {
	r.session.Delete(sessionModelKey)
	r.fileCache.Clear()
}

// Persist records a working identifier at both cache levels.
func (r *ModelResolver) Persist(name string, availableModels []string) {
	r.session.SetWithTTL(sessionModelKey, name, ModelCacheTTL)
	r.fileCache.Save(name, availableModels)
}

// KnownModels returns the fixed known-good list.
func (r *ModelResolver) KnownModels() []string {
	return r.known
}

// bind checks that an identifier can serve as a handle. This mirrors the
// cheap handle construction of the underlying SDK: it validates shape, not
// responsiveness.
func (r *ModelResolver) bind(name string) error {
	if name == "" {
		return fmt.Errorf("empty model name")
	}
	if r.client == nil {
		return fmt.Errorf("model client not configured")
	}
	return nil
}

// preferredFirst orders discovered models so preferred names come before the
// remainder, preserving discovery order within each group.
func preferredFirst(preferred, discovered []string) []string {
	present := make(map[string]bool, len(discovered))
	for _, name := range discovered {
		present[name] = true
	}

	var ordered []string
	picked := make(map[string]bool)
	for _, name := range preferred {
		if present[name] && !picked[name] {
			ordered = append(ordered, name)
			picked[name] = true
		}
	}
	for _, name := range discovered {
		if !picked[name] {
			ordered = append(ordered, name)
			picked[name] = true
		}
	}
	return ordered
}
