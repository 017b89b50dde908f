// Package registry tracks source paths abandoned after a connection
// abort. Membership is permanent for the life of the run, including
// across remounts: a registered path, and anything under it that has
// not already been discovered, is never visited again.
package registry

import (
	"path/filepath"
	"sync"
)

// Registry is a mutex-guarded set of failed source paths. The traversal
// is single-threaded, but the set is shared, mutable, process-lifetime
// state, so access stays explicitly synchronized.
type Registry struct {
	mu     sync.Mutex
	failed map[string]struct{}
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{failed: make(map[string]struct{})}
}

// Remember permanently marks path as unreachable for this run.
func (r *Registry) Remember(path string) {
	key := filepath.Clean(path)
	r.mu.Lock()
	r.failed[key] = struct{}{}
	r.mu.Unlock()
}

// IsFailed reports whether path was marked by Remember.
func (r *Registry) IsFailed(path string) bool {
	key := filepath.Clean(path)
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.failed[key]
	return ok
}

// Len returns how many paths have been abandoned.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.failed)
}
