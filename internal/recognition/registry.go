package recognition

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// Registry holds the configured backends by name.
type Registry struct {
	mu       sync.RWMutex
	backends map[string]Recognizer
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Recognizer)}
}

// Register adds a backend under its Name.
func (r *Registry) Register(b Recognizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backends[b.Name()] = b
}

// Get returns a backend by name, or an error listing the known names.
func (r *Registry) Get(name string) (Recognizer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if b, ok := r.backends[name]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("unknown recognition backend %q (available: %v)", name, r.namesLocked())
}

// Names returns the registered backend names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.backends))
	for name := range r.backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// HealthStatus reports backend availability.
type HealthStatus struct {
	Backend string
	OK      bool
	Message string
	Latency time.Duration
}

// Health checks every registered backend in name order.
func (r *Registry) Health(ctx context.Context) []HealthStatus {
	names := r.Names()
	statuses := make([]HealthStatus, 0, len(names))
	for _, name := range names {
		b, err := r.Get(name)
		if err != nil {
			continue
		}
		start := time.Now()
		err = b.Check(ctx)
		status := HealthStatus{Backend: name, OK: err == nil, Latency: time.Since(start), Message: "ready"}
		if err != nil {
			status.Message = err.Error()
		}
		statuses = append(statuses, status)
	}
	return statuses
}
