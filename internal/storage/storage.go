package storage

import (
	"sort"
	"sync"
)

// Persister loads and saves whole tables.
//
// Load reports found=false with a nil error when nothing is stored under
// name; any other problem is returned as an error.
type Persister interface {
	Load(name string) (table *Table, found bool, err error)
	Save(table *Table) error
}

// Registry holds the tables known to one executor. Entries are added on
// create or on first load and are never evicted.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Get returns the table registered under name.
func (r *Registry) Get(name string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[name]
	return t, ok
}

// Add registers t under its name, replacing any previous entry.
func (r *Registry) Add(t *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[t.Name()] = t
}

// Exists reports whether name is registered.
func (r *Registry) Exists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Names returns the registered table names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
