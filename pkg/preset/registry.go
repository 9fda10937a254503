package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry holds the loaded presets. It is safe for concurrent use and can be
// reloaded while serving.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
	dir     string
}

// NewRegistry creates a registry for dir holding only the built-in default.
// An empty dir disables file loading.
func NewRegistry(dir string) *Registry {
	return &Registry{
		presets: map[string]Preset{DefaultID: Default()},
		dir:     dir,
	}
}

// Load scans the directory for *.yaml and *.yml files. On error the
// previous set is kept. A file may override the built-in default.
func (r *Registry) Load() error {
	next := map[string]Preset{DefaultID: Default()}
	if r.dir != "" {
		entries, err := os.ReadDir(r.dir)
		if err != nil {
			return fmt.Errorf("read presets dir %s: %w", r.dir, err)
		}

		seen := make(map[string]string)
		for _, entry := range entries {
			if entry.IsDir() || !isYAML(entry.Name()) {
				continue
			}
			path := filepath.Join(r.dir, entry.Name())
			p, err := LoadFile(path)
			if err != nil {
				return err
			}
			if prev, ok := seen[p.ID]; ok {
				return fmt.Errorf("preset %q defined in both %s and %s", p.ID, prev, path)
			}
			seen[p.ID] = path
			next[p.ID] = p
		}
	}

	r.mu.Lock()
	r.presets = next
	r.mu.Unlock()
	return nil
}

// Reload reloads all presets from disk (hot reload).
func (r *Registry) Reload() error {
	return r.Load()
}

// Get returns the preset with the given id. An empty id selects the default.
func (r *Registry) Get(id string) (Preset, bool) {
	if id == "" {
		id = DefaultID
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.presets[id]
	return p, ok
}

// List returns every preset sorted by id.
func (r *Registry) List() []Preset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Count returns the number of loaded presets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.presets)
}

func isYAML(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
