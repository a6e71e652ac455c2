// Package registry keeps the list of tracked status endpoints, keyed by a
// lowercase server name and persisted through a Store.
package registry

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

// Entry is one tracked server
type Entry struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// DefaultEntries are seeded into a store that has never been initialised
func DefaultEntries() []Entry {
	return []Entry{
		{Name: "titan", URL: "https://titan.api.atlasfreeshard.com/stats"},
		{Name: "opendaoc", URL: "https://api.atlasfreeshard.com/stats"},
	}
}

type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("server %q already exists", e.Name)
}

// Names end up in attachment file names, so they are kept to a safe alphabet
var validName = regexp.MustCompile(`^[a-z0-9_-]+$`)

type InvalidNameError struct {
	Name string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("server name %q may only contain a-z, 0-9, '-' and '_'", e.Name)
}

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("server %q does not exist", e.Name)
}

// Registry is the in-memory view of the store. Mutations are written through
// to the store before they become visible
type Registry struct {
	mu      sync.RWMutex
	store   Store
	entries []Entry
}

// Normalize turns a user supplied name into a registry key
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ValidName reports whether an already normalized name can be registered
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Open loads the registry from the store. A store that was never
// initialised receives the provided defaults.
// Loaded names are normalized and the first of any duplicates wins;
// if that changes anything the cleaned list is written back
func Open(ctx context.Context, store Store, defaults []Entry) (*Registry, error) {

	loaded, initialised, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}
	if !initialised {
		loaded = defaults
	}

	entries, changed, err := clean(loaded)
	if err != nil {
		return nil, fmt.Errorf("load registry: %w", err)
	}

	if !initialised || changed {
		if err := store.Save(ctx, entries); err != nil {
			return nil, fmt.Errorf("save registry: %w", err)
		}
	}
	if !initialised {
		log.Info().Msg(fmt.Sprintf("Registry initialised with %d default servers", len(entries)))
	} else if changed {
		log.Warn().Msg(fmt.Sprintf("Registry names normalized, %d servers kept out of %d", len(entries), len(loaded)))
	}

	return &Registry{store: store, entries: entries}, nil
}

func clean(loaded []Entry) ([]Entry, bool, error) {
	entries := make([]Entry, 0, len(loaded))
	seen := make(map[string]struct{}, len(loaded))
	changed := false
	for _, entry := range loaded {
		name := Normalize(entry.Name)
		if !ValidName(name) {
			return nil, false, &InvalidNameError{Name: entry.Name}
		}
		if name != entry.Name {
			changed = true
		}
		if _, ok := seen[name]; ok {
			changed = true
			continue
		}
		seen[name] = struct{}{}
		entries = append(entries, Entry{Name: name, URL: entry.URL})
	}
	return entries, changed, nil
}

// Add inserts a new server at the end of the list
func (r *Registry) Add(ctx context.Context, name string, url string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = Normalize(name)
	if !ValidName(name) {
		return Entry{}, &InvalidNameError{Name: name}
	}
	if r.index(name) != -1 {
		return Entry{}, &DuplicateNameError{Name: name}
	}

	entry := Entry{Name: name, URL: url}
	next := make([]Entry, len(r.entries), len(r.entries)+1)
	copy(next, r.entries)
	next = append(next, entry)
	if err := r.store.Save(ctx, next); err != nil {
		return Entry{}, fmt.Errorf("save registry: %w", err)
	}
	r.entries = next
	return entry, nil
}

// Remove deletes a server by name
func (r *Registry) Remove(ctx context.Context, name string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name = Normalize(name)
	i := r.index(name)
	if i == -1 {
		return Entry{}, &NotFoundError{Name: name}
	}

	removed := r.entries[i]
	next := make([]Entry, 0, len(r.entries)-1)
	next = append(next, r.entries[:i]...)
	next = append(next, r.entries[i+1:]...)
	if err := r.store.Save(ctx, next); err != nil {
		return Entry{}, fmt.Errorf("save registry: %w", err)
	}
	r.entries = next
	return removed, nil
}

// List returns a copy of the servers in insertion order
func (r *Registry) List() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	return entries
}

func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.index(Normalize(name))
	if i == -1 {
		return Entry{}, false
	}
	return r.entries[i], true
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Caller must hold the lock
func (r *Registry) index(name string) int {
	for i, entry := range r.entries {
		if entry.Name == name {
			return i
		}
	}
	return -1
}
