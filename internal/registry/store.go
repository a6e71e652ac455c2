package registry

import (
	"context"
	"fmt"
)

// Store persists the ordered list of servers.
// Load reports initialised=false when nothing was ever saved,
// so the registry can tell a fresh store from one emptied on purpose
type Store interface {
	Load(ctx context.Context) (entries []Entry, initialised bool, err error)
	Save(ctx context.Context, entries []Entry) error
	Close() error
}

const (
	DriverSQLite = "sqlite"
	DriverYAML   = "yaml"
)

// OpenStore opens the store selected by driver at path
func OpenStore(ctx context.Context, driver string, path string) (Store, error) {
	switch driver {
	case DriverSQLite:
		return OpenSQLiteStore(ctx, path)
	case DriverYAML:
		return NewYAMLStore(path), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// MemoryStore keeps everything in memory. Useful in tests and dry runs
type MemoryStore struct {
	entries     []Entry
	initialised bool
	SaveErr     error
}

func NewMemoryStore(entries ...Entry) *MemoryStore {
	if len(entries) == 0 {
		return &MemoryStore{}
	}
	return &MemoryStore{entries: append([]Entry(nil), entries...), initialised: true}
}

func (s *MemoryStore) Load(ctx context.Context) ([]Entry, bool, error) {
	return append([]Entry(nil), s.entries...), s.initialised, nil
}

func (s *MemoryStore) Save(ctx context.Context, entries []Entry) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.entries = append([]Entry(nil), entries...)
	s.initialised = true
	return nil
}

func (s *MemoryStore) Close() error { return nil }
