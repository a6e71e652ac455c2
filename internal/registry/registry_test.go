package registry

import (
	"context"
	"errors"
	"testing"
)

func openTestRegistry(t *testing.T, entries ...Entry) *Registry {
	t.Helper()
	reg, err := Open(context.Background(), NewMemoryStore(entries...), DefaultEntries())
	if err != nil {
		t.Fatalf("open registry: %v", err)
	}
	return reg
}

func assertNames(t *testing.T, reg *Registry, want ...string) {
	t.Helper()
	got := reg.List()
	if len(got) != len(want) {
		t.Fatalf("registry has %d entries (%v), want %v", len(got), got, want)
	}
	for i := range want {
		if got[i].Name != want[i] {
			t.Fatalf("entry %d = %q, want %q", i, got[i].Name, want[i])
		}
	}
}

func TestOpenSeedsDefaults(t *testing.T) {
	store := NewMemoryStore()
	reg, err := Open(context.Background(), store, DefaultEntries())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	assertNames(t, reg, "titan", "opendaoc")

	saved, initialised, _ := store.Load(context.Background())
	if !initialised || len(saved) != 2 {
		t.Fatalf("defaults were not persisted: %v %v", initialised, saved)
	}
}

func TestOpenKeepsEmptiedStore(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Save(context.Background(), nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	reg, err := Open(context.Background(), store, DefaultEntries())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	assertNames(t, reg)
}

func TestOpenNormalizesLoadedNames(t *testing.T) {
	store := NewMemoryStore(
		Entry{Name: "Titan", URL: "http://first.test"},
		Entry{Name: " titan ", URL: "http://second.test"},
		Entry{Name: "OpenDAoC", URL: "http://opendaoc.test"},
	)
	reg, err := Open(context.Background(), store, DefaultEntries())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	assertNames(t, reg, "titan", "opendaoc")
	if e, _ := reg.Get("titan"); e.URL != "http://first.test" {
		t.Fatalf("titan url = %q, want the first entry", e.URL)
	}

	saved, _, _ := store.Load(context.Background())
	if len(saved) != 2 || saved[0].Name != "titan" || saved[1].Name != "opendaoc" {
		t.Fatalf("cleaned list was not saved back: %+v", saved)
	}

	if _, err := reg.Remove(context.Background(), "titan"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := reg.Get("titan"); ok {
		t.Fatalf("duplicate titan survived removal")
	}
}

func TestOpenRejectsInvalidNames(t *testing.T) {
	tests := []struct {
		name     string
		loaded   []Entry
		defaults []Entry
	}{
		{"stored", []Entry{{Name: "a/b", URL: "http://a.test"}}, nil},
		{"default", nil, []Entry{{Name: "../x", URL: "http://x.test"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(context.Background(), NewMemoryStore(tt.loaded...), tt.defaults)
			var invalid *InvalidNameError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidNameError, got %v", err)
			}
		})
	}
}

func TestAddRejectsInvalidNames(t *testing.T) {
	reg := openTestRegistry(t)

	for _, name := range []string{"a/b", "../etc", "two words", "", "shard.eu", `c:\x`} {
		_, err := reg.Add(context.Background(), name, "http://example.test")
		var invalid *InvalidNameError
		if !errors.As(err, &invalid) {
			t.Fatalf("Add(%q) = %v, want InvalidNameError", name, err)
		}
	}
	if _, err := reg.Add(context.Background(), "Shard_EU-2", "http://example.test"); err != nil {
		t.Fatalf("valid name rejected: %v", err)
	}
	assertNames(t, reg, "titan", "opendaoc", "shard_eu-2")
}

func TestAddLowercasesAndLists(t *testing.T) {
	reg := openTestRegistry(t)

	entry, err := reg.Add(context.Background(), "MyShard", "http://example.test/stats")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if entry.Name != "myshard" {
		t.Fatalf("name = %q, want lowercase", entry.Name)
	}
	assertNames(t, reg, "titan", "opendaoc", "myshard")

	count := 0
	for _, e := range reg.List() {
		if e.Name == "myshard" && e.URL == "http://example.test/stats" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("pair listed %d times, want once", count)
	}
}

func TestAddDuplicateIsCaseInsensitive(t *testing.T) {
	reg := openTestRegistry(t)

	_, err := reg.Add(context.Background(), "TITAN", "http://other.test")
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateNameError, got %v", err)
	}
	if dup.Name != "titan" {
		t.Fatalf("error name = %q", dup.Name)
	}
	assertNames(t, reg, "titan", "opendaoc")
	if e, _ := reg.Get("titan"); e.URL != DefaultEntries()[0].URL {
		t.Fatalf("duplicate add changed the url to %q", e.URL)
	}
}

func TestRemove(t *testing.T) {
	reg := openTestRegistry(t)

	removed, err := reg.Remove(context.Background(), "Titan")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if removed.Name != "titan" {
		t.Fatalf("removed %q", removed.Name)
	}
	assertNames(t, reg, "opendaoc")

	_, err = reg.Remove(context.Background(), "titan")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	assertNames(t, reg, "opendaoc")
}

func TestSaveFailureLeavesRegistryUnchanged(t *testing.T) {
	store := NewMemoryStore(Entry{Name: "titan", URL: "http://titan.test"})
	reg, err := Open(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store.SaveErr = errors.New("disk full")

	if _, err := reg.Add(context.Background(), "new", "http://new.test"); err == nil {
		t.Fatalf("expected save error")
	}
	if _, err := reg.Remove(context.Background(), "titan"); err == nil {
		t.Fatalf("expected save error")
	}
	assertNames(t, reg, "titan")
}

func TestListReturnsCopy(t *testing.T) {
	reg := openTestRegistry(t)
	list := reg.List()
	list[0].Name = "changed"
	if e := reg.List()[0]; e.Name != "titan" {
		t.Fatalf("List exposed internal state")
	}
}

func TestSuggest(t *testing.T) {
	reg := openTestRegistry(t)

	if got, ok := reg.Suggest("titna"); !ok || got != "titan" {
		t.Fatalf("Suggest(titna) = %q, %v", got, ok)
	}
	if got, ok := reg.Suggest("OpenDaoc"); ok {
		t.Fatalf("exact match should not be suggested, got %q", got)
	}
	if got, ok := reg.Suggest("somethingelse"); ok {
		t.Fatalf("unexpected suggestion %q", got)
	}
}
