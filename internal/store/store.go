package store

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// FilePermSecure is the mode for the store file: owner read/write only.
const FilePermSecure = 0600

var (
	ErrNotFound           = errors.New("store file not found")
	ErrAlreadyExists      = errors.New("store already exists")
	ErrUnsupportedVersion = errors.New("unsupported store version")
)

// Store is an in-memory collection of entries bound to an optional
// backing file. Every mutating call on a path-bound store rewrites the
// whole file, so the file always reflects the in-memory state. A store
// with no path is purely in-memory.
type Store struct {
	path    string
	entries []Entry
	index   map[string]int
}

// NewMemory creates an empty in-memory store with no backing file.
func NewMemory() *Store {
	return &Store{index: make(map[string]int)}
}

// Create binds a new store to path. If the file already carries header
// markers it was written by this codec and Create fails with
// ErrAlreadyExists. A marker-less existing file is parsed instead of
// rejected: callers may pre-stage entries (including {ENC}-wrapped
// values to be encrypted) before the store is initialized. Nothing is
// written until the first mutation or Save.
func Create(path string) (*Store, error) {
	s := &Store{path: path, index: make(map[string]int)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(data)
	if containsHeaderMarkers(text) {
		return nil, ErrAlreadyExists
	}

	s.setEntries(decode(text))
	return s, nil
}

// Open parses an existing store file. It fails with ErrNotFound when the
// file is absent. When checkVersion is set, the reserved version entry
// must equal the current format version, else ErrUnsupportedVersion.
func Open(path string, checkVersion bool) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	s := &Store{path: path, index: make(map[string]int)}
	s.setEntries(decode(string(data)))

	if checkVersion {
		e, ok := s.Get(ParseKey(VersionKey))
		if !ok || e.Value != FormatVersion {
			return nil, ErrUnsupportedVersion
		}
	}

	return s, nil
}

// Path returns the backing file path, or "" for an in-memory store.
func (s *Store) Path() string {
	return s.path
}

// Get returns the entry with an exactly (case-insensitively) matching key.
func (s *Store) Get(key Key) (Entry, bool) {
	i, ok := s.index[key.fold()]
	if !ok {
		return Entry{}, false
	}
	return s.entries[i], true
}

// Put upserts an entry by key equality and persists. The first-seen
// position of an existing key is kept.
func (s *Store) Put(e Entry) error {
	if i, ok := s.index[e.Key.fold()]; ok {
		s.entries[i] = e
	} else {
		s.index[e.Key.fold()] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s.Save()
}

// Delete removes the entry with the given key if present and persists.
// It reports whether an entry was removed.
func (s *Store) Delete(key Key) (bool, error) {
	i, ok := s.index[key.fold()]
	if !ok {
		return false, nil
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.reindex()
	return true, s.Save()
}

// DeletePrefix removes every non-reserved entry whose key equals the
// prefix or is a subkey of it, and persists. Returns the number removed.
func (s *Store) DeletePrefix(prefix Key) (int, error) {
	var kept []Entry
	removed := 0
	for _, e := range s.entries {
		if !IsReserved(e.Key) && (e.Key.Equal(prefix) || e.Key.IsSubkeyOf(prefix)) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0, nil
	}
	s.setEntries(kept)
	return removed, s.Save()
}

// Keys returns the canonical string of every non-reserved key in
// first-seen order.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		if !IsReserved(e.Key) {
			keys = append(keys, e.Key.String())
		}
	}
	return keys
}

// EntriesUnder returns every non-reserved entry whose key is a subkey of
// prefix, in first-seen order. The empty prefix matches everything.
func (s *Store) EntriesUnder(prefix Key) []Entry {
	var out []Entry
	for _, e := range s.entries {
		if !IsReserved(e.Key) && e.Key.IsSubkeyOf(prefix) {
			out = append(out, e)
		}
	}
	return out
}

// Labels returns the sorted set of group labels of all non-reserved keys.
func (s *Store) Labels() []string {
	set := make(map[string]struct{})
	for _, e := range s.entries {
		if !IsReserved(e.Key) {
			set[e.Key.Label()] = struct{}{}
		}
	}
	return sortedSet(set)
}

// ChildLabels returns the sorted set of immediate child group names one
// level below prefix.
func (s *Store) ChildLabels(prefix Key) []string {
	set := make(map[string]struct{})
	for _, e := range s.entries {
		if IsReserved(e.Key) || !e.Key.IsChildOf(prefix) {
			continue
		}
		set[e.Key.Label()] = struct{}{}
	}
	return sortedSet(set)
}

// ForEach calls fn for every non-reserved entry in first-seen order,
// stopping at the first error. It exists for bulk operations such as
// re-encrypting the corpus; mutate through Put from the callback.
func (s *Store) ForEach(fn func(Entry) error) error {
	// Snapshot so callbacks may Put/Delete safely.
	snapshot := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if !IsReserved(e.Key) {
			snapshot = append(snapshot, e)
		}
	}
	for _, e := range snapshot {
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// Save rewrites the backing file. A no-op for in-memory stores.
func (s *Store) Save() error {
	if s.path == "" {
		return nil
	}
	if err := os.WriteFile(s.path, []byte(encode(s.entries)), FilePermSecure); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// setEntries replaces the contents, collapsing duplicate keys: the last
// value wins but the first-seen position is kept.
func (s *Store) setEntries(entries []Entry) {
	s.entries = nil
	s.index = make(map[string]int, len(entries))
	for _, e := range entries {
		if i, ok := s.index[e.Key.fold()]; ok {
			s.entries[i] = e
			continue
		}
		s.index[e.Key.fold()] = len(s.entries)
		s.entries = append(s.entries, e)
	}
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		s.index[e.Key.fold()] = i
	}
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
