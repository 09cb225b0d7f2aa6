package store

import (
	"errors"
	"io/fs"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry records one persisted descriptor, keyed by (Path, MaxOrder).
type Entry struct {
	Path     string `yaml:"path"`
	Hash     string `yaml:"hash"`
	MaxOrder int    `yaml:"max_order"`
	Length   int    `yaml:"length"`
	File     string `yaml:"file"`
}

// Index is the memoisation table of already computed descriptors. It is
// safe for concurrent use.
type Index struct {
	mu      sync.Mutex
	entries []Entry
	byKey   map[indexKey]int
}

type indexKey struct {
	path  string
	order int
}

// LoadIndex reads an index file. A missing file yields an empty index.
func LoadIndex(path string) (*Index, error) {
	ix := &Index{byKey: make(map[indexKey]int)}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ix, nil
	}
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	for _, e := range entries {
		ix.Put(e)
	}
	return ix, nil
}

// Seen reports whether a descriptor for this path and order exists with a
// matching fingerprint.
func (ix *Index) Seen(path, hash string, order int) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	i, ok := ix.byKey[indexKey{path, order}]
	return ok && ix.entries[i].Hash == hash
}

// Put inserts an entry, replacing any previous one with the same key.
func (ix *Index) Put(e Entry) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	key := indexKey{e.Path, e.MaxOrder}
	if i, ok := ix.byKey[key]; ok {
		ix.entries[i] = e
		return
	}
	ix.byKey[key] = len(ix.entries)
	ix.entries = append(ix.entries, e)
}

func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// Save writes the index as YAML.
func (ix *Index) Save(path string) error {
	ix.mu.Lock()
	data, err := yaml.Marshal(ix.entries)
	ix.mu.Unlock()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
