// Package registry implements the file ledger: for every tracked file, how many
// blocks it holds and where its payload lives. The ledger is independent of the
// allocation strategy that describes the file, and it is what the model uses to
// decide how many blocks to free on replace and delete.
package registry

import (
	"github.com/dargueta/blocksim/pool"
	"github.com/google/btree"
)

// Entry is one file's row in the ledger.
type Entry struct {
	Name   string
	Blocks uint
	// Extent is where the file's blocks were placed. Its Length always equals
	// Blocks; Start is zero if the placement is unknown.
	Extent pool.Extent
	// Path is the payload's current location in storage.
	Path string
}

// Registry is an ordered map from file name to [Entry].
type Registry struct {
	entries     *btree.BTreeG[Entry]
	totalBlocks uint
}

func lessByName(a, b Entry) bool {
	return a.Name < b.Name
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{entries: btree.NewG[Entry](32, lessByName)}
}

// Get returns the entry for `name`.
func (r *Registry) Get(name string) (Entry, bool) {
	return r.entries.Get(Entry{Name: name})
}

// Blocks returns how many blocks `name` holds, or 0 if it isn't tracked.
func (r *Registry) Blocks(name string) uint {
	entry, ok := r.Get(name)
	if !ok {
		return 0
	}
	return entry.Blocks
}

// Contains reports whether `name` is tracked.
func (r *Registry) Contains(name string) bool {
	return r.entries.Has(Entry{Name: name})
}

// Put inserts or replaces the entry for entry.Name.
func (r *Registry) Put(entry Entry) {
	previous, replaced := r.entries.ReplaceOrInsert(entry)
	if replaced {
		r.totalBlocks -= previous.Blocks
	}
	r.totalBlocks += entry.Blocks
}

// SetPath changes where a tracked file's payload lives. It returns false if
// the file isn't tracked.
func (r *Registry) SetPath(name, path string) bool {
	entry, ok := r.Get(name)
	if !ok {
		return false
	}
	entry.Path = path
	r.entries.ReplaceOrInsert(entry)
	return true
}

// Delete removes `name` and returns the entry it had.
func (r *Registry) Delete(name string) (Entry, bool) {
	removed, ok := r.entries.Delete(Entry{Name: name})
	if ok {
		r.totalBlocks -= removed.Blocks
	}
	return removed, ok
}

// Len returns the number of tracked files.
func (r *Registry) Len() int {
	return r.entries.Len()
}

// TotalBlocks returns the sum of every entry's block count.
func (r *Registry) TotalBlocks() uint {
	return r.totalBlocks
}

// Entries returns every entry in ascending name order.
func (r *Registry) Entries() []Entry {
	result := make([]Entry, 0, r.entries.Len())
	r.entries.Ascend(func(item Entry) bool {
		result = append(result, item)
		return true
	})
	return result
}

// Extents returns the extents of every tracked file, in name order.
func (r *Registry) Extents() []pool.Extent {
	result := make([]pool.Extent, 0, r.entries.Len())
	r.entries.Ascend(func(item Entry) bool {
		result = append(result, item.Extent)
		return true
	})
	return result
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	return &Registry{entries: r.entries.Clone(), totalBlocks: r.totalBlocks}
}
