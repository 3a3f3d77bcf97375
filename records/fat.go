package records

import (
	"sort"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
)

// FATEntry describes a file as a contiguous, inclusive block range.
type FATEntry struct {
	Name       string
	Blocks     uint
	StartBlock pool.BlockID
	EndBlock   pool.BlockID
	Path       string
}

func (FATEntry) Strategy() blocksim.Strategy { return blocksim.StrategyFAT32 }
func (e FATEntry) FileName() string          { return e.Name }
func (FATEntry) isRecord()                   {}

// AllocationTable is the FAT32 store.
type AllocationTable struct {
	entries map[string]FATEntry
}

func NewAllocationTable() *AllocationTable {
	return &AllocationTable{entries: make(map[string]FATEntry)}
}

func (t *AllocationTable) Strategy() blocksim.Strategy {
	return blocksim.StrategyFAT32
}

// Record overwrites the file's entry with its new range.
func (t *AllocationTable) Record(_ Op, name string, extent pool.Extent, path string) {
	t.entries[name] = FATEntry{
		Name:       name,
		Blocks:     extent.Length,
		StartBlock: extent.Start,
		EndBlock:   extent.Last(),
		Path:       path,
	}
}

// Put inserts an entry as-is. It's used when restoring saved state.
func (t *AllocationTable) Put(entry FATEntry) {
	t.entries[entry.Name] = entry
}

func (t *AllocationTable) Relocate(name, newPath string) bool {
	entry, ok := t.entries[name]
	if !ok {
		return false
	}
	entry.Path = newPath
	t.entries[name] = entry
	return true
}

func (t *AllocationTable) Remove(name string) bool {
	_, ok := t.entries[name]
	delete(t.entries, name)
	return ok
}

func (t *AllocationTable) Contains(name string) bool {
	_, ok := t.entries[name]
	return ok
}

func (t *AllocationTable) Lookup(name string) []Record {
	entry, ok := t.entries[name]
	if !ok {
		return nil
	}
	return []Record{entry}
}

// Get returns the entry for `name`.
func (t *AllocationTable) Get(name string) (FATEntry, bool) {
	entry, ok := t.entries[name]
	return entry, ok
}

func (t *AllocationTable) Len() int {
	return len(t.entries)
}

// Entries returns every entry sorted by file name.
func (t *AllocationTable) Entries() []FATEntry {
	result := make([]FATEntry, 0, len(t.entries))
	for _, entry := range t.entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (t *AllocationTable) Clone() *AllocationTable {
	clone := NewAllocationTable()
	for name, entry := range t.entries {
		clone.entries[name] = entry
	}
	return clone
}
