package records

import (
	"sort"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
)

// MFTEntry is a master file table record. Size is measured in blocks, so it
// always equals Blocks.
type MFTEntry struct {
	Name   string
	Size   uint
	Blocks uint
	Path   string
}

func (MFTEntry) Strategy() blocksim.Strategy { return blocksim.StrategyNTFS }
func (e MFTEntry) FileName() string          { return e.Name }
func (MFTEntry) isRecord()                   {}

// MFT is the NTFS store, keyed by file name.
type MFT struct {
	entries map[string]MFTEntry
}

func NewMFT() *MFT {
	return &MFT{entries: make(map[string]MFTEntry)}
}

func (m *MFT) Strategy() blocksim.Strategy {
	return blocksim.StrategyNTFS
}

func (m *MFT) Record(_ Op, name string, extent pool.Extent, path string) {
	m.entries[name] = MFTEntry{
		Name:   name,
		Size:   extent.Length,
		Blocks: extent.Length,
		Path:   path,
	}
}

func (m *MFT) Put(entry MFTEntry) {
	m.entries[entry.Name] = entry
}

func (m *MFT) Relocate(name, newPath string) bool {
	entry, ok := m.entries[name]
	if !ok {
		return false
	}
	entry.Path = newPath
	m.entries[name] = entry
	return true
}

func (m *MFT) Remove(name string) bool {
	_, ok := m.entries[name]
	delete(m.entries, name)
	return ok
}

func (m *MFT) Contains(name string) bool {
	_, ok := m.entries[name]
	return ok
}

func (m *MFT) Lookup(name string) []Record {
	entry, ok := m.entries[name]
	if !ok {
		return nil
	}
	return []Record{entry}
}

func (m *MFT) Get(name string) (MFTEntry, bool) {
	entry, ok := m.entries[name]
	return entry, ok
}

func (m *MFT) Len() int {
	return len(m.entries)
}

// Entries returns every record sorted by file name.
func (m *MFT) Entries() []MFTEntry {
	result := make([]MFTEntry, 0, len(m.entries))
	for _, entry := range m.entries {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *MFT) Clone() *MFT {
	clone := NewMFT()
	for name, entry := range m.entries {
		clone.entries[name] = entry
	}
	return clone
}
