// Package records holds the metadata structures of the three allocation
// strategies: the FAT32 allocation table, the NTFS master file table, and the
// EXT journal. Each is reachable through the [Store] interface so the model can
// dispatch on the active strategy without knowing the record shapes.
package records

import (
	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
)

// Op is the kind of operation that produced a record.
type Op string

const (
	OpCreated  Op = "created"
	OpReplaced Op = "replaced"
	// OpNote marks journal text that couldn't be parsed into a structured entry.
	OpNote Op = "note"
)

// Record is a single metadata record. The concrete type is one of
// [FATEntry], [MFTEntry] or [JournalEntry], selected by Strategy().
type Record interface {
	Strategy() blocksim.Strategy
	FileName() string
	isRecord()
}

// Store is the metadata structure of one strategy.
type Store interface {
	Strategy() blocksim.Strategy
	// Record writes metadata for a file that was just created or replaced.
	Record(op Op, name string, extent pool.Extent, path string)
	// Relocate updates the path of every record for `name`. It returns false if
	// there were none.
	Relocate(name, newPath string) bool
	// Remove deletes every record for `name`. It returns false if there were
	// none.
	Remove(name string) bool
	Contains(name string) bool
	// Lookup returns the records for `name`, oldest first.
	Lookup(name string) []Record
}

// Set holds one store per strategy. Records written under a strategy stay in
// its store after another strategy is selected.
type Set struct {
	Table   *AllocationTable
	MFT     *MFT
	Journal *Journal
}

// NewSet creates a set of empty stores.
func NewSet() *Set {
	return &Set{
		Table:   NewAllocationTable(),
		MFT:     NewMFT(),
		Journal: NewJournal(),
	}
}

// For returns the store of `strategy`. StrategyNone gets a store that keeps
// nothing.
func (s *Set) For(strategy blocksim.Strategy) Store {
	switch strategy {
	case blocksim.StrategyFAT32:
		return s.Table
	case blocksim.StrategyNTFS:
		return s.MFT
	case blocksim.StrategyEXT:
		return s.Journal
	default:
		return noneStore{}
	}
}

// All returns every store that can hold records.
func (s *Set) All() []Store {
	return []Store{s.Table, s.MFT, s.Journal}
}

// Owners returns the strategies that currently hold records for `name`.
func (s *Set) Owners(name string) []blocksim.Strategy {
	var owners []blocksim.Strategy
	for _, store := range s.All() {
		if store.Contains(name) {
			owners = append(owners, store.Strategy())
		}
	}
	return owners
}

// Clone returns a deep copy of every store.
func (s *Set) Clone() *Set {
	return &Set{
		Table:   s.Table.Clone(),
		MFT:     s.MFT.Clone(),
		Journal: s.Journal.Clone(),
	}
}

// -----------------------------------------------------------------------------

type noneStore struct{}

func (noneStore) Strategy() blocksim.Strategy            { return blocksim.StrategyNone }
func (noneStore) Record(Op, string, pool.Extent, string) {}
func (noneStore) Relocate(string, string) bool           { return false }
func (noneStore) Remove(string) bool                     { return false }
func (noneStore) Contains(string) bool                   { return false }
func (noneStore) Lookup(string) []Record                 { return nil }
