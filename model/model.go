// Package model ties the block pool, the file ledger and the strategy metadata
// stores together behind the four file operations.
//
// Every operation checks all of its preconditions first, then performs the
// storage I/O, and only touches the pool, the ledger and the records once
// storage has succeeded. A call that returns an error leaves the model exactly
// as it was.
package model

import (
	"fmt"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
	"github.com/dargueta/blocksim/profiles"
	"github.com/dargueta/blocksim/records"
	"github.com/dargueta/blocksim/registry"
	"github.com/dargueta/blocksim/snapshot"
	"github.com/dargueta/blocksim/storage"
	"github.com/hashicorp/go-multierror"
)

// Options configures a new [Filesystem].
type Options struct {
	// TotalBlocks defaults to [snapshot.DefaultDiskBlocks].
	TotalBlocks uint
	// Policy defaults to [pool.PolicyCursor].
	Policy pool.Policy
	// Directory is where new files are written. Defaults to "/".
	Directory string
}

// Filesystem is the simulator state. It is not safe for concurrent use; each
// call must finish before the next one starts.
type Filesystem struct {
	pool      *pool.BlockPool
	ledger    *registry.Registry
	stores    *records.Set
	strategy  blocksim.Strategy
	storage   storage.Storage
	directory string
}

// New creates an empty, unformatted file system with no strategy selected.
func New(store storage.Storage, options Options) *Filesystem {
	if options.TotalBlocks == 0 {
		options.TotalBlocks = snapshot.DefaultDiskBlocks
	}
	return &Filesystem{
		pool:      pool.New(options.TotalBlocks, options.Policy),
		ledger:    registry.New(),
		stores:    records.NewSet(),
		strategy:  blocksim.StrategyNone,
		storage:   store,
		directory: storage.NormalizePath("/", options.Directory),
	}
}

// Strategy returns the active allocation strategy.
func (f *Filesystem) Strategy() blocksim.Strategy {
	return f.strategy
}

// Profile returns the parameters of the active strategy.
func (f *Filesystem) Profile() profiles.Profile {
	return profiles.MustLookup(f.strategy)
}

// SetStrategy selects the allocation strategy and moves the pool's reservation
// to match. Existing records are left where they are: files written under the
// previous strategy stay in its store, invisible to the new strategy's view,
// and keep their blocks until they're deleted.
func (f *Filesystem) SetStrategy(strategy blocksim.Strategy) error {
	profile, err := profiles.Lookup(strategy)
	if err != nil {
		return err
	}
	if err = f.pool.ApplyReservationRatio(profile.Ratio()); err != nil {
		return err
	}
	f.strategy = strategy
	return nil
}

// Format wipes all metadata and gives the disk a new capacity and placement
// policy. The active strategy is kept and its reservation reapplied. Payloads
// already in storage are not touched.
func (f *Filesystem) Format(totalBlocks uint, policy pool.Policy) error {
	if totalBlocks == 0 {
		return blocksim.ErrInvalidInput.WithMessage("disk must have at least one block")
	}

	newPool := pool.New(totalBlocks, policy)
	if err := newPool.ApplyReservationRatio(f.Profile().Ratio()); err != nil {
		return err
	}
	f.pool = newPool
	f.ledger = registry.New()
	f.stores = records.NewSet()
	return nil
}

// Directory returns the directory new files are written to.
func (f *Filesystem) Directory() string {
	return f.directory
}

// SetDirectory changes the directory new files are written to. Relative paths
// are resolved against the current directory.
func (f *Filesystem) SetDirectory(directory string) error {
	if isBlank(directory) {
		return blocksim.ErrInvalidInput.WithMessage("directory is required")
	}
	f.directory = storage.NormalizePath(f.directory, directory)
	return nil
}

// ListDirectory returns the contents of the current directory in storage.
func (f *Filesystem) ListDirectory() ([]string, error) {
	return f.storage.List(f.directory)
}

// Usage returns the pool counters.
func (f *Filesystem) Usage() pool.Usage {
	return f.pool.Usage()
}

// Policy returns the block placement policy.
func (f *Filesystem) Policy() pool.Policy {
	return f.pool.Policy()
}

// AllocationTable returns the FAT32 records, sorted by name.
func (f *Filesystem) AllocationTable() []records.FATEntry {
	return f.stores.Table.Entries()
}

// MFT returns the NTFS records, sorted by name.
func (f *Filesystem) MFT() []records.MFTEntry {
	return f.stores.MFT.Entries()
}

// Journal returns the EXT journal, oldest entry first.
func (f *Filesystem) Journal() []records.JournalEntry {
	return f.stores.Journal.Entries()
}

// JournalLines returns the EXT journal rendered as text.
func (f *Filesystem) JournalLines() []string {
	return f.stores.Journal.Lines()
}

// Files returns the ledger, sorted by name.
func (f *Filesystem) Files() []registry.Entry {
	return f.ledger.Entries()
}

// Lookup returns every record describing `name`, from all strategies.
func (f *Filesystem) Lookup(name string) []records.Record {
	var result []records.Record
	for _, store := range f.stores.All() {
		result = append(result, store.Lookup(name)...)
	}
	return result
}

// Owners returns the strategies holding records for `name`.
func (f *Filesystem) Owners(name string) []blocksim.Strategy {
	return f.stores.Owners(name)
}

// Verify checks the accounting invariants and returns every violation found.
func (f *Filesystem) Verify() error {
	var result *multierror.Error
	usage := f.pool.Usage()

	if usage.Reserved > usage.Used || usage.Used > usage.Total {
		result = multierror.Append(result, fmt.Errorf(
			"pool bounds violated: reserved=%d used=%d total=%d",
			usage.Reserved,
			usage.Used,
			usage.Total))
	}
	if f.ledger.TotalBlocks()+usage.Reserved != usage.Used {
		result = multierror.Append(result, fmt.Errorf(
			"ledger holds %d blocks and %d are reserved, but the pool has %d in use",
			f.ledger.TotalBlocks(),
			usage.Reserved,
			usage.Used))
	}
	for _, entry := range f.ledger.Entries() {
		if entry.Extent.Length != entry.Blocks {
			result = multierror.Append(result, fmt.Errorf(
				"%s: ledger has %d blocks but its extent covers %d",
				entry.Name,
				entry.Blocks,
				entry.Extent.Length))
		}
	}
	return result.ErrorOrNil()
}
