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
)

// FromSnapshot rebuilds a file system from saved state. `options` supplies the
// placement policy and directory when the state doesn't record them.
//
// The ledger (block_usage) is taken as the source of truth for the used block
// count. If a strategy is selected its reservation is recomputed from the
// strategy's ratio rather than trusting the stored value.
func FromSnapshot(state *snapshot.State, store storage.Storage, options Options) (*Filesystem, error) {
	strategy, err := blocksim.ParseStrategy(state.SelectedAlgorithm)
	if err != nil {
		return nil, err
	}

	policyName := state.AllocationPolicy
	if policyName == "" {
		policyName = string(options.Policy)
	}
	policy, err := pool.ParsePolicy(policyName)
	if err != nil {
		return nil, err
	}

	directory := state.Directory
	if directory == "" {
		directory = options.Directory
	}

	totalBlocks := state.DiskBlocks
	if totalBlocks == 0 {
		totalBlocks = snapshot.DefaultDiskBlocks
	}

	f := New(store, Options{TotalBlocks: totalBlocks, Policy: policy, Directory: directory})
	f.strategy = strategy
	restoreRecords(f.stores, state)
	restoreLedger(f, state)

	reserved := state.ReservedBlocks
	if strategy != blocksim.StrategyNone {
		reserved = profiles.MustLookup(strategy).ReservedBlocks(totalBlocks)
	}
	used := reserved + f.ledger.TotalBlocks()

	err = f.pool.Restore(
		reserved, used, pool.BlockID(state.NextAvailableBlock), f.ledger.Extents())
	if err != nil {
		return nil, err
	}
	return f, nil
}

func restoreRecords(stores *records.Set, state *snapshot.State) {
	for name, record := range state.AllocationTable {
		stores.Table.Put(records.FATEntry{
			Name:       name,
			Blocks:     record.Blocks,
			StartBlock: pool.BlockID(record.StartBlock),
			EndBlock:   pool.BlockID(record.EndBlock),
			Path:       record.Path,
		})
	}
	for name, record := range state.MFT {
		stores.MFT.Put(records.MFTEntry{
			Name:   name,
			Size:   record.Size,
			Blocks: record.Blocks,
			Path:   record.Path,
		})
	}

	if len(state.JournalEntries) > 0 {
		for _, record := range state.JournalEntries {
			stores.Journal.Append(records.JournalEntry{
				Seq:    record.Seq,
				Op:     records.Op(record.Op),
				Name:   record.FileName,
				Blocks: record.Blocks,
				Path:   record.Path,
				Text:   record.Text,
			})
		}
		return
	}
	for _, line := range state.Journal {
		stores.Journal.Append(records.ParseJournalLine(line))
	}
}

// restoreLedger fills in the ledger from block_usage. Older snapshots don't
// have block_extents, so placement and path fall back to whatever the
// strategy records say about the file.
func restoreLedger(f *Filesystem, state *snapshot.State) {
	for name, blocks := range state.BlockUsage {
		entry := registry.Entry{Name: name, Blocks: blocks, Extent: pool.Extent{Length: blocks}}

		if saved, ok := state.BlockExtents[name]; ok {
			if saved.Length == blocks {
				entry.Extent.Start = pool.BlockID(saved.Start)
			}
			entry.Path = saved.Path
		}
		if fat, ok := f.stores.Table.Get(name); ok {
			if entry.Extent.Start == 0 && fat.Blocks == blocks {
				entry.Extent.Start = fat.StartBlock
			}
			if entry.Path == "" {
				entry.Path = fat.Path
			}
		}
		if mft, ok := f.stores.MFT.Get(name); ok && entry.Path == "" {
			entry.Path = mft.Path
		}
		if entry.Path == "" {
			entry.Path = latestJournalPath(f.stores.Journal, name)
		}
		if entry.Path == "" {
			entry.Path = storage.Join(f.directory, name)
		}
		f.ledger.Put(entry)
	}
}

func latestJournalPath(journal *records.Journal, name string) string {
	found := journal.Lookup(name)
	for i := len(found) - 1; i >= 0; i-- {
		entry := found[i].(records.JournalEntry)
		if entry.Path != "" {
			return entry.Path
		}
	}
	return ""
}

// Snapshot captures the complete state. The result shares nothing with the
// file system.
func (f *Filesystem) Snapshot() *snapshot.State {
	usage := f.pool.Usage()
	state := &snapshot.State{
		AllocationTable:    make(map[string]snapshot.FATRecord),
		Journal:            f.stores.Journal.Lines(),
		MFT:                make(map[string]snapshot.MFTRecord),
		DiskBlocks:         usage.Total,
		UsedBlocks:         usage.Used,
		ReservedBlocks:     usage.Reserved,
		BlockUsage:         make(map[string]uint),
		BlockExtents:       make(map[string]snapshot.ExtentRecord),
		SelectedAlgorithm:  f.strategy.Tag(),
		NextAvailableBlock: uint(usage.Cursor),
		AllocationPolicy:   string(f.pool.Policy()),
		Directory:          f.directory,
	}

	for _, entry := range f.stores.Table.Entries() {
		state.AllocationTable[entry.Name] = snapshot.FATRecord{
			Blocks:     entry.Blocks,
			StartBlock: uint(entry.StartBlock),
			EndBlock:   uint(entry.EndBlock),
			Path:       entry.Path,
		}
	}
	for _, entry := range f.stores.MFT.Entries() {
		state.MFT[entry.Name] = snapshot.MFTRecord{
			Size:   entry.Size,
			Blocks: entry.Blocks,
			Path:   entry.Path,
		}
	}
	for _, entry := range f.stores.Journal.Entries() {
		state.JournalEntries = append(state.JournalEntries, snapshot.JournalRecord{
			Seq:      entry.Seq,
			Op:       string(entry.Op),
			FileName: entry.Name,
			Blocks:   entry.Blocks,
			Path:     entry.Path,
			Text:     entry.Text,
		})
	}
	for _, entry := range f.ledger.Entries() {
		state.BlockUsage[entry.Name] = entry.Blocks
		state.BlockExtents[entry.Name] = snapshot.ExtentRecord{
			Start:  uint(entry.Extent.Start),
			Length: entry.Extent.Length,
			Path:   entry.Path,
		}
	}
	return state
}

// String summarizes the pool for log messages.
func (f *Filesystem) String() string {
	usage := f.pool.Usage()
	return fmt.Sprintf(
		"%s: %d files, %d/%d blocks used (%d reserved)",
		f.strategy,
		f.ledger.Len(),
		usage.Used,
		usage.Total,
		usage.Reserved)
}
