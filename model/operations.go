package model

import (
	"fmt"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
	"github.com/dargueta/blocksim/records"
	"github.com/dargueta/blocksim/registry"
	"github.com/dargueta/blocksim/storage"
)

// PlaceholderContent is written by [Filesystem.Replace] when it's given no
// content.
const PlaceholderContent = "File contents"

// pathOf returns where the payload of `name` lives: its recorded path if the
// file is tracked, otherwise its would-be path in the current directory.
func (f *Filesystem) pathOf(name string) string {
	entry, ok := f.ledger.Get(name)
	if ok && entry.Path != "" {
		return entry.Path
	}
	return storage.Join(f.directory, name)
}

// Create writes a new file of `blockCount` blocks into the current directory
// and records it in the active strategy's structure. It returns the extent the
// file was given.
func (f *Filesystem) Create(name string, blockCount int, content string) (pool.Extent, error) {
	if err := validateName(name); err != nil {
		return pool.Extent{}, err
	}
	blocks, err := validateBlockCount(blockCount)
	if err != nil {
		return pool.Extent{}, err
	}
	if isBlank(content) {
		return pool.Extent{}, blocksim.ErrInvalidInput.WithMessage("file content is required")
	}
	if f.ledger.Contains(name) {
		return pool.Extent{}, blocksim.ErrExists.WithMessage(
			fmt.Sprintf("%q is already tracked; replace it instead", name))
	}
	if err = f.checkQuota(blocks); err != nil {
		return pool.Extent{}, err
	}
	if _, err = f.pool.Plan(blocks, pool.Extent{}); err != nil {
		return pool.Extent{}, err
	}

	path := storage.Join(f.directory, name)
	if err = f.storage.Write(path, []byte(content)); err != nil {
		return pool.Extent{}, err
	}

	extent, err := f.pool.TryReserve(blocks)
	if err != nil {
		return pool.Extent{}, err
	}
	f.ledger.Put(registry.Entry{Name: name, Blocks: blocks, Extent: extent, Path: path})
	f.stores.For(f.strategy).Record(records.OpCreated, name, extent, path)
	return extent, nil
}

// Replace overwrites a file's payload and gives it a new extent of
// `blockCount` blocks. Capacity is checked against the net change, so a file
// can always be replaced by one of the same size. A name that isn't tracked
// yet is saved as a new file.
//
// FAT32 and NTFS entries are overwritten; EXT appends a new journal entry.
func (f *Filesystem) Replace(name string, blockCount int, content string) (pool.Extent, error) {
	if err := validateName(name); err != nil {
		return pool.Extent{}, err
	}
	blocks, err := validateBlockCount(blockCount)
	if err != nil {
		return pool.Extent{}, err
	}
	if content == "" {
		content = PlaceholderContent
	}
	if err = f.checkQuota(blocks); err != nil {
		return pool.Extent{}, err
	}

	existing, tracked := f.ledger.Get(name)
	if _, err = f.pool.Plan(blocks, existing.Extent); err != nil {
		return pool.Extent{}, err
	}

	path := f.pathOf(name)
	if err = f.storage.Write(path, []byte(content)); err != nil {
		return pool.Extent{}, err
	}

	if tracked {
		f.pool.Release(existing.Extent)
	}
	extent, err := f.pool.TryReserve(blocks)
	if err != nil {
		// Plan() already accepted this placement.
		panic(fmt.Errorf("reserving %d blocks for %q after planning: %w", blocks, name, err))
	}
	f.ledger.Put(registry.Entry{Name: name, Blocks: blocks, Extent: extent, Path: path})
	f.stores.For(f.strategy).Record(records.OpReplaced, name, extent, path)
	return extent, nil
}

// Move relocates a file's payload into `newDirectory` and updates its path in
// the ledger and in every strategy's records, not just the active one. It
// returns the new path.
func (f *Filesystem) Move(name, newDirectory string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	if isBlank(newDirectory) {
		return "", blocksim.ErrInvalidInput.WithMessage("destination directory is required")
	}

	oldPath := f.pathOf(name)
	newPath := storage.Join(storage.NormalizePath(f.directory, newDirectory), name)
	if err := f.requirePayload(name, oldPath); err != nil {
		return "", err
	}
	if newPath == oldPath {
		return newPath, nil
	}
	if err := f.storage.Move(oldPath, newPath); err != nil {
		return "", err
	}

	for _, store := range f.stores.All() {
		store.Relocate(name, newPath)
	}
	f.ledger.SetPath(name, newPath)
	return newPath, nil
}

// Delete removes a file's payload, frees its blocks, and drops it from every
// strategy's records. Files left behind by a previous strategy are deleted the
// same way.
func (f *Filesystem) Delete(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	path := f.pathOf(name)
	if err := f.requirePayload(name, path); err != nil {
		return err
	}
	if err := f.storage.Delete(path); err != nil {
		return err
	}

	if entry, ok := f.ledger.Delete(name); ok {
		f.pool.Release(entry.Extent)
	}
	for _, store := range f.stores.All() {
		store.Remove(name)
	}
	return nil
}

func (f *Filesystem) requirePayload(name, path string) error {
	exists, err := f.storage.Exists(path)
	if err != nil {
		return err
	}
	if !exists {
		return blocksim.ErrNotFound.WithMessage(
			fmt.Sprintf("%q: no payload at %s", name, path))
	}
	return nil
}
