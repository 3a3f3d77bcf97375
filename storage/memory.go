package storage

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/dargueta/blocksim"
)

// Operation names a Storage method, for fault injection.
type Operation string

const (
	OpWrite  Operation = "write"
	OpMove   Operation = "move"
	OpDelete Operation = "delete"
	OpExists Operation = "exists"
	OpList   Operation = "list"
)

// Memory keeps payloads in a map. Every directory implicitly exists.
type Memory struct {
	files  map[string][]byte
	faults map[Operation]error
}

func NewMemory() *Memory {
	return &Memory{
		files:  make(map[string][]byte),
		faults: make(map[Operation]error),
	}
}

// FailNext makes the next call of `op` fail with `err` (wrapped in
// ErrStorageIO) without touching any file.
func (m *Memory) FailNext(op Operation, err error) {
	m.faults[op] = err
}

func (m *Memory) takeFault(op Operation) error {
	err, ok := m.faults[op]
	if !ok {
		return nil
	}
	delete(m.faults, op)
	return blocksim.ErrStorageIO.Wrap(err)
}

// Content returns a copy of the payload at `path`.
func (m *Memory) Content(path string) ([]byte, bool) {
	content, ok := m.files[NormalizePath("/", path)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), content...), true
}

// Len returns the number of stored files.
func (m *Memory) Len() int {
	return len(m.files)
}

func (m *Memory) Write(path string, content []byte) error {
	if err := m.takeFault(OpWrite); err != nil {
		return err
	}
	m.files[NormalizePath("/", path)] = append([]byte(nil), content...)
	return nil
}

func notExist(op, path string) error {
	return blocksim.ErrStorageIO.Wrap(
		&fs.PathError{Op: op, Path: path, Err: fs.ErrNotExist})
}

func (m *Memory) Move(oldPath, newPath string) error {
	if err := m.takeFault(OpMove); err != nil {
		return err
	}
	source := NormalizePath("/", oldPath)
	destination := NormalizePath("/", newPath)
	content, ok := m.files[source]
	if !ok {
		return notExist("move", source)
	}
	delete(m.files, source)
	m.files[destination] = content
	return nil
}

func (m *Memory) Delete(path string) error {
	if err := m.takeFault(OpDelete); err != nil {
		return err
	}
	normalized := NormalizePath("/", path)
	if _, ok := m.files[normalized]; !ok {
		return notExist("remove", normalized)
	}
	delete(m.files, normalized)
	return nil
}

func (m *Memory) Exists(path string) (bool, error) {
	if err := m.takeFault(OpExists); err != nil {
		return false, err
	}
	_, ok := m.files[NormalizePath("/", path)]
	return ok, nil
}

// List returns the files and subdirectories directly inside `directory`.
func (m *Memory) List(directory string) ([]string, error) {
	if err := m.takeFault(OpList); err != nil {
		return nil, err
	}

	prefix := NormalizePath("/", directory)
	if prefix != "/" {
		prefix += "/"
	}

	seen := make(map[string]bool)
	for path := range m.files {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		rest := strings.TrimPrefix(path, prefix)
		first, _, _ := strings.Cut(rest, "/")
		seen[first] = true
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *Memory) String() string {
	return fmt.Sprintf("memory storage (%d files)", len(m.files))
}

var _ Storage = (*Memory)(nil)
var _ Storage = (*Host)(nil)
