package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/dargueta/blocksim"
	"github.com/hashicorp/go-multierror"
)

// Host stores payloads on the host file system below a root directory. The
// virtual path "/" maps to the root.
type Host struct {
	root string
}

// NewHost creates a Host rooted at `root`, which must be an existing directory.
func NewHost(root string) (*Host, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, blocksim.ErrStorageIO.Wrap(err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, blocksim.ErrStorageIO.Wrap(err)
	}
	if !info.IsDir() {
		return nil, blocksim.ErrStorageIO.WithMessage(
			fmt.Sprintf("storage root %q is not a directory", absRoot))
	}
	return &Host{root: absRoot}, nil
}

// Root returns the host directory backing "/".
func (h *Host) Root() string {
	return h.root
}

func (h *Host) hostPath(path string) string {
	return filepath.Join(h.root, filepath.FromSlash(NormalizePath("/", path)))
}

// ensureParent creates the directory that will hold `hostPath`. Like Memory,
// Host treats every directory as existing.
func ensureParent(hostPath string) error {
	if err := os.MkdirAll(filepath.Dir(hostPath), 0o755); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	return nil
}

func (h *Host) Write(path string, content []byte) error {
	target := h.hostPath(path)
	if err := ensureParent(target); err != nil {
		return err
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	return nil
}

func (h *Host) Move(oldPath, newPath string) error {
	source := h.hostPath(oldPath)
	destination := h.hostPath(newPath)
	if _, err := os.Stat(source); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	if err := ensureParent(destination); err != nil {
		return err
	}

	err := os.Rename(source, destination)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || errors.Is(err, fs.ErrNotExist) {
		return blocksim.ErrStorageIO.Wrap(err)
	}

	// Renames across devices fail; fall back to copying.
	if copyErr := copyFile(source, destination); copyErr != nil {
		return blocksim.ErrStorageIO.Wrap(multierror.Append(err, copyErr))
	}
	if removeErr := os.Remove(source); removeErr != nil {
		result := multierror.Append(err, removeErr)
		if undoErr := os.Remove(destination); undoErr != nil {
			result = multierror.Append(result, undoErr)
		}
		return blocksim.ErrStorageIO.Wrap(result)
	}
	return nil
}

func copyFile(source, destination string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(destination, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(destination)
		return err
	}
	return out.Close()
}

func (h *Host) Delete(path string) error {
	if err := os.Remove(h.hostPath(path)); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	return nil
}

func (h *Host) Exists(path string) (bool, error) {
	info, err := os.Stat(h.hostPath(path))
	if err == nil {
		return !info.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, blocksim.ErrStorageIO.Wrap(err)
}

func (h *Host) List(directory string) ([]string, error) {
	entries, err := os.ReadDir(h.hostPath(directory))
	if err != nil {
		return nil, blocksim.ErrStorageIO.Wrap(err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}
