package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/dargueta/blocksim"
	"github.com/klauspost/compress/zstd"
)

// CompressedSuffix marks snapshot files that are zstd-compressed.
const CompressedSuffix = ".zst"

// Encode writes `state` as JSON.
func Encode(w io.Writer, state *State) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(state)
}

// Decode reads a JSON document and fills in defaults for missing fields.
func Decode(r io.Reader) (*State, error) {
	state := &State{}
	if err := json.NewDecoder(r).Decode(state); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	state.fillDefaults()
	return state, nil
}

// Fingerprint hashes the canonical encoding of `state`. Two states with the
// same fingerprint are, for all practical purposes, identical.
func Fingerprint(state *State) uint64 {
	// Map keys are sorted by encoding/json, so this is deterministic.
	data, err := json.Marshal(state)
	if err != nil {
		panic(fmt.Errorf("snapshot state is not encodable: %w", err))
	}
	return xxhash.Sum64(data)
}

// Load reads the snapshot at `path`. If there is no file, it returns
// [Default].
func Load(path string) (*State, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	} else if err != nil {
		return nil, blocksim.ErrStorageIO.Wrap(err)
	}
	defer file.Close()

	var reader io.Reader = file
	if strings.HasSuffix(path, CompressedSuffix) {
		decoder, err := zstd.NewReader(file)
		if err != nil {
			return nil, blocksim.ErrStorageIO.Wrap(err)
		}
		defer decoder.Close()
		reader = decoder
	}

	state, err := Decode(reader)
	if err != nil {
		return nil, blocksim.ErrStorageIO.Wrap(fmt.Errorf("%s: %w", path, err))
	}
	return state, nil
}

// Save writes `state` to `path`, replacing the file atomically: the data goes
// to a temporary file in the same directory which is then renamed over the
// target.
func Save(path string, state *State) (err error) {
	temp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	defer func() {
		if err != nil {
			temp.Close()
			os.Remove(temp.Name())
		}
	}()

	if strings.HasSuffix(path, CompressedSuffix) {
		encoder, zErr := zstd.NewWriter(temp)
		if zErr != nil {
			return blocksim.ErrStorageIO.Wrap(zErr)
		}
		if err = Encode(encoder, state); err != nil {
			encoder.Close()
			return blocksim.ErrStorageIO.Wrap(err)
		}
		if err = encoder.Close(); err != nil {
			return blocksim.ErrStorageIO.Wrap(err)
		}
	} else if err = Encode(temp, state); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}

	if err = temp.Sync(); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	if err = temp.Close(); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	if err = os.Rename(temp.Name(), path); err != nil {
		return blocksim.ErrStorageIO.Wrap(err)
	}
	return nil
}

// File is a snapshot location that skips writes when nothing changed since the
// last load or save.
type File struct {
	Path        string
	fingerprint uint64
	known       bool
}

func NewFile(path string) *File {
	return &File{Path: path}
}

// Load reads the snapshot and remembers its fingerprint.
func (f *File) Load() (*State, error) {
	state, err := Load(f.Path)
	if err != nil {
		return nil, err
	}
	f.fingerprint = Fingerprint(state)
	f.known = true
	return state, nil
}

// Save writes `state` unless it's identical to what was last loaded or saved.
// It returns true if the file was written.
func (f *File) Save(state *State) (bool, error) {
	fingerprint := Fingerprint(state)
	if f.known && fingerprint == f.fingerprint {
		if _, err := os.Stat(f.Path); err == nil {
			return false, nil
		}
	}
	if err := Save(f.Path, state); err != nil {
		return false, err
	}
	f.fingerprint = fingerprint
	f.known = true
	return true, nil
}
