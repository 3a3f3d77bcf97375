// Package storage is where file payloads actually live. The simulator only
// tracks metadata; every byte a user writes goes through a [Storage].
//
// Paths handed to a Storage are slash-separated and absolute. Implementations
// must wrap every failure in [blocksim.ErrStorageIO].
package storage

import (
	posixpath "path"
	"path/filepath"
)

type Storage interface {
	Write(path string, content []byte) error
	Move(oldPath, newPath string) error
	Delete(path string) error
	// Exists reports whether a file is present at `path`. A missing file is not
	// an error.
	Exists(path string) (bool, error)
	// List returns the names of the entries directly inside `directory`,
	// sorted.
	List(directory string) ([]string, error)
}

// NormalizePath turns `path` into a clean absolute slash-separated path,
// resolving relative paths against `workingDir`.
func NormalizePath(workingDir, path string) string {
	path = posixpath.Clean(filepath.ToSlash(path))
	if path == "." {
		path = "/"
	}
	if posixpath.IsAbs(path) {
		return path
	}
	if workingDir == "" {
		workingDir = "/"
	}
	return posixpath.Join(NormalizePath("/", workingDir), path)
}

// Join builds the path of file `name` inside `directory`.
func Join(directory, name string) string {
	return posixpath.Join(NormalizePath("/", directory), name)
}
