// Package testing has helpers shared by the simulator's tests.
package testing

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/model"
	"github.com/dargueta/blocksim/pool"
	"github.com/dargueta/blocksim/snapshot"
	"github.com/dargueta/blocksim/storage"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// NewFilesystem creates a file system of `totalBlocks` blocks backed by memory
// storage, with `strategy` already selected. It is guaranteed to either return
// a valid file system or fail the test and abort.
func NewFilesystem(
	t *testing.T, strategy blocksim.Strategy, totalBlocks uint, policy pool.Policy,
) (*model.Filesystem, *storage.Memory) {
	store := storage.NewMemory()
	fs := model.New(store, model.Options{TotalBlocks: totalBlocks, Policy: policy})
	require.NoErrorf(t, fs.SetStrategy(strategy), "failed to select %s", strategy)
	return fs, store
}

// RandomContent returns `size` random lowercase letters, which is always
// acceptable file content.
func RandomContent(t *testing.T, size uint) string {
	data := make([]byte, size)
	_, err := rand.Read(data)
	require.NoErrorf(t, err, "failed to generate %d random bytes", size)
	for i := range data {
		data[i] = 'a' + data[i]%26
	}
	return string(data)
}

// RequireKind fails the test unless `err` is a SimError of the given kind.
func RequireKind(t *testing.T, err error, kind blocksim.ErrorKind) {
	require.Error(t, err)
	require.Equalf(t, kind, blocksim.KindOf(err), "wrong error kind: %v", err)
}

// RequireFailsUnchanged runs `operation`, which must fail with an error of
// `kind`, and verifies that the file system's state is exactly what it was
// beforehand.
func RequireFailsUnchanged(
	t *testing.T, fs *model.Filesystem, kind blocksim.ErrorKind, operation func() error,
) {
	before := snapshot.Fingerprint(fs.Snapshot())
	RequireKind(t, operation(), kind)
	require.Equal(
		t,
		before,
		snapshot.Fingerprint(fs.Snapshot()),
		"failed operation modified the file system",
	)
}

// SnapshotStream encodes `state` into an in-memory stream positioned at the
// start.
func SnapshotStream(t *testing.T, state *snapshot.State) io.ReadWriteSeeker {
	var buffer bytes.Buffer
	require.NoError(t, snapshot.Encode(&buffer, state))
	require.Greater(t, buffer.Len(), 0, "encoded snapshot is empty")
	return bytesextra.NewReadWriteSeeker(buffer.Bytes())
}

// RoundTrip encodes the file system's state, decodes it, and rebuilds a new
// file system from it using the same storage.
func RoundTrip(t *testing.T, fs *model.Filesystem, store storage.Storage) *model.Filesystem {
	state, err := snapshot.Decode(SnapshotStream(t, fs.Snapshot()))
	require.NoError(t, err)

	restored, err := model.FromSnapshot(state, store, model.Options{})
	require.NoError(t, err)
	return restored
}
