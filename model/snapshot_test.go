package model_test

import (
	"path/filepath"
	"testing"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/model"
	"github.com/dargueta/blocksim/pool"
	"github.com/dargueta/blocksim/records"
	"github.com/dargueta/blocksim/snapshot"
	"github.com/dargueta/blocksim/storage"
	simtest "github.com/dargueta/blocksim/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromDefaultSnapshot(t *testing.T) {
	fs, err := model.FromSnapshot(snapshot.Default(), storage.NewMemory(), model.Options{})
	require.NoError(t, err)

	usage := fs.Usage()
	assert.EqualValues(t, 1000, usage.Total)
	assert.EqualValues(t, 0, usage.Used)
	assert.EqualValues(t, 0, usage.Reserved)
	assert.EqualValues(t, 1, usage.Cursor)
	assert.Equal(t, blocksim.StrategyNone, fs.Strategy())

	state := fs.Snapshot()
	assert.Equal(t, "", state.SelectedAlgorithm)
	assert.EqualValues(t, 1, state.NextAvailableBlock)
	assert.Equal(t, "cursor", state.AllocationPolicy)
	assert.Equal(t, "/", state.Directory)
}

func TestSnapshotRoundTrip(t *testing.T) {
	fs, store := simtest.NewFilesystem(t, blocksim.StrategyFAT32, 1000, pool.PolicyFirstFit)
	_, err := fs.Create("a.txt", 50, "hi")
	require.NoError(t, err)
	require.NoError(t, fs.SetStrategy(blocksim.StrategyEXT))
	_, err = fs.Create("b.txt", 20, "hi")
	require.NoError(t, err)
	_, err = fs.Replace("b.txt", 25, "hello")
	require.NoError(t, err)
	require.NoError(t, fs.SetDirectory("/docs"))

	restored := simtest.RoundTrip(t, fs, store)

	assert.Equal(t, snapshot.Fingerprint(fs.Snapshot()), snapshot.Fingerprint(restored.Snapshot()))
	assert.Equal(t, fs.Usage(), restored.Usage())
	assert.Equal(t, fs.Files(), restored.Files())
	assert.Equal(t, fs.Journal(), restored.Journal())
	assert.Equal(t, pool.PolicyFirstFit, restored.Policy())
	assert.Equal(t, "/docs", restored.Directory())
	assert.NoError(t, restored.Verify())

	// The restored bitmap must know where a.txt lives.
	require.NoError(t, restored.Delete("b.txt"))
	extent, err := restored.Create("c.txt", 10, "x")
	require.NoError(t, err)
	assert.EqualValues(t, 51, extent.Start)
}

func TestSnapshotFileRoundTrip(t *testing.T) {
	for _, name := range []string{"state.json", "state.json.zst"} {
		t.Run(name, func(t *testing.T) {
			fs, store := simtest.NewFilesystem(t, blocksim.StrategyNTFS, 2048, pool.PolicyCursor)
			_, err := fs.Create("a", 100, simtest.RandomContent(t, 100))
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), name)
			require.NoError(t, snapshot.Save(path, fs.Snapshot()))

			state, err := snapshot.Load(path)
			require.NoError(t, err)
			restored, err := model.FromSnapshot(state, store, model.Options{})
			require.NoError(t, err)
			assert.Equal(t, snapshot.Fingerprint(fs.Snapshot()), snapshot.Fingerprint(restored.Snapshot()))
		})
	}
}

func TestLegacySnapshot(t *testing.T) {
	state := snapshot.Default()
	state.SelectedAlgorithm = "FAT32"
	// Stored too low; the ledger and the ratio win.
	state.ReservedBlocks = 0
	state.UsedBlocks = 10
	state.BlockUsage["a.txt"] = 50
	state.BlockUsage["notes"] = 5
	state.AllocationTable["a.txt"] = snapshot.FATRecord{
		Blocks: 50, StartBlock: 1, EndBlock: 50, Path: "/a.txt",
	}
	state.Journal = []string{
		"Archivo creado: notes, Bloques: 5, Path: /notes",
		"disk checked",
	}
	state.NextAvailableBlock = 56

	fs, err := model.FromSnapshot(state, storage.NewMemory(), model.Options{})
	require.NoError(t, err)

	usage := fs.Usage()
	assert.EqualValues(t, 160, usage.Reserved)
	assert.EqualValues(t, 215, usage.Used)
	assert.EqualValues(t, 56, usage.Cursor)
	assert.NoError(t, fs.Verify())

	files := fs.Files()
	require.Len(t, files, 2)
	assert.Equal(t, pool.Extent{Start: 1, Length: 50}, files[0].Extent)
	assert.Equal(t, "/a.txt", files[0].Path)
	assert.Equal(t, pool.Extent{Length: 5}, files[1].Extent)
	assert.Equal(t, "/notes", files[1].Path)

	journal := fs.Journal()
	require.Len(t, journal, 2)
	assert.Equal(t, records.OpCreated, journal[0].Op)
	assert.Equal(t, "notes", journal[0].Name)
	assert.Equal(t, records.OpNote, journal[1].Op)
	assert.Equal(t, "disk checked", journal[1].Text)
	assert.Equal(
		t,
		[]string{"File created: notes, Blocks: 5, Path: /notes", "disk checked"},
		fs.JournalLines(),
	)
}

func TestSnapshotWithoutStrategyKeepsStoredReservation(t *testing.T) {
	state := snapshot.Default()
	state.ReservedBlocks = 7
	state.UsedBlocks = 7

	fs, err := model.FromSnapshot(state, storage.NewMemory(), model.Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 7, fs.Usage().Reserved)
	assert.EqualValues(t, 7, fs.Usage().Used)
}

func TestInvalidSnapshots(t *testing.T) {
	badStrategy := snapshot.Default()
	badStrategy.SelectedAlgorithm = "HFS+"
	_, err := model.FromSnapshot(badStrategy, storage.NewMemory(), model.Options{})
	simtest.RequireKind(t, err, blocksim.KindInvalidInput)

	badPolicy := snapshot.Default()
	badPolicy.AllocationPolicy = "best-fit"
	_, err = model.FromSnapshot(badPolicy, storage.NewMemory(), model.Options{})
	simtest.RequireKind(t, err, blocksim.KindInvalidInput)

	overfull := snapshot.Default()
	overfull.DiskBlocks = 100
	overfull.BlockUsage["huge"] = 200
	_, err = model.FromSnapshot(overfull, storage.NewMemory(), model.Options{})
	simtest.RequireKind(t, err, blocksim.KindCapacityExceeded)
}

func TestSnapshotIsIndependent(t *testing.T) {
	fs, _ := simtest.NewFilesystem(t, blocksim.StrategyFAT32, 1000, pool.PolicyCursor)
	_, err := fs.Create("a.txt", 50, "hi")
	require.NoError(t, err)

	state := fs.Snapshot()
	delete(state.AllocationTable, "a.txt")
	state.BlockUsage["a.txt"] = 1

	assert.Len(t, fs.AllocationTable(), 1)
	assert.EqualValues(t, 50, fs.Files()[0].Blocks)
}
