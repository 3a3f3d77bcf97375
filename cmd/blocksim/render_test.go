package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
	"github.com/dargueta/blocksim/profiles"
	"github.com/dargueta/blocksim/records"
	simtest "github.com/dargueta/blocksim/testing"
	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// written returns what was written into a zero-filled buffer.
func written(buffer []byte) string {
	return string(bytes.TrimRight(buffer, "\x00"))
}

func TestUsageSegments(t *testing.T) {
	reserved, files, free := usageSegments(
		pool.Usage{Total: 1000, Reserved: 160, Used: 210}, 50)
	assert.Equal(t, 8, reserved)
	assert.Equal(t, 2, files)
	assert.Equal(t, 40, free)

	reserved, files, free = usageSegments(pool.Usage{}, 10)
	assert.Equal(t, 0, reserved)
	assert.Equal(t, 0, files)
	assert.Equal(t, 10, free)
}

func TestRenderUsage(t *testing.T) {
	buffer := make([]byte, 256)
	usage := pool.Usage{
		Total: 100, Reserved: 16, Used: 66, FileBlocks: 50, Free: 34, Cursor: 51,
	}
	require.NoError(t, renderUsage(bytewriter.New(buffer), usage))

	assert.Equal(
		t,
		"["+strings.Repeat("#", 8)+strings.Repeat("=", 25)+strings.Repeat(".", 17)+"]\n"+
			"reserved 16  files 50  free 34  total 100  next block 51\n",
		written(buffer),
	)
}

func TestRenderAllocationTable(t *testing.T) {
	buffer := make([]byte, 512)
	entries := []records.FATEntry{
		{Name: "a.txt", Blocks: 50, StartBlock: 1, EndBlock: 50, Path: "/a.txt"},
		{Name: "photo.jpg", Blocks: 7, StartBlock: 51, EndBlock: 57, Path: "/pics/photo.jpg"},
	}
	require.NoError(t, renderAllocationTable(bytewriter.New(buffer), entries))

	assert.Equal(
		t,
		"FILE       BLOCKS  START  END  PATH\n"+
			"a.txt      50      1      50   /a.txt\n"+
			"photo.jpg  7       51     57   /pics/photo.jpg\n",
		written(buffer),
	)
}

func TestRenderJournal(t *testing.T) {
	buffer := make([]byte, 256)
	entries := []records.JournalEntry{
		{Seq: 1, Op: records.OpCreated, Name: "a", Blocks: 3, Path: "/a"},
		{Seq: 2, Op: records.OpNote, Text: "disk checked"},
	}
	require.NoError(t, renderJournal(bytewriter.New(buffer), entries))

	assert.Equal(
		t,
		"   1  File created: a, Blocks: 3, Path: /a\n   2  disk checked\n",
		written(buffer),
	)
}

func TestRenderProfile(t *testing.T) {
	buffer := make([]byte, 1024)
	require.NoError(t, renderProfile(bytewriter.New(buffer), profiles.MustLookup(blocksim.StrategyFAT32)))

	output := written(buffer)
	assert.Contains(t, output, "Strategy:")
	assert.Contains(t, output, "FAT32")
	assert.Contains(t, output, "16/100 of the disk")
	assert.Contains(t, output, "200 blocks")
}

func TestFileRowsAndExport(t *testing.T) {
	fs, _ := simtest.NewFilesystem(t, blocksim.StrategyFAT32, 1000, pool.PolicyCursor)
	_, err := fs.Create("a.txt", 50, "hi")
	require.NoError(t, err)
	require.NoError(t, fs.SetStrategy(blocksim.StrategyEXT))
	_, err = fs.Replace("a.txt", 10, "hello")
	require.NoError(t, err)

	rows := fileRows(fs)
	require.Len(t, rows, 1)
	assert.Equal(
		t,
		fileRow{
			Name:       "a.txt",
			Blocks:     10,
			Start:      51,
			End:        60,
			Path:       "/a.txt",
			Strategies: "FAT32 EXT",
		},
		rows[0],
	)

	buffer := make([]byte, 256)
	require.NoError(t, exportCSV(bytewriter.New(buffer), rows))
	assert.Equal(
		t,
		"name,blocks,start_block,end_block,path,strategies\n"+
			"a.txt,10,51,60,/a.txt,FAT32 EXT\n",
		written(buffer),
	)
}
