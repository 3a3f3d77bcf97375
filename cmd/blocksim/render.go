package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dargueta/blocksim/model"
	"github.com/dargueta/blocksim/pool"
	"github.com/dargueta/blocksim/profiles"
	"github.com/dargueta/blocksim/records"
	"github.com/gocarina/gocsv"
)

const usageBarWidth = 50

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func renderAllocationTable(w io.Writer, entries []records.FATEntry) error {
	table := newTable(w)
	fmt.Fprintln(table, "FILE\tBLOCKS\tSTART\tEND\tPATH")
	for _, entry := range entries {
		fmt.Fprintf(
			table,
			"%s\t%d\t%d\t%d\t%s\n",
			entry.Name,
			entry.Blocks,
			entry.StartBlock,
			entry.EndBlock,
			entry.Path)
	}
	return table.Flush()
}

func renderMFT(w io.Writer, entries []records.MFTEntry) error {
	table := newTable(w)
	fmt.Fprintln(table, "FILE\tSIZE\tBLOCKS\tPATH")
	for _, entry := range entries {
		fmt.Fprintf(table, "%s\t%d\t%d\t%s\n", entry.Name, entry.Size, entry.Blocks, entry.Path)
	}
	return table.Flush()
}

func renderJournal(w io.Writer, entries []records.JournalEntry) error {
	for _, entry := range entries {
		if _, err := fmt.Fprintf(w, "%4d  %s\n", entry.Seq, entry); err != nil {
			return err
		}
	}
	return nil
}

// usageSegments splits `width` cells between reserved, file and free blocks.
func usageSegments(usage pool.Usage, width int) (reserved, files, free int) {
	if usage.Total == 0 {
		return 0, 0, width
	}
	reserved = int(uint64(usage.Reserved) * uint64(width) / uint64(usage.Total))
	used := int(uint64(usage.Used) * uint64(width) / uint64(usage.Total))
	return reserved, used - reserved, width - used
}

// renderUsage draws the three-segment capacity indicator: `#` for reserved
// blocks, `=` for blocks held by files, `.` for free blocks.
func renderUsage(w io.Writer, usage pool.Usage) error {
	reserved, files, free := usageSegments(usage, usageBarWidth)
	_, err := fmt.Fprintf(
		w,
		"[%s%s%s]\nreserved %d  files %d  free %d  total %d  next block %d\n",
		strings.Repeat("#", reserved),
		strings.Repeat("=", files),
		strings.Repeat(".", free),
		usage.Reserved,
		usage.FileBlocks,
		usage.Free,
		usage.Total,
		usage.Cursor)
	return err
}

func renderProfile(w io.Writer, profile profiles.Profile) error {
	quota := "unlimited"
	if profile.MaxBlocksPerFile > 0 {
		quota = fmt.Sprintf("%d blocks", profile.MaxBlocksPerFile)
	}

	table := newTable(w)
	fmt.Fprintf(table, "Strategy:\t%s\n", profile.Strategy)
	fmt.Fprintf(
		table,
		"Reserved:\t%d/%d of the disk\n",
		profile.ReserveNumerator,
		profile.ReserveDenominator)
	fmt.Fprintf(table, "Max per file:\t%s\n", quota)
	fmt.Fprintf(table, "Cluster size:\t%s\n", profile.ClusterSize)
	fmt.Fprintf(table, "Max disk size:\t%s\n", profile.MaxDiskSize)
	fmt.Fprintf(table, "Max partition size:\t%s\n", profile.MaxPartitionSize)
	fmt.Fprintf(table, "Max file size:\t%s\n", profile.MaxFileSize)
	if profile.Notes != "" {
		fmt.Fprintf(table, "Notes:\t%s\n", profile.Notes)
	}
	return table.Flush()
}

// fileRow is one line of the file listing and of the CSV export.
type fileRow struct {
	Name       string `csv:"name" json:"name"`
	Blocks     uint   `csv:"blocks" json:"blocks"`
	Start      uint   `csv:"start_block" json:"start_block"`
	End        uint   `csv:"end_block" json:"end_block"`
	Path       string `csv:"path" json:"path"`
	Strategies string `csv:"strategies" json:"strategies"`
}

func fileRows(fs *model.Filesystem) []fileRow {
	files := fs.Files()
	rows := make([]fileRow, 0, len(files))
	for _, file := range files {
		owners := fs.Owners(file.Name)
		tags := make([]string, len(owners))
		for i, owner := range owners {
			tags[i] = owner.String()
		}

		row := fileRow{
			Name:       file.Name,
			Blocks:     file.Blocks,
			Path:       file.Path,
			Strategies: strings.Join(tags, " "),
		}
		if file.Extent.IsPlaced() {
			row.Start = uint(file.Extent.Start)
			row.End = uint(file.Extent.Last())
		}
		rows = append(rows, row)
	}
	return rows
}

func renderFiles(w io.Writer, rows []fileRow) error {
	table := newTable(w)
	fmt.Fprintln(table, "FILE\tBLOCKS\tRANGE\tPATH\tRECORDED BY")
	for _, row := range rows {
		placement := "?"
		if row.Start != 0 {
			placement = fmt.Sprintf("%d-%d", row.Start, row.End)
		}
		fmt.Fprintf(
			table, "%s\t%d\t%s\t%s\t%s\n", row.Name, row.Blocks, placement, row.Path, row.Strategies)
	}
	return table.Flush()
}

func exportCSV(w io.Writer, rows []fileRow) error {
	return gocsv.Marshal(rows, w)
}

func renderJSON(w io.Writer, value any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
