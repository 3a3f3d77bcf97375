package records

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
)

// JournalEntry is one structured line of the EXT journal. Entries are matched
// by FileName, never by searching their text, so one file's path can't
// accidentally rewrite or delete another file's entries.
type JournalEntry struct {
	Seq    uint64
	Op     Op
	Name   string
	Blocks uint
	Path   string
	// Text is only set for OpNote entries.
	Text string
}

func (JournalEntry) Strategy() blocksim.Strategy { return blocksim.StrategyEXT }
func (e JournalEntry) FileName() string          { return e.Name }
func (JournalEntry) isRecord()                   {}

// String renders the entry as a journal line.
func (e JournalEntry) String() string {
	switch e.Op {
	case OpCreated:
		return fmt.Sprintf("File created: %s, Blocks: %d, Path: %s", e.Name, e.Blocks, e.Path)
	case OpReplaced:
		return fmt.Sprintf(
			"File saved/replaced: %s, Blocks: %d, Path: %s", e.Name, e.Blocks, e.Path)
	default:
		return e.Text
	}
}

// journalLinePattern matches rendered lines as well as the older Spanish
// wording found in existing state files.
var journalLinePattern = regexp.MustCompile(
	`^(File created|File saved/replaced|Archivo creado|Archivo guardado/reemplazado): ` +
		`(.+), (?:Blocks|Bloques): (\d+), Path: (.*)$`)

// ParseJournalLine turns a rendered line back into an entry. Lines that don't
// follow the journal format become OpNote entries holding the text verbatim.
func ParseJournalLine(line string) JournalEntry {
	match := journalLinePattern.FindStringSubmatch(line)
	if match == nil {
		return JournalEntry{Op: OpNote, Text: line}
	}

	blocks, err := strconv.ParseUint(match[3], 10, 0)
	if err != nil {
		return JournalEntry{Op: OpNote, Text: line}
	}

	op := OpCreated
	if match[1] == "File saved/replaced" || match[1] == "Archivo guardado/reemplazado" {
		op = OpReplaced
	}
	return JournalEntry{
		Op:     op,
		Name:   match[2],
		Blocks: uint(blocks),
		Path:   match[4],
	}
}

// Journal is the EXT store: an append-only sequence of entries. Replacing a
// file appends a new entry instead of editing an old one.
type Journal struct {
	entries []JournalEntry
	nextSeq uint64
}

func NewJournal() *Journal {
	return &Journal{nextSeq: 1}
}

func (j *Journal) Strategy() blocksim.Strategy {
	return blocksim.StrategyEXT
}

func (j *Journal) Record(op Op, name string, extent pool.Extent, path string) {
	j.Append(JournalEntry{Op: op, Name: name, Blocks: extent.Length, Path: path})
}

// Append adds an entry at the end, assigning it the next sequence number if it
// doesn't have one.
func (j *Journal) Append(entry JournalEntry) {
	if entry.Seq == 0 || entry.Seq < j.nextSeq {
		entry.Seq = j.nextSeq
	}
	j.nextSeq = entry.Seq + 1
	j.entries = append(j.entries, entry)
}

func (j *Journal) Relocate(name, newPath string) bool {
	found := false
	for i := range j.entries {
		if j.entries[i].Op != OpNote && j.entries[i].Name == name {
			j.entries[i].Path = newPath
			found = true
		}
	}
	return found
}

func (j *Journal) Remove(name string) bool {
	kept := j.entries[:0]
	for _, entry := range j.entries {
		if entry.Op != OpNote && entry.Name == name {
			continue
		}
		kept = append(kept, entry)
	}
	removed := len(kept) != len(j.entries)
	j.entries = kept
	return removed
}

func (j *Journal) Contains(name string) bool {
	for _, entry := range j.entries {
		if entry.Op != OpNote && entry.Name == name {
			return true
		}
	}
	return false
}

func (j *Journal) Lookup(name string) []Record {
	var result []Record
	for _, entry := range j.entries {
		if entry.Op != OpNote && entry.Name == name {
			result = append(result, entry)
		}
	}
	return result
}

func (j *Journal) Len() int {
	return len(j.entries)
}

// Entries returns a copy of the journal, oldest first.
func (j *Journal) Entries() []JournalEntry {
	result := make([]JournalEntry, len(j.entries))
	copy(result, j.entries)
	return result
}

// Lines renders every entry.
func (j *Journal) Lines() []string {
	result := make([]string, len(j.entries))
	for i, entry := range j.entries {
		result[i] = entry.String()
	}
	return result
}

func (j *Journal) Clone() *Journal {
	return &Journal{entries: j.Entries(), nextSeq: j.nextSeq}
}
