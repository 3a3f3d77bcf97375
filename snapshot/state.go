// Package snapshot persists the complete simulator state as a single JSON
// document, optionally zstd-compressed.
package snapshot

// DefaultDiskBlocks is the capacity of a freshly initialized disk.
const DefaultDiskBlocks = 1000

type FATRecord struct {
	Blocks     uint   `json:"blocks"`
	StartBlock uint   `json:"start_block"`
	EndBlock   uint   `json:"end_block"`
	Path       string `json:"path"`
}

type MFTRecord struct {
	Size   uint   `json:"size"`
	Blocks uint   `json:"blocks"`
	Path   string `json:"path"`
}

// JournalRecord is the structured form of a journal line.
type JournalRecord struct {
	Seq      uint64 `json:"seq"`
	Op       string `json:"op"`
	FileName string `json:"file_name,omitempty"`
	Blocks   uint   `json:"blocks,omitempty"`
	Path     string `json:"path,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ExtentRecord is where a file's blocks were placed and where its payload
// lives. Start is zero when unknown.
type ExtentRecord struct {
	Start  uint   `json:"start"`
	Length uint   `json:"length"`
	Path   string `json:"path"`
}

// State is everything needed to rebuild a simulator.
type State struct {
	AllocationTable map[string]FATRecord `json:"allocation_table"`
	// Journal holds the rendered journal lines.
	Journal []string `json:"journal"`
	// JournalEntries is the structured journal. When it's absent, loaders fall
	// back to parsing Journal.
	JournalEntries []JournalRecord         `json:"journal_entries,omitempty"`
	MFT            map[string]MFTRecord    `json:"mft"`
	DiskBlocks     uint                    `json:"disk_blocks"`
	UsedBlocks     uint                    `json:"used_blocks"`
	ReservedBlocks uint                    `json:"reserved_blocks"`
	BlockUsage     map[string]uint         `json:"block_usage"`
	BlockExtents   map[string]ExtentRecord `json:"block_extents,omitempty"`
	// SelectedAlgorithm is one of "", "FAT32", "NTFS" or "EXT".
	SelectedAlgorithm  string `json:"selected_algorithm"`
	NextAvailableBlock uint   `json:"next_available_block"`
	AllocationPolicy   string `json:"allocation_policy,omitempty"`
	Directory          string `json:"directory,omitempty"`
}

// Default returns the state of a fresh, unformatted disk.
func Default() *State {
	return &State{
		AllocationTable:    make(map[string]FATRecord),
		Journal:            []string{},
		MFT:                make(map[string]MFTRecord),
		DiskBlocks:         DefaultDiskBlocks,
		BlockUsage:         make(map[string]uint),
		NextAvailableBlock: 1,
	}
}

// fillDefaults replaces values missing from a decoded document.
func (s *State) fillDefaults() {
	if s.AllocationTable == nil {
		s.AllocationTable = make(map[string]FATRecord)
	}
	if s.Journal == nil {
		s.Journal = []string{}
	}
	if s.MFT == nil {
		s.MFT = make(map[string]MFTRecord)
	}
	if s.BlockUsage == nil {
		s.BlockUsage = make(map[string]uint)
	}
	if s.DiskBlocks == 0 {
		s.DiskBlocks = DefaultDiskBlocks
	}
	if s.NextAvailableBlock == 0 {
		s.NextAvailableBlock = 1
	}
}
