package blocksim

import (
	"fmt"
	"strings"
)

// Strategy selects which metadata structure describes newly written files.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyFAT32
	StrategyNTFS
	StrategyEXT
)

// AllStrategies lists every selectable strategy, NONE included.
var AllStrategies = []Strategy{StrategyNone, StrategyFAT32, StrategyNTFS, StrategyEXT}

// String returns the human-readable name. NONE is spelled out; use [Strategy.Tag]
// for the persisted form.
func (s Strategy) String() string {
	if s == StrategyNone {
		return "NONE"
	}
	return s.Tag()
}

// Tag returns the value stored in snapshots, where NONE is the empty string.
func (s Strategy) Tag() string {
	switch s {
	case StrategyNone:
		return ""
	case StrategyFAT32:
		return "FAT32"
	case StrategyNTFS:
		return "NTFS"
	case StrategyEXT:
		return "EXT"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a strategy name to a Strategy. Matching is case
// insensitive; the empty string and "none" both select StrategyNone.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "", "NONE":
		return StrategyNone, nil
	case "FAT32", "FAT":
		return StrategyFAT32, nil
	case "NTFS":
		return StrategyNTFS, nil
	case "EXT":
		return StrategyEXT, nil
	}
	return StrategyNone, ErrInvalidInput.WithMessage(
		fmt.Sprintf("unknown allocation strategy %q", name))
}
