package pool

import "fmt"

// BlockID numbers blocks starting at 1. Zero never names a real block.
type BlockID uint

// Extent is a contiguous run of blocks, the half-open range [Start, Start+Length).
//
// An extent with a zero Start still carries a meaningful Length: it describes
// blocks whose location is unknown, e.g. ones restored from a snapshot that
// only recorded a block count.
type Extent struct {
	Start  BlockID
	Length uint
}

// End returns the first block past the extent.
func (e Extent) End() BlockID {
	return e.Start + BlockID(e.Length)
}

// Last returns the final block of the extent, i.e. the inclusive end.
func (e Extent) Last() BlockID {
	if e.Length == 0 {
		return e.Start
	}
	return e.End() - 1
}

// IsPlaced is true if the extent refers to a known location.
func (e Extent) IsPlaced() bool {
	return e.Start != 0 && e.Length != 0
}

// Contains reports whether block lies within a placed extent.
func (e Extent) Contains(block BlockID) bool {
	return e.IsPlaced() && block >= e.Start && block < e.End()
}

func (e Extent) String() string {
	if !e.IsPlaced() {
		return fmt.Sprintf("[?; %d blocks]", e.Length)
	}
	return fmt.Sprintf("[%d, %d)", e.Start, e.End())
}

// Ratio is an exact fraction of the disk.
type Ratio struct {
	Numerator   uint
	Denominator uint
}

// Of returns floor(total * r).
func (r Ratio) Of(total uint) uint {
	if r.Denominator == 0 {
		return 0
	}
	return uint(uint64(total) * uint64(r.Numerator) / uint64(r.Denominator))
}
