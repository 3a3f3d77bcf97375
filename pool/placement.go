package pool

import (
	"fmt"
	"strings"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/blocksim"
)

// Policy chooses where new extents are placed.
type Policy string

const (
	// PolicyCursor hands out blocks from an ever-advancing cursor. Released
	// ranges are never handed out again.
	PolicyCursor Policy = "cursor"
	// PolicyFirstFit places each extent in the first run of free blocks large
	// enough to hold it, reusing released ranges.
	PolicyFirstFit Policy = "first-fit"
)

// ParsePolicy converts a policy name to a Policy. The empty string selects the
// cursor policy.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyCursor:
		return PolicyCursor, nil
	case PolicyFirstFit, "firstfit":
		return PolicyFirstFit, nil
	}
	return "", blocksim.ErrInvalidInput.WithMessage(
		fmt.Sprintf("unknown allocation policy %q", name))
}

type placer interface {
	// find returns where `count` blocks would go if `releasing` were freed
	// first. It must not modify any state.
	find(count uint, releasing Extent) (Extent, bool)
	claim(extent Extent)
	free(extent Extent)
	cursor() BlockID
	setCursor(cursor BlockID)
}

func newPlacer(policy Policy, totalBlocks uint) placer {
	if policy == PolicyFirstFit {
		return newBitmapPlacer(totalBlocks)
	}
	return &cursorPlacer{next: 1}
}

// -----------------------------------------------------------------------------

type cursorPlacer struct {
	next BlockID
}

func (c *cursorPlacer) find(count uint, _ Extent) (Extent, bool) {
	return Extent{Start: c.next, Length: count}, true
}

func (c *cursorPlacer) claim(extent Extent) {
	if extent.IsPlaced() && extent.End() > c.next {
		c.next = extent.End()
	}
}

func (c *cursorPlacer) free(Extent) {}

func (c *cursorPlacer) cursor() BlockID {
	return c.next
}

func (c *cursorPlacer) setCursor(cursor BlockID) {
	if cursor == 0 {
		cursor = 1
	}
	c.next = cursor
}

// -----------------------------------------------------------------------------

// bitmapPlacer tracks live blocks in a bitmap. Bit i describes block i+1.
type bitmapPlacer struct {
	inUse       bitmap.Bitmap
	totalBlocks uint
	highWater   BlockID
}

func newBitmapPlacer(totalBlocks uint) *bitmapPlacer {
	return &bitmapPlacer{
		inUse:       bitmap.New(int(totalBlocks)),
		totalBlocks: totalBlocks,
		highWater:   1,
	}
}

func (b *bitmapPlacer) isFree(index uint, releasing Extent) bool {
	if releasing.Contains(BlockID(index + 1)) {
		return true
	}
	return !b.inUse.Get(int(index))
}

// find returns the first run of `count` free blocks.
func (b *bitmapPlacer) find(count uint, releasing Extent) (Extent, bool) {
	if count == 0 {
		return Extent{}, false
	}

	runSize := uint(0)
	runStart := uint(0)
	for i := uint(0); i < b.totalBlocks; i++ {
		if !b.isFree(i, releasing) {
			// End of the run; start looking again after this block.
			runSize = 0
			continue
		}

		if runSize == 0 {
			runStart = i
		}
		runSize++
		if runSize == count {
			return Extent{Start: BlockID(runStart + 1), Length: count}, true
		}
	}

	// We ran off the end of the bitmap before we reached the necessary count.
	return Extent{}, false
}

func (b *bitmapPlacer) setRange(extent Extent, value bool) {
	if !extent.IsPlaced() {
		return
	}
	for block := extent.Start; block < extent.End(); block++ {
		if uint(block) > b.totalBlocks {
			break
		}
		b.inUse.Set(int(block-1), value)
	}
}

func (b *bitmapPlacer) claim(extent Extent) {
	b.setRange(extent, true)
	if extent.End() > b.highWater {
		b.highWater = extent.End()
	}
}

func (b *bitmapPlacer) free(extent Extent) {
	b.setRange(extent, false)
}

func (b *bitmapPlacer) cursor() BlockID {
	return b.highWater
}

func (b *bitmapPlacer) setCursor(cursor BlockID) {
	if cursor == 0 {
		cursor = 1
	}
	b.highWater = cursor
}
