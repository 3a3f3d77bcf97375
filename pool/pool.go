// Package pool implements the block pool shared by every allocation strategy:
// a fixed number of blocks, a reservation for the active strategy's metadata,
// and a count of blocks held by files.
package pool

import (
	"fmt"

	"github.com/dargueta/blocksim"
)

// BlockPool accounts for blocks. It keeps
//
//	0 <= ReservedBlocks <= UsedBlocks <= TotalBlocks
//
// where UsedBlocks is the reservation plus every live file extent. Failed calls
// never modify the pool.
type BlockPool struct {
	totalBlocks    uint
	reservedBlocks uint
	usedBlocks     uint
	policy         Policy
	placer         placer
}

// Usage is a point-in-time view of the pool, suitable for a reserved/used/free
// capacity indicator.
type Usage struct {
	Total    uint
	Reserved uint
	// Used includes Reserved.
	Used uint
	// FileBlocks is the part of Used held by files.
	FileBlocks uint
	Free       uint
	Cursor     BlockID
}

// New creates an empty pool of `totalBlocks` blocks.
func New(totalBlocks uint, policy Policy) *BlockPool {
	if policy == "" {
		policy = PolicyCursor
	}
	p := &BlockPool{policy: policy}
	p.Configure(totalBlocks)
	return p
}

// Configure sets the capacity and resets the reservation, the used count, and
// the cursor.
func (p *BlockPool) Configure(totalBlocks uint) {
	p.totalBlocks = totalBlocks
	p.reservedBlocks = 0
	p.usedBlocks = 0
	p.placer = newPlacer(p.policy, totalBlocks)
}

// Restore reinstates a previously saved pool. `live` lists the extents held by
// files; only the first-fit policy needs their locations, the cursor policy
// ignores them.
func (p *BlockPool) Restore(
	reservedBlocks, usedBlocks uint, cursor BlockID, live []Extent,
) error {
	if reservedBlocks > usedBlocks || usedBlocks > p.totalBlocks {
		return blocksim.ErrCapacityExceeded.WithMessage(
			fmt.Sprintf(
				"inconsistent pool: reserved=%d used=%d total=%d",
				reservedBlocks,
				usedBlocks,
				p.totalBlocks))
	}

	p.placer = newPlacer(p.policy, p.totalBlocks)
	for _, extent := range live {
		p.placer.claim(extent)
	}
	if cursor > p.placer.cursor() {
		p.placer.setCursor(cursor)
	}
	p.reservedBlocks = reservedBlocks
	p.usedBlocks = usedBlocks
	return nil
}

func (p *BlockPool) TotalBlocks() uint    { return p.totalBlocks }
func (p *BlockPool) ReservedBlocks() uint { return p.reservedBlocks }
func (p *BlockPool) UsedBlocks() uint     { return p.usedBlocks }
func (p *BlockPool) Policy() Policy       { return p.policy }

// NextFree returns the allocation cursor. It never decreases.
func (p *BlockPool) NextFree() BlockID {
	return p.placer.cursor()
}

// ReservationFor returns what the reservation would be under ratio r, without
// applying it.
func (p *BlockPool) ReservationFor(r Ratio) uint {
	return r.Of(p.totalBlocks)
}

// ApplyReservationRatio sets the reservation to floor(TotalBlocks * r). The
// difference from the previous reservation is applied to the used count as
// well, so the reservation is claimed immediately and file blocks stay
// accounted for. It fails with ErrCapacityExceeded if the files already
// present would no longer fit.
func (p *BlockPool) ApplyReservationRatio(r Ratio) error {
	newReserved := r.Of(p.totalBlocks)
	fileBlocks := p.usedBlocks - p.reservedBlocks
	if fileBlocks+newReserved > p.totalBlocks {
		return blocksim.ErrCapacityExceeded.WithMessage(
			fmt.Sprintf(
				"reserving %d blocks leaves no room for the %d blocks held by files (%d total)",
				newReserved,
				fileBlocks,
				p.totalBlocks))
	}

	p.reservedBlocks = newReserved
	p.usedBlocks = fileBlocks + newReserved
	return nil
}

// Plan reports where `count` blocks would be placed if `releasing` were
// released first. It does not modify the pool.
func (p *BlockPool) Plan(count uint, releasing Extent) (Extent, error) {
	if count == 0 {
		return Extent{}, blocksim.ErrInvalidInput.WithMessage("block count must be positive")
	}

	usedAfterRelease := p.usedBlocks - min(releasing.Length, p.usedBlocks-p.reservedBlocks)
	if usedAfterRelease+count > p.totalBlocks {
		return Extent{}, blocksim.ErrCapacityExceeded.WithMessage(
			fmt.Sprintf(
				"need %d blocks, only %d of %d free",
				count,
				p.totalBlocks-usedAfterRelease,
				p.totalBlocks))
	}

	extent, ok := p.placer.find(count, releasing)
	if !ok {
		return Extent{}, blocksim.ErrCapacityExceeded.WithMessage(
			fmt.Sprintf("no run of %d contiguous free blocks", count))
	}
	return extent, nil
}

// TryReserve claims `count` blocks and returns their extent. On failure the
// pool is unchanged.
func (p *BlockPool) TryReserve(count uint) (Extent, error) {
	extent, err := p.Plan(count, Extent{})
	if err != nil {
		return Extent{}, err
	}
	p.placer.claim(extent)
	p.usedBlocks += count
	return extent, nil
}

// Release returns an extent's blocks to the free count. The used count never
// drops below the reservation. Under the cursor policy the range itself is not
// handed out again.
func (p *BlockPool) Release(extent Extent) {
	if extent.Length > p.usedBlocks-p.reservedBlocks {
		p.usedBlocks = p.reservedBlocks
	} else {
		p.usedBlocks -= extent.Length
	}
	p.placer.free(extent)
}

// Usage returns the current counters.
func (p *BlockPool) Usage() Usage {
	return Usage{
		Total:      p.totalBlocks,
		Reserved:   p.reservedBlocks,
		Used:       p.usedBlocks,
		FileBlocks: p.usedBlocks - p.reservedBlocks,
		Free:       p.totalBlocks - p.usedBlocks,
		Cursor:     p.placer.cursor(),
	}
}
