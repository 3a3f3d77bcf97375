package pool_test

import (
	"testing"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fatRatio = pool.Ratio{Numerator: 16, Denominator: 100}
var ntfsRatio = pool.Ratio{Numerator: 125, Denominator: 1000}
var extRatio = pool.Ratio{Numerator: 5, Denominator: 100}

func assertInvariant(t *testing.T, p *pool.BlockPool) {
	t.Helper()
	assert.LessOrEqual(t, p.ReservedBlocks(), p.UsedBlocks(), "reserved > used")
	assert.LessOrEqual(t, p.UsedBlocks(), p.TotalBlocks(), "used > total")
}

func TestConfigureResets(t *testing.T) {
	p := pool.New(1000, pool.PolicyCursor)
	require.NoError(t, p.ApplyReservationRatio(fatRatio))
	_, err := p.TryReserve(10)
	require.NoError(t, err)

	p.Configure(500)
	assert.EqualValues(t, 500, p.TotalBlocks())
	assert.EqualValues(t, 0, p.ReservedBlocks())
	assert.EqualValues(t, 0, p.UsedBlocks())
	assert.EqualValues(t, 1, p.NextFree())
}

func TestApplyReservationRatio(t *testing.T) {
	p := pool.New(1000, pool.PolicyCursor)
	require.NoError(t, p.ApplyReservationRatio(fatRatio))
	assert.EqualValues(t, 160, p.ReservedBlocks())
	assert.EqualValues(t, 160, p.UsedBlocks())

	_, err := p.TryReserve(50)
	require.NoError(t, err)
	assert.EqualValues(t, 210, p.UsedBlocks())

	// Switching moves the reservation but keeps the 50 file blocks counted.
	require.NoError(t, p.ApplyReservationRatio(ntfsRatio))
	assert.EqualValues(t, 125, p.ReservedBlocks())
	assert.EqualValues(t, 175, p.UsedBlocks())

	require.NoError(t, p.ApplyReservationRatio(extRatio))
	assert.EqualValues(t, 50, p.ReservedBlocks())
	assert.EqualValues(t, 100, p.UsedBlocks())
	assertInvariant(t, p)
}

func TestApplyReservationRatioOverCapacity(t *testing.T) {
	p := pool.New(1000, pool.PolicyCursor)
	require.NoError(t, p.ApplyReservationRatio(extRatio))
	_, err := p.TryReserve(900)
	require.NoError(t, err)

	err = p.ApplyReservationRatio(fatRatio)
	assert.ErrorIs(t, err, blocksim.ErrCapacityExceeded)
	assert.EqualValues(t, 50, p.ReservedBlocks(), "failed switch modified the pool")
	assert.EqualValues(t, 950, p.UsedBlocks(), "failed switch modified the pool")
}

func TestTryReserveAdvancesCursor(t *testing.T) {
	p := pool.New(1000, pool.PolicyCursor)
	require.NoError(t, p.ApplyReservationRatio(fatRatio))

	first, err := p.TryReserve(50)
	require.NoError(t, err)
	assert.Equal(t, pool.Extent{Start: 1, Length: 50}, first)
	assert.EqualValues(t, 50, first.Last())
	assert.EqualValues(t, 51, first.End())

	second, err := p.TryReserve(10)
	require.NoError(t, err)
	assert.Equal(t, pool.Extent{Start: 51, Length: 10}, second)
	assert.EqualValues(t, 61, p.NextFree())
}

func TestTryReserveCapacityExceeded(t *testing.T) {
	p := pool.New(100, pool.PolicyCursor)
	_, err := p.TryReserve(90)
	require.NoError(t, err)

	before := p.Usage()
	_, err = p.TryReserve(11)
	assert.ErrorIs(t, err, blocksim.ErrCapacityExceeded)
	assert.Equal(t, before, p.Usage(), "failed reservation modified the pool")

	_, err = p.TryReserve(10)
	assert.NoError(t, err, "exactly filling the pool must succeed")
	assert.EqualValues(t, 0, p.Usage().Free)
}

func TestTryReserveZero(t *testing.T) {
	p := pool.New(100, pool.PolicyCursor)
	_, err := p.TryReserve(0)
	assert.ErrorIs(t, err, blocksim.ErrInvalidInput)
}

func TestReleaseNeverReusesCursorRange(t *testing.T) {
	p := pool.New(1000, pool.PolicyCursor)
	extent, err := p.TryReserve(40)
	require.NoError(t, err)
	cursorBefore := p.NextFree()

	p.Release(extent)
	assert.EqualValues(t, 0, p.UsedBlocks())
	assert.Equal(t, cursorBefore, p.NextFree(), "release moved the cursor")

	next, err := p.TryReserve(40)
	require.NoError(t, err)
	assert.EqualValues(t, 41, next.Start, "released range was reused")
}

func TestReleaseClampsAtReservation(t *testing.T) {
	p := pool.New(1000, pool.PolicyCursor)
	require.NoError(t, p.ApplyReservationRatio(fatRatio))
	_, err := p.TryReserve(10)
	require.NoError(t, err)

	p.Release(pool.Extent{Length: 500})
	assert.EqualValues(t, 160, p.UsedBlocks())
	assertInvariant(t, p)
}

func TestPlanDoesNotMutate(t *testing.T) {
	p := pool.New(100, pool.PolicyCursor)
	held, err := p.TryReserve(60)
	require.NoError(t, err)
	before := p.Usage()

	// 60 held, replacing them with 90 only works because the 60 are released.
	planned, err := p.Plan(90, held)
	require.NoError(t, err)
	assert.EqualValues(t, 61, planned.Start)
	assert.Equal(t, before, p.Usage())

	_, err = p.Plan(101, held)
	assert.ErrorIs(t, err, blocksim.ErrCapacityExceeded)
}

func TestFirstFitReusesReleasedRange(t *testing.T) {
	p := pool.New(100, pool.PolicyFirstFit)
	a, err := p.TryReserve(10)
	require.NoError(t, err)
	b, err := p.TryReserve(10)
	require.NoError(t, err)
	_, err = p.TryReserve(10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, a.Start)
	assert.EqualValues(t, 11, b.Start)

	p.Release(b)

	// A smaller request fits in the hole left by b.
	reused, err := p.TryReserve(5)
	require.NoError(t, err)
	assert.EqualValues(t, 11, reused.Start)

	// A larger one doesn't, so it goes after the last allocation.
	after, err := p.TryReserve(20)
	require.NoError(t, err)
	assert.EqualValues(t, 31, after.Start)
	assert.EqualValues(t, 51, p.NextFree())
}

func TestFirstFitSingleBlock(t *testing.T) {
	p := pool.New(3, pool.PolicyFirstFit)
	for expected := pool.BlockID(1); expected <= 3; expected++ {
		extent, err := p.TryReserve(1)
		require.NoError(t, err)
		assert.Equal(t, expected, extent.Start)
	}
	_, err := p.TryReserve(1)
	assert.ErrorIs(t, err, blocksim.ErrCapacityExceeded)
}

func TestFirstFitFragmentation(t *testing.T) {
	p := pool.New(30, pool.PolicyFirstFit)
	a, _ := p.TryReserve(10)
	_, _ = p.TryReserve(10)
	c, _ := p.TryReserve(10)
	p.Release(a)
	p.Release(c)

	// 20 blocks are free, but not contiguously.
	before := p.Usage()
	_, err := p.TryReserve(15)
	assert.ErrorIs(t, err, blocksim.ErrCapacityExceeded)
	assert.Equal(t, before, p.Usage())
}

func TestFirstFitPlanCountsReleasingRange(t *testing.T) {
	p := pool.New(20, pool.PolicyFirstFit)
	held, err := p.TryReserve(15)
	require.NoError(t, err)

	planned, err := p.Plan(18, held)
	require.NoError(t, err)
	assert.EqualValues(t, 1, planned.Start, "releasing range must be treated as free")
}

func TestRestore(t *testing.T) {
	p := pool.New(100, pool.PolicyFirstFit)
	live := []pool.Extent{{Start: 1, Length: 5}, {Start: 20, Length: 5}, {Length: 3}}
	require.NoError(t, p.Restore(16, 29, 25, live))
	assert.EqualValues(t, 29, p.UsedBlocks())
	assert.EqualValues(t, 25, p.NextFree())

	extent, err := p.TryReserve(10)
	require.NoError(t, err)
	assert.EqualValues(t, 6, extent.Start)

	assert.ErrorIs(t, p.Restore(50, 10, 1, nil), blocksim.ErrCapacityExceeded)
}

func TestParsePolicy(t *testing.T) {
	policy, err := pool.ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, pool.PolicyCursor, policy)

	policy, err = pool.ParsePolicy("First-Fit")
	require.NoError(t, err)
	assert.Equal(t, pool.PolicyFirstFit, policy)

	_, err = pool.ParsePolicy("best-fit")
	assert.ErrorIs(t, err, blocksim.ErrInvalidInput)
}

func TestExtentString(t *testing.T) {
	assert.Equal(t, "[1, 51)", pool.Extent{Start: 1, Length: 50}.String())
	assert.Equal(t, "[?; 7 blocks]", pool.Extent{Length: 7}.String())
	assert.False(t, pool.Extent{Length: 7}.Contains(0))
}
