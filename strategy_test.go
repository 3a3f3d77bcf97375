package blocksim_test

import (
	"testing"

	"github.com/dargueta/blocksim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrategy(t *testing.T) {
	cases := map[string]blocksim.Strategy{
		"":      blocksim.StrategyNone,
		"none":  blocksim.StrategyNone,
		"FAT32": blocksim.StrategyFAT32,
		"fat32": blocksim.StrategyFAT32,
		" ntfs": blocksim.StrategyNTFS,
		"EXT":   blocksim.StrategyEXT,
	}
	for input, expected := range cases {
		actual, err := blocksim.ParseStrategy(input)
		require.NoError(t, err, "failed to parse %q", input)
		assert.Equal(t, expected, actual, "wrong strategy for %q", input)
	}
}

func TestParseStrategyUnknown(t *testing.T) {
	_, err := blocksim.ParseStrategy("HFS+")
	assert.ErrorIs(t, err, blocksim.ErrInvalidInput)
}

func TestStrategyTagRoundTrip(t *testing.T) {
	for _, strategy := range blocksim.AllStrategies {
		parsed, err := blocksim.ParseStrategy(strategy.Tag())
		require.NoError(t, err)
		assert.Equal(t, strategy, parsed)
	}
	assert.Equal(t, "NONE", blocksim.StrategyNone.String())
	assert.Equal(t, "", blocksim.StrategyNone.Tag())
}
