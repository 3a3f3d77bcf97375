// Package profiles holds the fixed parameters of each allocation strategy: the
// fraction of the disk reserved for its bookkeeping structures, the per-file
// block quota, and the descriptive limits shown to users.
package profiles

import (
	_ "embed"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/dargueta/blocksim"
	"github.com/dargueta/blocksim/pool"
	"github.com/gocarina/gocsv"
)

// Profile describes one allocation strategy.
type Profile struct {
	Slug string `csv:"slug"`
	Name string `csv:"name"`

	// ReserveNumerator and ReserveDenominator give the exact fraction of the
	// disk withheld for the strategy's metadata. Keeping it rational makes
	// floor(total * ratio) exact for every total.
	ReserveNumerator   uint `csv:"reserve_numerator"`
	ReserveDenominator uint `csv:"reserve_denominator"`

	// MaxBlocksPerFile is the largest block count a single file may hold. Zero
	// means there is no limit.
	MaxBlocksPerFile int `csv:"max_blocks_per_file"`

	ClusterSize      string `csv:"cluster_size"`
	MaxDiskSize      string `csv:"max_disk_size"`
	MaxPartitionSize string `csv:"max_partition_size"`
	MaxFileSize      string `csv:"max_file_size"`
	Notes            string `csv:"notes"`

	Strategy blocksim.Strategy `csv:"-"`
}

// Ratio is the fraction of the disk reserved for this strategy's metadata.
func (p Profile) Ratio() pool.Ratio {
	return pool.Ratio{Numerator: p.ReserveNumerator, Denominator: p.ReserveDenominator}
}

// ReservedBlocks returns floor(totalBlocks * ratio).
func (p Profile) ReservedBlocks(totalBlocks uint) uint {
	return p.Ratio().Of(totalBlocks)
}

// AllowsBlocks reports whether a single file may hold `blocks` blocks.
func (p Profile) AllowsBlocks(blocks int) bool {
	return p.MaxBlocksPerFile <= 0 || blocks <= p.MaxBlocksPerFile
}

//go:embed strategy-profiles.csv
var strategyProfilesRawCSV string
var strategyProfiles map[blocksim.Strategy]Profile

// Lookup returns the profile for a strategy.
func Lookup(strategy blocksim.Strategy) (Profile, error) {
	profile, ok := strategyProfiles[strategy]
	if ok {
		return profile, nil
	}
	return Profile{}, blocksim.ErrInvalidInput.WithMessage(
		fmt.Sprintf("no profile defined for strategy %s", strategy))
}

// MustLookup is like Lookup but panics for strategies without a profile. Every
// value in [blocksim.AllStrategies] has one.
func MustLookup(strategy blocksim.Strategy) Profile {
	profile, err := Lookup(strategy)
	if err != nil {
		panic(err)
	}
	return profile
}

// All returns the profiles in the order of [blocksim.AllStrategies].
func All() []Profile {
	result := make([]Profile, 0, len(blocksim.AllStrategies))
	for _, strategy := range blocksim.AllStrategies {
		result = append(result, MustLookup(strategy))
	}
	return result
}

func init() {
	csvReader := csv.NewReader(strings.NewReader(strategyProfilesRawCSV))
	csvReader.Comma = '|'

	var rows []Profile
	if err := gocsv.UnmarshalCSV(csvReader, &rows); err != nil {
		panic(fmt.Errorf("failed to decode strategy profiles: %w", err))
	}

	strategyProfiles = make(map[blocksim.Strategy]Profile, len(rows))
	for i, row := range rows {
		strategy, err := blocksim.ParseStrategy(row.Slug)
		if err != nil {
			panic(fmt.Errorf("row %d: %w", i+1, err))
		}

		_, exists := strategyProfiles[strategy]
		if exists {
			panic(fmt.Errorf(
				"duplicate definition for strategy %q found on row %d", row.Slug, i+1))
		}
		row.Strategy = strategy
		strategyProfiles[strategy] = row
	}

	for _, strategy := range blocksim.AllStrategies {
		if _, ok := strategyProfiles[strategy]; !ok {
			panic(fmt.Errorf("no profile defined for strategy %s", strategy))
		}
	}
}
