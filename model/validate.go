package model

import (
	"fmt"
	"strings"

	"github.com/dargueta/blocksim"
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// validateName rejects names that can't be a single file inside a directory.
func validateName(name string) error {
	if isBlank(name) {
		return blocksim.ErrInvalidInput.WithMessage("file name is required")
	}
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return blocksim.ErrInvalidInput.WithMessage(
			fmt.Sprintf("%q is not a valid file name", name))
	}
	return nil
}

func validateBlockCount(blockCount int) (uint, error) {
	if blockCount <= 0 {
		return 0, blocksim.ErrInvalidInput.WithMessage(
			fmt.Sprintf("block count must be positive, got %d", blockCount))
	}
	return uint(blockCount), nil
}

// checkQuota fails if the active strategy doesn't allow a file of `blocks`
// blocks.
func (f *Filesystem) checkQuota(blocks uint) error {
	profile := f.Profile()
	if profile.AllowsBlocks(int(blocks)) {
		return nil
	}
	return blocksim.ErrQuotaExceeded.WithMessage(
		fmt.Sprintf(
			"%s allows at most %d blocks per file, requested %d",
			f.strategy,
			profile.MaxBlocksPerFile,
			blocks))
}
