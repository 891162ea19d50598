package fibonacci

import (
	"math/big"

	"github.com/agbruneau/fibcore/internal/fibonacci/memory"
)

// presizeFromArena grows each of regs to the word capacity F(n) is expected
// to need, carving every register's backing storage out of a single
// contiguous arena allocation. Below memory.GCAutoThreshold the loop's own
// incremental growth is cheap enough that a dedicated arena isn't worth the
// upfront allocation, so this is a no-op for small n.
func presizeFromArena(n uint64, regs ...*big.Int) {
	if n < memory.GCAutoThreshold {
		return
	}
	arena := memory.NewCalculationArena(n)
	words := int(float64(n)*FibonacciGrowthFactor/64) + 1
	for _, z := range regs {
		arena.PreSizeFromArena(z, words)
	}
}
