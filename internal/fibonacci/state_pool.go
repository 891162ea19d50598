package fibonacci

import (
	"math/big"
	"sync"
)

// MaxPooledBitLen is the largest operand size, in bits, a released state may
// carry back into the pool. States grown beyond this during an unusually
// large calculation are left for the garbage collector instead, so the pool
// never pins down an outsized allocation indefinitely.
const MaxPooledBitLen = 100_000_000

// CalculationState holds the registers the fast-doubling loop rotates
// through. FK and FK1 always hold F(k) and F(k+1) for the index k reached
// so far; T1..T4 are scratch registers reused across iterations so the loop
// allocates no new big.Int values once primed.
type CalculationState struct {
	FK, FK1        *big.Int
	T1, T2, T3, T4 *big.Int
}

func newCalculationState() *CalculationState {
	return &CalculationState{
		FK:  new(big.Int),
		FK1: new(big.Int),
		T1:  new(big.Int),
		T2:  new(big.Int),
		T3:  new(big.Int),
		T4:  new(big.Int),
	}
}

func (s *CalculationState) reset() {
	s.FK.SetInt64(0)
	s.FK1.SetInt64(1)
	s.T1.SetInt64(0)
	s.T2.SetInt64(0)
	s.T3.SetInt64(0)
	s.T4.SetInt64(0)
}

var calculationStatePool = sync.Pool{
	New: func() any { return newCalculationState() },
}

// AcquireState returns a CalculationState reset to its initial values
// (FK=0, FK1=1), either recycled from the pool or freshly allocated.
func AcquireState() *CalculationState {
	s := calculationStatePool.Get().(*CalculationState)
	s.reset()
	return s
}

// ReleaseState returns s to the pool for reuse. States whose registers have
// grown beyond MaxPooledBitLen are dropped instead of pooled, so one
// unusually large calculation doesn't inflate the steady-state memory use
// of every later, smaller one. Safe to call with a nil state.
func ReleaseState(s *CalculationState) {
	if s == nil {
		return
	}
	if stateExceedsPoolLimit(s) {
		return
	}
	calculationStatePool.Put(s)
}

func stateExceedsPoolLimit(s *CalculationState) bool {
	for _, v := range [...]*big.Int{s.FK, s.FK1, s.T1, s.T2, s.T3, s.T4} {
		if v.BitLen() > MaxPooledBitLen {
			return true
		}
	}
	return false
}

// symMatrix stores a symmetric 2x2 integer matrix ((a, b), (b, d)), the
// shape every power of the Fibonacci matrix Q=((1,1),(1,0)) takes.
type symMatrix struct {
	a, b, d *big.Int
}

// matrixState holds the scratch registers the matrix-exponentiation engine
// rotates through while computing Q^n.
type matrixState struct {
	res, p, tempMatrix *symMatrix
	t1, t2, t3, t4, t5 *big.Int
}

func newSymMatrix() *symMatrix {
	return &symMatrix{a: new(big.Int), b: new(big.Int), d: new(big.Int)}
}

func newMatrixState() *matrixState {
	return &matrixState{
		res:        newSymMatrix(),
		p:          newSymMatrix(),
		tempMatrix: newSymMatrix(),
		t1:         new(big.Int),
		t2:         new(big.Int),
		t3:         new(big.Int),
		t4:         new(big.Int),
		t5:         new(big.Int),
	}
}

func (s *matrixState) reset() {
	// res starts as the identity matrix ((1,0),(0,1)); p starts as Q itself.
	s.res.a.SetInt64(1)
	s.res.b.SetInt64(0)
	s.res.d.SetInt64(1)
	s.p.a.SetInt64(1)
	s.p.b.SetInt64(1)
	s.p.d.SetInt64(0)
	s.tempMatrix.a.SetInt64(0)
	s.tempMatrix.b.SetInt64(0)
	s.tempMatrix.d.SetInt64(0)
	for _, t := range [...]*big.Int{s.t1, s.t2, s.t3, s.t4, s.t5} {
		t.SetInt64(0)
	}
}

var matrixStatePool = sync.Pool{
	New: func() any { return newMatrixState() },
}

func acquireMatrixState() *matrixState {
	s := matrixStatePool.Get().(*matrixState)
	s.reset()
	return s
}

func releaseMatrixState(s *matrixState) {
	if s == nil {
		return
	}
	for _, v := range [...]*big.Int{s.res.a, s.res.b, s.res.d, s.p.a, s.p.b, s.p.d} {
		if v.BitLen() > MaxPooledBitLen {
			return
		}
	}
	matrixStatePool.Put(s)
}

// preSizeBigInt grows z's backing word slice to at least words capacity
// without changing its value, so later in-place arithmetic doesn't trigger
// a reallocation. It is a no-op for a nil z or a non-positive word count, and
// a no-op when z's capacity already suffices.
func preSizeBigInt(z *big.Int, words int) {
	if z == nil || words <= 0 {
		return
	}
	current := z.Bits()
	if cap(current) >= words {
		return
	}
	grown := make([]big.Word, len(current), words)
	copy(grown, current)
	z.SetBits(grown)
}
