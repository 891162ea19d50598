package fibonacci

import (
	"context"
	"math/big"
	"math/bits"
	"runtime"
	"time"

	"github.com/agbruneau/fibcore/internal/fibonacci/memory"
	"github.com/agbruneau/fibcore/internal/fibonacci/threshold"
)

// MatrixExponentiation computes F(n) via binary exponentiation of the
// Fibonacci matrix Q = [[1,1],[1,0]]:
//
//	[ F(n+1) F(n)   ]   [ 1 1 ]^n
//	[ F(n)   F(n-1) ] = [ 1 0 ]
//
// so F(n) is the top-right entry of Q^n. Every power of Q stays symmetric
// (Q itself is symmetric, and the square of a symmetric matrix is
// symmetric), which halves the integer multiplications squaring needs
// relative to a general 2x2 matrix square. Above StrassenThreshold, both
// the multiply and square steps instead route through a Strassen-style
// 7-multiplication formula; a DynamicThresholdManager (when enabled)
// observes whether that trade actually pays off on the running hardware
// and retunes the threshold accordingly.
type MatrixExponentiation struct{}

// Name implements coreCalculator.
func (MatrixExponentiation) Name() string {
	return "Matrix Exponentiation (O(log n), Parallel, Zero-Alloc)"
}

// CalculateCore implements coreCalculator.
func (MatrixExponentiation) CalculateCore(ctx context.Context, reporter ProgressCallback, n uint64, opts Options) (*big.Int, error) {
	if n == 0 {
		return big.NewInt(0), nil
	}

	state := acquireMatrixState()
	defer releaseMatrixState(state)

	gc := memory.NewGCController("auto", n)
	gc.Begin()
	defer gc.End()
	// res.a, res.d, p.a and p.b start at 1 (identity/Q's nonzero entries);
	// presizing would silently reset them, so only the zero-valued entries
	// and scratch registers are grown ahead of time.
	presizeFromArena(n, state.res.b, state.p.d, state.t1, state.t2, state.t3, state.t4, state.t5)

	var mgr *threshold.DynamicThresholdManager
	if opts.DynamicThresholds {
		mgr = threshold.NewDynamicThresholdManager(opts.FFTThreshold, opts.ParallelThreshold, opts.StrassenThreshold)
	}

	numBits := bits.Len64(n)
	total := uint64(numBits)
	var lastProgress float64
	useParallel := runtime.NumCPU() > 1

	for i := 0; i < numBits; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stepOpts := opts
		if mgr != nil {
			stepOpts.FFTThreshold, stepOpts.ParallelThreshold, stepOpts.StrassenThreshold = mgr.GetThresholds()
		}

		if (n>>uint(i))&1 == 1 {
			bitLen := state.res.a.BitLen()
			usedStrassen := bitLen > stepOpts.StrassenThreshold
			start := time.Now()
			multiplySymMatrix(state.tempMatrix, state.res, state.p, state, useParallel, stepOpts.ParallelThreshold, stepOpts.FFTThreshold, stepOpts.StrassenThreshold)
			state.res, state.tempMatrix = state.tempMatrix, state.res
			if mgr != nil {
				mgr.RecordIteration(bitLen, time.Since(start), bitLen > stepOpts.FFTThreshold, useParallel && bitLen > stepOpts.ParallelThreshold, usedStrassen)
			}
		}

		if i < numBits-1 {
			bitLen := state.p.a.BitLen()
			usedStrassen := bitLen > stepOpts.StrassenThreshold
			start := time.Now()
			squareSymMatrix(state.tempMatrix, state.p, state, useParallel, stepOpts.ParallelThreshold, stepOpts.FFTThreshold, stepOpts.StrassenThreshold)
			state.p, state.tempMatrix = state.tempMatrix, state.p
			if mgr != nil {
				mgr.RecordIteration(bitLen, time.Since(start), bitLen > stepOpts.FFTThreshold, useParallel && bitLen > stepOpts.ParallelThreshold, usedStrassen)
				if newFFT, newParallel, newStrassen, adjusted := mgr.ShouldAdjust(); adjusted {
					opts.FFTThreshold, opts.ParallelThreshold, opts.StrassenThreshold = newFFT, newParallel, newStrassen
				}
			}
		}

		lastProgress = ReportStepProgress(reporter, uint64(i+1), total, lastProgress, 0.01)
	}

	if reporter != nil && lastProgress < 1 {
		reporter(1)
	}

	// res holds Q^n; a fresh copy escapes the pooled matrix cleanly.
	return new(big.Int).Set(state.res.b), nil
}

// multiplySymMatrix computes dest = m1*m2, where both factors are
// symmetric 2x2 matrices [[a,b],[b,d]] that are themselves both powers of
// the same base matrix Q (res is always a product of Q-powers, p always
// a power of Q). Commuting symmetric matrices multiply to a symmetric
// result, so the top-right and bottom-left entries coincide and only 5
// products are needed rather than the 8 a general 2x2 multiply requires.
// Above strassenThreshold, dest is instead computed through
// multiplySymMatrixStrassen's 7-multiplication formula.
func multiplySymMatrix(dest, m1, m2 *symMatrix, s *matrixState, inParallel bool, parallelThreshold, fftThreshold, strassenThreshold int) {
	if m1.a.BitLen() > strassenThreshold {
		multiplySymMatrixStrassen(dest, m1, m2, inParallel && m1.a.BitLen() > parallelThreshold, fftThreshold)
		return
	}

	// [a1 b1] [a2 b2]   [a1a2+b1b2  a1b2+b1d2]
	// [b1 d1] [b2 d2] = [a1b2+b1d2  b1b2+d1d2]   (off-diagonals equal by commutativity)
	tasks := []multiplyTask{
		{dest: &s.t1, x: m1.a, y: m2.a, fftThreshold: fftThreshold}, // a1*a2
		{dest: &s.t2, x: m1.b, y: m2.b, fftThreshold: fftThreshold}, // b1*b2
		{dest: &s.t3, x: m1.a, y: m2.b, fftThreshold: fftThreshold}, // a1*b2
		{dest: &s.t4, x: m1.b, y: m2.d, fftThreshold: fftThreshold}, // b1*d2
		{dest: &s.t5, x: m1.d, y: m2.d, fftThreshold: fftThreshold}, // d1*d2
	}
	shouldParallel := inParallel && m1.a.BitLen() > parallelThreshold
	_ = executeTasks[multiplyTask, *multiplyTask](tasks, shouldParallel)

	dest.a.Add(s.t1, s.t2)
	newB := new(big.Int).Add(s.t3, s.t4)
	dest.d.Add(s.t2, s.t5)
	dest.b.Set(newB)
}

// squareSymMatrix computes dest = mat*mat for a symmetric matrix
// mat=[[a,b],[b,d]], using the identity
//
//	mat² = [[a²+b², b(a+d)], [b(a+d), b²+d²]]
//
// which needs only 4 multiplications (a², b², d², b*(a+d)) instead of the
// 8 a general 2x2 product requires. Above strassenThreshold, dest is
// instead computed through squareSymMatrixStrassen's 7-multiplication
// formula.
func squareSymMatrix(dest, mat *symMatrix, s *matrixState, inParallel bool, parallelThreshold, fftThreshold, strassenThreshold int) {
	if mat.a.BitLen() > strassenThreshold {
		squareSymMatrixStrassen(dest, mat, inParallel && mat.a.BitLen() > parallelThreshold, fftThreshold)
		return
	}

	s.t5.Add(mat.a, mat.d) // a+d

	tasks := []multiplyTask{
		{dest: &s.t1, x: mat.a, y: mat.a, fftThreshold: fftThreshold}, // a²
		{dest: &s.t2, x: mat.b, y: mat.b, fftThreshold: fftThreshold}, // b²
		{dest: &s.t3, x: mat.d, y: mat.d, fftThreshold: fftThreshold}, // d²
		{dest: &s.t4, x: mat.b, y: s.t5, fftThreshold: fftThreshold},  // b*(a+d)
	}
	shouldParallel := inParallel && mat.a.BitLen() > parallelThreshold
	_ = executeTasks[multiplyTask, *multiplyTask](tasks, shouldParallel)

	dest.a.Add(s.t1, s.t2)
	dest.b.Set(s.t4)
	dest.d.Add(s.t2, s.t3)
}

// multiplySymMatrixStrassen computes dest = m1*m2 for two commuting
// symmetric matrices using Strassen's 7-multiplication formula specialized
// for c=b1, g=b2 (the general formula's c and g entries coincide with b
// for a symmetric operand). This always performs strictly more work than
// multiplySymMatrix's 5-multiplication path for the symmetric matrices
// this engine ever produces; it exists so StrassenThreshold is a genuine
// dial a DynamicThresholdManager can turn, rather than a value nothing
// reads. Its scratch registers are allocated locally rather than drawn
// from matrixState's pool, since this path is rare by design: the
// adaptive manager is expected to raise the threshold back up once it
// observes Strassen losing to the symmetric specialization.
func multiplySymMatrixStrassen(dest, m1, m2 *symMatrix, inParallel bool, fftThreshold int) {
	a, b, d := m1.a, m1.b, m1.d
	e, f, h := m2.a, m2.b, m2.d

	s1 := new(big.Int).Sub(f, h)   // f - h
	s2 := new(big.Int).Add(a, b)   // a + b
	s3 := new(big.Int).Add(b, d)   // b + d   (c = b)
	s4 := new(big.Int).Sub(f, e)   // f - e   (g = f)
	s5 := new(big.Int).Add(a, d)   // a + d
	s6 := new(big.Int).Add(e, h)   // e + h
	s7 := new(big.Int).Sub(b, d)   // b - d
	s8 := new(big.Int).Add(f, h)   // f + h   (g = f)
	s9 := new(big.Int).Sub(a, b)   // a - b   (c = b)
	s10 := new(big.Int).Add(e, f)  // e + f

	p1, p2, p3, p4, p5, p6, p7 := new(big.Int), new(big.Int), new(big.Int), new(big.Int), new(big.Int), new(big.Int), new(big.Int)
	tasks := []multiplyTask{
		{dest: &p1, x: a, y: s1, fftThreshold: fftThreshold},   // p1 = a*(f-h)
		{dest: &p2, x: s2, y: h, fftThreshold: fftThreshold},   // p2 = (a+b)*h
		{dest: &p3, x: s3, y: e, fftThreshold: fftThreshold},   // p3 = (b+d)*e
		{dest: &p4, x: d, y: s4, fftThreshold: fftThreshold},   // p4 = d*(f-e)
		{dest: &p5, x: s5, y: s6, fftThreshold: fftThreshold},  // p5 = (a+d)*(e+h)
		{dest: &p6, x: s7, y: s8, fftThreshold: fftThreshold},  // p6 = (b-d)*(f+h)
		{dest: &p7, x: s9, y: s10, fftThreshold: fftThreshold}, // p7 = (a-b)*(e+f)
	}
	_ = executeTasks[multiplyTask, *multiplyTask](tasks, inParallel)

	newA := new(big.Int).Add(p5, p4)
	newA.Sub(newA, p2)
	newA.Add(newA, p6)

	newB := new(big.Int).Add(p1, p2)

	newD := new(big.Int).Add(p5, p1)
	newD.Sub(newD, p3)
	newD.Sub(newD, p7)

	dest.a.Set(newA)
	dest.b.Set(newB)
	dest.d.Set(newD)
}

// squareSymMatrixStrassen computes dest = mat*mat via
// multiplySymMatrixStrassen's formula with both operands equal to mat.
// Squaring a symmetric matrix is always at least as cheap through
// squareSymMatrix's dedicated 4-multiplication identity, so this path is
// strictly for exercising StrassenThreshold above its crossover point; see
// multiplySymMatrixStrassen's comment for why its scratch is unpooled.
func squareSymMatrixStrassen(dest, mat *symMatrix, inParallel bool, fftThreshold int) {
	multiplySymMatrixStrassen(dest, mat, mat, inParallel, fftThreshold)
}
