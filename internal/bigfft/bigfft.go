// Package bigfft implements multiplication of math/big integers using an
// integer Fourier transform over Fermat rings, following the
// Schönhage-Strassen method. It is meant as a drop-in accelerator for
// operands far larger than math/big's own Karatsuba/Toom-Cook thresholds
// handle well.
package bigfft

import (
	"errors"
	"fmt"
	"math/big"
	"runtime/debug"
)

var errFermatLength = errors.New("bigfft: mismatched fermat operand length")

// defaultFFTThresholdWords is the operand size, in words, above which Mul
// and Sqr route through the FFT path instead of math/big's own Mul.
const defaultFFTThresholdWords = 1800

var fftThreshold = defaultFFTThresholdWords

// Mul computes x*y using the FFT path when both operands are large enough
// to benefit, falling back to math/big.Int.Mul otherwise.
func Mul(x, y *big.Int) (res *big.Int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bigfft: panic in Mul: %v\n%s", r, debug.Stack())
		}
	}()
	if len(x.Bits()) > fftThreshold && len(y.Bits()) > fftThreshold {
		return mulFFT(x, y)
	}
	return new(big.Int).Mul(x, y), nil
}

// MulTo computes x*y into z, reusing z's backing array when possible.
func MulTo(z, x, y *big.Int) (res *big.Int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bigfft: panic in MulTo: %v\n%s", r, debug.Stack())
		}
	}()
	if z == nil {
		z = new(big.Int)
	}
	if len(x.Bits()) > fftThreshold && len(y.Bits()) > fftThreshold {
		k, m := fftSizeParams(len(x.Bits()) + len(y.Bits()))
		px := polyFromNat(x.Bits(), k, m)
		py := polyFromNat(y.Bits(), k, m)
		r, err := px.Mul(&py)
		if err != nil {
			return nil, err
		}
		r.IntToBigInt(z)
		if x.Sign()*y.Sign() < 0 {
			z.Neg(z)
		}
		return z, nil
	}
	return z.Mul(x, y), nil
}

// Sqr computes x*x using the FFT path when x is large enough to benefit.
// Squaring only needs to transform x once, saving roughly a third of the
// work a general Mul would do.
func Sqr(x *big.Int) (res *big.Int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bigfft: panic in Sqr: %v\n%s", r, debug.Stack())
		}
	}()
	if len(x.Bits()) > fftThreshold {
		return sqrFFT(x)
	}
	return new(big.Int).Mul(x, x), nil
}

// SqrTo computes x*x into z, reusing z's backing array when possible.
func SqrTo(z, x *big.Int) (res *big.Int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("bigfft: panic in SqrTo: %v\n%s", r, debug.Stack())
		}
	}()
	if z == nil {
		z = new(big.Int)
	}
	if len(x.Bits()) > fftThreshold {
		k, m := fftSizeParams(2 * len(x.Bits()))
		px := polyFromNat(x.Bits(), k, m)
		r, err := px.Mul(&px)
		if err != nil {
			return nil, err
		}
		r.IntToBigInt(z)
		return z, nil
	}
	return z.Mul(x, x), nil
}

func mulFFT(x, y *big.Int) (*big.Int, error) {
	k, m := fftSizeParams(len(x.Bits()) + len(y.Bits()))
	px := polyFromNat(x.Bits(), k, m)
	py := polyFromNat(y.Bits(), k, m)
	r, err := px.Mul(&py)
	if err != nil {
		return nil, err
	}
	z := r.IntToBigInt(new(big.Int))
	if x.Sign()*y.Sign() < 0 {
		z.Neg(z)
	}
	return z, nil
}

func sqrFFT(x *big.Int) (*big.Int, error) {
	k, m := fftSizeParams(2 * len(x.Bits()))
	px := polyFromNat(x.Bits(), k, m)
	pv, err := px.Transform(valueSize(k, m, 2))
	if err != nil {
		return nil, err
	}
	rv, err := pv.Sqr()
	if err != nil {
		return nil, err
	}
	r, err := rv.InvTransform()
	if err != nil {
		return nil, err
	}
	r.M = m
	return r.IntToBigInt(new(big.Int)), nil
}

// fftSizeThreshold[i] is the maximal operand size (in bits) for which FFT
// size 1<<i is adequate; a K=1<<k FFT wants K roughly 2*sqrt(N) where N is
// the combined bit length of the operands.
var fftSizeThreshold = [...]int64{0, 0, 0,
	4 << 10, 8 << 10, 16 << 10,
	32 << 10, 64 << 10, 1 << 18, 1 << 20, 3 << 20,
	8 << 20, 30 << 20, 100 << 20, 300 << 20, 600 << 20,
}

func fftSizeParams(words int) (k uint, m int) {
	bits := int64(words) * int64(_W)
	k = uint(len(fftSizeThreshold))
	for i := range fftSizeThreshold {
		if fftSizeThreshold[i] > bits {
			k = uint(i)
			break
		}
	}
	m = words>>k + 1
	return
}

// GetFFTParams returns the FFT length exponent k and per-coefficient word
// count m adequate for an operand (or product) spanning the given word
// count.
func GetFFTParams(words int) (k uint, m int) {
	return fftSizeParams(words)
}

// ValueSize returns the coefficient length, in words, needed so that the
// product of two degree-less-than-(1<<k) polynomials with m-word
// coefficients can be represented exactly. extra controls how much the
// sqrt(2) twiddle optimization can shrink the ring (2 when the fourier
// recursion uses ShiftHalf, lower values request a larger, more
// conservative ring).
func ValueSize(k uint, m int, extra uint) int {
	return valueSize(k, m, extra)
}

func valueSize(k uint, m int, extra uint) int {
	n := 2*m*_W + int(k)
	K := 1 << (k - extra)
	if K < _W {
		K = _W
	}
	n = ((n / K) + 1) * K
	return n / _W
}
