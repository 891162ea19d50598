package bigfft

import (
	"math/big"
	"math/bits"
)

// _W is the number of bits in a big.Word on the current platform.
const _W = bits.UintSize

// fermat represents a non-negative residue modulo 2^(n*_W)+1 where n is
// len(z)-1. The high word z[n] carries the single extra bit needed to
// represent the value 2^(n*_W) itself; every operation below renormalizes
// its result into this n+1 word form.
type fermat []Word

var fermatBigOne = big.NewInt(1)

func fermatLen(x fermat) int {
	return len(x) - 1
}

// fermatModulus returns 2^(n*_W)+1, the modulus of the ring.
func fermatModulus(n int) *big.Int {
	m := new(big.Int).Lsh(fermatBigOne, uint(n*_W))
	return m.Add(m, fermatBigOne)
}

func fermatToInt(x fermat, n int) *big.Int {
	words := make([]big.Word, n)
	copy(words, x[:n])
	v := new(big.Int).SetBits(words)
	if n < len(x) && x[n] != 0 {
		hi := new(big.Int).Lsh(fermatBigOne, uint(n*_W))
		if x[n] != 1 {
			hi.Mul(hi, new(big.Int).SetUint64(uint64(x[n])))
		}
		v.Add(v, hi)
	}
	return v
}

// fermatPutInt reduces v modulo 2^(n*_W)+1 and spreads the result into the
// low n+1 words of z, returning z[:n+1].
func fermatPutInt(z fermat, v *big.Int, n int) fermat {
	r := new(big.Int).Mod(v, fermatModulus(n))
	rawBits := r.Bits()
	for i := 0; i <= n; i++ {
		if i < len(rawBits) {
			z[i] = Word(rawBits[i])
		} else {
			z[i] = 0
		}
	}
	return z[:n+1]
}

// norm reduces z to its canonical representative in [0, 2^(n*_W)].
func (z fermat) norm() fermat {
	n := fermatLen(z)
	return fermatPutInt(z, fermatToInt(z, n), n)
}

// Add sets z = x + y in the Fermat ring and returns z.
func (z fermat) Add(x, y fermat) fermat {
	n := fermatLen(x)
	v := new(big.Int).Add(fermatToInt(x, n), fermatToInt(y, n))
	return fermatPutInt(z, v, n)
}

// Sub sets z = x - y in the Fermat ring and returns z.
func (z fermat) Sub(x, y fermat) fermat {
	n := fermatLen(x)
	v := new(big.Int).Sub(fermatToInt(x, n), fermatToInt(y, n))
	return fermatPutInt(z, v, n)
}

// Mul sets z = x*y in the Fermat ring and returns the result, resliced to
// n+1 words. z must have capacity for at least n+1 words.
func (z fermat) Mul(x, y fermat) fermat {
	n := fermatLen(x)
	v := new(big.Int).Mul(fermatToInt(x, n), fermatToInt(y, n))
	return fermatPutInt(z, v, n)
}

// Sqr sets z = x*x in the Fermat ring and returns the result.
func (z fermat) Sqr(x fermat) fermat {
	n := fermatLen(x)
	xi := fermatToInt(x, n)
	v := new(big.Int).Mul(xi, xi)
	return fermatPutInt(z, v, n)
}

// Shift sets z = x * 2^k in the Fermat ring (k may be negative) and returns z.
func (z fermat) Shift(x fermat, k int) fermat {
	n := fermatLen(x)
	period := 2 * n * _W
	xi := fermatToInt(x, n)
	if period == 0 {
		return fermatPutInt(z, xi, n)
	}
	kk := k % period
	if kk < 0 {
		kk += period
	}
	var v *big.Int
	if kk < n*_W {
		v = new(big.Int).Lsh(xi, uint(kk))
	} else {
		rem := kk - n*_W
		v = new(big.Int).Lsh(xi, uint(rem))
		mod := fermatModulus(n)
		v.Mod(v, mod)
		if v.Sign() != 0 {
			v.Sub(mod, v)
		}
	}
	return fermatPutInt(z, v, n)
}

// ShiftHalf sets z = x * 2^(k/2), where k may be odd. When k is odd this
// uses the identity sqrt(2) = 2^(3w/4) - 2^(w/4) (mod 2^w+1) with w = n*_W,
// valid whenever w is a multiple of 4 (guaranteed by the FFT parameters
// chosen in poly.go). tmp is scratch space sized like z.
func (z fermat) ShiftHalf(x fermat, k int, tmp fermat) fermat {
	if k%2 == 0 {
		return z.Shift(x, k/2)
	}
	n := fermatLen(x)
	w := n * _W
	half := (k - 1) / 2
	a := z.Shift(x, half+3*w/4)
	b := tmp.Shift(x, half+w/4)
	return z.Sub(a, b)
}
