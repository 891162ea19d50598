package bigfft

import "math/big"

// nat is a local alias for a slice of words, mirroring math/big's internal
// representation so coefficients can be copied in and out without conversion.
type nat []big.Word

func (n nat) String() string {
	v := new(big.Int)
	v.SetBits(n)
	return v.String()
}

// Poly represents an integer via a polynomial in Z[x] (multiplied modulo x^K-1) where K is the
// FFT length (K = 1<<Poly.K) and b^M is the computation basis 1<<(M*_W).
// If P = A[0] + A[1]*x + ... + A[n-1]*x^(n-1), the associated natural number
// is P(b^M).
type Poly struct {
	K uint
	M int
	A []nat
}

// PolyFromInt converts x into a Poly with 1<<k coefficients of m words each.
func PolyFromInt(x *big.Int, k uint, m int) Poly {
	return polyFromNat(x.Bits(), k, m)
}

func polyFromNat(x nat, k uint, m int) Poly {
	p := Poly{K: k, M: m}
	length := (len(x) + m - 1) / m
	if length == 0 {
		length = 1
	}
	p.A = make([]nat, length)
	for i := range p.A {
		if len(x) < m {
			p.A[i] = make(nat, m)
			copy(p.A[i], x)
			break
		}
		p.A[i] = x[:m]
		x = x[m:]
	}
	return p
}

// Int evaluates the polynomial back to its integer value.
func (p *Poly) Int() nat {
	return p.IntTo(nil)
}

// IntTo evaluates the polynomial back to its integer value, reusing dst's
// backing array when it is large enough.
func (p *Poly) IntTo(dst nat) nat {
	length := len(p.A)*p.M + 1
	if na := len(p.A); na > 0 {
		length += len(p.A[na-1])
	}

	var n nat
	if cap(dst) >= length {
		n = dst[:length]
		clear(n)
	} else {
		n = make(nat, length)
	}

	m := p.M
	np := n
	for i := range p.A {
		l := len(p.A[i])
		c := addVV(np[:l], np[:l], p.A[i])
		if c != 0 {
			addVW(np[l:], np[l:], c)
		}
		np = np[m:]
	}
	return trimNat(n)
}

// IntToBigInt converts the polynomial's value into z, reusing z's buffer.
func (p *Poly) IntToBigInt(z *big.Int) *big.Int {
	if z == nil {
		z = new(big.Int)
	}
	zb := p.IntTo(z.Bits())
	z.SetBits(zb)
	return z
}

func trimNat(n nat) nat {
	for i := len(n) - 1; i >= 0; i-- {
		if n[i] != 0 {
			return n[:i+1]
		}
	}
	return nat{}
}

// PolValues represents the values of a Poly at the powers of a K-th
// primitive root of unity θ in the Fermat ring Z/(b^N+1)Z.
type PolValues struct {
	K      uint
	N      int
	Values []fermat
}

// Transform evaluates p at θ^i for i = 0..K-1, θ a K-th primitive root of
// unity represented by shifts in the ring Z/(b^n+1)Z.
func (p *Poly) Transform(n int) (PolValues, error) {
	k := p.K
	K := 1 << k
	input := make([]fermat, K)
	inputBits := make([]big.Word, (n+1)*K)
	values := make([]fermat, K)
	valueBits := make([]big.Word, (n+1)*K)
	for i := 0; i < K; i++ {
		input[i] = fermat(inputBits[i*(n+1) : (i+1)*(n+1)])
		if i < len(p.A) {
			copy(input[i], p.A[i])
		}
		values[i] = fermat(valueBits[i*(n+1) : (i+1)*(n+1)])
	}
	if err := fourier(values, input, false, n, k); err != nil {
		return PolValues{}, err
	}
	return PolValues{K: k, N: n, Values: values}, nil
}

// InvTransform reconstructs p (mod x^K-1) from its values at θ^i.
func (v *PolValues) InvTransform() (Poly, error) {
	k, n := v.K, v.N
	K := 1 << k
	pbits := make([]big.Word, (n+1)*K)
	p := make([]fermat, K)
	for i := 0; i < K; i++ {
		p[i] = fermat(pbits[i*(n+1) : (i+1)*(n+1)])
	}
	if err := fourier(p, v.Values, true, n, k); err != nil {
		return Poly{}, err
	}

	u := acquireFermat(n + 1)
	defer releaseFermat(u)
	a := make([]nat, K)
	for i := range p {
		u.Shift(p[i], -int(k))
		copy(p[i], u)
		a[i] = nat(p[i])
	}
	return Poly{K: k, M: 0, A: a}, nil
}

// Mul multiplies p and q modulo x^K-1 via a forward transform, pointwise
// product, and inverse transform.
func (p *Poly) Mul(q *Poly) (Poly, error) {
	// extra=2: θ=2^(1/2) is representable via the sqrt(2) identity, halving
	// the required coefficient size compared to using only integer shifts.
	n := valueSize(p.K, p.M, 2)

	pv, err := p.Transform(n)
	if err != nil {
		return Poly{}, err
	}
	qv, err := q.Transform(n)
	if err != nil {
		return Poly{}, err
	}
	rv, err := pv.Mul(&qv)
	if err != nil {
		return Poly{}, err
	}
	r, err := rv.InvTransform()
	if err != nil {
		return Poly{}, err
	}
	r.M = p.M
	return r, nil
}

// Mul returns the pointwise product of p and q.
func (p *PolValues) Mul(q *PolValues) (PolValues, error) {
	n := p.N
	K := len(p.Values)
	r := PolValues{K: p.K, N: p.N, Values: make([]fermat, K)}
	bits := make([]big.Word, K*(n+1))
	buf := acquireFermat(2*n + 2)
	defer releaseFermat(buf)
	for i := 0; i < K; i++ {
		r.Values[i] = fermat(bits[i*(n+1) : (i+1)*(n+1)])
		z := buf.Mul(p.Values[i], q.Values[i])
		copy(r.Values[i], z)
	}
	return r, nil
}

// Sqr returns the pointwise square of p.
func (p *PolValues) Sqr() (PolValues, error) {
	n := p.N
	K := len(p.Values)
	r := PolValues{K: p.K, N: p.N, Values: make([]fermat, K)}
	bits := make([]big.Word, K*(n+1))
	buf := acquireFermat(2*n + 2)
	defer releaseFermat(buf)
	for i := 0; i < K; i++ {
		r.Values[i] = fermat(bits[i*(n+1) : (i+1)*(n+1)])
		z := buf.Sqr(p.Values[i])
		copy(r.Values[i], z)
	}
	return r, nil
}

// fourier performs an unnormalized Fourier transform of src, a length
// 1<<k vector of numbers modulo b^n+1 where b = 1<<_W.
func fourier(dst, src []fermat, backward bool, n int, k uint) error {
	tmp := acquireFermat(n + 1)
	tmp2 := acquireFermat(n + 1)
	defer releaseFermat(tmp)
	defer releaseFermat(tmp2)

	var rec func(dst, src []fermat, size uint) error
	rec = func(dst, src []fermat, size uint) error {
		idxShift := k - size
		ω2shift := (4 * n * _W) >> size
		if backward {
			ω2shift = -ω2shift
		}

		if len(src[0]) != n+1 || len(dst[0]) != n+1 {
			return errFermatLength
		}

		switch size {
		case 0:
			copy(dst[0], src[0])
			return nil
		case 1:
			dst[0].Add(src[0], src[1<<idxShift])
			dst[1].Sub(src[0], src[1<<idxShift])
			return nil
		}

		dst1 := dst[:1<<(size-1)]
		dst2 := dst[1<<(size-1):]
		if err := rec(dst1, src, size-1); err != nil {
			return err
		}
		if err := rec(dst2, src[1<<idxShift:], size-1); err != nil {
			return err
		}

		for i := range dst1 {
			tmp.ShiftHalf(dst2[i], i*ω2shift, tmp2)
			dst2[i].Sub(dst1[i], tmp)
			dst1[i].Add(dst1[i], tmp)
		}
		return nil
	}
	return rec(dst, src, k)
}
