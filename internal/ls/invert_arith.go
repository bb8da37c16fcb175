package ls

import (
	"math/big"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

const (
	// maxEnumerate bounds exhaustive candidate enumeration.
	maxEnumerate = 4096
	// maxTries bounds random candidate search.
	maxTries = 64
)

// invMul solves x * s = t: with c = ctz(s), the low w-c bits of x are
// (t >> c) * (s >> c)^-1 and the high c bits are free.
func invMul(r *repair) (bv.BitVector, bool) {
	var (
		s = r.s()
		w = r.size()
	)
	if s.IsZero() {
		return r.sample(), r.t.IsZero()
	}
	c := s.Ctz()
	if r.t.Ctz() < c {
		return bv.BitVector{}, false
	}
	y := r.t.ShrN(c).Mul(s.ShrN(c).ModInverse()).And(lowMask(w, w-c))
	return y.Or(r.sample().And(highMask(w, c))), true
}

// consMul needs ctz(x) <= ctz(t).
func consMul(r *repair) (bv.BitVector, bool) {
	v := r.sample()
	if r.t.IsZero() {
		return v, true
	}
	ct := r.t.Ctz()
	if v.Ctz() <= ct {
		return v, true
	}
	var free []uint64
	for i := uint64(0); i <= ct; i++ {
		if !r.d.IsFixedBit(i) {
			free = append(free, i)
		}
	}
	if len(free) == 0 {
		return bv.BitVector{}, false
	}
	return v.SetBit(free[r.rng.Pick(len(free))], true), true
}

func invUdiv(r *repair) (bv.BitVector, bool) {
	var (
		s    = r.s()
		w    = r.size()
		ones = bv.Ones(w).Big()
	)
	if r.pos == 0 {
		// x / s = t
		if s.IsZero() {
			return r.sample(), r.t.IsOnes()
		}
		lo := new(big.Int).Mul(s.Big(), r.t.Big())
		if lo.Cmp(ones) > 0 {
			return bv.BitVector{}, false
		}
		hi := new(big.Int).Add(lo, s.Big())
		hi.Sub(hi, big.NewInt(1))
		if hi.Cmp(ones) > 0 {
			hi = ones
		}
		return r.sampleRange(bv.FromBig(w, lo), bv.FromBig(w, hi))
	}
	// s / x = t: x in [s / (t + 1) + 1, s / t] or x = 0 when t = ~0
	var (
		t1 = new(big.Int).Add(r.t.Big(), big.NewInt(1))
		lo = new(big.Int).Div(s.Big(), t1)
		hi = ones
	)
	lo.Add(lo, big.NewInt(1))
	if !r.t.IsZero() {
		hi = new(big.Int).Div(s.Big(), r.t.Big())
	}
	var (
		v  bv.BitVector
		ok bool
	)
	if lo.Cmp(hi) <= 0 {
		v, ok = r.sampleRange(bv.FromBig(w, lo), bv.FromBig(w, hi))
	}
	zero := bv.Zero(w)
	return r.pickOne(v, ok, zero, r.t.IsOnes() && r.d.Match(zero))
}

func consUdiv(r *repair) (bv.BitVector, bool) {
	w := r.size()
	if r.pos == 0 {
		switch {
		case r.t.IsOnes():
			return r.sample(), true
		case r.t.IsZero():
			// any s > x
			return r.sampleRange(bv.Zero(w), bv.Ones(w).Dec())
		}
		// x in [t * q, t * q + q - 1] for some q <= ~0 / t
		var (
			ones = bv.Ones(w).Big()
			qmax = new(big.Int).Div(ones, r.t.Big())
		)
		for i := 0; i < maxTries; i++ {
			q := r.rng.Big(new(big.Int).Sub(qmax, big.NewInt(1)))
			q.Add(q, big.NewInt(1))
			lo := new(big.Int).Mul(r.t.Big(), q)
			hi := new(big.Int).Add(lo, q)
			hi.Sub(hi, big.NewInt(1))
			if hi.Cmp(ones) > 0 {
				hi = ones
			}
			if v, ok := r.sampleRange(bv.FromBig(w, lo), bv.FromBig(w, hi)); ok {
				return v, true
			}
		}
		return bv.BitVector{}, false
	}
	// s / x = t needs t * x <= ~0, x = 0 only yields ~0
	var (
		min = bv.One(w)
		max = bv.Ones(w)
	)
	if r.t.IsOnes() {
		min = bv.Zero(w)
	}
	if !r.t.IsZero() {
		max = max.Udiv(r.t)
	}
	return r.sampleRange(min, max)
}

func invUrem(r *repair) (bv.BitVector, bool) {
	var (
		s    = r.s()
		w    = r.size()
		ones = bv.Ones(w).Big()
	)
	if r.pos == 0 {
		// x % s = t: x = t + k * s
		if s.IsZero() {
			return r.t, true
		}
		if !r.t.Ult(s) {
			return bv.BitVector{}, false
		}
		kmax := new(big.Int).Sub(ones, r.t.Big())
		kmax.Div(kmax, s.Big())
		candidate := func(k *big.Int) bv.BitVector {
			x := new(big.Int).Mul(k, s.Big())
			return bv.FromBig(w, x.Add(x, r.t.Big()))
		}
		return r.search(kmax, candidate)
	}
	// s % x = t
	if s.Ult(r.t) {
		return bv.BitVector{}, false
	}
	zero := bv.Zero(w)
	if s.Equal(r.t) {
		var (
			v  bv.BitVector
			ok bool
		)
		if !r.t.IsOnes() {
			v, ok = r.sampleRange(r.t.Inc(), bv.Ones(w))
		}
		return r.pickOne(v, ok, zero, r.d.Match(zero))
	}
	// x is a divisor of s - t greater than t
	n := new(big.Int).Sub(s.Big(), r.t.Big())
	if n.Cmp(r.t.Big()) <= 0 {
		return bv.BitVector{}, false
	}
	span := new(big.Int).Sub(n, r.t.Big())
	if span.Cmp(big.NewInt(maxEnumerate)) <= 0 {
		var (
			count = span.Int64()
			start = r.rng.Pick(int(count))
		)
		for i := int64(0); i < count; i++ {
			x := big.NewInt((int64(start)+i)%count + 1)
			x.Add(x, r.t.Big())
			if new(big.Int).Mod(n, x).Sign() != 0 {
				continue
			}
			if v := bv.FromBig(w, x); r.d.Match(v) {
				return v, true
			}
		}
		return bv.BitVector{}, false
	}
	qmax := new(big.Int).Add(r.t.Big(), big.NewInt(1))
	qmax.Div(n, qmax)
	for i := 0; i < maxTries; i++ {
		q := r.rng.Big(new(big.Int).Sub(qmax, big.NewInt(1)))
		q.Add(q, big.NewInt(1))
		x, m := new(big.Int).DivMod(n, q, new(big.Int))
		if m.Sign() != 0 {
			continue
		}
		if v := bv.FromBig(w, x); r.d.Match(v) {
			return v, true
		}
	}
	v := bv.FromBig(w, n)
	return v, r.d.Match(v)
}

// search tries candidate(k) for k in [0, kmax], exhaustively from a seeded
// offset when the range is small and by random tries otherwise.
func (r *repair) search(kmax *big.Int, candidate func(k *big.Int) bv.BitVector) (bv.BitVector, bool) {
	if kmax.Cmp(big.NewInt(maxEnumerate)) < 0 {
		var (
			count = kmax.Int64() + 1
			start = int64(r.rng.Pick(int(count)))
		)
		for i := int64(0); i < count; i++ {
			if v := candidate(big.NewInt((start + i) % count)); r.d.Match(v) {
				return v, true
			}
		}
		return bv.BitVector{}, false
	}
	for i := 0; i < maxTries; i++ {
		if v := candidate(r.rng.Big(kmax)); r.d.Match(v) {
			return v, true
		}
	}
	return bv.BitVector{}, false
}

func consUrem(r *repair) (bv.BitVector, bool) {
	var (
		w    = r.size()
		ones = bv.Ones(w).Big()
		v    bv.BitVector
		ok   bool
	)
	if r.pos == 0 {
		// x = t, or x > 2t with s = x - t
		lo := new(big.Int).Lsh(r.t.Big(), 1)
		lo.Add(lo, big.NewInt(1))
		if lo.Cmp(ones) <= 0 {
			v, ok = r.sampleRange(bv.FromBig(w, lo), bv.Ones(w))
		}
		return r.pickOne(v, ok, r.t, r.d.Match(r.t))
	}
	// x = 0 with s = t, or x > t with s = t
	if !r.t.IsOnes() {
		v, ok = r.sampleRange(r.t.Inc(), bv.Ones(w))
	}
	zero := bv.Zero(w)
	return r.pickOne(v, ok, zero, r.d.Match(zero))
}
