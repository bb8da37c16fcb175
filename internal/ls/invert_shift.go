package ls

import (
	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

func invShl(r *repair) (bv.BitVector, bool) {
	var (
		s = r.s()
		t = r.t
		w = r.size()
	)
	if r.pos == 0 {
		// x << s = t: the high s bits of x are shifted out
		n, ok := shiftOf(s)
		if !ok {
			return r.sample(), t.IsZero()
		}
		if t.Ctz() < n {
			return bv.BitVector{}, false
		}
		return t.ShrN(n).Or(r.sample().And(highMask(w, n))), true
	}
	// s << x = t
	if t.IsZero() {
		if s.IsZero() {
			return r.sample(), true
		}
		return r.sampleRange(bv.FromUint64(w, w-s.Ctz()), bv.Ones(w))
	}
	if s.IsZero() || t.Ctz() < s.Ctz() {
		return bv.BitVector{}, false
	}
	return bv.FromUint64(w, t.Ctz()-s.Ctz()), true
}

func consShl(r *repair) (bv.BitVector, bool) {
	var (
		t = r.t
		w = r.size()
	)
	if t.IsZero() {
		return r.sample(), true
	}
	if r.pos == 1 {
		return r.sampleRange(bv.Zero(w), bv.FromUint64(w, t.Ctz()))
	}
	var (
		v     = r.sample()
		count = t.Ctz() + 1
		start = uint64(r.rng.Pick(int(count)))
	)
	for i := uint64(0); i < count; i++ {
		k := (start + i) % count
		if x := t.ShrN(k).Or(v.And(highMask(w, k))); r.d.Match(x) {
			return x, true
		}
	}
	return bv.BitVector{}, false
}

func invShr(r *repair) (bv.BitVector, bool) {
	var (
		s = r.s()
		t = r.t
		w = r.size()
	)
	if r.pos == 0 {
		n, ok := shiftOf(s)
		if !ok {
			return r.sample(), t.IsZero()
		}
		if t.Clz() < n {
			return bv.BitVector{}, false
		}
		return t.ShlN(n).Or(r.sample().And(lowMask(w, n))), true
	}
	if t.IsZero() {
		if s.IsZero() {
			return r.sample(), true
		}
		return r.sampleRange(bv.FromUint64(w, w-s.Clz()), bv.Ones(w))
	}
	if s.IsZero() || t.Clz() < s.Clz() {
		return bv.BitVector{}, false
	}
	return bv.FromUint64(w, t.Clz()-s.Clz()), true
}

func consShr(r *repair) (bv.BitVector, bool) {
	var (
		t = r.t
		w = r.size()
	)
	if t.IsZero() {
		return r.sample(), true
	}
	if r.pos == 1 {
		return r.sampleRange(bv.Zero(w), bv.FromUint64(w, t.Clz()))
	}
	var (
		v     = r.sample()
		count = t.Clz() + 1
		start = uint64(r.rng.Pick(int(count)))
	)
	for i := uint64(0); i < count; i++ {
		k := (start + i) % count
		if x := t.ShlN(k).Or(v.And(lowMask(w, k))); r.d.Match(x) {
			return x, true
		}
	}
	return bv.BitVector{}, false
}

func invAshr(r *repair) (bv.BitVector, bool) {
	var (
		s = r.s()
		t = r.t
		w = r.size()
	)
	if r.pos == 0 {
		n, ok := shiftOf(s)
		if !ok {
			if !t.IsZero() && !t.IsOnes() {
				return bv.BitVector{}, false
			}
			return r.sample().SetBit(w-1, t.Msb()), true
		}
		if t.Clrs() < n+1 {
			return bv.BitVector{}, false
		}
		return t.ShlN(n).Or(r.sample().And(lowMask(w, n))), true
	}
	// s >>a x = t: every amount below the width is a separate candidate,
	// amounts from the width up all yield the sign fill
	var shifts []bv.BitVector
	for k := uint64(0); k < w; k++ {
		x := bv.FromUint64(w, k)
		if s.AshrN(k).Equal(t) && r.d.Match(x) {
			shifts = append(shifts, x)
		}
	}
	var (
		fill   bv.BitVector
		fillOK bool
	)
	if s.AshrN(w).Equal(t) {
		fill, fillOK = r.sampleRange(bv.FromUint64(w, w), bv.Ones(w))
	}
	n := len(shifts)
	if fillOK {
		n++
	}
	if n == 0 {
		return bv.BitVector{}, false
	}
	if i := r.rng.Pick(n); i < len(shifts) {
		return shifts[i], true
	}
	return fill, true
}

func consAshr(r *repair) (bv.BitVector, bool) {
	var (
		t    = r.t
		w    = r.size()
		c    = t.Clrs()
		fill = t.IsZero() || t.IsOnes()
	)
	if r.pos == 1 {
		if fill {
			return r.sample(), true
		}
		return r.sampleRange(bv.Zero(w), bv.FromUint64(w, c-1))
	}
	var (
		v     = r.sample()
		count = c
	)
	if fill {
		// an amount of at least the width
		count++
	}
	start := uint64(r.rng.Pick(int(count)))
	for i := uint64(0); i < count; i++ {
		k := (start + i) % count
		x := v.SetBit(w-1, t.Msb())
		if k < c && k < w {
			x = t.ShlN(k).Or(v.And(lowMask(w, k)))
		}
		if r.d.Match(x) {
			return x, true
		}
	}
	return bv.BitVector{}, false
}
