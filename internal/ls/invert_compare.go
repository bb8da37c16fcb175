package ls

import (
	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

func invEq(r *repair) (bv.BitVector, bool) {
	s := r.s()
	if r.t.IsTrue() {
		return s, true
	}
	v := r.sample()
	if !v.Equal(s) {
		return v, true
	}
	if !s.IsOnes() {
		if c, ok := r.d.Ceil(s.Inc()); ok {
			return c, true
		}
	}
	if !s.IsZero() {
		return r.d.Floor(s.Dec())
	}
	return bv.BitVector{}, false
}

// ultRange returns the interval of values x at pos such that the unsigned
// comparison with s evaluates to t.
func ultRange(pos int, t bool, s bv.BitVector) (bv.BitVector, bv.BitVector, bool) {
	w := s.Size()
	switch {
	case pos == 0 && t:
		// x < s
		if s.IsZero() {
			return bv.BitVector{}, bv.BitVector{}, false
		}
		return bv.Zero(w), s.Dec(), true
	case pos == 0:
		// x >= s
		return s, bv.Ones(w), true
	case t:
		// s < x
		if s.IsOnes() {
			return bv.BitVector{}, bv.BitVector{}, false
		}
		return s.Inc(), bv.Ones(w), true
	default:
		// s >= x
		return bv.Zero(w), s, true
	}
}

// sltRange is ultRange for the signed comparison.
func sltRange(pos int, t bool, s bv.BitVector) (bv.BitVector, bv.BitVector, bool) {
	w := s.Size()
	switch {
	case pos == 0 && t:
		if s.IsMinSigned() {
			return bv.BitVector{}, bv.BitVector{}, false
		}
		return bv.MinSigned(w), s.Dec(), true
	case pos == 0:
		return s, bv.MaxSigned(w), true
	case t:
		if s.IsMaxSigned() {
			return bv.BitVector{}, bv.BitVector{}, false
		}
		return s.Inc(), bv.MaxSigned(w), true
	default:
		return bv.MinSigned(w), s, true
	}
}

func invUlt(r *repair) (bv.BitVector, bool) {
	min, max, ok := ultRange(r.pos, r.t.IsTrue(), r.s())
	if !ok {
		return bv.BitVector{}, false
	}
	return r.sampleUnsigned(min, max)
}

func invSlt(r *repair) (bv.BitVector, bool) {
	min, max, ok := sltRange(r.pos, r.t.IsTrue(), r.s())
	if !ok {
		return bv.BitVector{}, false
	}
	return r.sampleSigned(min, max)
}

// consUlt avoids the single value that can never be strictly below or above
// any other value.
func consUlt(r *repair) (bv.BitVector, bool) {
	var (
		w        = r.size()
		min, max = bv.Zero(w), bv.Ones(w)
	)
	if r.t.IsTrue() {
		if r.pos == 0 {
			max = max.Dec()
		} else {
			min = min.Inc()
		}
	}
	return r.sampleUnsigned(min, max)
}

func consSlt(r *repair) (bv.BitVector, bool) {
	var (
		w        = r.size()
		min, max = bv.MinSigned(w), bv.MaxSigned(w)
	)
	if r.t.IsTrue() {
		if r.pos == 0 {
			max = max.Dec()
		} else {
			min = min.Inc()
		}
	}
	return r.sampleSigned(min, max)
}
