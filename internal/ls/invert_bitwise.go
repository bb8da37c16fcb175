package ls

import (
	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

// x & s = t: bits where s is 1 are taken from t, the others are free.
func invAnd(r *repair) (bv.BitVector, bool) {
	s := r.s()
	if !r.t.And(s.Not()).IsZero() {
		return bv.BitVector{}, false
	}
	return r.t.And(s).Or(r.sample().And(s.Not())), true
}

// x | s = t: bits where s is 0 are taken from t, the others are free.
func invOr(r *repair) (bv.BitVector, bool) {
	s := r.s()
	if !s.And(r.t.Not()).IsZero() {
		return bv.BitVector{}, false
	}
	return r.t.And(s.Not()).Or(r.sample().And(s)), true
}

func invSub(r *repair) bv.BitVector {
	if r.pos == 0 {
		return r.t.Add(r.s())
	}
	return r.s().Sub(r.t)
}

func invConcat(r *repair) (bv.BitVector, bool) {
	var (
		tw = r.t.Size()
		w0 = r.args[0].Size()
		w1 = r.args[1].Size()
	)
	if r.pos == 0 {
		if !r.t.Extract(w1-1, 0).Equal(r.args[1]) {
			return bv.BitVector{}, false
		}
		return r.t.Extract(tw-1, w1), true
	}
	if !r.t.Extract(tw-1, tw-w0).Equal(r.args[0]) {
		return bv.BitVector{}, false
	}
	return r.t.Extract(tw-w0-1, 0), true
}

func consConcat(r *repair) (bv.BitVector, bool) {
	var (
		tw = r.t.Size()
		w1 = r.args[1].Size()
	)
	if r.pos == 0 {
		return r.t.Extract(tw-1, w1), true
	}
	return r.t.Extract(w1-1, 0), true
}

// invExtract overwrites the extracted slice of either the current value or
// a fresh sample.
func invExtract(r *repair) (bv.BitVector, bool) {
	var (
		hi, lo = r.indices[0], r.indices[1]
		w      = r.size()
		tw     = hi - lo + 1
		base   = r.x()
	)
	if r.rng.Flip(500) {
		base = r.sample()
	}
	slice := lowMask(w, tw).ShlN(lo)
	return base.And(slice.Not()).Or(r.t.Zext(w - tw).ShlN(lo)), true
}

func invSext(r *repair) (bv.BitVector, bool) {
	var (
		w  = r.size()
		tw = r.t.Size()
	)
	top := r.t.Extract(tw-1, w-1)
	if !top.IsZero() && !top.IsOnes() {
		return bv.BitVector{}, false
	}
	return r.t.Extract(w-1, 0), true
}

// invIte sets the condition to a branch that already has the target value,
// or a branch to the target when it is enabled.
func invIte(r *repair) (bv.BitVector, bool) {
	if r.pos == 0 {
		var (
			thenOK = r.args[1].Equal(r.t) && r.d.Match(bv.FromBool(true))
			elseOK = r.args[2].Equal(r.t) && r.d.Match(bv.FromBool(false))
		)
		return r.pickOne(bv.FromBool(true), thenOK, bv.FromBool(false), elseOK)
	}
	if (r.pos == 1) != r.args[0].IsTrue() {
		return bv.BitVector{}, false
	}
	return r.t, true
}

func consIte(r *repair) (bv.BitVector, bool) {
	if r.pos == 0 {
		return r.sample(), true
	}
	return r.t, true
}
