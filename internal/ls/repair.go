package ls

import (
	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

// repair asks for a value of the child at pos such that the operator
// evaluates to t. args holds the current values of all children, d is the
// domain of the child at pos.
type repair struct {
	kind    Kind
	pos     int
	t       bv.BitVector
	args    []bv.BitVector
	indices []uint64
	d       bv.Domain
	b       *bounds
	rng     *bv.RNG
}

// s is the value of the other operand of a binary operator.
func (r *repair) s() bv.BitVector {
	return r.args[1-r.pos]
}

// x is the current value of the child at pos.
func (r *repair) x() bv.BitVector {
	return r.args[r.pos]
}

func (r *repair) size() uint64 {
	return r.d.Size()
}

func (r *repair) eval(v bv.BitVector) bv.BitVector {
	args := make([]bv.BitVector, len(r.args))
	copy(args, r.args)
	args[r.pos] = v
	return evaluate(r.kind, args, r.indices)
}

func (r *repair) sample() bv.BitVector {
	return r.d.Sample(r.rng)
}

func (r *repair) sampleRange(min, max bv.BitVector) (bv.BitVector, bool) {
	return r.d.SampleRange(r.rng, min, max)
}

// sampleUnsigned prefers values within the unsigned bounds.
func (r *repair) sampleUnsigned(min, max bv.BitVector) (bv.BitVector, bool) {
	if r.b != nil && r.b.hasU {
		if lo, hi, ok := bv.Clamp(min, max, r.b.umin, r.b.umax); ok {
			if v, ok := r.d.SampleRange(r.rng, lo, hi); ok {
				return v, true
			}
		}
	}
	return r.d.SampleRange(r.rng, min, max)
}

// sampleSigned prefers values within the signed bounds.
func (r *repair) sampleSigned(min, max bv.BitVector) (bv.BitVector, bool) {
	if r.b != nil && r.b.hasS {
		if lo, hi, ok := bv.ClampSigned(min, max, r.b.smin, r.b.smax); ok {
			if v, ok := r.d.SampleSignedRange(r.rng, lo, hi); ok {
				return v, true
			}
		}
	}
	return r.d.SampleSignedRange(r.rng, min, max)
}

// pickOne chooses between a value and a single alternative. Both are
// uniformly likely when available.
func (r *repair) pickOne(v bv.BitVector, ok bool, alt bv.BitVector, altOK bool) (bv.BitVector, bool) {
	if altOK && (!ok || r.rng.Flip(500)) {
		return alt, true
	}
	return v, ok
}

// highMask has the top n bits set.
func highMask(size, n uint64) bv.BitVector {
	return bv.Ones(size).ShlN(size - n)
}

// lowMask has the bottom n bits set.
func lowMask(size, n uint64) bv.BitVector {
	return bv.Ones(size).ShrN(size - n)
}

// shiftOf returns the shift amount of s if it is below the width.
func shiftOf(s bv.BitVector) (uint64, bool) {
	if !s.Big().IsUint64() || s.Big().Uint64() >= s.Size() {
		return 0, false
	}
	return s.Big().Uint64(), true
}

// inverse returns a value v in the domain with op(..., v, ...) == t. The
// result is checked by evaluation.
func inverse(r *repair) (bv.BitVector, bool) {
	if r.d.IsFixed() {
		v := r.d.Lo()
		return v, r.eval(v).Equal(r.t)
	}
	var (
		v  bv.BitVector
		ok bool
	)
	switch r.kind {
	case KindNot:
		v, ok = r.t.Not(), true
	case KindAnd:
		v, ok = invAnd(r)
	case KindOr:
		v, ok = invOr(r)
	case KindXor:
		v, ok = r.t.Xor(r.s()), true
	case KindAdd:
		v, ok = r.t.Sub(r.s()), true
	case KindSub:
		v, ok = invSub(r), true
	case KindMul:
		v, ok = invMul(r)
	case KindUdiv:
		v, ok = invUdiv(r)
	case KindUrem:
		v, ok = invUrem(r)
	case KindShl:
		v, ok = invShl(r)
	case KindShr:
		v, ok = invShr(r)
	case KindAshr:
		v, ok = invAshr(r)
	case KindEq:
		v, ok = invEq(r)
	case KindUlt:
		v, ok = invUlt(r)
	case KindSlt:
		v, ok = invSlt(r)
	case KindConcat:
		v, ok = invConcat(r)
	case KindExtract:
		v, ok = invExtract(r)
	case KindSext:
		v, ok = invSext(r)
	case KindIte:
		v, ok = invIte(r)
	}
	if !ok || !r.d.Match(v) || !r.eval(v).Equal(r.t) {
		return bv.BitVector{}, false
	}
	return v, true
}

// consistent returns a value v in the domain such that some assignment of the
// other children makes the operator evaluate to t.
func consistent(r *repair) (bv.BitVector, bool) {
	var (
		v  bv.BitVector
		ok bool
	)
	switch r.kind {
	case KindNot:
		v, ok = r.t.Not(), true
	case KindAnd:
		v, ok = r.sample().Or(r.t), true
	case KindOr:
		v, ok = r.sample().And(r.t), true
	case KindXor, KindAdd, KindSub, KindEq:
		v, ok = r.sample(), true
	case KindMul:
		v, ok = consMul(r)
	case KindUdiv:
		v, ok = consUdiv(r)
	case KindUrem:
		v, ok = consUrem(r)
	case KindShl:
		v, ok = consShl(r)
	case KindShr:
		v, ok = consShr(r)
	case KindAshr:
		v, ok = consAshr(r)
	case KindUlt:
		v, ok = consUlt(r)
	case KindSlt:
		v, ok = consSlt(r)
	case KindConcat:
		v, ok = consConcat(r)
	case KindExtract:
		v, ok = invExtract(r)
	case KindSext:
		v, ok = invSext(r)
	case KindIte:
		v, ok = consIte(r)
	}
	if !ok || !r.d.Match(v) {
		return bv.BitVector{}, false
	}
	return v, true
}
