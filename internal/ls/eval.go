package ls

import (
	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

// evaluate computes the value of an operator node from its child values.
func evaluate(kind Kind, args []bv.BitVector, indices []uint64) bv.BitVector {
	switch kind {
	case KindNot:
		return args[0].Not()
	case KindAnd:
		return args[0].And(args[1])
	case KindOr:
		return args[0].Or(args[1])
	case KindXor:
		return args[0].Xor(args[1])
	case KindAdd:
		return args[0].Add(args[1])
	case KindSub:
		return args[0].Sub(args[1])
	case KindMul:
		return args[0].Mul(args[1])
	case KindUdiv:
		return args[0].Udiv(args[1])
	case KindUrem:
		return args[0].Urem(args[1])
	case KindShl:
		return args[0].Shl(args[1])
	case KindShr:
		return args[0].Shr(args[1])
	case KindAshr:
		return args[0].Ashr(args[1])
	case KindEq:
		return bv.FromBool(args[0].Equal(args[1]))
	case KindUlt:
		return bv.FromBool(args[0].Ult(args[1]))
	case KindSlt:
		return bv.FromBool(args[0].Slt(args[1]))
	case KindConcat:
		return args[0].Concat(args[1])
	case KindExtract:
		return args[0].Extract(indices[0], indices[1])
	case KindSext:
		return args[0].Sext(indices[0])
	case KindIte:
		if args[0].IsTrue() {
			return args[1]
		}
		return args[2]
	}
	panic("evaluate: " + kind.String())
}

// propagateDomain computes the domain of an operator node implied by the
// domains of its children.
func propagateDomain(kind Kind, size uint64, args []bv.Domain, indices []uint64) bv.Domain {
	fixed := true
	for _, d := range args {
		if !d.IsFixed() {
			fixed = false
			break
		}
	}
	if fixed {
		values := make([]bv.BitVector, len(args))
		for i, d := range args {
			values[i] = d.Lo()
		}
		return bv.NewFixedDomain(evaluate(kind, values, indices))
	}
	switch kind {
	case KindNot:
		return args[0].Not()
	case KindAnd:
		return args[0].And(args[1])
	case KindOr:
		return args[0].Or(args[1])
	case KindXor:
		return args[0].Xor(args[1])
	case KindConcat:
		return args[0].Concat(args[1])
	case KindExtract:
		return args[0].Extract(indices[0], indices[1])
	case KindSext:
		return args[0].Sext(indices[0])
	case KindShl, KindShr:
		if !args[1].IsFixed() {
			break
		}
		n := args[1].Lo()
		if !n.Big().IsUint64() || n.Big().Uint64() >= size {
			return bv.NewFixedDomain(bv.Zero(size))
		}
		if kind == KindShl {
			return args[0].ShlN(n.Big().Uint64())
		}
		return args[0].ShrN(n.Big().Uint64())
	case KindIte:
		if args[0].IsFixed() {
			if args[0].Lo().IsTrue() {
				return args[1]
			}
			return args[2]
		}
		return args[1].Ite(args[2])
	}
	return bv.NewDomain(size)
}
