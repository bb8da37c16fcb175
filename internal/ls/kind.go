package ls

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind is the operator of a node.
type Kind uint8

const (
	KindConst Kind = iota
	KindNot
	KindAnd
	KindOr
	KindXor
	KindAdd
	KindSub
	KindMul
	KindUdiv
	KindUrem
	KindShl
	KindShr
	KindAshr
	KindEq
	KindUlt
	KindSlt
	KindConcat
	KindExtract
	KindSext
	KindIte
	numKinds
)

var kindNames = [...]string{
	KindConst:   "const",
	KindNot:     "not",
	KindAnd:     "and",
	KindOr:      "or",
	KindXor:     "xor",
	KindAdd:     "add",
	KindSub:     "sub",
	KindMul:     "mul",
	KindUdiv:    "udiv",
	KindUrem:    "urem",
	KindShl:     "shl",
	KindShr:     "shr",
	KindAshr:    "ashr",
	KindEq:      "eq",
	KindUlt:     "ult",
	KindSlt:     "slt",
	KindConcat:  "concat",
	KindExtract: "extract",
	KindSext:    "sext",
	KindIte:     "ite",
}

func (k Kind) String() string {
	if k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, errors.Errorf("unknown node kind %q", s)
}

// Arity is the number of children of the kind.
func (k Kind) Arity() int {
	switch k {
	case KindConst:
		return 0
	case KindNot, KindExtract, KindSext:
		return 1
	case KindIte:
		return 3
	default:
		return 2
	}
}

// NumIndices is the number of indices of the kind.
func (k Kind) NumIndices() int {
	switch k {
	case KindExtract:
		return 2
	case KindSext:
		return 1
	default:
		return 0
	}
}

func (k Kind) IsLeaf() bool {
	return k == KindConst
}

// IsPredicate reports whether the result is a 1-bit comparison.
func (k Kind) IsPredicate() bool {
	return k == KindEq || k == KindUlt || k == KindSlt
}

func (k Kind) IsInequality() bool {
	return k == KindUlt || k == KindSlt
}

// MaxWidth is the widest node the registry accepts.
const MaxWidth = 1 << 24

// ResultSize checks the typing rules and returns the width of the result.
// Leaves have no inferred width and yield 0.
func ResultSize(k Kind, sizes []uint64, indices []uint64) (uint64, error) {
	if len(sizes) != k.Arity() {
		return 0, errors.Wrapf(ErrInvalidArity, "%s expects %d children, got %d", k, k.Arity(), len(sizes))
	}
	if len(indices) != k.NumIndices() {
		return 0, errors.Wrapf(ErrInvalidWidth, "%s expects %d indices, got %d", k, k.NumIndices(), len(indices))
	}
	switch k {
	case KindConst:
		return 0, nil
	case KindNot:
		return sizes[0], nil
	case KindConcat:
		if sizes[0] > MaxWidth || sizes[1] > MaxWidth-sizes[0] {
			return 0, errors.Wrapf(ErrInvalidWidth, "concat of widths %d and %d exceeds %d", sizes[0], sizes[1], MaxWidth)
		}
		return sizes[0] + sizes[1], nil
	case KindExtract:
		hi, lo := indices[0], indices[1]
		if hi < lo || hi >= sizes[0] {
			return 0, errors.Wrapf(ErrInvalidWidth, "extract [%d:%d] on width %d", hi, lo, sizes[0])
		}
		return hi - lo + 1, nil
	case KindSext:
		if sizes[0] > MaxWidth || indices[0] > MaxWidth-sizes[0] {
			return 0, errors.Wrapf(ErrInvalidWidth, "sext by %d on width %d exceeds %d", indices[0], sizes[0], MaxWidth)
		}
		return sizes[0] + indices[0], nil
	case KindIte:
		if sizes[0] != 1 {
			return 0, errors.Wrapf(ErrInvalidWidth, "ite condition has width %d", sizes[0])
		}
		if sizes[1] != sizes[2] {
			return 0, errors.Wrapf(ErrInvalidWidth, "ite branches have widths %d and %d", sizes[1], sizes[2])
		}
		return sizes[1], nil
	}
	if sizes[0] != sizes[1] {
		return 0, errors.Wrapf(ErrInvalidWidth, "%s on widths %d and %d", k, sizes[0], sizes[1])
	}
	if k.IsPredicate() {
		return 1, nil
	}
	return sizes[0], nil
}
