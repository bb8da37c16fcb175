package smt

import (
	"fmt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
	"github.com/Supermarcel10/bitwuzla/internal/ls"
)

// Graph is the read-only view of a node arena.
type Graph interface {
	NumNodes() uint64
	Node(id uint64) (*ls.Node, error)
	Roots() []uint64
}

// Model maps every node of a graph to a yices term. Domain fixed bits and
// roots are collected as boolean constraints.
type Model struct {
	terms   []*BitVec
	leaves  []uint64
	domains []yices2.TermT
	roots   []yices2.TermT
}

func NewModel(g Graph) (*Model, error) {
	m := &Model{terms: make([]*BitVec, g.NumNodes())}
	for id := uint64(0); id < g.NumNodes(); id++ {
		n, err := g.Node(id)
		if err != nil {
			return nil, err
		}
		term, err := m.translate(n)
		if err != nil {
			return nil, errors.Wrapf(err, "translate node %d", id)
		}
		m.terms[id] = term
		m.domains = append(m.domains, fixedBits(term, n.Domain())...)
	}
	for _, r := range g.Roots() {
		m.roots = append(m.roots, m.terms[r].AsBool().GetRaw())
	}
	return m, nil
}

func (m *Model) translate(n *ls.Node) (*BitVec, error) {
	size := uint32(n.Size())
	if n.Kind().IsLeaf() {
		if n.Domain().IsFixed() {
			return NewBitVecVal(n.Domain().Lo()), nil
		}
		m.leaves = append(m.leaves, n.ID())
		return NewBitVec(n.Symbol(), size)
	}
	args := make([]*BitVec, len(n.Children()))
	for i, c := range n.Children() {
		args[i] = m.terms[c]
	}
	switch n.Kind() {
	case ls.KindNot:
		return args[0].Not(), nil
	case ls.KindAnd:
		return args[0].And(args[1]), nil
	case ls.KindOr:
		return args[0].Or(args[1]), nil
	case ls.KindXor:
		return args[0].Xor(args[1]), nil
	case ls.KindAdd:
		return args[0].Add(args[1]), nil
	case ls.KindSub:
		return args[0].Sub(args[1]), nil
	case ls.KindMul:
		return args[0].Mul(args[1]), nil
	case ls.KindUdiv:
		return args[0].UDiv(args[1]), nil
	case ls.KindUrem:
		return args[0].URem(args[1]), nil
	case ls.KindShl:
		return args[0].Shl(args[1]), nil
	case ls.KindShr:
		return args[0].Shr(args[1]), nil
	case ls.KindAshr:
		return args[0].AShr(args[1]), nil
	case ls.KindEq:
		return args[0].Eq(args[1]).AsBitVec(), nil
	case ls.KindUlt:
		return args[0].Ult(args[1]).AsBitVec(), nil
	case ls.KindSlt:
		return args[0].Slt(args[1]).AsBitVec(), nil
	case ls.KindConcat:
		return args[0].Concat(args[1]), nil
	case ls.KindExtract:
		idx := n.Indices()
		return args[0].Extract(uint32(idx[0]), uint32(idx[1])), nil
	case ls.KindSext:
		return args[0].SignExtend(uint32(n.Indices()[0])), nil
	case ls.KindIte:
		return Ite(args[0].AsBool(), args[1], args[2]), nil
	}
	return nil, fmt.Errorf("unsupported kind %s with size %d", n.Kind(), size)
}

func fixedBits(term *BitVec, d bv.Domain) []yices2.TermT {
	if !d.HasFixedBits() {
		return nil
	}
	var result []yices2.TermT
	for i := uint64(0); i < d.Size(); i++ {
		if !d.IsFixedBit(i) {
			continue
		}
		bit := term.Bit(uint32(i))
		if !d.IsFixedBitTrue(i) {
			bit = bit.Not()
		}
		result = append(result, bit.GetRaw())
	}
	return result
}

func (m *Model) Term(id uint64) *BitVec {
	return m.terms[id]
}

// Leaves returns the ids of the non-fixed leaves, which are the free
// variables of the model.
func (m *Model) Leaves() []uint64 {
	return m.leaves
}

// Constraints returns the domain and root constraints.
func (m *Model) Constraints() []yices2.TermT {
	result := make([]yices2.TermT, 0, len(m.domains)+len(m.roots))
	result = append(result, m.domains...)
	return append(result, m.roots...)
}
