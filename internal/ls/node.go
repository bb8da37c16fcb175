package ls

import (
	"fmt"
	"strings"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
	"github.com/willf/bitset"
)

// Node is an entry of the node arena. Children and parents are ids into the
// same arena.
type Node struct {
	id         uint64
	kind       Kind
	size       uint64
	children   []uint64
	parents    []uint64
	indices    []uint64
	domain     bv.Domain
	assignment bv.BitVector
	symbol     string

	// cone holds the positions of the roots and guards reachable upward.
	cone   *bitset.BitSet
	bounds bounds
}

// bounds are optional unsigned and signed intervals derived from inequality
// roots.
type bounds struct {
	umin, umax bv.BitVector
	smin, smax bv.BitVector
	hasU, hasS bool
}

func (b *bounds) reset() {
	*b = bounds{}
}

func (b *bounds) tightenUnsigned(min, max bv.BitVector) {
	if !b.hasU {
		b.umin, b.umax, b.hasU = min, max, true
		return
	}
	if min.Ugt(b.umin) {
		b.umin = min
	}
	if max.Ult(b.umax) {
		b.umax = max
	}
}

func (b *bounds) tightenSigned(min, max bv.BitVector) {
	if !b.hasS {
		b.smin, b.smax, b.hasS = min, max, true
		return
	}
	if min.Sgt(b.smin) {
		b.smin = min
	}
	if max.Slt(b.smax) {
		b.smax = max
	}
}

func (n *Node) ID() uint64               { return n.id }
func (n *Node) Kind() Kind               { return n.kind }
func (n *Node) Size() uint64             { return n.size }
func (n *Node) Domain() bv.Domain        { return n.domain }
func (n *Node) Assignment() bv.BitVector { return n.assignment }
func (n *Node) Symbol() string           { return n.symbol }

func (n *Node) Children() []uint64 {
	return append([]uint64(nil), n.children...)
}

func (n *Node) Indices() []uint64 {
	return append([]uint64(nil), n.indices...)
}

func (n *Node) inCone() bool {
	return n.cone != nil && n.cone.Any()
}

func (n *Node) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d: %s", n.id, n.kind)
	if len(n.indices) > 0 {
		fmt.Fprintf(&sb, "%v", n.indices)
	}
	for _, c := range n.children {
		fmt.Fprintf(&sb, " @%d", c)
	}
	if n.symbol != "" {
		fmt.Fprintf(&sb, " (%s)", n.symbol)
	}
	fmt.Fprintf(&sb, " [%s] %s", n.domain, n.assignment)
	return sb.String()
}
