package ls

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/willf/bitset"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

func (e *Engine) node(id uint64) (*Node, error) {
	if id >= uint64(len(e.nodes)) {
		return nil, errors.Wrapf(ErrUnknownID, "node %d", id)
	}
	return e.nodes[id], nil
}

// Node returns the node with the given id.
func (e *Engine) Node(id uint64) (*Node, error) {
	return e.node(id)
}

func (e *Engine) NumNodes() uint64 {
	return uint64(len(e.nodes))
}

// MkNode creates a node of the given kind and width with an unknown domain.
func (e *Engine) MkNode(kind Kind, size uint64, children, indices []uint64, symbol string) (uint64, error) {
	if size == 0 || size > MaxWidth {
		return 0, errors.Wrapf(ErrInvalidWidth, "%s of width %d", kind, size)
	}
	return e.mkNode(kind, bv.NewDomain(size), nil, children, indices, symbol)
}

// MkNodeWithDomain creates a node whose domain is the given domain
// intersected with the domain implied by its children.
func (e *Engine) MkNodeWithDomain(kind Kind, domain bv.Domain, children, indices []uint64, symbol string) (uint64, error) {
	if domain.Size() == 0 || domain.Size() > MaxWidth {
		return 0, errors.Wrapf(ErrInvalidWidth, "%s of width %d", kind, domain.Size())
	}
	if !domain.IsValid() {
		return 0, errors.Wrapf(ErrDomainViolation, "invalid domain for %s", kind)
	}
	return e.mkNode(kind, domain, nil, children, indices, symbol)
}

// MkConst creates a leaf with the given value, which must be contained in
// domain.
func (e *Engine) MkConst(value bv.BitVector, domain bv.Domain, symbol string) (uint64, error) {
	if value.Size() == 0 || value.Size() > MaxWidth || value.Size() != domain.Size() {
		return 0, errors.Wrapf(ErrInvalidWidth, "value of width %d, domain of width %d", value.Size(), domain.Size())
	}
	if !domain.IsValid() || !domain.Match(value) {
		return 0, errors.Wrapf(ErrDomainViolation, "value %s not in domain %s", value, domain)
	}
	return e.mkNode(KindConst, domain, &value, nil, nil, symbol)
}

func (e *Engine) mkNode(kind Kind, domain bv.Domain, value *bv.BitVector, children, indices []uint64, symbol string) (uint64, error) {
	if kind >= numKinds {
		return 0, errors.Wrapf(ErrInvalidArity, "unknown kind %d", kind)
	}
	var (
		sizes   = make([]uint64, len(children))
		domains = make([]bv.Domain, len(children))
		args    = make([]bv.BitVector, len(children))
	)
	for i, c := range children {
		child, err := e.node(c)
		if err != nil {
			return 0, errors.Wrapf(err, "child %d of %s", i, kind)
		}
		sizes[i] = child.size
		domains[i] = child.domain
		args[i] = e.current(child)
	}
	size, err := ResultSize(kind, sizes, indices)
	if err != nil {
		return 0, err
	}

	var guard bool
	n := &Node{
		id:       uint64(len(e.nodes)),
		kind:     kind,
		size:     domain.Size(),
		children: append([]uint64(nil), children...),
		indices:  append([]uint64(nil), indices...),
		symbol:   symbol,
		cone:     bitset.New(0),
	}
	if kind.IsLeaf() {
		n.domain = domain
		if value != nil {
			n.assignment = *value
		} else {
			n.assignment = domain.Sample(e.rng)
		}
	} else {
		if size != domain.Size() {
			return 0, errors.Wrapf(ErrInvalidWidth, "%s has width %d, requested %d", kind, size, domain.Size())
		}
		prop := propagateDomain(kind, size, domains, indices)
		d, ok := domain.Intersect(prop)
		if !ok {
			return 0, errors.Wrapf(ErrDomainViolation, "domain %s of %s conflicts with its children", domain, kind)
		}
		n.domain = d
		n.assignment = evaluate(kind, args, indices)
		guard = !d.Equal(prop)
	}

	e.nodes = append(e.nodes, n)
	for _, c := range children {
		if p := e.nodes[c].parents; len(p) > 0 && p[len(p)-1] == n.id {
			continue
		}
		e.nodes[c].parents = append(e.nodes[c].parents, n.id)
	}
	if guard {
		if err := e.addGuard(n); err != nil {
			e.unlink(n)
			return 0, err
		}
	}
	e.log.Tracef("new node %s", n)
	return n.id, nil
}

// unlink removes the last created node from the arena.
func (e *Engine) unlink(n *Node) {
	for _, c := range n.children {
		if p := e.nodes[c].parents; len(p) > 0 && p[len(p)-1] == n.id {
			e.nodes[c].parents = p[:len(p)-1]
		}
	}
	e.nodes = e.nodes[:n.id]
}

// addGuard keeps an operator node whose domain is narrower than the one
// implied by its children inside a cone, so that cone updates check it. A
// value outside the domain is repaired by moving the leaves below the node.
func (e *Engine) addGuard(n *Node) error {
	pos, marked, err := e.addCone(n)
	if err != nil {
		return err
	}
	for i := 0; i < maxGuardRepairs && !n.domain.Match(n.assignment); i++ {
		leaf, value, status := e.walk(n, n.domain.Apply(n.assignment), false)
		if status != walkOK || leaf.assignment.Equal(value) {
			continue
		}
		if _, _, err := e.updateCone(leaf, value, false); err != nil {
			return err
		}
	}
	if !n.domain.Match(n.assignment) {
		for _, m := range marked {
			m.cone.Clear(pos)
		}
		return errors.Wrapf(ErrDomainViolation, "value %s of %s not in domain %s", n.assignment, n.kind, n.domain)
	}
	e.guards.Add(n.id)
	return nil
}

// addCone pushes a new cone position down from n. Operator nodes that were
// outside every cone may hold stale values and are recomputed in id order.
func (e *Engine) addCone(n *Node) (uint, []*Node, error) {
	var (
		pos    = e.ncones
		marked []*Node
		fresh  []*Node
		stack  = []*Node{n}
	)
	for len(stack) > 0 {
		m := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if m.cone.Test(pos) {
			continue
		}
		if !m.inCone() && !m.kind.IsLeaf() {
			fresh = append(fresh, m)
		}
		m.cone.Set(pos)
		marked = append(marked, m)
		for _, c := range m.children {
			stack = append(stack, e.nodes[c])
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].id < fresh[j].id })
	values := make(map[uint64]bv.BitVector, len(fresh))
	for _, m := range fresh {
		args := make([]bv.BitVector, len(m.children))
		for i, c := range m.children {
			if v, ok := values[c]; ok {
				args[i] = v
			} else {
				args[i] = e.nodes[c].assignment
			}
		}
		v := evaluate(m.kind, args, m.indices)
		// a new guard is repaired by the caller
		if !m.domain.Match(v) && m != n {
			for _, mm := range marked {
				mm.cone.Clear(pos)
			}
			return 0, nil, errors.Wrapf(ErrDomainViolation, "value %s of node %d not in domain %s", v, m.id, m.domain)
		}
		values[m.id] = v
	}
	for _, m := range fresh {
		m.assignment = values[m.id]
	}
	e.ncones++
	return pos, marked, nil
}

// current returns the value of n. Nodes outside every cone are not kept up
// to date and are evaluated on demand. Their domain is the one implied by
// their children, so the value is always contained in it.
func (e *Engine) current(n *Node) bv.BitVector {
	if n.kind.IsLeaf() || n.inCone() {
		return n.assignment
	}
	return e.evalFresh(n, make(map[uint64]bv.BitVector))
}

func (e *Engine) evalFresh(n *Node, memo map[uint64]bv.BitVector) bv.BitVector {
	if n.kind.IsLeaf() || n.inCone() {
		return n.assignment
	}
	if v, ok := memo[n.id]; ok {
		return v
	}
	args := make([]bv.BitVector, len(n.children))
	for i, c := range n.children {
		args[i] = e.evalFresh(e.nodes[c], memo)
	}
	v := evaluate(n.kind, args, n.indices)
	memo[n.id] = v
	return v
}

// InvertNode returns the bitwise complement of the node, created once.
func (e *Engine) InvertNode(id uint64) (uint64, error) {
	n, err := e.node(id)
	if err != nil {
		return 0, err
	}
	if inv, ok := e.inverted[id]; ok {
		return inv, nil
	}
	symbol := ""
	if n.symbol != "" {
		symbol = "!" + n.symbol
	}
	inv, err := e.MkNode(KindNot, n.size, []uint64{id}, nil, symbol)
	if err != nil {
		return 0, err
	}
	e.inverted[id] = inv
	return inv, nil
}

func (e *Engine) GetDomain(id uint64) (bv.Domain, error) {
	n, err := e.node(id)
	if err != nil {
		return bv.Domain{}, err
	}
	return n.domain, nil
}

func (e *Engine) GetAssignment(id uint64) (bv.BitVector, error) {
	n, err := e.node(id)
	if err != nil {
		return bv.BitVector{}, err
	}
	return e.current(n), nil
}

func (e *Engine) Kind(id uint64) (Kind, error) {
	n, err := e.node(id)
	if err != nil {
		return 0, err
	}
	return n.kind, nil
}

func (e *Engine) Size(id uint64) (uint64, error) {
	n, err := e.node(id)
	if err != nil {
		return 0, err
	}
	return n.size, nil
}

func (e *Engine) Children(id uint64) ([]uint64, error) {
	n, err := e.node(id)
	if err != nil {
		return nil, err
	}
	return n.Children(), nil
}

func (e *Engine) Indices(id uint64) ([]uint64, error) {
	n, err := e.node(id)
	if err != nil {
		return nil, err
	}
	return n.Indices(), nil
}

func (e *Engine) Symbol(id uint64) (string, error) {
	n, err := e.node(id)
	if err != nil {
		return "", err
	}
	return n.symbol, nil
}

// FixBit narrows the domain of a node by fixing one bit. A leaf whose value
// disagrees takes the fixed bit and its cone is updated; an operator node
// whose value disagrees is rejected. A narrowed operator node becomes a guard.
func (e *Engine) FixBit(id, idx uint64, value bool) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	if idx >= n.size {
		return errors.Wrapf(ErrInvalidWidth, "bit %d of node %d with width %d", idx, id, n.size)
	}
	if n.domain.IsFixedBit(idx) {
		if n.domain.IsFixedBitTrue(idx) == value {
			return nil
		}
		return errors.Wrapf(ErrDomainViolation, "bit %d of node %d is fixed to %t", idx, id, !value)
	}
	var (
		d   = n.domain.FixBit(idx, value)
		cur = e.current(n)
	)
	if cur.Bit(idx) == value {
		old := n.domain
		n.domain = d
		if n.kind.IsLeaf() || e.guards.Contains(id) {
			return nil
		}
		if err := e.addGuard(n); err != nil {
			n.domain = old
			return err
		}
		return nil
	}
	if !n.kind.IsLeaf() {
		return errors.Wrapf(ErrDomainViolation, "value %s of %s node %d disagrees with bit %d", cur, n.kind, id, idx)
	}
	old := n.domain
	n.domain = d
	if _, status, err := e.updateCone(n, cur.SetBit(idx, value), false); err != nil || status != walkOK {
		n.domain = old
		if err != nil {
			return err
		}
		return errors.Wrapf(ErrDomainViolation, "fixing bit %d of node %d conflicts with a domain in its cone", idx, id)
	}
	return nil
}

// RegisterRoot adds a 1-bit node that must evaluate to 1.
func (e *Engine) RegisterRoot(id uint64) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	if n.size != 1 {
		return errors.Wrapf(ErrInvalidWidth, "root %d has width %d", id, n.size)
	}
	if e.rootSet.Contains(id) {
		return nil
	}

	if _, _, err := e.addCone(n); err != nil {
		return err
	}

	e.roots = append(e.roots, id)
	e.rootSet.Add(id)
	if !n.assignment.IsTrue() {
		e.unsat.Push(id)
	}
	switch {
	case n.kind.IsInequality():
		e.ineqTrue.Add(id)
	case n.kind == KindNot && e.nodes[n.children[0]].kind.IsInequality():
		e.ineqFalse.Add(n.children[0])
	}
	e.log.Debugf("root %s, %d roots unsat", n, e.unsat.Size())
	return nil
}

func (e *Engine) Roots() []uint64 {
	return append([]uint64(nil), e.roots...)
}

func (e *Engine) NumRootsUnsat() int {
	return e.unsat.Size()
}

func (e *Engine) IsSat() bool {
	return !e.unsat.HasNext()
}

// ComputeBounds derives the bounds of a node from the inequality roots it
// is an operand of.
func (e *Engine) ComputeBounds(id uint64) error {
	n, err := e.node(id)
	if err != nil {
		return err
	}
	e.computeBounds(n)
	return nil
}

func (e *Engine) computeBounds(n *Node) {
	n.bounds.reset()
	for _, pid := range n.parents {
		var want bool
		switch {
		case e.ineqTrue.Contains(pid):
			want = true
		case e.ineqFalse.Contains(pid):
			want = false
		default:
			continue
		}
		p := e.nodes[pid]
		for pos, c := range p.children {
			if c != n.id {
				continue
			}
			s := e.nodes[p.children[1-pos]].assignment
			if p.kind == KindUlt {
				if min, max, ok := ultRange(pos, want, s); ok {
					n.bounds.tightenUnsigned(min, max)
				}
			} else if min, max, ok := sltRange(pos, want, s); ok {
				n.bounds.tightenSigned(min, max)
			}
		}
	}
}

// Bounds are the intervals derived by the last ComputeBounds call.
type Bounds struct {
	UMin, UMax  bv.BitVector
	SMin, SMax  bv.BitVector
	HasUnsigned bool
	HasSigned   bool
}

func (e *Engine) Bounds(id uint64) (Bounds, error) {
	n, err := e.node(id)
	if err != nil {
		return Bounds{}, err
	}
	b := n.bounds
	return Bounds{
		UMin:        b.umin,
		UMax:        b.umax,
		SMin:        b.smin,
		SMax:        b.smax,
		HasUnsigned: b.hasU,
		HasSigned:   b.hasS,
	}, nil
}
