// Package ls implements propagation-based local search over a DAG of
// fixed-width bit-vector nodes.
package ls

import (
	"os"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/willf/bitset"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
	"github.com/Supermarcel10/bitwuzla/internal/stats"
	"github.com/Supermarcel10/bitwuzla/internal/strategy"
)

// Step records one committed move.
type Step struct {
	Root  uint64
	Leaf  uint64
	Value string
}

// Engine owns the node arena, the root set and the search state. It is not
// safe for concurrent use.
type Engine struct {
	opts  Options
	log   *log.Entry
	rng   *bv.RNG
	stats *stats.Facade

	nodes    []*Node
	inverted map[uint64]uint64

	roots     []uint64
	rootSet   mapset.Set[uint64]
	ineqTrue  mapset.Set[uint64]
	ineqFalse mapset.Set[uint64]
	unsat     strategy.Strategy
	// guards are operator nodes with a domain narrower than the one implied
	// by their children. Roots and guards each own a cone position.
	guards mapset.Set[uint64]
	ncones uint

	nmoves, nprops, nupdates uint64
	nstalls, stalled         uint64
	trace                    []Step

	exhausted bool
	err       error
	seen      *bitset.BitSet
}

// maxGuardRepairs bounds the moves spent on bringing a new guard into its
// domain.
const maxGuardRepairs = 64

func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = log.New()
		logger.SetOutput(os.Stderr)
		logger.SetLevel(opts.logLevel())
	}
	rng := bv.NewRNG(uint64(opts.Seed))
	return &Engine{
		opts:      opts,
		log:       logger.WithField("component", "ls"),
		rng:       rng,
		stats:     stats.NewFacade(opts.Statistics, opts.StatsPrefix),
		inverted:  make(map[uint64]uint64),
		rootSet:   mapset.NewThreadUnsafeSet[uint64](),
		ineqTrue:  mapset.NewThreadUnsafeSet[uint64](),
		ineqFalse: mapset.NewThreadUnsafeSet[uint64](),
		guards:    mapset.NewThreadUnsafeSet[uint64](),
		unsat:     strategy.NewUniform(rng),
		seen:      bitset.New(0),
	}
}

func (e *Engine) Options() Options   { return e.opts }
func (e *Engine) NumMoves() uint64   { return e.nmoves }
func (e *Engine) NumProps() uint64   { return e.nprops }
func (e *Engine) NumUpdates() uint64 { return e.nupdates }
func (e *Engine) NumStalls() uint64  { return e.nstalls }

// Trace returns the committed moves in order.
func (e *Engine) Trace() []Step {
	return append([]Step(nil), e.trace...)
}

func (e *Engine) propsExhausted() bool {
	return e.opts.MaxNProps > 0 && e.nprops >= e.opts.MaxNProps
}

func (e *Engine) updatesExhausted() bool {
	return e.opts.MaxNUpdates > 0 && e.nupdates >= e.opts.MaxNUpdates
}

// allUnsatFixed reports whether no unsatisfied root can change.
func (e *Engine) allUnsatFixed() bool {
	for _, id := range e.unsat.Items() {
		if !e.nodes[id].domain.IsFixed() {
			return false
		}
	}
	return true
}

// Move performs one iteration of the repair loop.
func (e *Engine) Move() (Result, error) {
	if e.err != nil {
		return Running, e.err
	}
	if !e.unsat.HasNext() {
		return Sat, nil
	}
	if e.exhausted || e.propsExhausted() || e.updatesExhausted() {
		e.exhausted = true
		return ResourceExhausted, nil
	}
	if e.allUnsatFixed() || (e.opts.MaxStalls > 0 && e.stalled >= e.opts.MaxStalls) {
		return UnsatSignal, nil
	}

	stop := e.stats.Time("time_move")
	defer stop()
	e.nmoves++
	e.stats.Inc("moves")

	// 1. 随机选择一个未满足的根节点
	root, err := e.unsat.Pick()
	if err != nil {
		return Running, errors.Wrap(err, "select root")
	}
	// 2. 从根节点向下传播到叶子
	leaf, value, status := e.walk(e.nodes[root], bv.One(1), true)
	switch status {
	case walkExhausted:
		e.exhausted = true
		return ResourceExhausted, nil
	case walkFailed:
		e.stall("no path from root %d", root)
		return Running, nil
	}
	if leaf.assignment.Equal(value) {
		e.stall("leaf %d already has value %s", leaf.id, value)
		return Running, nil
	}

	// 3. 赋值叶子并更新cone
	nsat, status, err := e.updateCone(leaf, value, true)
	if err != nil {
		return Running, err
	}
	switch status {
	case walkExhausted:
		e.exhausted = true
		return ResourceExhausted, nil
	case walkFailed:
		e.stall("value %s of leaf %d conflicts with a domain", value, leaf.id)
		return Running, nil
	}
	e.stalled = 0
	e.stats.Add("moves_sat_roots", nsat)
	e.trace = append(e.trace, Step{Root: root, Leaf: leaf.id, Value: value.String()})
	e.log.Debugf("move %d: root %d, leaf %d := %s, %d roots unsat",
		e.nmoves, root, leaf.id, value, e.unsat.Size())
	if !e.unsat.HasNext() {
		e.log.Infof("sat after %d moves, %d props, %d updates", e.nmoves, e.nprops, e.nupdates)
		return Sat, nil
	}
	return Running, nil
}

// stall records a move that changed nothing. It is charged as one update
// unless the update budget is already used up.
func (e *Engine) stall(format string, args ...interface{}) {
	e.nstalls++
	e.stalled++
	e.stats.Inc("stalls")
	if !e.updatesExhausted() {
		e.nupdates++
		e.stats.Inc("updates")
	}
	e.log.Tracef("stall: "+format, args...)
}

// Run moves until a terminal result or until maxMoves moves were made, 0
// is unlimited.
func (e *Engine) Run(maxMoves uint64) (Result, error) {
	for i := uint64(0); maxMoves == 0 || i < maxMoves; i++ {
		res, err := e.Move()
		if err != nil {
			return res, err
		}
		if res.Terminal() {
			return res, nil
		}
	}
	return Running, nil
}

type walkStatus uint8

const (
	walkOK walkStatus = iota
	walkFailed
	walkExhausted
)

// walk descends from n with target t to a leaf and returns the value the
// leaf must take.
func (e *Engine) walk(n *Node, t bv.BitVector, budgeted bool) (*Node, bv.BitVector, walkStatus) {
	if !n.domain.Match(t) {
		return nil, t, walkFailed
	}
	for !n.kind.IsLeaf() {
		if budgeted && e.propsExhausted() {
			return nil, t, walkExhausted
		}
		pos, v, ok := e.selectPath(n, t)
		if !ok {
			return nil, t, walkFailed
		}
		if budgeted {
			e.nprops++
			e.stats.Inc("props")
		}
		e.log.Tracef("prop %s -> %d: target %s", n, n.children[pos], v)
		n, t = e.nodes[n.children[pos]], v
	}
	return n, t, walkOK
}

// selectPath picks the child to continue with and its target value.
func (e *Engine) selectPath(n *Node, t bv.BitVector) (int, bv.BitVector, bool) {
	if e.opts.UseIneqBounds && n.kind.IsInequality() {
		for _, c := range n.children {
			e.computeBounds(e.nodes[c])
		}
	}

	arity := len(n.children)
	args := make([]bv.BitVector, arity)
	for i, c := range n.children {
		args[i] = e.nodes[c].assignment
	}
	repairAt := func(pos int) *repair {
		c := e.nodes[n.children[pos]]
		return &repair{
			kind:    n.kind,
			pos:     pos,
			t:       t,
			args:    args,
			indices: n.indices,
			d:       c.domain,
			b:       &c.bounds,
			rng:     e.rng,
		}
	}

	var (
		candidates  []int
		isCandidate = make([]bool, arity)
	)
	for pos := range n.children {
		if e.nodes[n.children[pos]].domain.IsFixed() {
			continue
		}
		if n.kind == KindIte && pos > 0 && (pos == 1) != args[0].IsTrue() {
			continue
		}
		candidates = append(candidates, pos)
		isCandidate[pos] = true
	}
	if len(candidates) == 0 {
		return 0, t, false
	}

	var (
		binary = arity == 2
		inv    = make([]bv.BitVector, arity)
		invOK  = make([]bool, arity)
	)
	for pos := range n.children {
		if binary || isCandidate[pos] {
			inv[pos], invOK[pos] = inverse(repairAt(pos))
		}
	}

	// a child is essential when the other operand cannot produce t
	var essential, rest []int
	for _, i := range e.rng.Perm(len(candidates)) {
		pos := candidates[i]
		if binary && !invOK[1-pos] {
			essential = append(essential, pos)
		} else {
			rest = append(rest, pos)
		}
	}
	for _, pos := range append(essential, rest...) {
		preferInverse := e.rng.Flip(e.opts.ProbPickInverse)
		if preferInverse && invOK[pos] {
			e.countProp(n.kind, true)
			return pos, inv[pos], true
		}
		if v, ok := consistent(repairAt(pos)); ok {
			e.countProp(n.kind, false)
			return pos, v, true
		}
		if invOK[pos] {
			e.countProp(n.kind, true)
			return pos, inv[pos], true
		}
	}
	return 0, t, false
}

func (e *Engine) countProp(kind Kind, inverse bool) {
	if !e.stats.Enabled() {
		return
	}
	if inverse {
		e.stats.Inc("props_inv")
		e.stats.Inc("inverse::" + kind.String())
		return
	}
	e.stats.Inc("props_cons")
	e.stats.Inc("consistent::" + kind.String())
}

// updateCone assigns value to the leaf and recomputes every ancestor that
// belongs to a cone, in id order. Nothing is committed when the update
// budget runs out or a recomputed value leaves a domain that held the old
// value. It returns the number of roots that became satisfied.
func (e *Engine) updateCone(leaf *Node, value bv.BitVector, budgeted bool) (uint64, walkStatus, error) {
	if !leaf.domain.Match(value) {
		e.err = errors.Wrapf(ErrInvariantViolation, "value %s of leaf %d outside domain %s", value, leaf.id, leaf.domain)
		return 0, walkFailed, e.err
	}
	stop := e.stats.Time("time_update_cone")
	defer stop()

	e.seen.ClearAll()
	stack := []*Node{leaf}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range n.parents {
			if e.seen.Test(uint(p)) || !e.nodes[p].inCone() {
				continue
			}
			e.seen.Set(uint(p))
			stack = append(stack, e.nodes[p])
		}
	}

	var (
		order  = []uint64{leaf.id}
		values = map[uint64]bv.BitVector{leaf.id: value}
	)
	for i, ok := e.seen.NextSet(0); ok; i, ok = e.seen.NextSet(i + 1) {
		if budgeted && e.updatesExhausted() {
			return 0, walkExhausted, nil
		}
		n := e.nodes[i]
		args := make([]bv.BitVector, len(n.children))
		for j, c := range n.children {
			if v, ok := values[c]; ok {
				args[j] = v
			} else {
				args[j] = e.nodes[c].assignment
			}
		}
		v := evaluate(n.kind, args, n.indices)
		if budgeted {
			e.nupdates++
			e.stats.Inc("updates")
		}
		if !n.domain.Match(v) && n.domain.Match(n.assignment) {
			return 0, walkFailed, nil
		}
		values[n.id] = v
		order = append(order, n.id)
	}

	var nsat uint64
	for _, id := range order {
		n := e.nodes[id]
		n.assignment = values[id]
		if !e.rootSet.Contains(id) {
			continue
		}
		if n.assignment.IsTrue() {
			if e.unsat.Remove(id) {
				nsat++
			}
		} else {
			e.unsat.Push(id)
		}
	}
	return nsat, walkOK, nil
}
