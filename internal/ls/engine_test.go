package ls

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
	"github.com/Supermarcel10/bitwuzla/internal/stats"
)

func newEngine(t *testing.T, mutate ...func(*Options)) *Engine {
	opts := DefaultOptions()
	for _, m := range mutate {
		m(&opts)
	}
	return New(opts)
}

func mustConst(t *testing.T, e *Engine, value string) uint64 {
	v := bv.MustFromBinary(value)
	id, err := e.MkConst(v, bv.NewFixedDomain(v), value)
	require.Nil(t, err)
	return id
}

func mustNode(t *testing.T, e *Engine, kind Kind, size uint64, children ...uint64) uint64 {
	id, err := e.MkNode(kind, size, children, nil, "")
	require.Nil(t, err)
	return id
}

// checkContainment verifies that every node value is in its domain and
// every node in a root cone matches the evaluation of its children.
func checkContainment(t *testing.T, e *Engine) {
	for id := uint64(0); id < e.NumNodes(); id++ {
		n, err := e.Node(id)
		require.Nil(t, err)
		v, err := e.GetAssignment(id)
		require.Nil(t, err)
		require.True(t, n.Domain().Match(v), "node %s", n)
		if n.Kind().IsLeaf() || !n.inCone() {
			continue
		}
		args := make([]bv.BitVector, len(n.children))
		for i, c := range n.children {
			args[i] = e.nodes[c].assignment
		}
		require.True(t, evaluate(n.kind, args, n.indices).Equal(v), "node %s", n)
	}
}

func Test_ScenarioAnd(t *testing.T) {
	e := newEngine(t)
	a := mustNode(t, e, KindConst, 4)
	b := mustConst(t, e, "1100")
	r := mustNode(t, e, KindAnd, 4, a, b)
	c := mustConst(t, e, "1000")
	eq := mustNode(t, e, KindEq, 1, r, c)
	require.Nil(t, e.RegisterRoot(eq))

	res, err := e.Run(100)
	require.Nil(t, err)
	assert.Equal(t, Sat, res)
	assert.True(t, e.IsSat())
	assert.LessOrEqual(t, e.NumMoves(), uint64(10))

	va, _ := e.GetAssignment(a)
	assert.Equal(t, "1000", va.And(bv.MustFromBinary("1100")).String())
	checkContainment(t, e)
}

func Test_ScenarioUlt(t *testing.T) {
	e := newEngine(t)
	a := mustNode(t, e, KindConst, 8)
	c := mustConst(t, e, "00000101")
	lt := mustNode(t, e, KindUlt, 1, a, c)
	require.Nil(t, e.RegisterRoot(lt))

	res, err := e.Run(100)
	require.Nil(t, err)
	assert.Equal(t, Sat, res)
	va, _ := e.GetAssignment(a)
	assert.Less(t, va.Uint64(), uint64(5))
}

func Test_ScenarioFixBitOpposite(t *testing.T) {
	e := newEngine(t)
	v := bv.MustFromBinary("1000")
	a, err := e.MkConst(v, bv.MustParseDomain("1xxx"), "a")
	require.Nil(t, err)

	err = e.FixBit(a, 3, false)
	assert.True(t, errors.Is(err, ErrDomainViolation))
	d, _ := e.GetDomain(a)
	assert.Equal(t, "1xxx", d.String())
	va, _ := e.GetAssignment(a)
	assert.Equal(t, "1000", va.String())
}

func Test_FixBit(t *testing.T) {
	e := newEngine(t)
	a, err := e.MkConst(bv.MustFromBinary("0000"), bv.NewDomain(4), "a")
	require.Nil(t, err)
	b := mustConst(t, e, "0001")
	sum := mustNode(t, e, KindAdd, 4, a, b)
	c := mustConst(t, e, "0110")
	eq := mustNode(t, e, KindEq, 1, sum, c)
	require.Nil(t, e.RegisterRoot(eq))
	assert.Equal(t, 1, e.NumRootsUnsat())

	// the leaf takes the bit and its cone is updated
	require.Nil(t, e.FixBit(a, 0, true))
	require.Nil(t, e.FixBit(a, 2, true))
	d, _ := e.GetDomain(a)
	assert.Equal(t, "x1x1", d.String())
	vs, _ := e.GetAssignment(sum)
	assert.Equal(t, "0110", vs.String())
	assert.True(t, e.IsSat())

	// fixing to the current value only narrows the domain
	require.Nil(t, e.FixBit(a, 3, false))
	require.Nil(t, e.FixBit(a, 3, false))

	// operator nodes cannot be re-derived
	err = e.FixBit(sum, 0, true)
	assert.True(t, errors.Is(err, ErrDomainViolation))
	require.Nil(t, e.FixBit(sum, 0, false))

	assert.True(t, errors.Is(e.FixBit(a, 4, true), ErrInvalidWidth))
	assert.True(t, errors.Is(e.FixBit(99, 0, true), ErrUnknownID))
	checkContainment(t, e)
}

func Test_CreationErrors(t *testing.T) {
	e := newEngine(t)
	a := mustNode(t, e, KindConst, 4)
	b := mustNode(t, e, KindConst, 2)
	c := mustNode(t, e, KindConst, 1)

	var testCases = []struct {
		Kind     Kind
		Size     uint64
		Children []uint64
		Indices  []uint64
		Err      error
	}{
		{KindAnd, 4, []uint64{a}, nil, ErrInvalidArity},
		{KindNot, 4, []uint64{a, a}, nil, ErrInvalidArity},
		{KindIte, 4, []uint64{c, a}, nil, ErrInvalidArity},
		{KindAdd, 4, []uint64{a, b}, nil, ErrInvalidWidth},
		{KindAdd, 2, []uint64{a, a}, nil, ErrInvalidWidth},
		{KindEq, 4, []uint64{a, a}, nil, ErrInvalidWidth},
		{KindConcat, 6, []uint64{a, b}, nil, nil},
		{KindConcat, 5, []uint64{a, b}, nil, ErrInvalidWidth},
		{KindExtract, 2, []uint64{a}, []uint64{2, 1}, nil},
		{KindExtract, 2, []uint64{a}, []uint64{1, 2}, ErrInvalidWidth},
		{KindExtract, 2, []uint64{a}, []uint64{4, 3}, ErrInvalidWidth},
		{KindExtract, 2, []uint64{a}, nil, ErrInvalidWidth},
		{KindSext, 6, []uint64{a}, []uint64{2}, nil},
		{KindSext, 2, []uint64{a}, []uint64{math.MaxUint64 - 1}, ErrInvalidWidth},
		{KindConst, MaxWidth + 1, nil, nil, ErrInvalidWidth},
		{KindIte, 4, []uint64{b, a, a}, nil, ErrInvalidWidth},
		{KindIte, 4, []uint64{c, a, a}, nil, nil},
		{KindAnd, 4, []uint64{a, 1000}, nil, ErrUnknownID},
		{KindConst, 0, nil, nil, ErrInvalidWidth},
	}
	for _, tc := range testCases {
		before := e.NumNodes()
		_, err := e.MkNode(tc.Kind, tc.Size, tc.Children, tc.Indices, "")
		if tc.Err == nil {
			assert.Nil(t, err, "%+v", tc)
			continue
		}
		assert.True(t, errors.Is(err, tc.Err), "%+v: %v", tc, err)
		assert.Equal(t, before, e.NumNodes(), "no node registered on error")
	}

	// children must exist before their parents, so no cycle can be built
	next := e.NumNodes()
	_, err := e.MkNode(KindNot, 4, []uint64{next}, nil, "")
	assert.True(t, errors.Is(err, ErrUnknownID))

	_, err = e.MkConst(bv.MustFromBinary("0101"), bv.MustParseDomain("1xxx"), "")
	assert.True(t, errors.Is(err, ErrDomainViolation))
	_, err = e.MkConst(bv.MustFromBinary("01"), bv.NewDomain(4), "")
	assert.True(t, errors.Is(err, ErrInvalidWidth))

	zero := mustConst(t, e, "0000")
	_, err = e.MkNodeWithDomain(KindNot, bv.MustParseDomain("0xxx"), []uint64{zero}, nil, "")
	assert.True(t, errors.Is(err, ErrDomainViolation))
	id, err := e.MkNodeWithDomain(KindNot, bv.MustParseDomain("1xxx"), []uint64{zero}, nil, "")
	require.Nil(t, err)
	d, _ := e.GetDomain(id)
	assert.Equal(t, "1111", d.String())

	_, err = e.GetDomain(1 << 20)
	assert.True(t, errors.Is(err, ErrUnknownID))
	_, err = e.GetAssignment(1 << 20)
	assert.True(t, errors.Is(err, ErrUnknownID))
	assert.True(t, errors.Is(e.RegisterRoot(a), ErrInvalidWidth))
}

func Test_DomainGuard(t *testing.T) {
	for seed := uint32(1); seed <= 20; seed++ {
		e := newEngine(t, func(o *Options) { o.Seed = seed })
		a := mustNode(t, e, KindConst, 4)
		b := mustNode(t, e, KindConst, 4)
		and, err := e.MkNodeWithDomain(KindAnd, bv.MustParseDomain("1xxx"), []uint64{a, b}, nil, "")
		require.Nil(t, err, "seed %d", seed)
		v, _ := e.GetAssignment(and)
		assert.True(t, v.Msb(), "seed %d: %s", seed, v)
		checkContainment(t, e)

		// a == b is satisfiable together with the guard
		diff := mustNode(t, e, KindXor, 4, a, b)
		require.Nil(t, e.RegisterRoot(mustNode(t, e, KindEq, 1, diff, mustConst(t, e, "0000"))))
		res, err := e.Run(1000)
		require.Nil(t, err)
		assert.Equal(t, Sat, res, "seed %d", seed)
		checkContainment(t, e)
	}

	// a root that needs a <u 1000 conflicts with the guard and never commits
	e := newEngine(t, func(o *Options) { o.MaxStalls = 20 })
	a := mustNode(t, e, KindConst, 4)
	b := mustNode(t, e, KindConst, 4)
	and, err := e.MkNodeWithDomain(KindAnd, bv.MustParseDomain("1xxx"), []uint64{a, b}, nil, "")
	require.Nil(t, err)
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindUlt, 1, a, mustConst(t, e, "1000"))))
	res, err := e.Run(1000)
	require.Nil(t, err)
	assert.Equal(t, UnsatSignal, res)
	v, _ := e.GetAssignment(and)
	assert.True(t, v.Msb())
	checkContainment(t, e)

	// a == a is never 0, creation fails and leaves nothing behind
	e = newEngine(t)
	a = mustNode(t, e, KindConst, 4)
	before := e.NumNodes()
	_, err = e.MkNodeWithDomain(KindEq, bv.MustParseDomain("0"), []uint64{a, a}, nil, "")
	assert.True(t, errors.Is(err, ErrDomainViolation))
	assert.Equal(t, before, e.NumNodes())
	assert.Empty(t, e.nodes[a].parents)
	assert.False(t, e.nodes[a].inCone())
	id := mustNode(t, e, KindNot, 4, a)
	assert.Equal(t, before, id)
	checkContainment(t, e)

	// a narrowed operator node is checked like a created guard
	e = newEngine(t, func(o *Options) { o.MaxStalls = 20 })
	x, err := e.MkConst(bv.MustFromBinary("0000"), bv.NewDomain(4), "x")
	require.Nil(t, err)
	neg := mustNode(t, e, KindNot, 4, x)
	require.Nil(t, e.FixBit(neg, 3, true))
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindEq, 1, x, mustConst(t, e, "1111"))))
	res, err = e.Run(1000)
	require.Nil(t, err)
	assert.Equal(t, UnsatSignal, res)
	checkContainment(t, e)
}

func Test_InvertNode(t *testing.T) {
	e := newEngine(t)
	a := mustNode(t, e, KindConst, 4)
	inv, err := e.InvertNode(a)
	require.Nil(t, err)
	again, err := e.InvertNode(a)
	require.Nil(t, err)
	assert.Equal(t, inv, again)

	kind, _ := e.Kind(inv)
	assert.Equal(t, KindNot, kind)
	va, _ := e.GetAssignment(a)
	vi, _ := e.GetAssignment(inv)
	assert.Equal(t, va.Not().String(), vi.String())

	_, err = e.InvertNode(1000)
	assert.True(t, errors.Is(err, ErrUnknownID))
}

// buildMixed creates a satisfiable problem over several operators:
// x * 3 + y == 0x2a, x <s y, (x >> 1) & 0xf0 == 0, ite(x[0], x, y) != 0.
func buildMixed(t *testing.T, e *Engine) {
	x := mustNode(t, e, KindConst, 8)
	y := mustNode(t, e, KindConst, 8)
	three := mustConst(t, e, "00000011")
	mul := mustNode(t, e, KindMul, 8, x, three)
	add := mustNode(t, e, KindAdd, 8, mul, y)
	k := mustConst(t, e, "00101010")
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindEq, 1, add, k)))
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindSlt, 1, x, y)))

	one := mustConst(t, e, "00000001")
	shr := mustNode(t, e, KindShr, 8, x, one)
	and := mustNode(t, e, KindAnd, 8, shr, mustConst(t, e, "11110000"))
	zero := mustConst(t, e, "00000000")
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindEq, 1, and, zero)))

	bit, err := e.MkNode(KindExtract, 1, []uint64{x}, []uint64{0, 0}, "")
	require.Nil(t, err)
	ite := mustNode(t, e, KindIte, 8, bit, x, y)
	eq := mustNode(t, e, KindEq, 1, ite, zero)
	ne, err := e.InvertNode(eq)
	require.Nil(t, err)
	require.Nil(t, e.RegisterRoot(ne))
}

func Test_Mixed(t *testing.T) {
	e := newEngine(t)
	buildMixed(t, e)
	for i := 0; i < 20000; i++ {
		res, err := e.Move()
		require.Nil(t, err)
		checkContainment(t, e)
		if res == Sat {
			break
		}
		require.Equal(t, Running, res)
	}
	require.True(t, e.IsSat())
	for _, r := range e.Roots() {
		v, _ := e.GetAssignment(r)
		assert.True(t, v.IsTrue())
	}
}

func Test_Determinism(t *testing.T) {
	run := func(seed uint32) ([]Step, Result) {
		e := newEngine(t, func(o *Options) { o.Seed = seed })
		buildMixed(t, e)
		res, err := e.Run(20000)
		require.Nil(t, err)
		return e.Trace(), res
	}
	t1, r1 := run(DefaultSeed)
	t2, r2 := run(DefaultSeed)
	assert.Equal(t, r1, r2)
	if diff := cmp.Diff(t1, t2); diff != "" {
		t.Errorf("traces differ (-first +second):\n%s", diff)
	}
}

// buildImpossible creates a root a <u 0 that no move can satisfy.
func buildImpossible(t *testing.T, e *Engine) uint64 {
	a := mustNode(t, e, KindConst, 8)
	zero := mustConst(t, e, "00000000")
	lt := mustNode(t, e, KindUlt, 1, a, zero)
	require.Nil(t, e.RegisterRoot(lt))
	return a
}

func Test_Budgets(t *testing.T) {
	e := newEngine(t, func(o *Options) { o.MaxNProps = 5 })
	buildImpossible(t, e)
	res, err := e.Run(1000)
	require.Nil(t, err)
	assert.Equal(t, ResourceExhausted, res)
	assert.LessOrEqual(t, e.NumProps(), uint64(5))
	res, _ = e.Move()
	assert.Equal(t, ResourceExhausted, res)

	e = newEngine(t, func(o *Options) { o.MaxNUpdates = 3 })
	buildImpossible(t, e)
	res, err = e.Run(1000)
	require.Nil(t, err)
	assert.Equal(t, ResourceExhausted, res)
	assert.LessOrEqual(t, e.NumUpdates(), uint64(3))

	// every move stalls and nothing is committed, the update budget still
	// ends the search
	e = newEngine(t, func(o *Options) {
		o.MaxStalls = 0
		o.MaxNUpdates = 10
	})
	a, err := e.MkNodeWithDomain(KindConst, bv.MustParseDomain("1x"), nil, nil, "a")
	require.Nil(t, err)
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindUlt, 1, a, mustConst(t, e, "00"))))
	res, err = e.Run(100000)
	require.Nil(t, err)
	assert.Equal(t, ResourceExhausted, res)
	assert.Equal(t, uint64(10), e.NumUpdates())
	assert.GreaterOrEqual(t, e.NumStalls(), uint64(9))
	assert.LessOrEqual(t, len(e.Trace()), 1)

	e = newEngine(t)
	buildImpossible(t, e)
	res, err = e.Run(10)
	require.Nil(t, err)
	assert.Equal(t, Running, res)
	assert.Equal(t, uint64(10), e.NumMoves())
}

func Test_UnsatSignal(t *testing.T) {
	// a root that is fixed to false
	e := newEngine(t)
	f := mustConst(t, e, "0")
	require.Nil(t, e.RegisterRoot(f))
	res, err := e.Move()
	require.Nil(t, err)
	assert.Equal(t, UnsatSignal, res)

	// a <u 0 with a in 1x: the only consistent value is 10, then every
	// move stalls
	e = newEngine(t, func(o *Options) { o.MaxStalls = 3 })
	a, err := e.MkNodeWithDomain(KindConst, bv.MustParseDomain("1x"), nil, nil, "a")
	require.Nil(t, err)
	lt := mustNode(t, e, KindUlt, 1, a, mustConst(t, e, "00"))
	require.Nil(t, e.RegisterRoot(lt))
	res, err = e.Run(100)
	require.Nil(t, err)
	assert.Equal(t, UnsatSignal, res)
	assert.Equal(t, uint64(3), e.NumStalls())
}

func Test_ComputeBounds(t *testing.T) {
	e := newEngine(t)
	a := mustNode(t, e, KindConst, 8)
	ten := mustConst(t, e, "00001010")
	three := mustConst(t, e, "00000011")
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindUlt, 1, a, ten)))
	ge, err := e.InvertNode(mustNode(t, e, KindUlt, 1, a, three))
	require.Nil(t, err)
	require.Nil(t, e.RegisterRoot(ge))
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindSlt, 1, mustConst(t, e, "11111110"), a)))

	require.Nil(t, e.ComputeBounds(a))
	b, err := e.Bounds(a)
	require.Nil(t, err)
	assert.True(t, b.HasUnsigned)
	assert.Equal(t, uint64(3), b.UMin.Uint64())
	assert.Equal(t, uint64(9), b.UMax.Uint64())
	assert.True(t, b.HasSigned)
	assert.Equal(t, "11111111", b.SMin.String())
	assert.Equal(t, "01111111", b.SMax.String())

	res, err := e.Run(1000)
	require.Nil(t, err)
	assert.Equal(t, Sat, res)
	va, _ := e.GetAssignment(a)
	assert.True(t, va.Uint64() >= 3 && va.Uint64() < 10)
}

func Test_LazyAssignment(t *testing.T) {
	e := newEngine(t)
	a := mustNode(t, e, KindConst, 4)
	// outside every root cone
	neg := mustNode(t, e, KindNot, 4, a)
	c := mustConst(t, e, "0101")
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindEq, 1, a, c)))
	_, err := e.Run(100)
	require.Nil(t, err)

	vn, _ := e.GetAssignment(neg)
	assert.Equal(t, "1010", vn.String())

	// registering a root over the stale node refreshes it
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindEq, 1, neg, mustConst(t, e, "1010"))))
	assert.True(t, e.IsSat())

	// a node with its own domain stays contained although no root is above it
	e = newEngine(t, func(o *Options) { o.MaxStalls = 20 })
	x, err := e.MkConst(bv.MustFromBinary("0000"), bv.NewDomain(4), "x")
	require.Nil(t, err)
	guarded, err := e.MkNodeWithDomain(KindNot, bv.MustParseDomain("1xxx"), []uint64{x}, nil, "")
	require.Nil(t, err)
	require.Nil(t, e.RegisterRoot(mustNode(t, e, KindEq, 1, x, mustConst(t, e, "1111"))))
	res, err := e.Run(1000)
	require.Nil(t, err)
	assert.NotEqual(t, Sat, res)
	vg, _ := e.GetAssignment(guarded)
	assert.Equal(t, "1111", vg.String())
	checkContainment(t, e)
}

func Test_Statistics(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := stats.NewPrometheus(reg)
	require.Nil(t, err)
	e := newEngine(t, func(o *Options) { o.Statistics = sink })
	buildMixed(t, e)
	_, err = e.Run(20000)
	require.Nil(t, err)

	entries, err := sink.Snapshot()
	require.Nil(t, err)
	values := map[string]float64{}
	for _, entry := range entries {
		values[entry.Name] = entry.Value
	}
	assert.Equal(t, float64(e.NumMoves()), values[DefaultStatsPrefix+"moves"])
	assert.Equal(t, float64(e.NumProps()), values[DefaultStatsPrefix+"props"])
	assert.Equal(t, float64(e.NumUpdates()), values[DefaultStatsPrefix+"updates"])
	assert.Contains(t, values, DefaultStatsPrefix+"time_move")
}
