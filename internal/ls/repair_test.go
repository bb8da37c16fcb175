package ls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

func allValues(size uint64) []bv.BitVector {
	result := make([]bv.BitVector, 0, 1<<size)
	for v := uint64(0); v < 1<<size; v++ {
		result = append(result, bv.FromUint64(size, v))
	}
	return result
}

func allDomains(size uint64) []bv.Domain {
	var result []bv.Domain
	for _, lo := range allValues(size) {
		for _, hi := range allValues(size) {
			if d := bv.NewDomainFromBounds(lo, hi); d.IsValid() {
				result = append(result, d)
			}
		}
	}
	return result
}

func newRepair(kind Kind, pos int, t bv.BitVector, args []bv.BitVector, indices []uint64, d bv.Domain, rng *bv.RNG) *repair {
	return &repair{
		kind:    kind,
		pos:     pos,
		t:       t,
		args:    args,
		indices: indices,
		d:       d,
		b:       &bounds{},
		rng:     rng,
	}
}

// checkRepair verifies that inverse finds a value exactly when one exists
// in the domain, and that a consistent value can reach t with some value of
// the other operands.
func checkRepair(t *testing.T, rng *bv.RNG, kind Kind, pos int, target bv.BitVector, args []bv.BitVector, indices []uint64, d bv.Domain) {
	r := newRepair(kind, pos, target, args, indices, d, rng)
	exists := false
	for _, x := range allValues(d.Size()) {
		if d.Match(x) && r.eval(x).Equal(target) {
			exists = true
			break
		}
	}
	v, ok := inverse(r)
	require.Equal(t, exists, ok, "inverse %s pos %d t=%s args=%v d=%s", kind, pos, target, args, d)
	if ok {
		require.True(t, d.Match(v))
		require.True(t, r.eval(v).Equal(target))
	}

	v, ok = consistent(newRepair(kind, pos, target, args, indices, d, rng))
	if !ok {
		return
	}
	require.True(t, d.Match(v), "consistent %s pos %d t=%s d=%s: %s", kind, pos, target, d, v)
	reached := false
	others := make([]bv.BitVector, len(args))
	copy(others, args)
	others[pos] = v
	for _, o := range allValues(args[1-pos].Size()) {
		others[1-pos] = o
		if evaluate(kind, others, indices).Equal(target) {
			reached = true
			break
		}
	}
	require.True(t, reached, "consistent %s pos %d t=%s d=%s: %s", kind, pos, target, d, v)
}

func Test_RepairBinary(t *testing.T) {
	var kinds = []Kind{
		KindAnd, KindOr, KindXor,
		KindAdd, KindSub, KindMul, KindUdiv, KindUrem,
		KindShl, KindShr, KindAshr,
		KindEq, KindUlt, KindSlt,
	}
	maxSize := uint64(4)
	if testing.Short() {
		maxSize = 3
	}
	rng := bv.NewRNG(DefaultSeed)
	for size := uint64(1); size <= maxSize; size++ {
		domains := allDomains(size)
		for _, kind := range kinds {
			targets := allValues(size)
			if kind.IsPredicate() {
				targets = allValues(1)
			}
			for pos := 0; pos < 2; pos++ {
				for _, d := range domains {
					for _, s := range allValues(size) {
						for _, target := range targets {
							args := []bv.BitVector{s, s}
							checkRepair(t, rng, kind, pos, target, args, nil, d)
						}
					}
				}
			}
		}
	}
}

func Test_RepairConcat(t *testing.T) {
	rng := bv.NewRNG(1)
	for w0 := uint64(1); w0 <= 2; w0++ {
		for w1 := uint64(1); w1 <= 2; w1++ {
			for _, s0 := range allValues(w0) {
				for _, s1 := range allValues(w1) {
					for _, target := range allValues(w0 + w1) {
						args := []bv.BitVector{s0, s1}
						for _, d := range allDomains(w0) {
							checkRepair(t, rng, KindConcat, 0, target, args, nil, d)
						}
						for _, d := range allDomains(w1) {
							checkRepair(t, rng, KindConcat, 1, target, args, nil, d)
						}
					}
				}
			}
		}
	}
}

// checkUnary verifies inverse for operators with a single child, where
// consistent and inverse agree.
func checkUnary(t *testing.T, rng *bv.RNG, kind Kind, target, x bv.BitVector, indices []uint64, d bv.Domain) {
	r := newRepair(kind, 0, target, []bv.BitVector{x}, indices, d, rng)
	exists := false
	for _, v := range allValues(d.Size()) {
		if d.Match(v) && r.eval(v).Equal(target) {
			exists = true
		}
	}
	v, ok := inverse(r)
	require.Equal(t, exists, ok, "%s%v t=%s d=%s", kind, indices, target, d)
	if ok {
		require.True(t, d.Match(v))
		require.True(t, r.eval(v).Equal(target))
	}
	v, ok = consistent(newRepair(kind, 0, target, []bv.BitVector{x}, indices, d, rng))
	require.Equal(t, exists, ok)
	if ok {
		require.True(t, r.eval(v).Equal(target))
	}
}

func Test_RepairUnary(t *testing.T) {
	rng := bv.NewRNG(2)
	for size := uint64(1); size <= 3; size++ {
		for _, d := range allDomains(size) {
			x := d.Sample(rng)
			for _, target := range allValues(size) {
				checkUnary(t, rng, KindNot, target, x, nil, d)
			}
			for hi := uint64(0); hi < size; hi++ {
				for lo := uint64(0); lo <= hi; lo++ {
					for _, target := range allValues(hi - lo + 1) {
						checkUnary(t, rng, KindExtract, target, x, []uint64{hi, lo}, d)
					}
				}
			}
			for n := uint64(1); n <= 2; n++ {
				for _, target := range allValues(size + n) {
					checkUnary(t, rng, KindSext, target, x, []uint64{n}, d)
				}
			}
		}
	}
}

func Test_RepairIte(t *testing.T) {
	var (
		rng   = bv.NewRNG(3)
		tt    = bv.FromBool(true)
		ff    = bv.FromBool(false)
		a, b  = bv.MustFromBinary("01"), bv.MustFromBinary("10")
		anyC  = bv.NewDomain(1)
		anyBr = bv.NewDomain(2)
	)
	var testCases = []struct {
		Pos      int
		Cond     bv.BitVector
		Target   bv.BitVector
		Domain   bv.Domain
		Expected string
		OK       bool
	}{
		{0, ff, a, anyC, "1", true},
		{0, tt, b, anyC, "0", true},
		{0, tt, b, bv.MustParseDomain("1"), "", false},
		{0, tt, bv.MustFromBinary("11"), anyC, "", false},
		{1, tt, bv.MustFromBinary("11"), anyBr, "11", true},
		{1, ff, bv.MustFromBinary("11"), anyBr, "", false},
		{2, ff, bv.MustFromBinary("00"), anyBr, "00", true},
		{2, ff, bv.MustFromBinary("00"), bv.MustParseDomain("1x"), "", false},
	}
	for _, tc := range testCases {
		r := newRepair(KindIte, tc.Pos, tc.Target, []bv.BitVector{tc.Cond, a, b}, nil, tc.Domain, rng)
		v, ok := inverse(r)
		assert.Equal(t, tc.OK, ok, "%+v", tc)
		if ok {
			assert.Equal(t, tc.Expected, v.String())
		}
	}

	v, ok := consistent(newRepair(KindIte, 2, a, []bv.BitVector{tt, a, b}, nil, anyBr, rng))
	assert.True(t, ok)
	assert.Equal(t, "01", v.String())
}

func Test_RepairBounds(t *testing.T) {
	var (
		rng = bv.NewRNG(4)
		s   = bv.FromUint64(8, 100)
		b   = &bounds{}
	)
	b.tightenUnsigned(bv.FromUint64(8, 10), bv.FromUint64(8, 20))
	for i := 0; i < 50; i++ {
		r := newRepair(KindUlt, 0, bv.FromBool(true), []bv.BitVector{s, s}, nil, bv.NewDomain(8), rng)
		r.b = b
		v, ok := inverse(r)
		require.True(t, ok)
		require.True(t, v.Uge(bv.FromUint64(8, 10)) && v.Ule(bv.FromUint64(8, 20)), v.String())
	}

	// bounds that exclude every solution are ignored
	b.tightenUnsigned(bv.FromUint64(8, 15), bv.FromUint64(8, 20))
	r := newRepair(KindUlt, 0, bv.FromBool(true), []bv.BitVector{s, bv.FromUint64(8, 12)}, nil, bv.NewDomain(8), rng)
	r.b = b
	v, ok := inverse(r)
	require.True(t, ok)
	require.True(t, v.Ult(bv.FromUint64(8, 12)))
}

func Test_RepairWide(t *testing.T) {
	var (
		rng = bv.NewRNG(5)
		d   = bv.NewDomain(128)
	)
	var kinds = []Kind{KindAdd, KindMul, KindUdiv, KindUrem, KindShl, KindShr, KindAshr, KindUlt, KindSlt}
	for _, kind := range kinds {
		for i := 0; i < 20; i++ {
			x, s := rng.Random(128), rng.Random(128)
			for pos := 0; pos < 2; pos++ {
				args := []bv.BitVector{x, s}
				target := evaluate(kind, args, nil)
				// the current value of the child is a solution
				v, ok := inverse(newRepair(kind, pos, target, args, nil, d, rng))
				require.True(t, ok, "%s pos %d x=%s s=%s", kind, pos, x.Hex(), s.Hex())
				require.True(t, evaluate(kind, replace(args, pos, v), nil).Equal(target))
			}
		}
	}
}

func replace(args []bv.BitVector, pos int, v bv.BitVector) []bv.BitVector {
	result := append([]bv.BitVector(nil), args...)
	result[pos] = v
	return result
}
