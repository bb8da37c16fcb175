package bv

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"golang.org/x/exp/rand"
)

// RNG is the seeded random number generator shared by all sampling
// functions. The PCG source of x/exp/rand has a stable output sequence, so a
// fixed seed reproduces identical runs.
type RNG struct {
	r *rand.Rand
}

func NewRNG(seed uint64) *RNG {
	return &RNG{r: rand.New(rand.NewSource(seed))}
}

func (rng *RNG) Uint64() uint64 {
	return rng.r.Uint64()
}

// Pick returns a value in [0, n).
func (rng *RNG) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return rng.r.Intn(n)
}

// Flip returns true with probability perMille/1000.
func (rng *RNG) Flip(perMille uint32) bool {
	if perMille >= 1000 {
		return true
	}
	return uint32(rng.r.Uint64n(1000)) < perMille
}

// Perm returns a seeded permutation of [0, n).
func (rng *RNG) Perm(n int) []int {
	return rng.r.Perm(n)
}

// Big returns a uniformly random integer in [0, n].
func (rng *RNG) Big(n *big.Int) *big.Int {
	if n.Sign() <= 0 {
		return new(big.Int)
	}
	var (
		bits  = n.BitLen()
		words = (bits + 63) / 64
		m     = mask(uint64(bits))
	)
	for {
		v := new(big.Int)
		for i := 0; i < words; i++ {
			v.Lsh(v, 64)
			v.Or(v, new(big.Int).SetUint64(rng.r.Uint64()))
		}
		v.And(v, m)
		if v.Cmp(n) <= 0 {
			return v
		}
	}
}

// Random returns a uniformly random value of the given width.
func (rng *RNG) Random(size uint64) BitVector {
	return BitVector{size: size, val: rng.Big(mask(size))}
}

// Sample returns a uniformly random value contained in d.
func (d Domain) Sample(rng *RNG) BitVector {
	return d.Apply(rng.Random(d.Size()))
}

// Ceil returns the least value contained in d that is >= x.
func (d Domain) Ceil(x BitVector) (BitVector, bool) {
	if d.Match(x) {
		return x, true
	}
	var (
		size  = d.Size()
		lastZ = int64(-1)
	)
	for i := int64(size) - 1; i >= 0; i-- {
		u := uint64(i)
		xb := x.Bit(u)
		if !d.IsFixedBit(u) {
			if !xb {
				lastZ = i
			}
			continue
		}
		fb := d.lo.Bit(u)
		if fb == xb {
			continue
		}
		if fb {
			return d.raise(x, u), true
		}
		if lastZ < 0 {
			return BitVector{}, false
		}
		return d.raise(x, uint64(lastZ)), true
	}
	return x, true
}

// raise keeps x above position p, sets bit p and fills below with the least
// bits of d.
func (d Domain) raise(x BitVector, p uint64) BitVector {
	high := new(big.Int).Rsh(x.val, uint(p+1))
	high.Lsh(high, uint(p+1))
	high.SetBit(high, int(p), 1)
	low := new(big.Int).And(d.lo.val, mask(p))
	return BitVector{size: x.size, val: high.Or(high, low)}
}

// Floor returns the greatest value contained in d that is <= x.
func (d Domain) Floor(x BitVector) (BitVector, bool) {
	if d.Match(x) {
		return x, true
	}
	var (
		size  = d.Size()
		lastO = int64(-1)
	)
	for i := int64(size) - 1; i >= 0; i-- {
		u := uint64(i)
		xb := x.Bit(u)
		if !d.IsFixedBit(u) {
			if xb {
				lastO = i
			}
			continue
		}
		fb := d.lo.Bit(u)
		if fb == xb {
			continue
		}
		if !fb {
			return d.lower(x, u), true
		}
		if lastO < 0 {
			return BitVector{}, false
		}
		return d.lower(x, uint64(lastO)), true
	}
	return x, true
}

// lower keeps x above position p, clears bit p and fills below with the
// greatest bits of d.
func (d Domain) lower(x BitVector, p uint64) BitVector {
	high := new(big.Int).Rsh(x.val, uint(p+1))
	high.Lsh(high, uint(p+1))
	low := new(big.Int).And(d.hi.val, mask(p))
	return BitVector{size: x.size, val: high.Or(high, low)}
}

// span returns the gathered bounds of d ∩ [min, max] in unsigned order.
func (d Domain) span(pos []uint64, min, max BitVector) (*big.Int, *big.Int, bool) {
	if min.Ugt(max) {
		return nil, nil, false
	}
	lo, ok := d.Ceil(min)
	if !ok {
		return nil, nil, false
	}
	hi, ok := d.Floor(max)
	if !ok || lo.Ugt(hi) {
		return nil, nil, false
	}
	return d.gather(pos, lo), d.gather(pos, hi), true
}

// SampleRange returns a uniformly random value of d ∩ [min, max] (unsigned).
func (d Domain) SampleRange(rng *RNG, min, max BitVector) (BitVector, bool) {
	pos := d.unknownPositions()
	kmin, kmax, ok := d.span(pos, min, max)
	if !ok {
		return BitVector{}, false
	}
	k := rng.Big(new(big.Int).Sub(kmax, kmin))
	return d.scatter(pos, k.Add(k, kmin)), true
}

// CountRange returns the number of values in d ∩ [min, max] (unsigned).
func (d Domain) CountRange(min, max BitVector) *big.Int {
	pos := d.unknownPositions()
	kmin, kmax, ok := d.span(pos, min, max)
	if !ok {
		return new(big.Int)
	}
	n := new(big.Int).Sub(kmax, kmin)
	return n.Add(n, bigOne)
}

// SampleSignedRange returns a uniformly random value of d ∩ [min, max] with
// min and max compared as two's complement values.
func (d Domain) SampleSignedRange(rng *RNG, min, max BitVector) (BitVector, bool) {
	if min.Sgt(max) {
		return BitVector{}, false
	}
	if min.Msb() == max.Msb() {
		return d.SampleRange(rng, min, max)
	}
	// min < 0 <= max: negative values [min, ones], then [0, max]
	var (
		size = d.Size()
		neg  = d.CountRange(min, Ones(size))
		pos  = d.CountRange(Zero(size), max)
	)
	total := new(big.Int).Add(neg, pos)
	if total.Sign() == 0 {
		return BitVector{}, false
	}
	if rng.Big(total.Sub(total, bigOne)).Cmp(neg) < 0 {
		return d.SampleRange(rng, min, Ones(size))
	}
	return d.SampleRange(rng, Zero(size), max)
}

// Clamp returns the intersection of [min0, max0] and [min1, max1] in unsigned
// order, false if empty.
func Clamp(min0, max0, min1, max1 BitVector) (BitVector, BitVector, bool) {
	lo := BitVector{size: min0.size, val: math.BigMax(min0.Big(), min1.Big())}
	hi := BitVector{size: min0.size, val: math.BigMin(max0.Big(), max1.Big())}
	return lo, hi, lo.Ule(hi)
}

// ClampSigned is Clamp in two's complement order.
func ClampSigned(min0, max0, min1, max1 BitVector) (BitVector, BitVector, bool) {
	lo, hi := min0, max0
	if min1.Sgt(lo) {
		lo = min1
	}
	if max1.Slt(hi) {
		hi = max1
	}
	return lo, hi, lo.Sle(hi)
}
