// Package bv implements fixed-width bit-vector values and three valued
// bit-vector domains.
package bv

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/Supermarcel10/bitwuzla/internal/bigint"
	"github.com/pkg/errors"
)

var (
	bigOne = big.NewInt(1)
)

// BitVector is an immutable unsigned value of a fixed bit width. All
// operations return fresh values and never modify their operands.
type BitVector struct {
	size uint64
	val  *big.Int
}

func mask(size uint64) *big.Int {
	m := new(big.Int).Lsh(bigOne, uint(size))
	return m.Sub(m, bigOne)
}

func (bv BitVector) wrap(v *big.Int) BitVector {
	return BitVector{size: bv.size, val: v.And(v, mask(bv.size))}
}

func (bv BitVector) assertSize(other BitVector, op string) {
	if bv.size != other.size {
		panic(fmt.Sprintf("%s: width mismatch: %d != %d", op, bv.size, other.size))
	}
}

// Zero returns the all zero value of the given width.
func Zero(size uint64) BitVector {
	if size == 0 {
		panic("bit-vector of width zero")
	}
	return BitVector{size: size, val: new(big.Int)}
}

func One(size uint64) BitVector {
	return FromUint64(size, 1)
}

func Ones(size uint64) BitVector {
	return BitVector{size: size, val: mask(size)}
}

// MinSigned returns 10...0.
func MinSigned(size uint64) BitVector {
	return BitVector{size: size, val: new(big.Int).Lsh(bigOne, uint(size-1))}
}

// MaxSigned returns 01...1.
func MaxSigned(size uint64) BitVector {
	return BitVector{size: size, val: mask(size - 1)}
}

// FromBool returns a width one value.
func FromBool(b bool) BitVector {
	if b {
		return One(1)
	}
	return Zero(1)
}

// FromUint64 truncates value to size bits.
func FromUint64(size uint64, value uint64) BitVector {
	return Zero(size).wrap(new(big.Int).SetUint64(value))
}

// FromBig reduces value modulo 2^size, negative values map to their two's
// complement.
func FromBig(size uint64, value *big.Int) BitVector {
	z := Zero(size)
	m := new(big.Int).Lsh(bigOne, uint(size))
	return BitVector{size: size, val: z.val.Mod(value, m)}
}

func FromInteger(size uint64, value *bigint.Integer) BitVector {
	return FromBig(size, value.Big())
}

// FromBinary parses an MSB first string of '0' and '1'.
func FromBinary(s string) (BitVector, error) {
	if len(s) == 0 {
		return BitVector{}, errors.New("empty binary string")
	}
	v, ok := new(big.Int).SetString(s, 2)
	if !ok || strings.ContainsAny(s, "+-_") {
		return BitVector{}, errors.Errorf("invalid binary string %q", s)
	}
	return FromBig(uint64(len(s)), v), nil
}

// MustFromBinary is FromBinary for literals.
func MustFromBinary(s string) BitVector {
	bv, err := FromBinary(s)
	if err != nil {
		panic(err)
	}
	return bv
}

func (bv BitVector) Size() uint64 {
	return bv.size
}

// IsValid reports whether bv was built by a constructor.
func (bv BitVector) IsValid() bool {
	return bv.size > 0 && bv.val != nil
}

// Big returns a copy of the unsigned value.
func (bv BitVector) Big() *big.Int {
	return new(big.Int).Set(bv.val)
}

// SignedBig returns the two's complement interpretation.
func (bv BitVector) SignedBig() *big.Int {
	v := bv.Big()
	if bv.Msb() {
		v.Sub(v, new(big.Int).Lsh(bigOne, uint(bv.size)))
	}
	return v
}

func (bv BitVector) Integer() *bigint.Integer {
	return bigint.FromBig(bv.val)
}

// Uint64 returns the low 64 bits.
func (bv BitVector) Uint64() uint64 {
	if bv.val.IsUint64() {
		return bv.val.Uint64()
	}
	return new(big.Int).And(bv.val, mask(64)).Uint64()
}

// Bit returns bit i, bit 0 is the least significant.
func (bv BitVector) Bit(i uint64) bool {
	return bv.val.Bit(int(i)) == 1
}

func (bv BitVector) SetBit(i uint64, value bool) BitVector {
	b := uint(0)
	if value {
		b = 1
	}
	return BitVector{size: bv.size, val: new(big.Int).SetBit(bv.val, int(i), b)}
}

func (bv BitVector) Msb() bool {
	return bv.Bit(bv.size - 1)
}

func (bv BitVector) IsZero() bool  { return bv.val.Sign() == 0 }
func (bv BitVector) IsOne() bool   { return bv.val.Cmp(bigOne) == 0 }
func (bv BitVector) IsOnes() bool  { return bv.val.Cmp(mask(bv.size)) == 0 }
func (bv BitVector) IsOdd() bool   { return bv.val.Bit(0) == 1 }
func (bv BitVector) IsTrue() bool  { return bv.size == 1 && bv.IsOne() }
func (bv BitVector) IsFalse() bool { return bv.size == 1 && bv.IsZero() }

func (bv BitVector) IsMinSigned() bool { return bv.Equal(MinSigned(bv.size)) }
func (bv BitVector) IsMaxSigned() bool { return bv.Equal(MaxSigned(bv.size)) }

func (bv BitVector) Equal(other BitVector) bool {
	return bv.size == other.size && bv.val.Cmp(other.val) == 0
}

// Compare compares unsigned values.
func (bv BitVector) Compare(other BitVector) int {
	bv.assertSize(other, "compare")
	return bv.val.Cmp(other.val)
}

// Scompare compares two's complement values.
func (bv BitVector) Scompare(other BitVector) int {
	bv.assertSize(other, "scompare")
	ms, mo := bv.Msb(), other.Msb()
	switch {
	case ms && !mo:
		return -1
	case !ms && mo:
		return 1
	}
	return bv.val.Cmp(other.val)
}

func (bv BitVector) Ult(other BitVector) bool { return bv.Compare(other) < 0 }
func (bv BitVector) Ule(other BitVector) bool { return bv.Compare(other) <= 0 }
func (bv BitVector) Ugt(other BitVector) bool { return bv.Compare(other) > 0 }
func (bv BitVector) Uge(other BitVector) bool { return bv.Compare(other) >= 0 }
func (bv BitVector) Slt(other BitVector) bool { return bv.Scompare(other) < 0 }
func (bv BitVector) Sle(other BitVector) bool { return bv.Scompare(other) <= 0 }
func (bv BitVector) Sgt(other BitVector) bool { return bv.Scompare(other) > 0 }
func (bv BitVector) Sge(other BitVector) bool { return bv.Scompare(other) >= 0 }

func (bv BitVector) Add(other BitVector) BitVector {
	bv.assertSize(other, "add")
	return bv.wrap(new(big.Int).Add(bv.val, other.val))
}

func (bv BitVector) Sub(other BitVector) BitVector {
	bv.assertSize(other, "sub")
	return bv.wrap(new(big.Int).Sub(bv.val, other.val))
}

func (bv BitVector) Mul(other BitVector) BitVector {
	bv.assertSize(other, "mul")
	return bv.wrap(new(big.Int).Mul(bv.val, other.val))
}

// Udiv returns ones for a zero divisor.
func (bv BitVector) Udiv(other BitVector) BitVector {
	bv.assertSize(other, "udiv")
	if other.IsZero() {
		return Ones(bv.size)
	}
	return BitVector{size: bv.size, val: new(big.Int).Quo(bv.val, other.val)}
}

// Urem returns bv for a zero divisor.
func (bv BitVector) Urem(other BitVector) BitVector {
	bv.assertSize(other, "urem")
	if other.IsZero() {
		return bv
	}
	return BitVector{size: bv.size, val: new(big.Int).Rem(bv.val, other.val)}
}

func (bv BitVector) And(other BitVector) BitVector {
	bv.assertSize(other, "and")
	return BitVector{size: bv.size, val: new(big.Int).And(bv.val, other.val)}
}

func (bv BitVector) Or(other BitVector) BitVector {
	bv.assertSize(other, "or")
	return BitVector{size: bv.size, val: new(big.Int).Or(bv.val, other.val)}
}

func (bv BitVector) Xor(other BitVector) BitVector {
	bv.assertSize(other, "xor")
	return BitVector{size: bv.size, val: new(big.Int).Xor(bv.val, other.val)}
}

func (bv BitVector) Not() BitVector {
	return BitVector{size: bv.size, val: new(big.Int).Xor(bv.val, mask(bv.size))}
}

func (bv BitVector) Neg() BitVector {
	return bv.wrap(new(big.Int).Neg(bv.val))
}

func (bv BitVector) Inc() BitVector {
	return bv.wrap(new(big.Int).Add(bv.val, bigOne))
}

func (bv BitVector) Dec() BitVector {
	return bv.wrap(new(big.Int).Sub(bv.val, bigOne))
}

// shiftAmount returns the shift as uint64 and whether it is below the width.
func (bv BitVector) shiftAmount(other BitVector) (uint64, bool) {
	if !other.val.IsUint64() || other.val.Uint64() >= bv.size {
		return 0, false
	}
	return other.val.Uint64(), true
}

func (bv BitVector) Shl(other BitVector) BitVector {
	bv.assertSize(other, "shl")
	n, ok := bv.shiftAmount(other)
	if !ok {
		return Zero(bv.size)
	}
	return bv.ShlN(n)
}

func (bv BitVector) ShlN(n uint64) BitVector {
	if n >= bv.size {
		return Zero(bv.size)
	}
	return bv.wrap(new(big.Int).Lsh(bv.val, uint(n)))
}

func (bv BitVector) Shr(other BitVector) BitVector {
	bv.assertSize(other, "shr")
	n, ok := bv.shiftAmount(other)
	if !ok {
		return Zero(bv.size)
	}
	return bv.ShrN(n)
}

func (bv BitVector) ShrN(n uint64) BitVector {
	if n >= bv.size {
		return Zero(bv.size)
	}
	return BitVector{size: bv.size, val: new(big.Int).Rsh(bv.val, uint(n))}
}

func (bv BitVector) Ashr(other BitVector) BitVector {
	bv.assertSize(other, "ashr")
	n, ok := bv.shiftAmount(other)
	if !ok {
		n = bv.size
	}
	return bv.AshrN(n)
}

// AshrN shifts in copies of the sign bit; n >= width yields the sign fill.
func (bv BitVector) AshrN(n uint64) BitVector {
	if bv.Msb() {
		return bv.Not().ShrN(n).Not()
	}
	return bv.ShrN(n)
}

// Concat returns bv as the high part and other as the low part.
func (bv BitVector) Concat(other BitVector) BitVector {
	v := new(big.Int).Lsh(bv.val, uint(other.size))
	return BitVector{size: bv.size + other.size, val: v.Or(v, other.val)}
}

// Extract returns bits hi down to lo (inclusive).
func (bv BitVector) Extract(hi, lo uint64) BitVector {
	if hi < lo || hi >= bv.size {
		panic(fmt.Sprintf("extract: invalid indices [%d:%d] on width %d", hi, lo, bv.size))
	}
	v := new(big.Int).Rsh(bv.val, uint(lo))
	size := hi - lo + 1
	return BitVector{size: size, val: v.And(v, mask(size))}
}

func (bv BitVector) Zext(n uint64) BitVector {
	return BitVector{size: bv.size + n, val: bv.Big()}
}

func (bv BitVector) Sext(n uint64) BitVector {
	if n == 0 {
		return bv
	}
	if bv.Msb() {
		return Ones(n).Concat(bv)
	}
	return bv.Zext(n)
}

// Ctz counts trailing zeros, width for zero.
func (bv BitVector) Ctz() uint64 {
	if bv.IsZero() {
		return bv.size
	}
	return uint64(bv.val.TrailingZeroBits())
}

// Clz counts leading zeros, width for zero.
func (bv BitVector) Clz() uint64 {
	return bv.size - uint64(bv.val.BitLen())
}

// Clrs counts the leading bits equal to the most significant bit.
func (bv BitVector) Clrs() uint64 {
	if bv.Msb() {
		return bv.Not().Clz()
	}
	return bv.Clz()
}

// ModInverse returns the multiplicative inverse modulo 2^width of an odd value.
func (bv BitVector) ModInverse() BitVector {
	if !bv.IsOdd() {
		panic("mod inverse of even value")
	}
	m := new(big.Int).Lsh(bigOne, uint(bv.size))
	return BitVector{size: bv.size, val: new(big.Int).ModInverse(bv.val, m)}
}

// String returns the MSB first binary representation.
func (bv BitVector) String() string {
	if !bv.IsValid() {
		return "<invalid>"
	}
	s := bv.val.Text(2)
	if uint64(len(s)) < bv.size {
		s = strings.Repeat("0", int(bv.size)-len(s)) + s
	}
	return s
}

// Hex returns the value in hexadecimal.
func (bv BitVector) Hex() string {
	return "0x" + bv.val.Text(16)
}
