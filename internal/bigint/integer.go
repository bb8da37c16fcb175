// Package bigint implements the arbitrary precision integer used for width and
// value bookkeeping.
package bigint

import (
	"fmt"
	"hash/fnv"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
)

var ErrNarrowingOverflow = errors.New("narrowing overflow")

// Integer is an arbitrary precision signed integer. The zero value is 0.
type Integer struct {
	v big.Int
}

func New() *Integer {
	return &Integer{}
}

func FromInt64(value int64) *Integer {
	i := &Integer{}
	i.v.SetInt64(value)
	return i
}

func FromUint64(value uint64) *Integer {
	i := &Integer{}
	i.v.SetUint64(value)
	return i
}

func FromInt(value int) *Integer {
	return FromInt64(int64(value))
}

// FromBig copies value.
func FromBig(value *big.Int) *Integer {
	i := &Integer{}
	i.v.Set(value)
	return i
}

// FromString parses a decimal string, or a hex/binary string when prefixed
// with 0x/0b. A leading '-' is accepted.
func FromString(s string) (*Integer, error) {
	var (
		str  = strings.TrimSpace(s)
		neg  = false
		base = 10
	)
	if strings.HasPrefix(str, "-") {
		neg = true
		str = str[1:]
	}
	switch {
	case strings.HasPrefix(str, "0x"), strings.HasPrefix(str, "0X"):
		base, str = 16, str[2:]
	case strings.HasPrefix(str, "0b"), strings.HasPrefix(str, "0B"):
		base, str = 2, str[2:]
	}
	i := &Integer{}
	if _, ok := i.v.SetString(str, base); !ok || str == "" {
		return nil, errors.Errorf("invalid integer %q", s)
	}
	if neg {
		i.v.Neg(&i.v)
	}
	return i, nil
}

// MustFromString is FromString for literals known to be valid.
func MustFromString(s string) *Integer {
	i, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return i
}

func (i *Integer) Clone() *Integer {
	return FromBig(&i.v)
}

// Big returns a copy of the underlying value.
func (i *Integer) Big() *big.Int {
	return new(big.Int).Set(&i.v)
}

func (i *Integer) Cmp(other *Integer) int { return i.v.Cmp(&other.v) }
func (i *Integer) Eq(other *Integer) bool { return i.Cmp(other) == 0 }
func (i *Integer) Ne(other *Integer) bool { return i.Cmp(other) != 0 }
func (i *Integer) Lt(other *Integer) bool { return i.Cmp(other) < 0 }
func (i *Integer) Le(other *Integer) bool { return i.Cmp(other) <= 0 }
func (i *Integer) Gt(other *Integer) bool { return i.Cmp(other) > 0 }
func (i *Integer) Ge(other *Integer) bool { return i.Cmp(other) >= 0 }

func (i *Integer) Add(other *Integer) *Integer {
	r := &Integer{}
	r.v.Add(&i.v, &other.v)
	return r
}

func (i *Integer) Sub(other *Integer) *Integer {
	r := &Integer{}
	r.v.Sub(&i.v, &other.v)
	return r
}

func (i *Integer) Mul(other *Integer) *Integer {
	r := &Integer{}
	r.v.Mul(&i.v, &other.v)
	return r
}

// Div truncates toward zero. Division by zero panics like the builtin.
func (i *Integer) Div(other *Integer) *Integer {
	r := &Integer{}
	r.v.Quo(&i.v, &other.v)
	return r
}

func (i *Integer) Neg() *Integer {
	r := &Integer{}
	r.v.Neg(&i.v)
	return r
}

func (i *Integer) AddInPlace(other *Integer) *Integer {
	i.v.Add(&i.v, &other.v)
	return i
}

func (i *Integer) SubInPlace(other *Integer) *Integer {
	i.v.Sub(&i.v, &other.v)
	return i
}

func (i *Integer) MulInPlace(other *Integer) *Integer {
	i.v.Mul(&i.v, &other.v)
	return i
}

func (i *Integer) DivInPlace(other *Integer) *Integer {
	i.v.Quo(&i.v, &other.v)
	return i
}

// Inc increments in place and returns the receiver.
func (i *Integer) Inc() *Integer {
	i.v.Add(&i.v, big.NewInt(1))
	return i
}

// Dec decrements in place and returns the receiver.
func (i *Integer) Dec() *Integer {
	i.v.Sub(&i.v, big.NewInt(1))
	return i
}

// Ipow raises the receiver to exp in place.
func (i *Integer) Ipow(exp uint32) *Integer {
	if i.v.IsInt64() {
		i.v.Set(math.BigPow(i.v.Int64(), int64(exp)))
		return i
	}
	i.v.Exp(&i.v, new(big.Int).SetUint64(uint64(exp)), nil)
	return i
}

// Pow2 returns 2^exp.
func Pow2(exp uint64) *Integer {
	r := &Integer{}
	r.v.Lsh(big.NewInt(1), uint(exp))
	return r
}

func (i *Integer) IsOdd() bool {
	return i.v.Bit(0) == 1
}

func (i *Integer) Sign() int {
	return i.v.Sign()
}

// Hash returns a FNV-1a hash of the sign and magnitude.
func (i *Integer) Hash() uint64 {
	h := fnv.New64a()
	if i.v.Sign() < 0 {
		h.Write([]byte{'-'})
	}
	h.Write(i.v.Bytes())
	return h.Sum64()
}

func (i *Integer) String() string {
	return i.v.String()
}

func (i *Integer) Format(s fmt.State, verb rune) {
	i.v.Format(s, verb)
}

// ToUint64 fails with ErrNarrowingOverflow if the value is negative or does
// not fit in 64 bits.
func (i *Integer) ToUint64() (uint64, error) {
	if !i.v.IsUint64() {
		return 0, errors.Wrapf(ErrNarrowingOverflow, "%s to uint64", i.v.String())
	}
	return i.v.Uint64(), nil
}

// ToInt64 fails with ErrNarrowingOverflow if the value does not fit in int64.
func (i *Integer) ToInt64() (int64, error) {
	if !i.v.IsInt64() {
		return 0, errors.Wrapf(ErrNarrowingOverflow, "%s to int64", i.v.String())
	}
	return i.v.Int64(), nil
}
