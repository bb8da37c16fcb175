package bv

import (
	"math/big"
	"strings"

	"github.com/Supermarcel10/bitwuzla/internal/bigint"
	"github.com/pkg/errors"
)

// Domain is a three valued bit-vector approximation encoded by two bounds:
// bit i is known 0 if hi_i = 0, known 1 if lo_i = 1 and unknown otherwise.
// A domain is valid if lo ⊆ hi.
type Domain struct {
	lo BitVector
	hi BitVector
}

// NewDomain returns the domain of the given width with all bits unknown.
func NewDomain(size uint64) Domain {
	return Domain{lo: Zero(size), hi: Ones(size)}
}

// NewFixedDomain returns the domain containing exactly value.
func NewFixedDomain(value BitVector) Domain {
	return Domain{lo: value, hi: value}
}

// NewDomainFromBounds builds a domain from its lo/hi encoding. The result may
// be invalid, check with IsValid.
func NewDomainFromBounds(lo, hi BitVector) Domain {
	lo.assertSize(hi, "domain")
	return Domain{lo: lo, hi: hi}
}

// ParseDomain parses an MSB first string over '0', '1' and 'x' (unknown).
func ParseDomain(s string) (Domain, error) {
	if len(s) == 0 {
		return Domain{}, errors.New("empty domain string")
	}
	var (
		lo = strings.Builder{}
		hi = strings.Builder{}
	)
	for _, c := range s {
		switch c {
		case '0':
			lo.WriteByte('0')
			hi.WriteByte('0')
		case '1':
			lo.WriteByte('1')
			hi.WriteByte('1')
		case 'x', 'X', '?', '*':
			lo.WriteByte('0')
			hi.WriteByte('1')
		default:
			return Domain{}, errors.Errorf("invalid domain character %q in %q", c, s)
		}
	}
	return Domain{lo: MustFromBinary(lo.String()), hi: MustFromBinary(hi.String())}, nil
}

// MustParseDomain is ParseDomain for literals.
func MustParseDomain(s string) Domain {
	d, err := ParseDomain(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Domain) Size() uint64   { return d.lo.size }
func (d Domain) Lo() BitVector  { return d.lo }
func (d Domain) Hi() BitVector  { return d.hi }
func (d Domain) Min() BitVector { return d.lo }
func (d Domain) Max() BitVector { return d.hi }

func (d Domain) IsValid() bool {
	return d.lo.And(d.hi.Not()).IsZero()
}

func (d Domain) IsFixed() bool {
	return d.lo.Equal(d.hi)
}

// Unknown returns the mask of unknown bits.
func (d Domain) Unknown() BitVector {
	return d.lo.Xor(d.hi)
}

// Fixed returns the mask of known bits.
func (d Domain) Fixed() BitVector {
	return d.Unknown().Not()
}

func (d Domain) HasFixedBits() bool {
	return !d.Fixed().IsZero()
}

func (d Domain) IsFixedBit(i uint64) bool {
	return d.lo.Bit(i) == d.hi.Bit(i)
}

func (d Domain) IsFixedBitTrue(i uint64) bool {
	return d.lo.Bit(i)
}

func (d Domain) IsFixedBitFalse(i uint64) bool {
	return !d.hi.Bit(i)
}

// FixBit returns a copy with bit i known to value. The copy is invalid if the
// bit was known to the opposite value.
func (d Domain) FixBit(i uint64, value bool) Domain {
	if value {
		return Domain{lo: d.lo.SetBit(i, true), hi: d.hi}
	}
	return Domain{lo: d.lo, hi: d.hi.SetBit(i, false)}
}

// Match reports whether v is contained in d.
func (d Domain) Match(v BitVector) bool {
	if v.size != d.Size() {
		return false
	}
	return v.And(d.hi.Not()).IsZero() && d.lo.And(v.Not()).IsZero()
}

// Apply 将d的固定位写入v
func (d Domain) Apply(v BitVector) BitVector {
	return v.And(d.hi).Or(d.lo)
}

// Intersect returns the domain of values in both d and other, false if empty.
func (d Domain) Intersect(other Domain) (Domain, bool) {
	r := Domain{lo: d.lo.Or(other.lo), hi: d.hi.And(other.hi)}
	return r, r.IsValid()
}

// Count returns the number of values in d.
func (d Domain) Count() *bigint.Integer {
	n := 0
	u := d.Unknown()
	for i := uint64(0); i < u.size; i++ {
		if u.Bit(i) {
			n++
		}
	}
	c := bigint.FromInt(2)
	return c.Ipow(uint32(n))
}

func (d Domain) Equal(other Domain) bool {
	return d.lo.Equal(other.lo) && d.hi.Equal(other.hi)
}

func (d Domain) String() string {
	var sb strings.Builder
	for i := d.Size(); i > 0; i-- {
		switch {
		case !d.IsFixedBit(i - 1):
			sb.WriteByte('x')
		case d.lo.Bit(i - 1):
			sb.WriteByte('1')
		default:
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// forward propagation

func (d Domain) Not() Domain {
	return Domain{lo: d.hi.Not(), hi: d.lo.Not()}
}

func (d Domain) And(other Domain) Domain {
	return Domain{lo: d.lo.And(other.lo), hi: d.hi.And(other.hi)}
}

func (d Domain) Or(other Domain) Domain {
	return Domain{lo: d.lo.Or(other.lo), hi: d.hi.Or(other.hi)}
}

func (d Domain) Xor(other Domain) Domain {
	known := d.Fixed().And(other.Fixed())
	val := d.lo.Xor(other.lo).And(known)
	return Domain{lo: val, hi: val.Or(known.Not())}
}

func (d Domain) Concat(other Domain) Domain {
	return Domain{lo: d.lo.Concat(other.lo), hi: d.hi.Concat(other.hi)}
}

func (d Domain) Extract(hi, lo uint64) Domain {
	return Domain{lo: d.lo.Extract(hi, lo), hi: d.hi.Extract(hi, lo)}
}

func (d Domain) Sext(n uint64) Domain {
	return Domain{lo: d.lo.Sext(n), hi: d.hi.Sext(n)}
}

func (d Domain) ShlN(n uint64) Domain {
	return Domain{lo: d.lo.ShlN(n), hi: d.hi.ShlN(n)}
}

func (d Domain) ShrN(n uint64) Domain {
	return Domain{lo: d.lo.ShrN(n), hi: d.hi.ShrN(n)}
}

// Ite joins the domains of both branches.
func (d Domain) Ite(other Domain) Domain {
	return Domain{lo: d.lo.And(other.lo), hi: d.hi.Or(other.hi)}
}

// unknownPositions lists the unknown bit indices in ascending order.
func (d Domain) unknownPositions() []uint64 {
	var (
		u   = d.Unknown()
		pos = make([]uint64, 0, u.size)
	)
	for i := uint64(0); i < u.size; i++ {
		if u.Bit(i) {
			pos = append(pos, i)
		}
	}
	return pos
}

// gather packs the bits of v at the unknown positions into an integer. It is
// monotone on values contained in d.
func (d Domain) gather(pos []uint64, v BitVector) *big.Int {
	k := new(big.Int)
	for j, p := range pos {
		if v.Bit(p) {
			k.SetBit(k, j, 1)
		}
	}
	return k
}

// scatter is the inverse of gather.
func (d Domain) scatter(pos []uint64, k *big.Int) BitVector {
	v := d.lo.Big()
	for j, p := range pos {
		if k.Bit(j) == 1 {
			v.SetBit(v, int(p), 1)
		}
	}
	return BitVector{size: d.Size(), val: v}
}
