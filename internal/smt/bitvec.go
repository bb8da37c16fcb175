package smt

import (
	"fmt"
	"math/big"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

type BitVec struct {
	name  string
	size  uint32
	value yices2.TermT
}

// Concat 计算结果的size是两者之和
func Concat(lhv, rhv *BitVec) *BitVec {
	return &BitVec{
		value: yices2.Bvconcat2(lhv.value, rhv.value),
		size:  lhv.size + rhv.size,
	}
}

// Concats 依次拼接，第一个值在最高位
func Concats(values ...*BitVec) *BitVec {
	if len(values) == 0 {
		return nil
	}
	terms := make([]yices2.TermT, len(values))
	var size uint32
	for i := range values {
		terms[i] = values[i].GetRaw()
		size += values[i].size
	}
	return NewBitVecFromTerm(yices2.Bvconcat(terms), size)
}

func NewBitVecVal(value bv.BitVector) *BitVec {
	return newBitVecValFromBigInt(value.Big(), uint32(value.Size()))
}

func NewBitVecValInt64(value int64, size uint32) *BitVec {
	return &BitVec{
		size:  size,
		value: yices2.BvconstInt64(size, value),
	}
}

func newBitVecValFromBigInt(value *big.Int, size uint32) *BitVec {
	if uint32(value.BitLen()) > size {
		panic(fmt.Errorf("bvsize not %d", size))
	}
	v := make([]int32, size)
	for j := 0; j < value.BitLen(); j++ {
		v[j] = int32(value.Bit(j))
	}
	return &BitVec{
		size:  size,
		value: yices2.BvconstFromArray(v),
	}
}

func NewBitVec(name string, size uint32) (*BitVec, error) {
	term := yices2.NewUninterpretedTerm(yices2.BvType(size))
	if name != "" {
		if errcode := yices2.SetTermName(term, name); errcode < 0 {
			return nil, fmt.Errorf("set term name %s: %s", name, yices2.ErrorString())
		}
	}
	return &BitVec{
		name:  name,
		size:  size,
		value: term,
	}, nil
}

func NewBitVecFromTerm(value yices2.TermT, size uint32) *BitVec {
	return &BitVec{
		size:  size,
		value: value,
	}
}

func (b *BitVec) GetRaw() yices2.TermT {
	return b.value
}

func (b *BitVec) GetName() string {
	return b.name
}

func (b *BitVec) Size() uint32 {
	return b.size
}

func (b *BitVec) binary(term yices2.TermT) *BitVec {
	return &BitVec{size: b.size, value: term}
}

func (b *BitVec) Not() *BitVec { return b.binary(yices2.Bvnot(b.value)) }
func (b *BitVec) And(o *BitVec) *BitVec { return b.binary(yices2.Bvand2(b.value, o.value)) }
func (b *BitVec) Or(o *BitVec) *BitVec { return b.binary(yices2.Bvor2(b.value, o.value)) }
func (b *BitVec) Xor(o *BitVec) *BitVec { return b.binary(yices2.Bvxor2(b.value, o.value)) }
func (b *BitVec) Add(o *BitVec) *BitVec { return b.binary(yices2.Bvadd(b.value, o.value)) }
func (b *BitVec) Sub(o *BitVec) *BitVec { return b.binary(yices2.Bvsub(b.value, o.value)) }
func (b *BitVec) Mul(o *BitVec) *BitVec { return b.binary(yices2.Bvmul(b.value, o.value)) }
func (b *BitVec) UDiv(o *BitVec) *BitVec { return b.binary(yices2.Bvdiv(b.value, o.value)) }
func (b *BitVec) URem(o *BitVec) *BitVec { return b.binary(yices2.Bvrem(b.value, o.value)) }
func (b *BitVec) Shl(o *BitVec) *BitVec { return b.binary(yices2.Bvshl(b.value, o.value)) }
func (b *BitVec) Shr(o *BitVec) *BitVec { return b.binary(yices2.Bvlshr(b.value, o.value)) }
func (b *BitVec) AShr(o *BitVec) *BitVec { return b.binary(yices2.Bvashr(b.value, o.value)) }
func (b *BitVec) Concat(o *BitVec) *BitVec { return Concat(b, o) }

func (b *BitVec) Eq(o *BitVec) *Bool { return NewBoolFromTerm(yices2.BveqAtom(b.value, o.value)) }
func (b *BitVec) Ult(o *BitVec) *Bool { return NewBoolFromTerm(yices2.BvltAtom(b.value, o.value)) }
func (b *BitVec) Slt(o *BitVec) *Bool { return NewBoolFromTerm(yices2.BvsltAtom(b.value, o.value)) }

// Extract returns bits hi down to lo.
func (b *BitVec) Extract(hi, lo uint32) *BitVec {
	return &BitVec{
		size:  hi - lo + 1,
		value: yices2.Bvextract(b.value, lo, hi),
	}
}

// Bit returns bit i as a boolean term.
func (b *BitVec) Bit(i uint32) *Bool {
	return NewBoolFromTerm(yices2.Bitextract(b.value, i))
}

func (b *BitVec) Msb() *Bool {
	return b.Bit(b.size - 1)
}

// SignExtend 用最高位扩展n位
func (b *BitVec) SignExtend(n uint32) *BitVec {
	if n == 0 {
		return b
	}
	ones := NewBitVecVal(bv.Ones(uint64(n)))
	zeros := NewBitVecVal(bv.Zero(uint64(n)))
	return Ite(b.Msb(), Concat(ones, b), Concat(zeros, b))
}

func Ite(cond *Bool, then, els *BitVec) *BitVec {
	return &BitVec{
		size:  then.size,
		value: yices2.Ite(cond.GetRaw(), then.value, els.value),
	}
}

// AsBool is true iff a one bit vector is set.
func (b *BitVec) AsBool() *Bool {
	return b.Eq(NewBitVecValInt64(1, b.size))
}

// GetBvValue reads the value of the term in the model.
func GetBvValue(model *yices2.ModelT, b *BitVec) (bv.BitVector, error) {
	bits := make([]int32, b.size)
	if errcode := yices2.GetBvValue(*model, b.value, bits); errcode != 0 {
		return bv.BitVector{}, fmt.Errorf("GetBvValue: %s", yices2.ErrorString())
	}
	result := new(big.Int)
	for i := range bits {
		result.SetBit(result, i, uint(bits[i]))
	}
	return bv.FromBig(uint64(b.size), result), nil
}
