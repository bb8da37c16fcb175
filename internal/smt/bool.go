package smt

import (
	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
)

type Bool struct {
	value yices2.TermT
}

func NewBoolVal(value bool) *Bool {
	if value {
		return &Bool{value: yices2.True()}
	}
	return &Bool{value: yices2.False()}
}

func NewBoolFromTerm(term yices2.TermT) *Bool {
	return &Bool{value: term}
}

func (b *Bool) GetRaw() yices2.TermT {
	return b.value
}

func (b *Bool) Not() *Bool {
	return &Bool{value: yices2.Not(b.value)}
}

// AsBitVec converts to a one bit vector.
func (b *Bool) AsBitVec() *BitVec {
	term := yices2.Ite(b.value, yices2.BvconstInt64(1, 1), yices2.BvconstInt64(1, 0))
	return NewBitVecFromTerm(term, 1)
}

func (b *Bool) IsTrue() bool {
	var val int32
	if errcode := yices2.BoolConstValue(b.value, &val); errcode != 0 {
		return false
	}
	return val != 0
}

func (b *Bool) IsSymbolic() bool {
	return yices2.TermConstructor(b.value) != yices2.TrmCnstrBoolConstant
}
