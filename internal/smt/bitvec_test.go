package smt

import (
	"testing"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

func Test_BitVecOps(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	var testCases = []struct {
		Name     string
		Op       func(x, y *BitVec) *BitVec
		X, Y     string
		Expected string
	}{
		{"add", (*BitVec).Add, "1111", "0010", "0001"},
		{"sub", (*BitVec).Sub, "0001", "0010", "1111"},
		{"mul", (*BitVec).Mul, "0111", "0011", "0101"},
		{"udiv", (*BitVec).UDiv, "1101", "0000", "1111"},
		{"urem", (*BitVec).URem, "1101", "0011", "0001"},
		{"shl", (*BitVec).Shl, "0011", "0100", "0000"},
		{"shr", (*BitVec).Shr, "1100", "0011", "0001"},
		{"ashr", (*BitVec).AShr, "1000", "0010", "1110"},
		{"concat", (*BitVec).Concat, "10", "01", "1001"},
		{"extract", func(x, _ *BitVec) *BitVec { return x.Extract(2, 1) }, "1011", "0000", "01"},
		{"sext", func(x, _ *BitVec) *BitVec { return x.SignExtend(2) }, "1011", "0000", "111011"},
		{"ult", func(x, y *BitVec) *BitVec { return x.Ult(y).AsBitVec() }, "0111", "1000", "1"},
		{"slt", func(x, y *BitVec) *BitVec { return x.Slt(y).AsBitVec() }, "0111", "1000", "0"},
	}
	for _, tc := range testCases {
		xv, yv := bv.MustFromBinary(tc.X), bv.MustFromBinary(tc.Y)
		x, err := NewBitVec("x_"+tc.Name, uint32(xv.Size()))
		require.Nil(t, err)
		y, err := NewBitVec("y_"+tc.Name, uint32(yv.Size()))
		require.Nil(t, err)
		result := tc.Op(x, y)

		status, model, err := NewSolver().Check(
			x.Eq(NewBitVecVal(xv)).GetRaw(),
			y.Eq(NewBitVecVal(yv)).GetRaw(),
		)
		require.Nil(t, err, tc.Name)
		require.Equal(t, yices2.StatusSat, status, tc.Name)
		v, err := GetBvValue(model, result)
		require.Nil(t, err, tc.Name)
		assert.Equal(t, tc.Expected, v.String(), tc.Name)
		yices2.CloseModel(model)
	}
}

func Test_Bool(t *testing.T) {
	yices2.Init()
	defer yices2.Exit()

	a := NewBoolVal(true)
	b := NewBoolVal(false)
	assert.True(t, a.IsTrue())
	assert.False(t, b.IsTrue())
	assert.False(t, a.IsSymbolic())
	assert.True(t, a.Not().Not().IsTrue())

	x, err := NewBitVec("flag", 1)
	require.Nil(t, err)
	assert.True(t, x.AsBool().IsSymbolic())
}
