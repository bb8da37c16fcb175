package smt

import (
	"fmt"

	yices2 "github.com/ianamason/yices2_go_bindings/yices_api"
	"github.com/pkg/errors"

	"github.com/Supermarcel10/bitwuzla/internal/bv"
)

type Solver struct {
	ctx yices2.ContextT
}

func NewSolver() *Solver {
	s := &Solver{
		ctx: yices2.ContextT{},
	}
	yices2.InitContext(yices2.ConfigT{}, &s.ctx)
	return s
}

func (s *Solver) Check(terms ...yices2.TermT) (yices2.SmtStatusT, *yices2.ModelT, error) {
	errorcode := yices2.AssertFormulas(s.ctx, terms)
	if errorcode < 0 {
		return yices2.StatusError, nil, fmt.Errorf("%s", yices2.ErrorString())
	}
	status := yices2.CheckContext(s.ctx, yices2.ParamT{})
	switch status {
	case yices2.StatusSat:
		return status, yices2.GetModel(s.ctx, 1), nil
	case yices2.StatusError:
		return status, nil, fmt.Errorf("%s", yices2.ErrorString())
	}
	return status, nil, nil
}

func (s *Solver) GetContext() yices2.ContextT {
	return s.ctx
}

// Verdict is the outcome of an oracle query.
type Verdict struct {
	Status yices2.SmtStatusT
	// Values holds a satisfying value per free leaf when Status is sat.
	Values map[uint64]bv.BitVector
}

func (v Verdict) Sat() bool {
	return v.Status == yices2.StatusSat
}

// CheckSat 在domain约束下判断所有根节点是否可同时满足
func CheckSat(g Graph) (Verdict, error) {
	m, err := NewModel(g)
	if err != nil {
		return Verdict{}, err
	}
	status, model, err := NewSolver().Check(m.Constraints()...)
	if err != nil {
		return Verdict{}, errors.Wrap(err, "check")
	}
	result := Verdict{Status: status}
	if model == nil {
		return result, nil
	}
	defer yices2.CloseModel(model)
	result.Values = make(map[uint64]bv.BitVector, len(m.Leaves()))
	for _, id := range m.Leaves() {
		v, err := GetBvValue(model, m.Term(id))
		if err != nil {
			return Verdict{}, errors.Wrapf(err, "leaf %d", id)
		}
		result.Values[id] = v
	}
	return result, nil
}

// VerifyModel checks that the current leaf assignments of g satisfy every
// root and domain.
func VerifyModel(g Graph) (bool, error) {
	m, err := NewModel(g)
	if err != nil {
		return false, err
	}
	terms := m.Constraints()
	for _, id := range m.Leaves() {
		n, err := g.Node(id)
		if err != nil {
			return false, err
		}
		value := NewBitVecVal(n.Assignment())
		terms = append(terms, m.Term(id).Eq(value).GetRaw())
	}
	status, model, err := NewSolver().Check(terms...)
	if err != nil {
		return false, errors.Wrap(err, "check")
	}
	if model != nil {
		yices2.CloseModel(model)
	}
	return status == yices2.StatusSat, nil
}
