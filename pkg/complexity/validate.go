package complexity

import (
	"fmt"

	"complexity-engine/pkg/cxerrors"
)

// Validate checks the structural invariants of a cost expression and
// fails fast on the first violation. The engine never resolves an
// expression that has not passed validation.
func (c CostExpression) Validate() error {
	switch c.Case {
	case CaseBest, CaseWorst, CaseAverage, CaseUnified:
	default:
		return cxerrors.NewValidationError("", fmt.Sprintf("unknown case tag %q", c.Case))
	}

	switch c.Kind {
	case KindRecurrence:
		return c.validateRecurrence()
	case KindIteration:
		return c.validateIteration()
	default:
		return cxerrors.NewValidationError("", fmt.Sprintf("unknown expression kind %q", c.Kind))
	}
}

func (c CostExpression) validateRecurrence() error {
	if len(c.Terms) == 0 {
		return cxerrors.NewValidationError("", "recurrence has no recursive terms")
	}
	if len(c.Loops) != 0 {
		return cxerrors.NewValidationError("", "recurrence carries iteration loop bounds")
	}
	for i, t := range c.Terms {
		if t.Coeff < 1 {
			return cxerrors.NewValidationError("", fmt.Sprintf("term %d: subproblem count %d is not positive", i, t.Coeff))
		}
		if t.ShrinkNum < 1 || t.ShrinkDen < 1 {
			return cxerrors.NewValidationError("", fmt.Sprintf("term %d: shrink factor %d/%d is not positive", i, t.ShrinkNum, t.ShrinkDen))
		}
		if t.ShrinkNum > t.ShrinkDen {
			return cxerrors.NewValidationError("", fmt.Sprintf("term %d: subproblem grows (%d/%d > 1)", i, t.ShrinkNum, t.ShrinkDen))
		}
		if t.Decrement < 0 {
			return cxerrors.NewValidationError("", fmt.Sprintf("term %d: negative decrement %d", i, t.Decrement))
		}
		if t.ShrinkNum == t.ShrinkDen && t.Decrement == 0 {
			return cxerrors.NewValidationError("", fmt.Sprintf("term %d: subproblem does not shrink", i))
		}
	}
	if c.Driving.ExpBase < 0 || c.Driving.Degree < 0 || c.Driving.LogExp < 0 {
		return cxerrors.NewValidationError("", "driving function has a negative exponent")
	}
	return nil
}

func (c CostExpression) validateIteration() error {
	if len(c.Loops) == 0 {
		return cxerrors.NewValidationError("", "iteration has no loop bounds")
	}
	if len(c.Terms) != 0 {
		return cxerrors.NewValidationError("", "iteration carries recursive terms")
	}
	if c.BodyCost.Sign() <= 0 {
		return cxerrors.NewValidationError("", "body cost is not positive")
	}
	enclosing := make(map[string]bool, len(c.Loops))
	for i, l := range c.Loops {
		if l.Var == "" {
			return cxerrors.NewValidationError("", fmt.Sprintf("loop %d: missing index variable", i))
		}
		if enclosing[l.Var] {
			return cxerrors.NewValidationError("", fmt.Sprintf("loop %d: index %q shadows an enclosing loop", i, l.Var))
		}
		if l.Lower < 0 {
			return cxerrors.NewValidationError("", fmt.Sprintf("loop %d: negative lower bound %d", i, l.Lower))
		}
		switch l.Upper.Kind {
		case BoundN:
		case BoundConst:
			if l.Upper.Const < l.Lower {
				return cxerrors.NewValidationError("", fmt.Sprintf("loop %d: bounds unordered (%d..%d)", i, l.Lower, l.Upper.Const))
			}
		case BoundOuter:
			if !enclosing[l.Upper.OuterVar] {
				return cxerrors.NewValidationError("", fmt.Sprintf("loop %d: upper bound references unknown index %q", i, l.Upper.OuterVar))
			}
			if l.Upper.Scale < 1 {
				return cxerrors.NewValidationError("", fmt.Sprintf("loop %d: non-positive scale %d on dependent bound", i, l.Upper.Scale))
			}
		default:
			return cxerrors.NewValidationError("", fmt.Sprintf("loop %d: unknown bound kind %q", i, l.Upper.Kind))
		}
		enclosing[l.Var] = true
	}
	return nil
}
