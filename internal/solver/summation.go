package solver

import (
	"fmt"

	"github.com/shopspring/decimal"

	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
	"complexity-engine/pkg/symbolic"
)

// Summation resolves iteration cost descriptions by evaluating the
// nested sums innermost-out with exact closed forms. Each loop's sum is
// closed with the Faulhaber power-sum formulas, then the result is
// rewritten in terms of the next enclosing index (or n). The final
// polynomial in n is exact, so the bound is always tight; the step
// trace distinguishes rectangular nests from triangular ones, whose
// binomial scaling changes the leading constant but never the degree.
func Summation(expr complexity.CostExpression, p Params) (Resolution, error) {
	if expr.Kind != complexity.KindIteration || len(expr.Loops) == 0 {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSummation),
			"input is not an iteration cost description")
	}

	loops := expr.Loops
	steps := []string{fmt.Sprintf("Nested summation: %s", expr.EquationString())}

	// cost is a polynomial in the variable of the loop currently being
	// summed, with coefficients that are polynomials in n.
	cost := varPoly{coeffs: []symbolic.Polynomial{symbolic.ConstantPoly(expr.BodyCost)}}
	triangular := false

	for i := len(loops) - 1; i >= 0; i-- {
		loop := loops[i]

		closed, err := cost.sumOver(loop.Lower)
		if err != nil {
			return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSummation), err.Error())
		}

		switch loop.Upper.Kind {
		case complexity.BoundN:
			cost = closed.substituteN()
			steps = append(steps, fmt.Sprintf("Σ_{%s=%d..n}: closed form %s", loop.Var, loop.Lower, cost.nPoly()))

		case complexity.BoundConst:
			cost = closed.evalUpper(decimal.NewFromInt(int64(loop.Upper.Const)))
			steps = append(steps, fmt.Sprintf("Σ_{%s=%d..%d}: constant-bounded loop contributes a constant factor", loop.Var, loop.Lower, loop.Upper.Const))

		case complexity.BoundOuter:
			if i == 0 || loops[i-1].Var != loop.Upper.OuterVar {
				return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSummation),
					fmt.Sprintf("upper bound of %s depends on a non-adjacent index %s", loop.Var, loop.Upper.OuterVar))
			}
			triangular = true
			cost = closed.compose(
				decimal.NewFromInt(int64(loop.Upper.Scale)),
				decimal.NewFromInt(int64(loop.Upper.Offset)),
			)
			steps = append(steps, fmt.Sprintf("Σ_{%s=%d..%s}: inner limit depends on %s — triangular (binomial) scaling",
				loop.Var, loop.Lower, loop.Upper.OuterVar, loop.Upper.OuterVar))

		default:
			return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSummation),
				fmt.Sprintf("unsupported bound kind %q", loop.Upper.Kind))
		}
	}

	total, err := cost.constant()
	if err != nil {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSummation), err.Error())
	}

	degree := total.Degree()
	theta := symbolic.Poly(float64(degree)).WithCoeff(total.Leading())
	if degree == 0 {
		theta = symbolic.Constant().WithCoeff(total.Leading())
	}

	steps = append(steps, fmt.Sprintf("Total cost: %s", total))
	if triangular {
		steps = append(steps,
			fmt.Sprintf("Triangular nesting: leading constant %s instead of 1, same degree as the rectangular case", total.Leading()))
	} else {
		steps = append(steps, "Rectangular nesting: independent bounds multiply directly")
	}
	steps = append(steps, fmt.Sprintf("Result: Θ(%s) — closed-form sums are exact", theta.Class()))

	return tight(theta, complexity.MethodSummation, steps), nil
}

// varPoly is a polynomial in one loop index whose coefficients are
// polynomials in n: coeffs[j] multiplies index^j.
type varPoly struct {
	coeffs []symbolic.Polynomial
}

// sumOver closes Σ_{v=lower}^{U} of the polynomial, returning a varPoly
// in the still-symbolic upper limit U.
func (vp varPoly) sumOver(lower int) (varPoly, error) {
	out := varPoly{}
	for j, c := range vp.coeffs {
		ps, err := symbolic.PowerSum(j)
		if err != nil {
			return varPoly{}, fmt.Errorf("loop nesting too deep for closed-form summation: %w", err)
		}
		// ps is a scalar polynomial in U; lift it against the n-poly coefficient.
		for m, s := range ps.Coeffs {
			out = out.addAt(m, c.Scale(s))
		}
	}
	// Σ_{v=lower}^{U} = S(U) − S(lower−1), plus the v=0 term when lower is 0.
	if lower > 1 {
		adjust := out.evalUpper(decimal.NewFromInt(int64(lower - 1)))
		out = out.addAt(0, adjust.coeffs[0].Scale(decimal.NewFromInt(-1)))
	} else if lower == 0 {
		out = out.addAt(0, vp.coeffs[0])
	}
	return out, nil
}

// substituteN replaces the symbolic upper limit with n, collapsing the
// varPoly into a constant-in-index polynomial over n.
func (vp varPoly) substituteN() varPoly {
	total := symbolic.Polynomial{}
	for j, c := range vp.coeffs {
		mono := make([]decimal.Decimal, j+1)
		for k := range mono {
			mono[k] = decimal.Zero
		}
		mono[j] = decimal.NewFromInt(1)
		total = total.Add(c.Mul(symbolic.NewPolynomial(mono...)))
	}
	return varPoly{coeffs: []symbolic.Polynomial{total}}
}

// evalUpper replaces the symbolic upper limit with a concrete value.
func (vp varPoly) evalUpper(x decimal.Decimal) varPoly {
	total := symbolic.Polynomial{}
	pow := decimal.NewFromInt(1)
	for _, c := range vp.coeffs {
		total = total.Add(c.Scale(pow))
		pow = pow.Mul(x)
	}
	return varPoly{coeffs: []symbolic.Polynomial{total}}
}

// compose rewrites the symbolic upper limit as scale·w + offset where w
// is the next enclosing index.
func (vp varPoly) compose(scale, offset decimal.Decimal) varPoly {
	out := varPoly{}
	arg := symbolic.NewPolynomial(offset, scale)
	pow := symbolic.ConstantPoly(decimal.NewFromInt(1))
	for _, c := range vp.coeffs {
		for m, s := range pow.Coeffs {
			out = out.addAt(m, c.Scale(s))
		}
		pow = pow.Mul(arg)
	}
	return out
}

// constant extracts the final polynomial in n once no loop index remains.
func (vp varPoly) constant() (symbolic.Polynomial, error) {
	for j := 1; j < len(vp.coeffs); j++ {
		if !vp.coeffs[j].IsZero() {
			return symbolic.Polynomial{}, fmt.Errorf("outermost loop bound still references an index")
		}
	}
	if len(vp.coeffs) == 0 {
		return symbolic.Polynomial{}, nil
	}
	return vp.coeffs[0], nil
}

// nPoly renders the current cost, which must already be index-free.
func (vp varPoly) nPoly() string {
	if len(vp.coeffs) == 0 {
		return "0"
	}
	return vp.coeffs[0].String()
}

func (vp varPoly) addAt(idx int, p symbolic.Polynomial) varPoly {
	for len(vp.coeffs) <= idx {
		vp.coeffs = append(vp.coeffs, symbolic.Polynomial{})
	}
	vp.coeffs[idx] = vp.coeffs[idx].Add(p)
	return vp
}
