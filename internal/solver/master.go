package solver

import (
	"fmt"
	"math"

	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
	"complexity-engine/pkg/symbolic"
)

// MasterTheorem resolves recurrences of the form T(n) = a·T(n/b) + f(n)
// with integer b >= 2. The driving function's polynomial degree is
// compared against the critical exponent c* = log_b(a) at tolerance
// Epsilon; degrees landing exactly on the tolerance boundary fall into
// the gap between cases and are reported NOT_APPLICABLE so the
// recursion tree can take over.
func MasterTheorem(expr complexity.CostExpression, p Params) (Resolution, error) {
	a, b, err := masterForm(expr)
	if err != nil {
		return Resolution{}, err
	}

	f := expr.Driving
	if f.IsExponential() {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodMasterTheorem),
			"driving function grows super-polynomially; use the recursion tree")
	}

	cstar := math.Log(float64(a)) / math.Log(float64(b))
	d := f.Degree

	steps := []string{
		fmt.Sprintf("Recurrence: %s", expr.EquationString()),
		fmt.Sprintf("Parameters: a=%d, b=%d, f(n)=%s", a, b, f.Class()),
		fmt.Sprintf("Critical exponent: c* = log_%d(%d) = %s", b, a, formatFloat(cstar)),
		fmt.Sprintf("Compare degree(f)=%s against c*=%s at tolerance ε=%g", formatFloat(d), formatFloat(cstar), p.Epsilon),
	}

	switch {
	case d < cstar-p.Epsilon:
		theta := symbolic.Poly(cstar)
		steps = append(steps,
			fmt.Sprintf("Case 1: f(n) is polynomially smaller than n^%s; the leaves dominate", formatFloat(cstar)),
			fmt.Sprintf("Result: T(n) = Θ(%s)", theta.Class()),
		)
		return tight(theta, complexity.MethodMasterTheorem, steps), nil

	case math.Abs(d-cstar) < p.Epsilon:
		theta := symbolic.PolyLog(cstar, f.LogExp+1)
		if f.LogExp > 0 {
			steps = append(steps,
				fmt.Sprintf("Case 2 (extended): f(n) = Θ(n^%s · log^%d n); one more log factor accrues", formatFloat(cstar), f.LogExp))
		} else {
			steps = append(steps,
				fmt.Sprintf("Case 2: f(n) = Θ(n^%s); every level contributes equal work", formatFloat(cstar)))
		}
		steps = append(steps, fmt.Sprintf("Result: T(n) = Θ(%s)", theta.Class()))
		return tight(theta, complexity.MethodMasterTheorem, steps), nil

	case d > cstar+p.Epsilon:
		// Regularity: a·f(n/b) <= k·f(n) for some k < 1 and large n.
		// For f = n^d · log^j n the level ratio tends to a/b^d.
		ratio := float64(a) * math.Pow(1/float64(b), d)
		steps = append(steps,
			fmt.Sprintf("Case 3 candidate: f(n) is polynomially larger than n^%s", formatFloat(cstar)),
			fmt.Sprintf("Regularity check: a·f(n/b)/f(n) → %d/%d^%s = %s", a, b, formatFloat(d), formatFloat(ratio)),
		)
		if ratio >= 1 {
			steps = append(steps, "Regularity condition fails; classification undetermined")
			return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodMasterTheorem),
				"regularity condition does not hold for case 3")
		}
		steps = append(steps,
			"Regularity holds: the root dominates",
			fmt.Sprintf("Result: T(n) = Θ(%s)", f.Class()),
		)
		return tight(symbolic.PolyLog(f.Degree, f.LogExp), complexity.MethodMasterTheorem, steps), nil

	default:
		// degree(f) sits exactly on a tolerance boundary: no case applies.
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodMasterTheorem),
			fmt.Sprintf("degree(f)=%s lies in the tolerance gap around c*=%s", formatFloat(d), formatFloat(cstar)))
	}
}

// masterForm extracts (a, b) when the recurrence matches a·T(n/b) + f(n).
func masterForm(expr complexity.CostExpression) (a, b int, err error) {
	if expr.Kind != complexity.KindRecurrence || len(expr.Terms) == 0 {
		return 0, 0, cxerrors.NewNotApplicable(string(complexity.MethodMasterTheorem),
			"input is not a recurrence")
	}
	b = expr.Terms[0].ShrinkDen
	for _, t := range expr.Terms {
		if !t.IsDivide() || t.ShrinkNum != 1 || t.ShrinkDen != b {
			return 0, 0, cxerrors.NewNotApplicable(string(complexity.MethodMasterTheorem),
				"recurrence is not of the form aT(n/b) + f(n)")
		}
		a += t.Coeff
	}
	if b < 2 {
		return 0, 0, cxerrors.NewNotApplicable(string(complexity.MethodMasterTheorem),
			"division factor must be an integer >= 2")
	}
	return a, b, nil
}

// formatFloat renders a float compactly for step traces: integers plain,
// everything else with two decimals.
func formatFloat(v float64) string {
	if math.Abs(v-math.Round(v)) < 1e-9 {
		return fmt.Sprintf("%d", int64(math.Round(v)))
	}
	return fmt.Sprintf("%.2f", v)
}
