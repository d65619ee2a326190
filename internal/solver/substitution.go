package solver

import (
	"fmt"
	"math"

	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
	"complexity-engine/pkg/symbolic"
)

// Substitution resolves decrementing recurrences T(n) = T(n−k) + f(n)
// by symbolic unrolling: the recurrence is expanded MaxUnroll times,
// the accumulated-cost pattern is stated as a function of the unrolling
// depth, and the total over the ≈ n/k levels down to the base case is
// closed with a known series. Multi-term branching recurrences are
// deferred to the recursion tree.
func Substitution(expr complexity.CostExpression, p Params) (Resolution, error) {
	if expr.Kind != complexity.KindRecurrence || len(expr.Terms) == 0 {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSubstitution),
			"input is not a recurrence")
	}
	if len(expr.Terms) > 1 {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSubstitution),
			"multiple recursive terms; defer to the recursion tree")
	}
	term := expr.Terms[0]
	if !term.IsDecrement() || term.Coeff != 1 {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSubstitution),
			"recurrence is not of the form T(n−k) + f(n)")
	}
	f := expr.Driving
	if f.IsExponential() {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSubstitution),
			"exponential driving function; defer to the recursion tree")
	}

	k := term.Decrement
	steps := []string{fmt.Sprintf("Recurrence: %s", expr.EquationString())}
	steps = append(steps, unrollSteps(k, f, p.MaxUnroll)...)

	levels := "n"
	if k > 1 {
		levels = fmt.Sprintf("n/%d", k)
	}
	steps = append(steps, fmt.Sprintf("After m substitutions: T(n) = T(n-%d·m) + accumulated cost of m levels", k))
	steps = append(steps, fmt.Sprintf("The base case T(%d) is reached after m ≈ %s levels", p.BaseThreshold, levels))

	theta, closing := closeUnrolled(k, f, levels, p.BaseThreshold)
	if closing == nil {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodSubstitution),
			"no closed form recognized for the accumulated cost")
	}
	steps = append(steps, closing...)

	return tight(theta, complexity.MethodSubstitution, steps), nil
}

// unrollSteps produces the expansion lines of the derivation trace.
func unrollSteps(k int, f symbolic.Term, count int) []string {
	if count < 1 {
		count = 1
	}
	steps := make([]string, 0, count)
	for i := 1; i <= count; i++ {
		var accum string
		if f.IsConstant() {
			accum = fmt.Sprintf("%d·c", i)
		} else {
			accum = fmt.Sprintf("Σ_{j=0..%d} f(n-%d·j) with f(n)=%s", i-1, k, f.Class())
		}
		steps = append(steps, fmt.Sprintf("T(n) = T(n-%d) + %s", i*k, accum))
	}
	return steps
}

// closeUnrolled recognizes the accumulated-cost pattern and returns the
// tight class together with the concluding trace lines.
func closeUnrolled(k int, f symbolic.Term, levels string, base int) (symbolic.Term, []string) {
	switch {
	case f.IsConstant():
		// n/k levels, constant work per level.
		return symbolic.Linear(), []string{
			fmt.Sprintf("T(n) = T(%d) + %s×O(1)", base, levels),
			fmt.Sprintf("Constant work on each of %s levels gives T(n) = Θ(n)", levels),
		}

	case math.Abs(f.Degree-1) < 1e-9 && f.LogExp == 0:
		// Arithmetic series: f decreases linearly toward the base case.
		return symbolic.Poly(2), []string{
			fmt.Sprintf("T(n) = T(%d) + %s×O(n)", base, levels),
			"The level costs form an arithmetic series: n + (n-" + fmt.Sprint(k) + ") + ... = n(n+1)/2 scaled by 1/" + fmt.Sprint(k),
			"T(n) = Θ(n²)",
		}

	case f.Degree > 0:
		// Σ over levels of n^d (·log^j n) is Θ(n^{d+1} (·log^j n)).
		theta := symbolic.PolyLog(f.Degree+1, f.LogExp)
		return theta, []string{
			fmt.Sprintf("T(n) = T(%d) + %s×O(%s)", base, levels, f.Class()),
			fmt.Sprintf("Summing %s over %s levels gives T(n) = Θ(%s)", f.Class(), levels, theta.Class()),
		}

	case f.LogExp > 0:
		// Σ log^j(n-i·k) = Θ(n · log^j n), the log(n!) pattern for j=1.
		theta := symbolic.PolyLog(1, f.LogExp)
		return theta, []string{
			fmt.Sprintf("T(n) = T(%d) + %s×O(%s)", base, levels, f.Class()),
			fmt.Sprintf("Σ log(n-j) = log(n!) = Θ(n log n); hence T(n) = Θ(%s)", theta.Class()),
		}

	default:
		return symbolic.Term{}, nil
	}
}
