package solver

import (
	"fmt"
	"math"

	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
	"complexity-engine/pkg/symbolic"
)

// RecursionTree resolves recurrences by aggregating per-level cost over
// the recursion tree. It handles the irregular shapes the other solvers
// defer — distinct coefficients or shrink factors per recursive term —
// and serves as the master theorem's designated fallback. The total is
// classified by which level dominates the sum: root-heavy, leaf-heavy,
// or balanced across levels.
func RecursionTree(expr complexity.CostExpression, p Params) (Resolution, error) {
	if expr.Kind != complexity.KindRecurrence || len(expr.Terms) == 0 {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodRecursionTree),
			"input is not a recurrence")
	}

	divides, decrements := 0, 0
	branches := 0
	for _, t := range expr.Terms {
		branches += t.Coeff
		if t.IsDecrement() {
			decrements++
		} else {
			divides++
		}
	}
	if divides > 0 && decrements > 0 {
		// Mixed shrink-and-subtract recursion has no closed form here;
		// this is the terminal failure the engine surfaces.
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodRecursionTree),
			"recurrence mixes division and subtraction terms; no closed form")
	}

	f := expr.Driving
	steps := []string{
		fmt.Sprintf("Recurrence: %s", expr.EquationString()),
		fmt.Sprintf("Recursion tree with %d branches per node, per-node cost f(n)=%s", branches, f.Class()),
	}

	if decrements > 0 {
		return decrementTree(expr, branches, f, steps, p)
	}
	return divideTree(expr, branches, f, steps, p)
}

// divideTree handles trees whose subproblems shrink multiplicatively.
func divideTree(expr complexity.CostExpression, branches int, f symbolic.Term, steps []string, p Params) (Resolution, error) {
	if f.IsExponential() {
		// Subproblem sizes shrink multiplicatively, so a·f(n/b) vanishes
		// against f(n) and the level sums form a convergent series.
		steps = append(steps,
			"f shrinks geometrically below the root: level sums form a convergent series",
			fmt.Sprintf("Root-heavy tree: T(n) = Θ(%s)", f.Class()),
		)
		return tight(f.WithCoeff(symbolic.Constant().Coeff), complexity.MethodRecursionTree, steps), nil
	}

	// Per-level work ratio: level ℓ+1 costs r times level ℓ.
	r := 0.0
	minShrink, maxShrink := 1.0, 0.0
	for _, t := range expr.Terms {
		s := t.Shrink()
		r += float64(t.Coeff) * math.Pow(s, f.Degree)
		if s < minShrink {
			minShrink = s
		}
		if s > maxShrink {
			maxShrink = s
		}
	}

	// Tree height along the branch relevant to the resolved case: the
	// slowest-shrinking branch bounds the worst case, the fastest the
	// best case. Either choice yields Θ(log n) levels.
	heightShrink := maxShrink
	heightNote := "longest path (slowest-shrinking branch)"
	if expr.Case == complexity.CaseBest {
		heightShrink = minShrink
		heightNote = "shortest path (fastest-shrinking branch)"
	}
	heightBase := 1 / heightShrink
	steps = append(steps,
		fmt.Sprintf("Tree height: log_{%s}(n) levels along the %s", formatFloat(heightBase), heightNote),
		fmt.Sprintf("Per-level work ratio: r = Σ cᵢ·sᵢ^%s = %s", formatFloat(f.Degree), formatFloat(r)),
	)

	switch {
	case math.Abs(r-1) <= p.Epsilon:
		theta := symbolic.PolyLog(f.Degree, f.LogExp+1)
		steps = append(steps,
			"Balanced tree: every level contributes ≈ f(n); total = f(n) × height",
			fmt.Sprintf("Result: T(n) = Θ(%s)", theta.Class()),
		)
		return tight(theta, complexity.MethodRecursionTree, steps), nil

	case r < 1:
		steps = append(steps,
			fmt.Sprintf("Level sums decay geometrically (r=%s < 1): the root dominates", formatFloat(r)),
			fmt.Sprintf("Result: T(n) = Θ(%s)", f.Class()),
		)
		return tight(symbolic.PolyLog(f.Degree, f.LogExp), complexity.MethodRecursionTree, steps), nil

	default:
		// Leaf-heavy: the leaf count n^p dominates, where p is the
		// characteristic exponent solving Σ cᵢ·sᵢ^p = 1.
		pExp, ok := characteristicExponent(expr.Terms)
		if !ok {
			return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodRecursionTree),
				"characteristic exponent did not converge")
		}
		theta := symbolic.Poly(pExp)
		if uniform, a, b := uniformDivide(expr.Terms); uniform {
			steps = append(steps,
				fmt.Sprintf("Level sums grow geometrically (r=%s > 1): the leaves dominate", formatFloat(r)),
				fmt.Sprintf("Leaf count: %d^(log_%d n) = n^(log_%d %d) = n^%s", a, b, b, a, formatFloat(pExp)),
			)
		} else {
			steps = append(steps,
				fmt.Sprintf("Level sums grow geometrically (r=%s > 1): the leaves dominate", formatFloat(r)),
				fmt.Sprintf("Characteristic exponent: Σ cᵢ·sᵢ^p = 1 at p = %s", formatFloat(pExp)),
			)
		}
		steps = append(steps, fmt.Sprintf("Result: T(n) = Θ(%s)", theta.Class()))
		return tight(theta, complexity.MethodRecursionTree, steps), nil
	}
}

// decrementTree handles subtract-recurrences. With a polynomial driving
// cost and unequal decrements the tree is irregular and only loose
// exponential bounds are available; with a geometric driving cost the
// level work itself is geometric, so the ratio of node growth to cost
// decay decides which end of the tree dominates.
func decrementTree(expr complexity.CostExpression, branches int, f symbolic.Term, steps []string, p Params) (Resolution, error) {
	kMin, kMax := math.MaxInt32, 0
	for _, t := range expr.Terms {
		if t.Decrement < kMin {
			kMin = t.Decrement
		}
		if t.Decrement > kMax {
			kMax = t.Decrement
		}
	}

	if f.IsExponential() {
		if kMin != kMax {
			return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodRecursionTree),
				"unequal decrements against a geometric driving cost; no closed form")
		}
		return geometricDecrementTree(branches, kMin, f, steps, p)
	}

	if branches < 2 {
		return Resolution{}, cxerrors.NewNotApplicable(string(complexity.MethodRecursionTree),
			"single decrementing branch belongs to the substitution solver")
	}

	// Longest path shrinks by kMin per level, shortest by kMax.
	upper := symbolic.Exponential(math.Pow(float64(branches), 1/float64(kMin)))
	lower := symbolic.Exponential(math.Pow(float64(branches), 1/float64(kMax)))
	steps = append(steps,
		fmt.Sprintf("Level ℓ holds up to %d^ℓ nodes", branches),
		fmt.Sprintf("Height between n/%d (shortest path) and n/%d (longest path)", kMax, kMin),
		fmt.Sprintf("Node count bounded by %d^(n/%d) above and %d^(n/%d) below", branches, kMin, branches, kMax),
		fmt.Sprintf("Loose bounds: O(%s), Ω(%s) — no tight class from the tree alone", upper.Class(), lower.Class()),
	)

	if kMin == kMax {
		// Equal decrements collapse the gap: the tree is regular.
		steps[len(steps)-1] = fmt.Sprintf("Equal decrements: exactly %d^(n/%d) leaves, T(n) = Θ(%s)", branches, kMin, upper.Class())
		return tight(upper, complexity.MethodRecursionTree, steps), nil
	}

	return Resolution{
		Upper:  upper,
		Lower:  lower,
		Tight:  false,
		Method: complexity.MethodRecursionTree,
		Steps:  steps,
	}, nil
}

// geometricDecrementTree classifies A·T(n−k) + f(n) for exponential f.
// Level ℓ holds A^ℓ nodes each costing f(n−k·ℓ), so the level work is
// f(n)·(A/c^k)^ℓ where c is the base of f: the ratio decides whether
// the root, every level, or the A^(n/k) leaves dominate.
func geometricDecrementTree(branches, k int, f symbolic.Term, steps []string, p Params) (Resolution, error) {
	ratio := float64(branches) / math.Pow(f.ExpBase, float64(k))
	steps = append(steps,
		fmt.Sprintf("Level ℓ holds %d^ℓ nodes, each costing f(n-%d·ℓ)", branches, k),
		fmt.Sprintf("Per-level work ratio: r = %d/%s^%d = %s", branches, formatFloat(f.ExpBase), k, formatFloat(ratio)),
	)

	switch {
	case math.Abs(ratio-1) <= p.Epsilon:
		theta := f.WithCoeff(symbolic.Constant().Coeff)
		theta.Degree = f.Degree + 1
		steps = append(steps,
			fmt.Sprintf("Balanced tree: each of the n/%d levels contributes ≈ f(n)", k),
			fmt.Sprintf("Result: T(n) = Θ(%s)", theta.Class()),
		)
		return tight(theta, complexity.MethodRecursionTree, steps), nil

	case ratio < 1:
		steps = append(steps,
			fmt.Sprintf("Level work decays geometrically (r=%s < 1): the root dominates", formatFloat(ratio)),
			fmt.Sprintf("Result: T(n) = Θ(%s)", f.Class()),
		)
		return tight(f.WithCoeff(symbolic.Constant().Coeff), complexity.MethodRecursionTree, steps), nil

	default:
		theta := symbolic.Exponential(math.Pow(float64(branches), 1/float64(k)))
		steps = append(steps,
			fmt.Sprintf("Level work grows geometrically (r=%s > 1): the leaves dominate", formatFloat(ratio)),
			fmt.Sprintf("Leaf count: %d^(n/%d), T(n) = Θ(%s)", branches, k, theta.Class()),
		)
		return tight(theta, complexity.MethodRecursionTree, steps), nil
	}
}

// characteristicExponent solves Σ cᵢ·sᵢ^p = 1 for p by bisection. The
// left side is strictly decreasing in p, so the root is unique.
func characteristicExponent(terms []complexity.RecursiveTerm) (float64, bool) {
	g := func(p float64) float64 {
		sum := 0.0
		for _, t := range terms {
			sum += float64(t.Coeff) * math.Pow(t.Shrink(), p)
		}
		return sum
	}
	lo, hi := 0.0, 1.0
	for g(hi) > 1 {
		hi *= 2
		if hi > 64 {
			return 0, false
		}
	}
	for i := 0; i < 100; i++ {
		mid := (lo + hi) / 2
		if g(mid) > 1 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}

// uniformDivide reports whether every term divides by the same integer
// factor, returning the aggregate (a, b) when so.
func uniformDivide(terms []complexity.RecursiveTerm) (bool, int, int) {
	b := terms[0].ShrinkDen
	a := 0
	for _, t := range terms {
		if t.ShrinkNum != 1 || t.ShrinkDen != b {
			return false, 0, 0
		}
		a += t.Coeff
	}
	return true, a, b
}
