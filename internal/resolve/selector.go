package resolve

import (
	"complexity-engine/internal/solver"
	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
)

// SelectTechnique maps a cost expression to its solving technique. The
// mapping is a closed total function over the four techniques: every
// expression shape lands somewhere, and irregular recurrences land on
// the recursion tree, which is authoritative both here and as the
// master theorem's fallback.
func SelectTechnique(expr complexity.CostExpression) complexity.Method {
	if expr.Kind == complexity.KindIteration {
		return complexity.MethodSummation
	}
	if len(expr.Terms) == 1 {
		t := expr.Terms[0]
		if t.IsDecrement() && t.Coeff == 1 {
			return complexity.MethodSubstitution
		}
		if t.IsDivide() && t.ShrinkNum == 1 && t.ShrinkDen >= 2 {
			return complexity.MethodMasterTheorem
		}
		return complexity.MethodRecursionTree
	}
	if a, ok := masterShape(expr.Terms); ok && a >= 1 {
		return complexity.MethodMasterTheorem
	}
	return complexity.MethodRecursionTree
}

// masterShape reports whether all terms share a single integer divisor,
// i.e. the recurrence collapses to aT(n/b) + f(n).
func masterShape(terms []complexity.RecursiveTerm) (int, bool) {
	b := terms[0].ShrinkDen
	a := 0
	for _, t := range terms {
		if !t.IsDivide() || t.ShrinkNum != 1 || t.ShrinkDen != b || b < 2 {
			return 0, false
		}
		a += t.Coeff
	}
	return a, true
}

// Solve runs the selected technique and, when it reports that its
// preconditions are unmet, falls back to the recursion tree. Only a
// NOT_APPLICABLE from the recursion tree itself is terminal.
func Solve(expr complexity.CostExpression, p solver.Params) (solver.Resolution, error) {
	technique := SelectTechnique(expr)

	var res solver.Resolution
	var err error
	switch technique {
	case complexity.MethodSummation:
		return solver.Summation(expr, p)
	case complexity.MethodMasterTheorem:
		res, err = solver.MasterTheorem(expr, p)
	case complexity.MethodSubstitution:
		res, err = solver.Substitution(expr, p)
	default:
		return solver.RecursionTree(expr, p)
	}

	if err == nil {
		return res, nil
	}
	if !cxerrors.IsNotApplicable(err) {
		return solver.Resolution{}, err
	}

	// Fallback: the recursion tree re-derives the bound from scratch,
	// prefixing the trace with why the first technique stepped aside.
	tree, treeErr := solver.RecursionTree(expr, p)
	if treeErr != nil {
		return solver.Resolution{}, treeErr
	}
	steps := make([]string, 0, len(tree.Steps)+1)
	steps = append(steps, "Fallback from "+string(technique)+": "+notApplicableReason(err))
	steps = append(steps, tree.Steps...)
	tree.Steps = steps
	return tree, nil
}

func notApplicableReason(err error) string {
	if e, ok := err.(*cxerrors.Error); ok {
		return e.Message
	}
	return err.Error()
}
