package solver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/internal/solver"
	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
	"complexity-engine/pkg/symbolic"
)

func recurrence(driving symbolic.Term, terms ...complexity.RecursiveTerm) complexity.CostExpression {
	return complexity.CostExpression{
		Kind:    complexity.KindRecurrence,
		Case:    complexity.CaseUnified,
		Terms:   terms,
		Driving: driving,
	}
}

func TestMasterTheoremCase2MergeSort(t *testing.T) {
	// T(n) = 2T(n/2) + n → Θ(n log n)
	expr := recurrence(symbolic.Linear(), complexity.DivideTerm(2, 2))
	res, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n log n", res.Upper.Class())
	assert.Equal(t, complexity.MethodMasterTheorem, res.Method)
	assert.Contains(t, res.Steps, "Critical exponent: c* = log_2(2) = 1")
}

func TestMasterTheoremCase2BinarySearch(t *testing.T) {
	// T(n) = T(n/2) + 1 → c* = 0 → Θ(log n)
	expr := recurrence(symbolic.Constant(), complexity.DivideTerm(1, 2))
	res, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "log n", res.Upper.Class())
}

func TestMasterTheoremCase2QuadraticDriving(t *testing.T) {
	// T(n) = 4T(n/2) + n² → c* = 2 → Θ(n² log n)
	expr := recurrence(symbolic.Poly(2), complexity.DivideTerm(4, 2))
	res, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n^2 log n", res.Upper.Class())
}

func TestMasterTheoremCase2ExtendedLogFactor(t *testing.T) {
	// T(n) = 2T(n/2) + n log n → Θ(n log² n)
	expr := recurrence(symbolic.PolyLog(1, 1), complexity.DivideTerm(2, 2))
	res, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n log^2 n", res.Upper.Class())
}

func TestMasterTheoremCase1(t *testing.T) {
	// T(n) = 8T(n/2) + n → c* = 3 → Θ(n³)
	expr := recurrence(symbolic.Linear(), complexity.DivideTerm(8, 2))
	res, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n^3", res.Upper.Class())
}

func TestMasterTheoremCase1FractionalCriticalExponent(t *testing.T) {
	// Karatsuba: T(n) = 3T(n/2) + n → c* = log_2(3) ≈ 1.58 → Θ(n^1.58)
	expr := recurrence(symbolic.Linear(), complexity.DivideTerm(3, 2))
	res, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n^1.58", res.Upper.Class())
}

func TestMasterTheoremCase3(t *testing.T) {
	// T(n) = 2T(n/2) + n² → regularity ratio 1/2 → Θ(n²)
	expr := recurrence(symbolic.Poly(2), complexity.DivideTerm(2, 2))
	res, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n^2", res.Upper.Class())
}

func TestMasterTheoremToleranceGap(t *testing.T) {
	// With ε = 0.25, degree 1.25 against c* = 1 sits exactly on the
	// boundary: no case applies.
	params := solver.Params{Epsilon: 0.25, BaseThreshold: 0, MaxUnroll: 4}
	expr := recurrence(symbolic.Poly(1.25), complexity.DivideTerm(2, 2))
	_, err := solver.MasterTheorem(expr, params)
	assert.True(t, cxerrors.IsNotApplicable(err), "expected NOT_APPLICABLE, got %v", err)
}

func TestMasterTheoremRejectsExponentialDriving(t *testing.T) {
	expr := recurrence(symbolic.Exponential(2), complexity.DivideTerm(2, 2))
	_, err := solver.MasterTheorem(expr, solver.DefaultParams())
	assert.True(t, cxerrors.IsNotApplicable(err))
}

func TestMasterTheoremRejectsDecrementRecurrence(t *testing.T) {
	expr := recurrence(symbolic.Constant(), complexity.DecrementTerm(1, 1))
	_, err := solver.MasterTheorem(expr, solver.DefaultParams())
	assert.True(t, cxerrors.IsNotApplicable(err))
}

func TestMasterTheoremRejectsIrregularBranches(t *testing.T) {
	// T(n) = T(n/3) + T(2n/3) + n has no single division factor.
	expr := recurrence(symbolic.Linear(),
		complexity.RecursiveTerm{Coeff: 1, ShrinkNum: 1, ShrinkDen: 3},
		complexity.RecursiveTerm{Coeff: 1, ShrinkNum: 2, ShrinkDen: 3},
	)
	_, err := solver.MasterTheorem(expr, solver.DefaultParams())
	assert.True(t, cxerrors.IsNotApplicable(err))
}

func TestMasterTheoremIsPure(t *testing.T) {
	expr := recurrence(symbolic.Linear(), complexity.DivideTerm(2, 2))
	first, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)
	second, err := solver.MasterTheorem(expr, solver.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
