package solver_test

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/internal/solver"
	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
)

func loopToN(v string) complexity.LoopBound {
	return complexity.LoopBound{Var: v, Lower: 1, Upper: complexity.UpperBound{Kind: complexity.BoundN}}
}

func loopToOuter(v, outer string) complexity.LoopBound {
	return complexity.LoopBound{
		Var: v, Lower: 1,
		Upper: complexity.UpperBound{Kind: complexity.BoundOuter, OuterVar: outer, Scale: 1},
	}
}

func iteration(loops ...complexity.LoopBound) complexity.CostExpression {
	return complexity.CostExpression{
		Kind:     complexity.KindIteration,
		Case:     complexity.CaseUnified,
		Loops:    loops,
		BodyCost: decimal.NewFromInt(1),
	}
}

func TestSummationSingleLoop(t *testing.T) {
	res, err := solver.Summation(iteration(loopToN("i")), solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n", res.Upper.Class())
	assert.Equal(t, complexity.MethodSummation, res.Method)
}

func TestSummationRectangularNest(t *testing.T) {
	// for i=1..n { for j=1..n { O(1) } } → n² exactly
	res, err := solver.Summation(iteration(loopToN("i"), loopToN("j")), solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n^2", res.Upper.Class())
	assert.True(t, res.Upper.Coeff.Equal(decimal.NewFromInt(1)))
	assert.True(t, containsSubstring(res.Steps, "Rectangular nesting"))
}

func TestSummationTriangularNest(t *testing.T) {
	// for i=1..n { for j=1..i { O(1) } } → n(n+1)/2: same degree,
	// leading constant 1/2, binomial scaling noted in the trace.
	res, err := solver.Summation(iteration(loopToN("i"), loopToOuter("j", "i")), solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n^2", res.Upper.Class())
	assert.True(t, res.Upper.Coeff.Equal(decimal.NewFromFloat(0.5)))
	assert.True(t, containsSubstring(res.Steps, "binomial"))
}

func TestSummationTriangularAndRectangularAgreeOnDegree(t *testing.T) {
	rect, err := solver.Summation(iteration(loopToN("i"), loopToN("j")), solver.DefaultParams())
	require.NoError(t, err)
	tri, err := solver.Summation(iteration(loopToN("i"), loopToOuter("j", "i")), solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, rect.Upper.SameClass(tri.Upper))
	assert.False(t, rect.Upper.Coeff.Equal(tri.Upper.Coeff))
}

func TestSummationTripleNest(t *testing.T) {
	res, err := solver.Summation(iteration(loopToN("i"), loopToN("j"), loopToN("k")), solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n^3", res.Upper.Class())
}

func TestSummationConstantBoundedInnerLoop(t *testing.T) {
	// for i=1..n { for j=1..10 { O(1) } } → 10n → Θ(n)
	inner := complexity.LoopBound{Var: "j", Lower: 1, Upper: complexity.UpperBound{Kind: complexity.BoundConst, Const: 10}}
	res, err := solver.Summation(iteration(loopToN("i"), inner), solver.DefaultParams())
	require.NoError(t, err)

	assert.True(t, res.Tight)
	assert.Equal(t, "n", res.Upper.Class())
	assert.True(t, res.Upper.Coeff.Equal(decimal.NewFromInt(10)))
}

func TestSummationConstantLoopsOnly(t *testing.T) {
	a := complexity.LoopBound{Var: "i", Lower: 1, Upper: complexity.UpperBound{Kind: complexity.BoundConst, Const: 4}}
	res, err := solver.Summation(iteration(a), solver.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, "1", res.Upper.Class())
	assert.True(t, res.Upper.Coeff.Equal(decimal.NewFromInt(4)))
}

func TestSummationBodyCostScales(t *testing.T) {
	expr := iteration(loopToN("i"))
	expr.BodyCost = decimal.NewFromInt(7)
	res, err := solver.Summation(expr, solver.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, "n", res.Upper.Class())
	assert.True(t, res.Upper.Coeff.Equal(decimal.NewFromInt(7)))
}

func TestSummationScaledDependentBound(t *testing.T) {
	// for i=1..n { for j=1..2i { O(1) } } → Σ 2i = n² + n → Θ(n²)
	inner := complexity.LoopBound{
		Var: "j", Lower: 1,
		Upper: complexity.UpperBound{Kind: complexity.BoundOuter, OuterVar: "i", Scale: 2},
	}
	res, err := solver.Summation(iteration(loopToN("i"), inner), solver.DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, "n^2", res.Upper.Class())
	assert.True(t, res.Upper.Coeff.Equal(decimal.NewFromInt(1)))
}

func TestSummationRejectsNonAdjacentDependence(t *testing.T) {
	// j's bound references i across an intermediate loop.
	expr := iteration(loopToN("i"), loopToN("m"), loopToOuter("j", "i"))
	_, err := solver.Summation(expr, solver.DefaultParams())
	assert.True(t, cxerrors.IsNotApplicable(err))
}

func TestSummationRejectsRecurrence(t *testing.T) {
	expr := recurrence(complexity.CostExpression{}.Driving, complexity.DivideTerm(2, 2))
	_, err := solver.Summation(expr, solver.DefaultParams())
	assert.True(t, cxerrors.IsNotApplicable(err))
}

func containsSubstring(steps []string, substr string) bool {
	for _, s := range steps {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}
