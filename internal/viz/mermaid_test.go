package viz_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complexity-engine/internal/viz"
	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
	"complexity-engine/pkg/symbolic"
)

func TestRecursionTreeDiagram(t *testing.T) {
	expr := complexity.CostExpression{
		Kind:    complexity.KindRecurrence,
		Case:    complexity.CaseUnified,
		Terms:   []complexity.RecursiveTerm{complexity.DivideTerm(2, 2)},
		Driving: symbolic.Linear(),
	}

	out, err := viz.RecursionTreeDiagram(expr, 2)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "flowchart TD\n"))
	assert.Contains(t, out, `L0["T(n) : f(n)=n"]`)
	assert.Contains(t, out, `L0 --> N1["T((n)/2)"]`)
	// Two children per node over two levels: 2 + 4 subproblem nodes.
	assert.Equal(t, 6, strings.Count(out, "-->"))
	assert.Contains(t, out, `... base case`)
	// Every level-2 node dots down to the shared base-case node.
	assert.Equal(t, 4, strings.Count(out, "-.->"))
}

func TestRecursionTreeDiagramDecrement(t *testing.T) {
	expr := complexity.CostExpression{
		Kind:    complexity.KindRecurrence,
		Case:    complexity.CaseUnified,
		Terms:   []complexity.RecursiveTerm{complexity.DecrementTerm(1, 1)},
		Driving: symbolic.Constant(),
	}

	out, err := viz.RecursionTreeDiagram(expr, 0)
	require.NoError(t, err)

	// Default depth expands three levels of the chain.
	assert.Contains(t, out, `T(n-1)`)
	assert.Contains(t, out, `T(n-1-1-1)`)
}

func TestRecursionTreeDiagramRejectsIteration(t *testing.T) {
	expr := complexity.CostExpression{
		Kind: complexity.KindIteration,
		Case: complexity.CaseUnified,
	}
	_, err := viz.RecursionTreeDiagram(expr, 2)
	assert.True(t, cxerrors.IsValidation(err))
}
