// Package viz renders derivation artifacts for the presentation layer.
// The only artifact produced here is a Mermaid flowchart of the first
// levels of a recursion tree; prose explanations are generated upstream.
package viz

import (
	"fmt"
	"strings"

	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
)

// defaultLevels is how many tree levels the diagram expands before the
// ellipsis to the base case.
const defaultLevels = 3

// RecursionTreeDiagram renders a recurrence's call tree as a Mermaid
// flowchart: the root T(n), each level's subproblems and per-level
// cost, and an ellipsis down to the base case. Iteration descriptions
// have no tree and are rejected.
func RecursionTreeDiagram(expr complexity.CostExpression, levels int) (string, error) {
	if expr.Kind != complexity.KindRecurrence || len(expr.Terms) == 0 {
		return "", cxerrors.NewValidationError("", "recursion tree diagrams require a recurrence")
	}
	if levels <= 0 {
		levels = defaultLevels
	}

	var b strings.Builder
	b.WriteString("flowchart TD\n")
	b.WriteString(fmt.Sprintf("    L0[\"T(n) : f(n)=%s\"]\n", expr.Driving.Class()))

	// Each frontier node is identified by its Mermaid id and the
	// argument expression it represents.
	type node struct {
		id  string
		arg string
	}
	frontier := []node{{id: "L0", arg: "n"}}
	seq := 0

	for level := 1; level <= levels; level++ {
		var next []node
		for _, parent := range frontier {
			for _, t := range expr.Terms {
				for c := 0; c < t.Coeff; c++ {
					seq++
					child := node{
						id:  fmt.Sprintf("N%d", seq),
						arg: childArg(parent.arg, t),
					}
					b.WriteString(fmt.Sprintf("    %s --> %s[\"T(%s)\"]\n", parent.id, child.id, child.arg))
					next = append(next, child)
				}
			}
		}
		frontier = next
	}

	seq++
	b.WriteString(fmt.Sprintf("    N%d((\"... base case\"))\n", seq))
	for _, leaf := range frontier {
		b.WriteString(fmt.Sprintf("    %s -.-> N%d\n", leaf.id, seq))
	}

	return b.String(), nil
}

// childArg renders the subproblem argument one level below arg.
func childArg(arg string, t complexity.RecursiveTerm) string {
	out := arg
	if t.ShrinkNum != t.ShrinkDen {
		if t.ShrinkNum == 1 {
			out = fmt.Sprintf("(%s)/%d", out, t.ShrinkDen)
		} else {
			out = fmt.Sprintf("%d(%s)/%d", t.ShrinkNum, out, t.ShrinkDen)
		}
	}
	if t.Decrement > 0 {
		out = fmt.Sprintf("%s-%d", out, t.Decrement)
	}
	return out
}
