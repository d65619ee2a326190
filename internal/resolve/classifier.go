// Package resolve orchestrates complexity resolution: it classifies the
// algorithm, selects a solving technique per cost expression, runs the
// solvers (with the recursion tree as fallback), and aggregates the
// per-case bounds into a final result.
package resolve

import (
	"complexity-engine/pkg/complexity"
)

// StructuralProfile is what the extraction collaborator observed about
// a subroutine: call and nesting counts plus the structural signals
// that justify splitting best/worst/average cases.
type StructuralProfile struct {
	RecursiveCalls int `json:"recursive_calls"`
	MaxLoopNesting int `json:"max_loop_nesting"`

	// Positive signals for case splitting. All default to false, which
	// keeps the analysis unified and cuts solver invocations by up to
	// two-thirds.
	DataDependentExit    bool `json:"data_dependent_exit"`
	ConditionalRecursion bool `json:"conditional_recursion"`
	EarlySearchExit      bool `json:"early_search_exit"`
}

// Classify labels the algorithm type from structural counts.
func Classify(p StructuralProfile) complexity.AlgorithmType {
	switch {
	case p.RecursiveCalls > 0 && p.MaxLoopNesting > 0:
		return complexity.TypeHybrid
	case p.RecursiveCalls > 0:
		return complexity.TypeRecursive
	default:
		return complexity.TypeIterative
	}
}

// HasDifferentCases decides unified versus split resolution. Only a
// positive structural signal splits the cases; absent any signal the
// costs are treated as asymptotically identical.
func HasDifferentCases(p StructuralProfile) bool {
	return p.DataDependentExit || p.ConditionalRecursion || p.EarlySearchExit
}
