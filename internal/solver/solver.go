// Package solver implements the deterministic techniques that turn a
// cost expression into asymptotic bounds: the master theorem,
// substitution unrolling, closed-form summation, and recursion-tree
// aggregation. Every solver is a pure function of its inputs and the
// per-call Params; a solver whose preconditions are unmet returns a
// recoverable NOT_APPLICABLE error rather than guessing.
package solver

import (
	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/symbolic"
)

// Params are the explicit resolution parameters. They are supplied per
// call so every solver stays a pure function with no implicit state.
type Params struct {
	// Epsilon is the tolerance used when comparing the driving
	// function's degree with the critical exponent, and when deciding
	// whether recursion-tree levels are balanced.
	Epsilon float64

	// BaseThreshold is the argument at which a recurrence bottoms out.
	BaseThreshold int

	// MaxUnroll is how many expansion lines a substitution trace shows
	// before stating the general pattern.
	MaxUnroll int
}

// DefaultParams returns the standard resolution parameters: the 0.01
// degree tolerance and a base case at T(0).
func DefaultParams() Params {
	return Params{Epsilon: 0.01, BaseThreshold: 0, MaxUnroll: 4}
}

// Resolution is the outcome of one solver call. When Tight is true the
// upper and lower terms coincide and a Theta bound exists.
type Resolution struct {
	Upper  symbolic.Term
	Lower  symbolic.Term
	Tight  bool
	Method complexity.Method
	Steps  []string
}

// tight builds a resolution whose three notations share one term.
func tight(t symbolic.Term, method complexity.Method, steps []string) Resolution {
	return Resolution{Upper: t, Lower: t, Tight: true, Method: method, Steps: steps}
}
