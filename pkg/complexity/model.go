// Package complexity defines the shared contracts between the extraction
// collaborator, the resolution engine, and downstream consumers: cost
// expressions going in, bounds and aggregated results coming out.
package complexity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"complexity-engine/pkg/symbolic"
)

// Kind distinguishes the two cost description shapes.
type Kind string

const (
	KindRecurrence Kind = "RECURRENCE"
	KindIteration  Kind = "ITERATION"
)

// CaseTag names the analysis case a cost expression belongs to.
type CaseTag string

const (
	CaseBest    CaseTag = "best"
	CaseWorst   CaseTag = "worst"
	CaseAverage CaseTag = "average"
	CaseUnified CaseTag = "unified"
)

// AlgorithmType is the structural classification of the analyzed algorithm.
type AlgorithmType string

const (
	TypeRecursive AlgorithmType = "RECURSIVE"
	TypeIterative AlgorithmType = "ITERATIVE"
	TypeHybrid    AlgorithmType = "HYBRID"
)

// Method names the solving technique that produced a bound. The set is
// closed; technique selection is a total function over these values.
type Method string

const (
	MethodMasterTheorem Method = "master_theorem"
	MethodSubstitution  Method = "substitution"
	MethodSummation     Method = "summation"
	MethodRecursionTree Method = "recursion_tree"
)

// Notation is one of the three asymptotic notations.
type Notation string

const (
	NotationO     Notation = "O"
	NotationOmega Notation = "Omega"
	NotationTheta Notation = "Theta"
)

// RecursiveTerm is one recursive call in a recurrence. The subproblem
// size is n·ShrinkNum/ShrinkDen − Decrement, so T(n/2) is {1, 1, 2, 0},
// T(2n/3) is {1, 2, 3, 0} and T(n−1) is {1, 1, 1, 1}.
type RecursiveTerm struct {
	Coeff     int `json:"coeff"`
	ShrinkNum int `json:"shrink_num"`
	ShrinkDen int `json:"shrink_den"`
	Decrement int `json:"decrement"`
}

// DivideTerm builds the term coeff·T(n/divisor).
func DivideTerm(coeff, divisor int) RecursiveTerm {
	return RecursiveTerm{Coeff: coeff, ShrinkNum: 1, ShrinkDen: divisor}
}

// DecrementTerm builds the term coeff·T(n−k).
func DecrementTerm(coeff, k int) RecursiveTerm {
	return RecursiveTerm{Coeff: coeff, ShrinkNum: 1, ShrinkDen: 1, Decrement: k}
}

// IsDecrement reports whether the term shrinks by subtraction only.
func (t RecursiveTerm) IsDecrement() bool {
	return t.ShrinkNum == t.ShrinkDen && t.Decrement > 0
}

// IsDivide reports whether the term shrinks by a constant factor only.
func (t RecursiveTerm) IsDivide() bool {
	return t.ShrinkNum < t.ShrinkDen && t.Decrement == 0
}

// Shrink returns the multiplicative shrink factor ShrinkNum/ShrinkDen.
func (t RecursiveTerm) Shrink() float64 {
	return float64(t.ShrinkNum) / float64(t.ShrinkDen)
}

func (t RecursiveTerm) String() string {
	arg := "n"
	if t.ShrinkNum != t.ShrinkDen {
		if t.ShrinkNum == 1 {
			arg = fmt.Sprintf("n/%d", t.ShrinkDen)
		} else {
			arg = fmt.Sprintf("%dn/%d", t.ShrinkNum, t.ShrinkDen)
		}
	}
	if t.Decrement > 0 {
		arg = fmt.Sprintf("%s-%d", arg, t.Decrement)
	}
	if t.Coeff == 1 {
		return fmt.Sprintf("T(%s)", arg)
	}
	return fmt.Sprintf("%dT(%s)", t.Coeff, arg)
}

// BoundKind discriminates loop upper-bound shapes.
type BoundKind string

const (
	BoundN     BoundKind = "n"     // upper bound is the input size
	BoundConst BoundKind = "const" // upper bound is a constant
	BoundOuter BoundKind = "outer" // upper bound is linear in an enclosing index
)

// UpperBound describes a loop's upper limit. For BoundOuter the limit
// is Scale·outer + Offset where outer is the value of OuterVar.
type UpperBound struct {
	Kind     BoundKind `json:"kind"`
	Const    int       `json:"const,omitempty"`
	OuterVar string    `json:"outer_var,omitempty"`
	Scale    int       `json:"scale,omitempty"`
	Offset   int       `json:"offset,omitempty"`
}

// LoopBound is one loop of an iteration cost description, listed outer
// to inner.
type LoopBound struct {
	Var   string     `json:"var"`
	Lower int        `json:"lower"`
	Upper UpperBound `json:"upper"`
}

func (l LoopBound) String() string {
	switch l.Upper.Kind {
	case BoundConst:
		return fmt.Sprintf("%s=%d..%d", l.Var, l.Lower, l.Upper.Const)
	case BoundOuter:
		limit := l.Upper.OuterVar
		if l.Upper.Scale != 1 {
			limit = fmt.Sprintf("%d%s", l.Upper.Scale, limit)
		}
		if l.Upper.Offset != 0 {
			limit = fmt.Sprintf("%s%+d", limit, l.Upper.Offset)
		}
		return fmt.Sprintf("%s=%d..%s", l.Var, l.Lower, limit)
	default:
		return fmt.Sprintf("%s=%d..n", l.Var, l.Lower)
	}
}

// CostExpression is a normalized recurrence or iteration description.
// It is produced once by the extraction collaborator and never mutated.
type CostExpression struct {
	Kind Kind    `json:"kind"`
	Case CaseTag `json:"case"`

	// Equation carries the human-readable form for derivation traces.
	Equation string `json:"equation,omitempty"`

	// Recurrence fields.
	Terms   []RecursiveTerm `json:"terms,omitempty"`
	Driving symbolic.Term   `json:"driving,omitempty"`

	// Iteration fields.
	Loops    []LoopBound     `json:"loops,omitempty"`
	BodyCost decimal.Decimal `json:"body_cost,omitempty"`
}

// EquationString returns the carried equation, or a rendering built
// from the structured fields when the collaborator supplied none.
func (c CostExpression) EquationString() string {
	if c.Equation != "" {
		return c.Equation
	}
	if c.Kind == KindIteration {
		s := ""
		for _, l := range c.Loops {
			s += fmt.Sprintf("Σ(%s) ", l)
		}
		return s + fmt.Sprintf("O(%s)", c.BodyCost)
	}
	s := "T(n) = "
	for i, t := range c.Terms {
		if i > 0 {
			s += " + "
		}
		s += t.String()
	}
	return s + fmt.Sprintf(" + O(%s)", c.Driving.Class())
}

// Bound is a single asymptotic bound produced by exactly one solver call.
type Bound struct {
	Notation Notation      `json:"notation"`
	Term     symbolic.Term `json:"term"`
	IsTight  bool          `json:"is_tight"`
	Method   Method        `json:"method"`
	Steps    []string      `json:"steps"`
}

// Expression renders the bound in the usual written form, e.g. "O(n log n)".
func (b Bound) Expression() string {
	sym := string(b.Notation)
	switch b.Notation {
	case NotationOmega:
		sym = "Ω"
	case NotationTheta:
		sym = "Θ"
	}
	return fmt.Sprintf("%s(%s)", sym, b.Term.Class())
}

// ResolvedComplexity is a bound triplet for one case. Theta is present
// only when the upper and lower bounds coincide.
type ResolvedComplexity struct {
	O       Bound  `json:"o"`
	Omega   Bound  `json:"omega"`
	Theta   *Bound `json:"theta,omitempty"`
	IsTight bool   `json:"is_tight"`
}

// CaseResolution pairs a case tag and its original equation with the
// resolved complexity.
type CaseResolution struct {
	Case       CaseTag            `json:"case"`
	Equation   string             `json:"equation"`
	Resolution ResolvedComplexity `json:"resolution"`
}

// AuditTrail records what produced a result, for reproducibility.
type AuditTrail struct {
	RequestID     uuid.UUID `json:"request_id"`
	ResolvedAt    time.Time `json:"resolved_at"`
	Epsilon       float64   `json:"epsilon"`
	BaseThreshold int       `json:"base_threshold"`
}

// ComplexityResult is the final aggregated output for one algorithm.
// Exactly one of Unified or the per-case fields is populated, matching
// HasDifferentCases.
type ComplexityResult struct {
	AlgorithmName     string        `json:"algorithm_name"`
	AlgorithmType     AlgorithmType `json:"algorithm_type"`
	HasDifferentCases bool          `json:"has_different_cases"`

	Unified *CaseResolution `json:"unified_case,omitempty"`
	Best    *CaseResolution `json:"best_case,omitempty"`
	Worst   *CaseResolution `json:"worst_case,omitempty"`
	Average *CaseResolution `json:"average_case,omitempty"`

	// Diagnostics carries non-fatal findings: ordering violations
	// between cases, stale upstream classification, cache problems.
	Diagnostics []string `json:"diagnostics,omitempty"`

	Audit AuditTrail `json:"audit_trail"`
}
