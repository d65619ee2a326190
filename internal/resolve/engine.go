package resolve

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"complexity-engine/internal/solver"
	"complexity-engine/pkg/complexity"
	"complexity-engine/pkg/cxerrors"
	"complexity-engine/pkg/symbolic"
)

// Request is one resolution job as supplied by the extraction
// collaborator. The engine trusts the case tags but re-verifies every
// structural invariant and re-derives every bound itself.
type Request struct {
	AlgorithmName     string                      `json:"algorithm_name"`
	AlgorithmType     complexity.AlgorithmType    `json:"algorithm_type"`
	HasDifferentCases bool                        `json:"has_different_cases"`
	Expressions       []complexity.CostExpression `json:"expressions"`

	// Description is the normalized algorithm description the caching
	// collaborator keys on. Optional; the engine itself never reads it.
	Description string `json:"description,omitempty"`
}

// Engine runs classification, technique selection and solving across
// one to three cases and assembles the final ComplexityResult. It holds
// only the resolution parameters; every call is a pure function of the
// request and those parameters.
type Engine struct {
	params solver.Params
}

// NewEngine creates a resolution engine with the given parameters.
func NewEngine(params solver.Params) *Engine {
	return &Engine{params: params}
}

// Params returns the engine's resolution parameters.
func (e *Engine) Params() solver.Params {
	return e.params
}

// Resolve validates the request, resolves each case and aggregates the
// bounds. Split cases resolve concurrently; aggregation waits for all
// of them. Any solver failure propagates as a RESOLUTION_FAILED error
// naming the offending case and attempted technique — never a silently
// substituted answer.
func (e *Engine) Resolve(ctx context.Context, req Request) (*complexity.ComplexityResult, error) {
	if err := e.validate(req); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &complexity.ComplexityResult{
		AlgorithmName:     req.AlgorithmName,
		AlgorithmType:     req.AlgorithmType,
		HasDifferentCases: req.HasDifferentCases,
		Audit: complexity.AuditTrail{
			RequestID:     uuid.New(),
			ResolvedAt:    time.Now().UTC(),
			Epsilon:       e.params.Epsilon,
			BaseThreshold: e.params.BaseThreshold,
		},
	}

	if !req.HasDifferentCases {
		expr := req.Expressions[0]
		res, err := Solve(expr, e.params)
		if err != nil {
			return nil, e.failure(req, expr, err)
		}
		cr := buildCaseResolution(expr, res)
		result.Unified = &cr
		return result, nil
	}

	// Split cases carry no ordering dependency; resolve them in
	// parallel and join before aggregating.
	type caseOutcome struct {
		expr complexity.CostExpression
		res  solver.Resolution
		err  error
	}
	outcomes := make([]caseOutcome, len(req.Expressions))
	var wg sync.WaitGroup
	for i, expr := range req.Expressions {
		wg.Add(1)
		go func(i int, expr complexity.CostExpression) {
			defer wg.Done()
			res, err := Solve(expr, e.params)
			outcomes[i] = caseOutcome{expr: expr, res: res, err: err}
		}(i, expr)
	}
	wg.Wait()

	byCase := make(map[complexity.CaseTag]*complexity.CaseResolution, len(outcomes))
	for _, out := range outcomes {
		if out.err != nil {
			return nil, e.failure(req, out.expr, out.err)
		}
		cr := buildCaseResolution(out.expr, out.res)
		byCase[out.expr.Case] = &cr
	}
	result.Best = byCase[complexity.CaseBest]
	result.Worst = byCase[complexity.CaseWorst]
	result.Average = byCase[complexity.CaseAverage]

	e.reconcile(result)
	return result, nil
}

// validate fails fast on malformed requests before any solving starts.
func (e *Engine) validate(req Request) error {
	if req.AlgorithmName == "" {
		return cxerrors.NewValidationError("", "algorithm name is required")
	}
	switch req.AlgorithmType {
	case complexity.TypeRecursive, complexity.TypeIterative, complexity.TypeHybrid:
	default:
		return cxerrors.NewValidationError(req.AlgorithmName,
			fmt.Sprintf("unknown algorithm type %q", req.AlgorithmType))
	}

	if req.HasDifferentCases {
		if len(req.Expressions) != 3 {
			return cxerrors.NewValidationError(req.AlgorithmName,
				fmt.Sprintf("split-case analysis requires exactly 3 tagged expressions, got %d", len(req.Expressions)))
		}
		seen := map[complexity.CaseTag]bool{}
		for _, expr := range req.Expressions {
			seen[expr.Case] = true
		}
		for _, tag := range []complexity.CaseTag{complexity.CaseBest, complexity.CaseWorst, complexity.CaseAverage} {
			if !seen[tag] {
				return cxerrors.NewValidationError(req.AlgorithmName,
					fmt.Sprintf("case set is incomplete: missing %q", tag))
			}
		}
	} else {
		if len(req.Expressions) != 1 {
			return cxerrors.NewValidationError(req.AlgorithmName,
				fmt.Sprintf("unified analysis requires exactly 1 expression, got %d", len(req.Expressions)))
		}
		if tag := req.Expressions[0].Case; tag != complexity.CaseUnified {
			return cxerrors.NewValidationError(req.AlgorithmName,
				fmt.Sprintf("unified analysis expression is tagged %q", tag))
		}
	}

	for _, expr := range req.Expressions {
		if err := expr.Validate(); err != nil {
			if ce, ok := err.(*cxerrors.Error); ok {
				ce.Algorithm = req.AlgorithmName
				ce.Case = string(expr.Case)
			}
			return err
		}
	}
	return nil
}

// reconcile checks cross-case invariants after a split resolution:
// identical per-case classes collapse back into a unified result (with
// a diagnostic flagging the stale upstream classification), and an
// ordering violation Ω(best) ≤ Θ(average) ≤ O(worst) is reported as a
// diagnostic, never corrected.
func (e *Engine) reconcile(result *complexity.ComplexityResult) {
	best, worst, avg := result.Best, result.Worst, result.Average
	if best == nil || worst == nil || avg == nil {
		return
	}

	if best.Resolution.IsTight && worst.Resolution.IsTight && avg.Resolution.IsTight {
		bt, wt, at := best.Resolution.Theta.Term, worst.Resolution.Theta.Term, avg.Resolution.Theta.Term
		if bt.SameClass(wt) && wt.SameClass(at) {
			unified := *worst
			unified.Case = complexity.CaseUnified
			result.Unified = &unified
			result.Best, result.Worst, result.Average = nil, nil, nil
			result.HasDifferentCases = false
			result.Diagnostics = append(result.Diagnostics,
				"all cases resolved to the same asymptotic class; upstream split classification is stale")
			return
		}
	}

	if symbolic.Compare(best.Resolution.Omega.Term, avg.Resolution.O.Term) > 0 ||
		symbolic.Compare(avg.Resolution.Omega.Term, worst.Resolution.O.Term) > 0 {
		warn := cxerrors.NewInconsistentCases(result.AlgorithmName, fmt.Sprintf(
			"case ordering violated: expected Ω(best) ≤ Θ(average) ≤ O(worst), got %s, %s, %s",
			best.Resolution.Omega.Expression(), avg.Resolution.O.Expression(), worst.Resolution.O.Expression()))
		result.Diagnostics = append(result.Diagnostics, warn.Error())
	}
}

// failure wraps a solver error with the algorithm, case and technique
// that were in progress.
func (e *Engine) failure(req Request, expr complexity.CostExpression, err error) error {
	technique := string(SelectTechnique(expr))
	if ce, ok := err.(*cxerrors.Error); ok {
		if ce.Code == cxerrors.CodeValidationFailed {
			return ce
		}
		if ce.Technique != "" {
			technique = ce.Technique
		}
		return cxerrors.NewResolutionFailure(req.AlgorithmName, string(expr.Case), technique, ce.Message)
	}
	return cxerrors.NewResolutionFailure(req.AlgorithmName, string(expr.Case), technique, err.Error())
}

// buildCaseResolution turns a solver resolution into the bound triplet
// for one case. A tight resolution replicates into O = Ω = Θ; a loose
// one yields O-only and Ω-only bounds with no Θ.
func buildCaseResolution(expr complexity.CostExpression, res solver.Resolution) complexity.CaseResolution {
	o := complexity.Bound{
		Notation: complexity.NotationO,
		Term:     res.Upper,
		IsTight:  res.Tight,
		Method:   res.Method,
		Steps:    res.Steps,
	}
	omega := complexity.Bound{
		Notation: complexity.NotationOmega,
		Term:     res.Lower,
		IsTight:  res.Tight,
		Method:   res.Method,
		Steps:    res.Steps,
	}
	resolved := complexity.ResolvedComplexity{O: o, Omega: omega, IsTight: res.Tight}
	if res.Tight {
		theta := complexity.Bound{
			Notation: complexity.NotationTheta,
			Term:     res.Upper,
			IsTight:  true,
			Method:   res.Method,
			Steps:    res.Steps,
		}
		resolved.Theta = &theta
	}
	return complexity.CaseResolution{
		Case:       expr.Case,
		Equation:   expr.EquationString(),
		Resolution: resolved,
	}
}
