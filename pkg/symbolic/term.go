// Package symbolic models the asymptotic growth terms and exact polynomials
// that the complexity solvers reason over. A Term captures the shape of a
// growth class (polynomial degree, logarithmic factor, exponential base);
// a Polynomial carries exact coefficients for closed-form summation.
package symbolic

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// degreeTolerance absorbs float noise when deciding whether an exponent
// is an integer for rendering purposes.
const degreeTolerance = 1e-9

// Term represents a single asymptotic growth class of the form
// coeff · base^n · n^degree · log(n)^logExp.
type Term struct {
	// Coeff is the leading constant. It never affects the asymptotic
	// class; it is carried so summation traces can report exact
	// closed-form constants (e.g. 1/2 for triangular loops).
	Coeff decimal.Decimal `json:"coeff"`

	// Degree is the exponent of n. Non-integer degrees arise from
	// critical exponents such as log_2(3).
	Degree float64 `json:"degree"`

	// LogExp is the exponent of the log(n) factor, always >= 0.
	LogExp int `json:"log_exp"`

	// ExpBase is the base of an exponential factor. Values <= 1 mean
	// no exponential factor is present.
	ExpBase float64 `json:"exp_base"`
}

// Constant returns the O(1) term.
func Constant() Term {
	return Term{Coeff: decimal.NewFromInt(1)}
}

// Linear returns the O(n) term.
func Linear() Term {
	return Poly(1)
}

// Log returns the O(log n) term.
func Log() Term {
	return Term{Coeff: decimal.NewFromInt(1), LogExp: 1}
}

// Poly returns the O(n^degree) term.
func Poly(degree float64) Term {
	return Term{Coeff: decimal.NewFromInt(1), Degree: degree}
}

// PolyLog returns the O(n^degree · log(n)^logExp) term.
func PolyLog(degree float64, logExp int) Term {
	return Term{Coeff: decimal.NewFromInt(1), Degree: degree, LogExp: logExp}
}

// Exponential returns the O(base^n) term.
func Exponential(base float64) Term {
	return Term{Coeff: decimal.NewFromInt(1), ExpBase: base}
}

// IsConstant reports whether the term is O(1).
func (t Term) IsConstant() bool {
	return !t.IsExponential() && t.Degree < degreeTolerance && t.LogExp == 0
}

// IsExponential reports whether the term carries an exponential factor.
func (t Term) IsExponential() bool {
	return t.ExpBase > 1
}

// WithCoeff returns a copy of the term with the given leading constant.
func (t Term) WithCoeff(c decimal.Decimal) Term {
	t.Coeff = c
	return t
}

// Compare orders two terms under the fixed asymptotic order:
// exponential base first, then polynomial degree, then log exponent.
// It returns -1 if a grows strictly slower than b, 0 if they belong to
// the same class and +1 if a grows strictly faster.
func Compare(a, b Term) int {
	ab, bb := math.Max(a.ExpBase, 1), math.Max(b.ExpBase, 1)
	if diff := ab - bb; math.Abs(diff) > degreeTolerance {
		if diff < 0 {
			return -1
		}
		return 1
	}
	if diff := a.Degree - b.Degree; math.Abs(diff) > degreeTolerance {
		if diff < 0 {
			return -1
		}
		return 1
	}
	if a.LogExp != b.LogExp {
		if a.LogExp < b.LogExp {
			return -1
		}
		return 1
	}
	return 0
}

// SameClass reports whether two terms denote the same asymptotic class.
func (t Term) SameClass(o Term) bool {
	return Compare(t, o) == 0
}

// Class renders the canonical growth class without the leading constant,
// e.g. "1", "log n", "n", "n log n", "n^1.58", "n^2 log^2 n", "2^n".
func (t Term) Class() string {
	if t.IsExponential() {
		base := formatExponent(t.ExpBase)
		if t.Degree > degreeTolerance {
			return fmt.Sprintf("%s·%s^n", polyPart(t.Degree, t.LogExp), base)
		}
		return base + "^n"
	}
	return polyPart(t.Degree, t.LogExp)
}

// String renders the class; the coefficient is intentionally omitted
// because asymptotic notation discards it.
func (t Term) String() string {
	return t.Class()
}

func polyPart(degree float64, logExp int) string {
	var parts []string
	switch {
	case degree < degreeTolerance:
		// no polynomial factor
	case math.Abs(degree-1) < degreeTolerance:
		parts = append(parts, "n")
	default:
		parts = append(parts, "n^"+formatExponent(degree))
	}
	switch {
	case logExp == 1:
		parts = append(parts, "log n")
	case logExp > 1:
		parts = append(parts, fmt.Sprintf("log^%d n", logExp))
	}
	if len(parts) == 0 {
		return "1"
	}
	return strings.Join(parts, " ")
}

func formatExponent(v float64) string {
	if math.Abs(v-math.Round(v)) < degreeTolerance {
		return strconv.FormatInt(int64(math.Round(v)), 10)
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
