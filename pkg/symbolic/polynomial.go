package symbolic

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxSummableDegree bounds the Faulhaber formulas carried below. Loop
// nesting of depth d produces a polynomial of degree d, so degree 3
// covers quadruply nested loops.
const maxSummableDegree = 3

// Polynomial is a dense univariate polynomial with exact decimal
// coefficients. Coeffs[i] is the coefficient of x^i. The zero value is
// the zero polynomial.
type Polynomial struct {
	Coeffs []decimal.Decimal
}

// NewPolynomial builds a polynomial from coefficients in ascending
// order of degree.
func NewPolynomial(coeffs ...decimal.Decimal) Polynomial {
	p := Polynomial{Coeffs: coeffs}
	return p.trim()
}

// ConstantPoly returns the degree-zero polynomial c.
func ConstantPoly(c decimal.Decimal) Polynomial {
	return NewPolynomial(c)
}

// Degree returns the polynomial degree; the zero polynomial has degree 0.
func (p Polynomial) Degree() int {
	p = p.trim()
	if len(p.Coeffs) == 0 {
		return 0
	}
	return len(p.Coeffs) - 1
}

// Leading returns the coefficient of the highest-degree monomial.
func (p Polynomial) Leading() decimal.Decimal {
	p = p.trim()
	if len(p.Coeffs) == 0 {
		return decimal.Zero
	}
	return p.Coeffs[len(p.Coeffs)-1]
}

// IsZero reports whether every coefficient is zero.
func (p Polynomial) IsZero() bool {
	return len(p.trim().Coeffs) == 0
}

// Add returns p + q.
func (p Polynomial) Add(q Polynomial) Polynomial {
	n := len(p.Coeffs)
	if len(q.Coeffs) > n {
		n = len(q.Coeffs)
	}
	out := make([]decimal.Decimal, n)
	for i := range out {
		c := decimal.Zero
		if i < len(p.Coeffs) {
			c = c.Add(p.Coeffs[i])
		}
		if i < len(q.Coeffs) {
			c = c.Add(q.Coeffs[i])
		}
		out[i] = c
	}
	return NewPolynomial(out...)
}

// Mul returns p · q.
func (p Polynomial) Mul(q Polynomial) Polynomial {
	if p.IsZero() || q.IsZero() {
		return Polynomial{}
	}
	out := make([]decimal.Decimal, len(p.Coeffs)+len(q.Coeffs)-1)
	for i := range out {
		out[i] = decimal.Zero
	}
	for i, a := range p.Coeffs {
		for j, b := range q.Coeffs {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return NewPolynomial(out...)
}

// Scale returns c · p.
func (p Polynomial) Scale(c decimal.Decimal) Polynomial {
	out := make([]decimal.Decimal, len(p.Coeffs))
	for i, a := range p.Coeffs {
		out[i] = a.Mul(c)
	}
	return NewPolynomial(out...)
}

// Eval evaluates the polynomial at x.
func (p Polynomial) Eval(x decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		sum = sum.Mul(x).Add(p.Coeffs[i])
	}
	return sum
}

// SumTo computes Σ_{i=1}^{U} p(i) as a closed-form polynomial in U,
// using the Faulhaber formulas for power sums up to degree 3.
func (p Polynomial) SumTo() (Polynomial, error) {
	p = p.trim()
	if p.Degree() > maxSummableDegree {
		return Polynomial{}, fmt.Errorf("no closed-form power sum for degree %d (max %d)", p.Degree(), maxSummableDegree)
	}
	total := Polynomial{}
	for k, c := range p.Coeffs {
		ps, err := PowerSum(k)
		if err != nil {
			return Polynomial{}, err
		}
		total = total.Add(ps.Scale(c))
	}
	return total, nil
}

// Compose substitutes x = scale·y + offset, returning a polynomial in y.
func (p Polynomial) Compose(scale, offset decimal.Decimal) Polynomial {
	arg := NewPolynomial(offset, scale)
	total := Polynomial{}
	pow := ConstantPoly(decimal.NewFromInt(1))
	for _, c := range p.Coeffs {
		total = total.Add(pow.Scale(c))
		pow = pow.Mul(arg)
	}
	return total
}

// String renders the polynomial highest degree first, e.g. "0.5·n^2 + 0.5·n".
func (p Polynomial) String() string {
	p = p.trim()
	if len(p.Coeffs) == 0 {
		return "0"
	}
	var parts []string
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		c := p.Coeffs[i]
		if c.IsZero() {
			continue
		}
		switch i {
		case 0:
			parts = append(parts, c.String())
		case 1:
			parts = append(parts, c.String()+"·n")
		default:
			parts = append(parts, fmt.Sprintf("%s·n^%d", c.String(), i))
		}
	}
	return strings.Join(parts, " + ")
}

// PowerSum returns Σ_{i=1}^{U} i^k as a closed-form polynomial in U.
// Only k <= 3 is supported, which covers loop nesting up to depth four.
func PowerSum(k int) (Polynomial, error) {
	one := decimal.NewFromInt(1)
	half := decimal.NewFromFloat(0.5)
	switch k {
	case 0:
		// Σ 1 = U
		return NewPolynomial(decimal.Zero, one), nil
	case 1:
		// Σ i = U²/2 + U/2
		return NewPolynomial(decimal.Zero, half, half), nil
	case 2:
		// Σ i² = U³/3 + U²/2 + U/6
		sixth := one.Div(decimal.NewFromInt(6))
		third := one.Div(decimal.NewFromInt(3))
		return NewPolynomial(decimal.Zero, sixth, half, third), nil
	case 3:
		// Σ i³ = U⁴/4 + U³/2 + U²/4
		quarter := decimal.NewFromFloat(0.25)
		return NewPolynomial(decimal.Zero, decimal.Zero, quarter, half, quarter), nil
	default:
		return Polynomial{}, fmt.Errorf("no closed-form power sum for exponent %d", k)
	}
}

func (p Polynomial) trim() Polynomial {
	n := len(p.Coeffs)
	for n > 0 && p.Coeffs[n-1].IsZero() {
		n--
	}
	return Polynomial{Coeffs: p.Coeffs[:n]}
}
