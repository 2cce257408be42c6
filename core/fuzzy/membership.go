// Package fuzzy implements a Mamdani-style fuzzy inference engine:
// piecewise linear membership functions, labeled variables over a bounded
// universe, explicit antecedent expression trees, and weighted rules.
// Inference runs fuzzification, rule firing, clipped implication, max
// aggregation, and centroid defuzzification over a sampled grid.
package fuzzy

// Membership is a piecewise linear membership function. Triangular shapes
// are stored as trapezoids with a collapsed plateau. Degenerate edges
// (equal adjacent points) act as steps.
type Membership struct {
	a, b, c, d float64
}

func Triangular(p1, p2, p3 float64) (Membership, error) {
	if p1 > p2 || p2 > p3 {
		return Membership{}, configErrorf("triangular points must be non-decreasing: %v, %v, %v", p1, p2, p3)
	}
	return Membership{a: p1, b: p2, c: p2, d: p3}, nil
}

func Trapezoidal(p1, p2, p3, p4 float64) (Membership, error) {
	if p1 > p2 || p2 > p3 || p3 > p4 {
		return Membership{}, configErrorf("trapezoidal points must be non-decreasing: %v, %v, %v, %v", p1, p2, p3, p4)
	}
	return Membership{a: p1, b: p2, c: p3, d: p4}, nil
}

// Degree evaluates the membership of x, always in [0, 1] and 0 outside
// [a, d].
func (m Membership) Degree(x float64) float64 {
	switch {
	case x < m.a || x > m.d:
		return 0.0
	case x < m.b:
		if m.a == m.b {
			return 1.0
		}
		return (x - m.a) / (m.b - m.a)
	case x <= m.c:
		return 1.0
	default:
		if m.c == m.d {
			return 1.0
		}
		return (m.d - x) / (m.d - m.c)
	}
}
