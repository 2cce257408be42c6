package fuzzy

// Fuzzified maps input variable names to their label-degree mappings for
// one inference run.
type Fuzzified map[string]map[string]float64

// Expr is a fuzzy antecedent: a tree of variable-label terms combined by
// fuzzy AND (min) and OR (max). Trees are built by explicit nesting; there
// is no operator precedence to infer.
type Expr interface {
	eval(f Fuzzified) (float64, error)
}

type termExpr struct {
	variable string
	label    string
}

type andExpr struct {
	left, right Expr
}

type orExpr struct {
	left, right Expr
}

func Term(variable, label string) Expr {
	return termExpr{variable: variable, label: label}
}

func And(left, right Expr) Expr {
	return andExpr{left: left, right: right}
}

func Or(left, right Expr) Expr {
	return orExpr{left: left, right: right}
}

// Evaluate computes the firing degree of e against fuzzified inputs.
func Evaluate(e Expr, f Fuzzified) (float64, error) {
	return e.eval(f)
}

func (e termExpr) eval(f Fuzzified) (float64, error) {
	ds, ok := f[e.variable]
	if !ok {
		return 0, configErrorf("term references unknown variable %q", e.variable)
	}
	d, ok := ds[e.label]
	if !ok {
		return 0, configErrorf("term references unknown label %q of variable %q", e.label, e.variable)
	}
	return d, nil
}

func (e andExpr) eval(f Fuzzified) (float64, error) {
	l, err := e.left.eval(f)
	if err != nil {
		return 0, err
	}
	r, err := e.right.eval(f)
	if err != nil {
		return 0, err
	}
	if r < l {
		return r, nil
	}
	return l, nil
}

func (e orExpr) eval(f Fuzzified) (float64, error) {
	l, err := e.left.eval(f)
	if err != nil {
		return 0, err
	}
	r, err := e.right.eval(f)
	if err != nil {
		return 0, err
	}
	if r > l {
		return r, nil
	}
	return l, nil
}

func walkTerms(e Expr, visit func(variable, label string)) {
	switch x := e.(type) {
	case termExpr:
		visit(x.variable, x.label)
	case andExpr:
		walkTerms(x.left, visit)
		walkTerms(x.right, visit)
	case orExpr:
		walkTerms(x.left, visit)
		walkTerms(x.right, visit)
	default:
		panic("unexpected expression type")
	}
}
