package fuzzy

// Consequent assigns a label of an output variable, scaled by a weight in
// (0, 1].
type Consequent struct {
	Variable string
	Label    string
	Weight   float64
}

// Then builds a consequent with the default weight of 1.
func Then(variable, label string) Consequent {
	return Consequent{Variable: variable, Label: label, Weight: 1.0}
}

func ThenWeighted(variable, label string, weight float64) Consequent {
	return Consequent{Variable: variable, Label: label, Weight: weight}
}

// Rule pairs an antecedent expression with one or more consequents.
type Rule struct {
	Antecedent  Expr
	Consequents []Consequent
}

func NewRule(antecedent Expr, consequents ...Consequent) Rule {
	return Rule{Antecedent: antecedent, Consequents: consequents}
}
