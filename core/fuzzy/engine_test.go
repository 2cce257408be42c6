package fuzzy_test

import (
	"errors"
	"math"
	"testing"

	"example.com/robotino-nav/core/fuzzy"
)

func testInput(t *testing.T) *fuzzy.Variable {
	t.Helper()
	x, err := fuzzy.NewVariable("x", -1, 1, 0.01)
	if err != nil {
		t.Fatalf("NewVariable: %v", err)
	}
	if err := x.AddTerm("low", mustTrapezoidal(t, -1, -1, -0.2, 0)); err != nil {
		t.Fatalf("AddTerm: %v", err)
	}
	if err := x.AddTerm("high", mustTrapezoidal(t, 0, 0.2, 1, 1)); err != nil {
		t.Fatalf("AddTerm: %v", err)
	}
	return x
}

func testOutput(t *testing.T) *fuzzy.Variable {
	t.Helper()
	v, err := fuzzy.NewVariable("v", -0.3, 0.3, 0.01)
	if err != nil {
		t.Fatalf("NewVariable: %v", err)
	}
	if err := v.AddTerm("stop", mustTriangular(t, -0.025, 0, 0.025)); err != nil {
		t.Fatalf("AddTerm: %v", err)
	}
	if err := v.AddTerm("forward", mustTrapezoidal(t, 0.2, 0.22, 0.3, 0.3)); err != nil {
		t.Fatalf("AddTerm: %v", err)
	}
	return v
}

func testEngine(t *testing.T, weight float64) *fuzzy.Engine {
	t.Helper()
	x := testInput(t)
	v := testOutput(t)
	rs, err := fuzzy.NewRuleSet(
		[]*fuzzy.Variable{x},
		[]*fuzzy.Variable{v},
		[]fuzzy.Rule{
			fuzzy.NewRule(fuzzy.Term("x", "low"), fuzzy.Then("v", "stop")),
			fuzzy.NewRule(fuzzy.Term("x", "high"), fuzzy.ThenWeighted("v", "forward", weight)),
		},
	)
	if err != nil {
		t.Fatalf("NewRuleSet: %v", err)
	}
	return fuzzy.NewEngine(rs)
}

func TestInferCentroid(t *testing.T) {
	e := testEngine(t, 1.0)

	res, err := e.Infer(map[string]float64{"x": -1})
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("Unresolved = %v, want none", res.Unresolved)
	}
	// The stop triangle is symmetric around 0 on a symmetric grid.
	if got := res.Outputs["v"]; math.Abs(got) > 1e-9 {
		t.Errorf("Outputs[v] = %v, want 0", got)
	}

	res, err = e.Infer(map[string]float64{"x": 1})
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	want := 2.445 / 9.5
	if got := res.Outputs["v"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("Outputs[v] = %v, want %v", got, want)
	}
}

func TestInferWeightedConsequent(t *testing.T) {
	e := testEngine(t, 0.5)

	res, err := e.Infer(map[string]float64{"x": 1})
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	// Implication clips the forward trapezoid at 0.5.
	want := 0.255
	if got := res.Outputs["v"]; math.Abs(got-want) > 1e-9 {
		t.Errorf("Outputs[v] = %v, want %v", got, want)
	}
}

func TestInferNoRuleFired(t *testing.T) {
	e := testEngine(t, 1.0)

	// Both memberships are 0 at x = 0.
	res, err := e.Infer(map[string]float64{"x": 0})
	if err != nil {
		t.Fatalf("Infer: %v", err)
	}
	if got := res.Outputs["v"]; got != 0.0 {
		t.Errorf("Outputs[v] = %v, want exactly 0", got)
	}
	if len(res.Unresolved) != 1 || res.Unresolved[0] != "v" {
		t.Errorf("Unresolved = %v, want [v]", res.Unresolved)
	}
}

func TestInferOutputWithinBounds(t *testing.T) {
	e := testEngine(t, 1.0)

	for x := -1.0; x <= 1.0; x += 0.05 {
		res, err := e.Infer(map[string]float64{"x": x})
		if err != nil {
			t.Fatalf("Infer(%v): %v", x, err)
		}
		if v := res.Outputs["v"]; v < -0.3 || v > 0.3 {
			t.Fatalf("Outputs[v] = %v at x = %v, out of universe bounds", v, x)
		}
	}
}

func TestInferMissingInput(t *testing.T) {
	e := testEngine(t, 1.0)

	_, err := e.Infer(map[string]float64{})
	if err == nil {
		t.Fatalf("Infer with missing input: expected error, got none")
	}
	var cfgErr *fuzzy.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Infer error = %T, want *fuzzy.ConfigError", err)
	}
}

func TestNewRuleSetValidation(t *testing.T) {
	tests := []struct {
		name string
		rule fuzzy.Rule
	}{
		{
			name: "Undeclared input variable",
			rule: fuzzy.NewRule(fuzzy.Term("y", "low"), fuzzy.Then("v", "stop")),
		},
		{
			name: "Unknown input label",
			rule: fuzzy.NewRule(fuzzy.Term("x", "medium"), fuzzy.Then("v", "stop")),
		},
		{
			name: "Undeclared output variable",
			rule: fuzzy.NewRule(fuzzy.Term("x", "low"), fuzzy.Then("w", "stop")),
		},
		{
			name: "Unknown output label",
			rule: fuzzy.NewRule(fuzzy.Term("x", "low"), fuzzy.Then("v", "reverse")),
		},
		{
			name: "Weight out of range",
			rule: fuzzy.NewRule(fuzzy.Term("x", "low"), fuzzy.ThenWeighted("v", "stop", 1.5)),
		},
		{
			name: "Zero weight",
			rule: fuzzy.NewRule(fuzzy.Term("x", "low"), fuzzy.ThenWeighted("v", "stop", 0)),
		},
		{
			name: "Missing antecedent",
			rule: fuzzy.NewRule(nil, fuzzy.Then("v", "stop")),
		},
		{
			name: "Missing consequents",
			rule: fuzzy.NewRule(fuzzy.Term("x", "low")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := testInput(t)
			v := testOutput(t)
			_, err := fuzzy.NewRuleSet(
				[]*fuzzy.Variable{x},
				[]*fuzzy.Variable{v},
				[]fuzzy.Rule{tt.rule},
			)
			if err == nil {
				t.Fatalf("NewRuleSet: expected error, got none")
			}
			var cfgErr *fuzzy.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("NewRuleSet error = %T, want *fuzzy.ConfigError", err)
			}
		})
	}
}

func TestNewRuleSetDuplicateVariable(t *testing.T) {
	x := testInput(t)
	v := testOutput(t)
	x2 := testInput(t)
	_, err := fuzzy.NewRuleSet(
		[]*fuzzy.Variable{x, x2},
		[]*fuzzy.Variable{v},
		[]fuzzy.Rule{fuzzy.NewRule(fuzzy.Term("x", "low"), fuzzy.Then("v", "stop"))},
	)
	if err == nil {
		t.Fatalf("NewRuleSet with duplicate variable name: expected error, got none")
	}
}
