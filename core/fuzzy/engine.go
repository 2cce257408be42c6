package fuzzy

// RuleSet declares the input and output variables of an inference system
// together with an ordered list of rules. It is validated on construction
// and immutable thereafter; rule order is irrelevant to the math but fixed
// for determinism.
type RuleSet struct {
	inputs  []*Variable
	outputs []*Variable
	rules   []Rule
}

func NewRuleSet(inputs, outputs []*Variable, rules []Rule) (*RuleSet, error) {
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, configErrorf("rule set must declare at least one input and one output variable")
	}
	if len(rules) == 0 {
		return nil, configErrorf("rule set must contain at least one rule")
	}
	names := make(map[string]struct{}, len(inputs)+len(outputs))
	for _, v := range append(append([]*Variable{}, inputs...), outputs...) {
		if _, ok := names[v.Name()]; ok {
			return nil, configErrorf("duplicate variable name %q", v.Name())
		}
		names[v.Name()] = struct{}{}
	}

	ins := make(map[string]*Variable, len(inputs))
	for _, v := range inputs {
		ins[v.Name()] = v
	}
	outs := make(map[string]*Variable, len(outputs))
	for _, v := range outputs {
		outs[v.Name()] = v
	}

	for i, r := range rules {
		if r.Antecedent == nil {
			return nil, configErrorf("rule %d: missing antecedent", i)
		}
		var err error
		walkTerms(r.Antecedent, func(variable, label string) {
			if err != nil {
				return
			}
			v, ok := ins[variable]
			if !ok {
				err = configErrorf("rule %d: term references undeclared input variable %q", i, variable)
				return
			}
			if _, ok := v.Term(label); !ok {
				err = configErrorf("rule %d: term references unknown label %q of variable %q", i, label, variable)
			}
		})
		if err != nil {
			return nil, err
		}
		if len(r.Consequents) == 0 {
			return nil, configErrorf("rule %d: missing consequents", i)
		}
		for _, c := range r.Consequents {
			v, ok := outs[c.Variable]
			if !ok {
				return nil, configErrorf("rule %d: consequent references undeclared output variable %q", i, c.Variable)
			}
			if _, ok := v.Term(c.Label); !ok {
				return nil, configErrorf("rule %d: consequent references unknown label %q of variable %q", i, c.Label, c.Variable)
			}
			if c.Weight <= 0 || c.Weight > 1 {
				return nil, configErrorf("rule %d: consequent weight out of range: %v", i, c.Weight)
			}
		}
	}

	return &RuleSet{
		inputs:  append([]*Variable{}, inputs...),
		outputs: append([]*Variable{}, outputs...),
		rules:   append([]Rule{}, rules...),
	}, nil
}

// Result holds the crisp outputs of one inference run. Unresolved lists
// output variables for which no rule fired; their output is 0.
type Result struct {
	Outputs    map[string]float64
	Unresolved []string
}

// Engine runs a rule set against crisp inputs. It precomputes the sampling
// grid per output variable; all per-run state is freshly allocated, so an
// Engine is safe for concurrent use.
type Engine struct {
	rs    *RuleSet
	grids map[string][]float64
}

func NewEngine(rs *RuleSet) *Engine {
	grids := make(map[string][]float64, len(rs.outputs))
	for _, v := range rs.outputs {
		grids[v.Name()] = v.Grid()
	}
	return &Engine{rs: rs, grids: grids}
}

// Infer runs the Mamdani pipeline: fuzzification, firing strength,
// clipped implication, max aggregation, centroid defuzzification.
// A missing crisp input is a ConfigError.
func (e *Engine) Infer(crisp map[string]float64) (Result, error) {
	f := make(Fuzzified, len(e.rs.inputs))
	for _, v := range e.rs.inputs {
		x, ok := crisp[v.Name()]
		if !ok {
			return Result{}, configErrorf("missing crisp input for variable %q", v.Name())
		}
		f[v.Name()] = v.Fuzzify(x)
	}

	firing := make([]float64, len(e.rs.rules))
	for i, r := range e.rs.rules {
		s, err := Evaluate(r.Antecedent, f)
		if err != nil {
			return Result{}, err
		}
		firing[i] = s
	}

	res := Result{Outputs: make(map[string]float64, len(e.rs.outputs))}
	for _, out := range e.rs.outputs {
		grid := e.grids[out.Name()]
		agg := make([]float64, len(grid))
		for i, r := range e.rs.rules {
			s := firing[i]
			if s <= 0 {
				continue
			}
			for _, c := range r.Consequents {
				if c.Variable != out.Name() {
					continue
				}
				m, _ := out.Term(c.Label)
				clip := s * c.Weight
				if clip > 1 {
					clip = 1
				}
				for j, x := range grid {
					d := m.Degree(x)
					if d > clip {
						d = clip
					}
					if d > agg[j] {
						agg[j] = d
					}
				}
			}
		}
		var num, den float64
		for j, x := range grid {
			num += x * agg[j]
			den += agg[j]
		}
		if den == 0 {
			res.Outputs[out.Name()] = 0.0
			res.Unresolved = append(res.Unresolved, out.Name())
		} else {
			res.Outputs[out.Name()] = num / den
		}
	}
	return res, nil
}
