package fuzzy

// Variable is a named scalar domain with a closed set of uniquely labeled
// membership functions. The universe bounds and step are used only to build
// the sampling grid for defuzzification.
type Variable struct {
	name     string
	min, max float64
	step     float64
	labels   []string
	terms    map[string]Membership
}

// DefaultStep is the defuzzification grid step in variable-native units.
const DefaultStep = 0.01

func NewVariable(name string, min, max, step float64) (*Variable, error) {
	if name == "" {
		return nil, configErrorf("variable name must not be empty")
	}
	if min >= max {
		return nil, configErrorf("variable %q: universe bounds inverted: [%v, %v]", name, min, max)
	}
	if step <= 0 {
		return nil, configErrorf("variable %q: step must be positive: %v", name, step)
	}
	return &Variable{
		name:  name,
		min:   min,
		max:   max,
		step:  step,
		terms: make(map[string]Membership),
	}, nil
}

func (v *Variable) AddTerm(label string, m Membership) error {
	if label == "" {
		return configErrorf("variable %q: label must not be empty", v.name)
	}
	if _, ok := v.terms[label]; ok {
		return configErrorf("variable %q: duplicate label %q", v.name, label)
	}
	v.labels = append(v.labels, label)
	v.terms[label] = m
	return nil
}

func (v *Variable) Name() string { return v.name }

func (v *Variable) Bounds() (min, max float64) { return v.min, v.max }

// Labels returns the declared labels in insertion order.
func (v *Variable) Labels() []string {
	ls := make([]string, len(v.labels))
	copy(ls, v.labels)
	return ls
}

func (v *Variable) Term(label string) (Membership, bool) {
	m, ok := v.terms[label]
	return m, ok
}

// Fuzzify evaluates every labeled membership function at x.
func (v *Variable) Fuzzify(x float64) map[string]float64 {
	ds := make(map[string]float64, len(v.labels))
	for _, l := range v.labels {
		ds[l] = v.terms[l].Degree(x)
	}
	return ds
}

// Grid samples the universe at the variable's step, inclusive of both
// bounds.
func (v *Variable) Grid() []float64 {
	n := int((v.max-v.min)/v.step + 1e-9)
	g := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		g = append(g, v.min+float64(i)*v.step)
	}
	return g
}
