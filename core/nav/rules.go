package nav

import (
	"example.com/robotino-nav/core/fuzzy"
)

const (
	varPositionX = "position_x"
	varPositionY = "position_y"
	varVelocityX = "velocity_x"
	varVelocityY = "velocity_y"
)

// NumSensors is the number of logical proximity sensors consumed per cycle.
const NumSensors = 7

// Sensor indices in the logical order delivered by the transport.
const (
	SensorLeftFront = iota
	SensorLeftRear
	SensorFront
	SensorRightFront
	SensorRightRear
	SensorBackLeft
	SensorBackRight
)

var sensorNames = [NumSensors]string{
	"left_front",
	"left_rear",
	"front",
	"right_front",
	"right_rear",
	"back_left",
	"back_right",
}

// ruleBaseBuilder threads the first construction error through a sequence
// of variable and term definitions.
type ruleBaseBuilder struct {
	step float64
	err  error
}

func (b *ruleBaseBuilder) variable(name string, min, max float64) *fuzzy.Variable {
	if b.err != nil {
		return nil
	}
	v, err := fuzzy.NewVariable(name, min, max, b.step)
	if err != nil {
		b.err = err
	}
	return v
}

func (b *ruleBaseBuilder) tri(v *fuzzy.Variable, label string, p1, p2, p3 float64) {
	if b.err != nil {
		return
	}
	m, err := fuzzy.Triangular(p1, p2, p3)
	if err != nil {
		b.err = err
		return
	}
	b.err = v.AddTerm(label, m)
}

func (b *ruleBaseBuilder) trap(v *fuzzy.Variable, label string, p1, p2, p3, p4 float64) {
	if b.err != nil {
		return
	}
	m, err := fuzzy.Trapezoidal(p1, p2, p3, p4)
	if err != nil {
		b.err = err
		return
	}
	b.err = v.AddTerm(label, m)
}

func (b *ruleBaseBuilder) positionX() *fuzzy.Variable {
	v := b.variable(varPositionX, -2, 2)
	b.trap(v, "far_back", -2, -1.5, -0.25, -0.20)
	b.trap(v, "near_back", -0.25, -0.2, -0.04, 0)
	b.tri(v, "center", -0.04, 0, 0.04)
	b.trap(v, "near_front", 0, 0.04, 0.2, 0.25)
	b.trap(v, "far_front", 0.20, 0.25, 1.5, 2)
	return v
}

func (b *ruleBaseBuilder) positionY() *fuzzy.Variable {
	v := b.variable(varPositionY, -2, 2)
	b.trap(v, "far_right", -2, -1.5, -0.25, -0.20)
	b.trap(v, "near_right", -0.25, -0.2, -0.04, 0)
	b.tri(v, "center", -0.04, 0, 0.04)
	b.trap(v, "near_left", 0, 0.04, 0.2, 0.25)
	b.trap(v, "far_left", 0.20, 0.25, 1.5, 2)
	return v
}

// velocity defines the seven-band velocity variable. The y axis maps the
// negative direction to "right" and the positive direction to "left".
func (b *ruleBaseBuilder) velocity(name, negDir, posDir string) *fuzzy.Variable {
	v := b.variable(name, -0.3, 0.3)
	b.trap(v, negDir+"_fast", -0.3, -0.3, -0.22, -0.2)
	b.trap(v, negDir+"_med", -0.22, -0.2, -0.12, -0.1)
	b.trap(v, negDir+"_slow", -0.12, -0.1, -0.025, 0)
	b.tri(v, "stop", -0.025, 0, 0.025)
	b.trap(v, posDir+"_slow", 0, 0.025, 0.1, 0.12)
	b.trap(v, posDir+"_med", 0.10, 0.12, 0.20, 0.22)
	b.trap(v, posDir+"_fast", 0.20, 0.22, 0.30, 0.30)
	return v
}

func (b *ruleBaseBuilder) sensor(name string, limit float64) *fuzzy.Variable {
	v := b.variable(name, 0, limit)
	b.trap(v, "dangerous", 0, 0, 0.20, 0.25)
	b.trap(v, "safe", 0.20, 0.25, limit, limit)
	return v
}

func newGoalRuleSet(step float64) (*fuzzy.RuleSet, error) {
	b := &ruleBaseBuilder{step: step}
	px := b.positionX()
	py := b.positionY()
	vx := b.velocity(varVelocityX, "backward", "forward")
	vy := b.velocity(varVelocityY, "right", "left")
	if b.err != nil {
		return nil, b.err
	}

	x := func(label string) fuzzy.Expr { return fuzzy.Term(varPositionX, label) }
	y := func(label string) fuzzy.Expr { return fuzzy.Term(varPositionY, label) }

	rules := []fuzzy.Rule{
		fuzzy.NewRule(x("far_back"), fuzzy.Then(varVelocityX, "backward_fast")),
		fuzzy.NewRule(x("near_back"), fuzzy.Then(varVelocityX, "backward_slow")),
		fuzzy.NewRule(x("center"), fuzzy.Then(varVelocityX, "stop")),
		fuzzy.NewRule(x("near_front"), fuzzy.Then(varVelocityX, "forward_slow")),
		fuzzy.NewRule(x("far_front"), fuzzy.Then(varVelocityX, "forward_fast")),

		fuzzy.NewRule(y("far_right"), fuzzy.Then(varVelocityY, "right_fast")),
		fuzzy.NewRule(y("near_right"), fuzzy.Then(varVelocityY, "right_slow")),
		fuzzy.NewRule(y("center"), fuzzy.Then(varVelocityY, "stop")),
		fuzzy.NewRule(y("near_left"), fuzzy.Then(varVelocityY, "left_slow")),
		fuzzy.NewRule(y("far_left"), fuzzy.Then(varVelocityY, "left_fast")),
	}

	return fuzzy.NewRuleSet(
		[]*fuzzy.Variable{px, py},
		[]*fuzzy.Variable{vx, vy},
		rules,
	)
}

// newObstacleRuleSet builds the avoidance rule base. The antecedent
// groupings are deliberate: chains of AND terms bind together before the
// trailing OR, mirroring the controller this rule base was lifted from.
func newObstacleRuleSet(step, limit float64) (*fuzzy.RuleSet, error) {
	b := &ruleBaseBuilder{step: step}
	sensors := make([]*fuzzy.Variable, NumSensors)
	for i, name := range sensorNames {
		sensors[i] = b.sensor(name, limit)
	}
	py := b.positionY()
	vx := b.velocity(varVelocityX, "backward", "forward")
	vy := b.velocity(varVelocityY, "right", "left")
	if b.err != nil {
		return nil, b.err
	}

	dang := func(i int) fuzzy.Expr { return fuzzy.Term(sensorNames[i], "dangerous") }
	safe := func(i int) fuzzy.Expr { return fuzzy.Term(sensorNames[i], "safe") }
	y := func(label string) fuzzy.Expr { return fuzzy.Term(varPositionY, label) }
	out := func(xLabel, yLabel string) []fuzzy.Consequent {
		return []fuzzy.Consequent{
			fuzzy.Then(varVelocityX, xLabel),
			fuzzy.Then(varVelocityY, yLabel),
		}
	}

	rules := []fuzzy.Rule{
		// Front obstacles.
		// Single central obstacle, escape to the left.
		fuzzy.NewRule(
			fuzzy.Or(
				fuzzy.And(
					fuzzy.And(
						fuzzy.And(safe(SensorLeftFront), dang(SensorFront)),
						safe(SensorRightFront)),
					y("far_left")),
				y("near_left")),
			out("backward_med", "left_med")...),
		// Single central obstacle, escape to the right.
		fuzzy.NewRule(
			fuzzy.Or(
				fuzzy.And(
					fuzzy.And(
						fuzzy.And(safe(SensorLeftFront), dang(SensorFront)),
						safe(SensorRightFront)),
					y("far_right")),
				y("near_right")),
			out("backward_med", "right_med")...),
		// Front plus front-left.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(dang(SensorLeftFront), dang(SensorFront)),
				safe(SensorRightFront)),
			out("backward_med", "right_med")...),
		// Front plus front-right.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(safe(SensorLeftFront), dang(SensorFront)),
				dang(SensorRightFront)),
			out("backward_med", "left_med")...),
		// Full frontal block, escape to the left.
		fuzzy.NewRule(
			fuzzy.Or(
				fuzzy.And(
					fuzzy.And(
						fuzzy.And(dang(SensorLeftFront), dang(SensorFront)),
						dang(SensorRightFront)),
					y("far_left")),
				y("near_left")),
			out("backward_fast", "left_med")...),
		// Full frontal block, escape to the right.
		fuzzy.NewRule(
			fuzzy.Or(
				fuzzy.And(
					fuzzy.And(
						fuzzy.And(dang(SensorLeftFront), dang(SensorFront)),
						dang(SensorRightFront)),
					y("far_right")),
				y("near_right")),
			out("backward_fast", "right_med")...),

		// Left-side obstacles.
		// Triple block on the left.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(dang(SensorFront), dang(SensorLeftFront)),
				dang(SensorLeftRear)),
			out("stop", "right_fast")...),
		// Double block on the left.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(safe(SensorFront), dang(SensorLeftFront)),
				dang(SensorLeftRear)),
			out("forward_med", "right_med")...),
		// Single front-left.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(safe(SensorFront), dang(SensorLeftFront)),
				safe(SensorLeftRear)),
			out("forward_med", "right_med")...),
		// Single rear-left.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(safe(SensorFront), safe(SensorLeftFront)),
				dang(SensorLeftRear)),
			out("forward_med", "right_med")...),

		// Right-side obstacles.
		// Triple block on the right.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(dang(SensorFront), dang(SensorRightFront)),
				dang(SensorRightRear)),
			out("stop", "left_fast")...),
		// Double block on the right.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(safe(SensorFront), dang(SensorRightFront)),
				dang(SensorRightRear)),
			out("forward_med", "left_med")...),
		// Single front-right.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(safe(SensorFront), dang(SensorRightFront)),
				safe(SensorRightRear)),
			out("forward_med", "left_med")...),
		// Single rear-right.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(safe(SensorFront), safe(SensorRightFront)),
				dang(SensorRightRear)),
			out("forward_med", "left_med")...),

		// Rear obstacles.
		// Rear block, escape to the left.
		fuzzy.NewRule(
			fuzzy.Or(
				fuzzy.And(
					fuzzy.And(dang(SensorBackLeft), dang(SensorBackRight)),
					y("far_left")),
				y("near_left")),
			out("forward_fast", "left_med")...),
		// Rear block, escape to the right. The left_med consequent below
		// matches the controller this was lifted from.
		fuzzy.NewRule(
			fuzzy.Or(
				fuzzy.And(
					fuzzy.And(dang(SensorBackLeft), dang(SensorBackRight)),
					y("far_right")),
				y("near_right")),
			out("forward_fast", "left_med")...),
		// Rear-left only.
		fuzzy.NewRule(
			fuzzy.And(dang(SensorBackLeft), safe(SensorBackRight)),
			out("forward_med", "right_med")...),
		// Rear-right only.
		fuzzy.NewRule(
			fuzzy.And(dang(SensorBackRight), safe(SensorBackLeft)),
			out("forward_med", "left_med")...),

		// Multi-sided obstacles.
		// Blocked on both sides.
		fuzzy.NewRule(
			fuzzy.And(dang(SensorLeftRear), dang(SensorRightRear)),
			out("forward_fast", "stop")...),
		// Blocked on both sides and front-left.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(dang(SensorLeftRear), dang(SensorLeftFront)),
				dang(SensorRightRear)),
			out("forward_fast", "right_fast")...),
		// Blocked on both sides and front-right.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.And(dang(SensorLeftRear), dang(SensorRightFront)),
				dang(SensorRightRear)),
			out("forward_fast", "left_fast")...),
		// Blocked on both sides and front, escape to the left.
		fuzzy.NewRule(
			fuzzy.Or(
				fuzzy.And(
					fuzzy.And(
						fuzzy.And(dang(SensorLeftRear), dang(SensorFront)),
						dang(SensorRightRear)),
					y("far_left")),
				y("near_left")),
			out("backward_fast", "left_med")...),
		// Blocked on both sides and front, escape to the right.
		fuzzy.NewRule(
			fuzzy.Or(
				fuzzy.And(
					fuzzy.And(
						fuzzy.And(dang(SensorLeftRear), dang(SensorFront)),
						dang(SensorRightRear)),
					y("far_right")),
				y("near_right")),
			out("backward_fast", "right_med")...),

		// Lateral offset adjustments while avoiding.
		fuzzy.NewRule(
			fuzzy.And(y("near_left"), dang(SensorFront)),
			out("backward_slow", "right_slow")...),
		fuzzy.NewRule(
			fuzzy.And(y("near_right"), dang(SensorFront)),
			out("backward_slow", "left_slow")...),
		// Compensate a large lateral offset when the front is clear.
		fuzzy.NewRule(
			fuzzy.And(
				fuzzy.Or(y("far_left"), y("far_right")),
				safe(SensorFront)),
			out("forward_fast", "stop")...),
	}

	inputs := make([]*fuzzy.Variable, 0, NumSensors+1)
	inputs = append(inputs, sensors...)
	inputs = append(inputs, py)

	return fuzzy.NewRuleSet(
		inputs,
		[]*fuzzy.Variable{vx, vy},
		rules,
	)
}
