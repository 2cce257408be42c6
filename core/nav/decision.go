package nav

import (
	"errors"
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.uber.org/zap"

	"example.com/robotino-nav/base/floats"
	"example.com/robotino-nav/base/metrics"
	"example.com/robotino-nav/core/fuzzy"
)

// mainAxisEpsilon guards the axis scaling against a zero offset.
const mainAxisEpsilon = 1e-4

var errInvalidConfig = errors.New("invalid navigation configuration")

var (
	obstacleEngaged = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.NavObstacleEngagedN,
		Help: metrics.NavObstacleEngagedH,
	})
	inferenceIncomplete = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.NavInferenceIncompleteN,
		Help: metrics.NavInferenceIncompleteH,
	})
)

// Config collects the navigation constants. It is fixed at construction
// time.
type Config struct {
	ObstacleThreshold float64
	SensorLimit       float64
	MaxVelocity       float64
	SampleStep        float64
}

func DefaultConfig() Config {
	return Config{
		ObstacleThreshold: 0.20,
		SensorLimit:       0.41,
		MaxVelocity:       0.30,
		SampleStep:        fuzzy.DefaultStep,
	}
}

// Decision selects between the goal-tracking and obstacle-avoidance rule
// sets each cycle and post-processes the goal-set output. The rule bases
// are immutable after construction; Decide allocates all per-run state
// fresh.
type Decision struct {
	log      *zap.Logger
	cfg      Config
	goal     *fuzzy.Engine
	obstacle *fuzzy.Engine
}

func NewDecision(log *zap.Logger, cfg Config) (*Decision, error) {
	if cfg.ObstacleThreshold <= 0 {
		return nil, fmt.Errorf("%w: obstacle threshold must be positive: %v",
			errInvalidConfig, cfg.ObstacleThreshold)
	}
	if cfg.SensorLimit <= cfg.ObstacleThreshold {
		return nil, fmt.Errorf("%w: sensor limit must exceed the obstacle threshold: %v",
			errInvalidConfig, cfg.SensorLimit)
	}
	if cfg.MaxVelocity <= 0 {
		return nil, fmt.Errorf("%w: max velocity must be positive: %v",
			errInvalidConfig, cfg.MaxVelocity)
	}

	goalRS, err := newGoalRuleSet(cfg.SampleStep)
	if err != nil {
		return nil, err
	}
	obstacleRS, err := newObstacleRuleSet(cfg.SampleStep, cfg.SensorLimit)
	if err != nil {
		return nil, err
	}

	return &Decision{
		log:      log,
		cfg:      cfg,
		goal:     fuzzy.NewEngine(goalRS),
		obstacle: fuzzy.NewEngine(obstacleRS),
	}, nil
}

// HasObstacles reports whether any sensor reads strictly below the
// obstacle threshold. A reading exactly at the threshold is not an
// obstacle.
func (d *Decision) HasObstacles(sensors [NumSensors]float64) bool {
	for _, s := range sensors {
		if s < d.cfg.ObstacleThreshold {
			return true
		}
	}
	return false
}

// Decide computes the velocity command for one cycle from the signed
// offset to the target and the sensor readings.
func (d *Decision) Decide(dx, dy float64, sensors [NumSensors]float64) (vx, vy float64, err error) {
	if d.HasObstacles(sensors) {
		obstacleEngaged.Inc()
		return d.avoidObstacles(dy, sensors)
	}
	return d.moveToTarget(dx, dy)
}

func (d *Decision) moveToTarget(dx, dy float64) (float64, float64, error) {
	res, err := d.goal.Infer(map[string]float64{
		varPositionX: dx,
		varPositionY: dy,
	})
	if err != nil {
		return 0, 0, err
	}
	d.reportUnresolved("goal", res)
	vx, vy := d.adjustSpeeds(dx, dy, res.Outputs[varVelocityX], res.Outputs[varVelocityY])
	return vx, vy, nil
}

func (d *Decision) avoidObstacles(dy float64, sensors [NumSensors]float64) (float64, float64, error) {
	in := make(map[string]float64, NumSensors+1)
	for i, name := range sensorNames {
		in[name] = sensors[i]
	}
	in[varPositionY] = dy
	res, err := d.obstacle.Infer(in)
	if err != nil {
		return 0, 0, err
	}
	d.reportUnresolved("obstacle", res)
	return res.Outputs[varVelocityX], res.Outputs[varVelocityY], nil
}

// adjustSpeeds suppresses the weaker axis's output proportionally so that
// the heading toward the target is preserved when one axis dominates.
func (d *Decision) adjustSpeeds(dx, dy, vx, vy float64) (float64, float64) {
	main := math.Max(math.Abs(dx), math.Max(math.Abs(dy), mainAxisEpsilon))
	scale := math.Min(math.Abs(dx), math.Abs(dy)) / main
	if math.Abs(dx) > math.Abs(dy) {
		vy *= scale
	} else {
		vx *= scale
	}
	return floats.Clamp(vx, -d.cfg.MaxVelocity, d.cfg.MaxVelocity),
		floats.Clamp(vy, -d.cfg.MaxVelocity, d.cfg.MaxVelocity)
}

func (d *Decision) reportUnresolved(ruleSet string, res fuzzy.Result) {
	if len(res.Unresolved) == 0 {
		return
	}
	inferenceIncomplete.Inc()
	d.log.Debug("no rule fired",
		zap.String("ruleset", ruleSet),
		zap.Strings("outputs", res.Unresolved),
	)
}
