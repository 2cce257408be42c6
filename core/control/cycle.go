package control

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.uber.org/zap"

	"example.com/robotino-nav/base/floats"
	"example.com/robotino-nav/base/metrics"
	"example.com/robotino-nav/core/nav"
)

const stopTimeout = 1 * time.Second

var (
	errInvalidConfig     = errors.New("invalid control configuration")
	errMalformedOdometry = errors.New("malformed odometry data")
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ControlCyclesTotalN,
		Help: metrics.ControlCyclesTotalH,
	})
	cyclesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ControlCyclesSkippedN,
		Help: metrics.ControlCyclesSkippedH,
	})
	distanceGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: metrics.ControlDistanceN,
		Help: metrics.ControlDistanceH,
	})
	velocityXGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: metrics.ControlVelocityXN,
		Help: metrics.ControlVelocityXH,
	})
	velocityYGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: metrics.ControlVelocityYN,
		Help: metrics.ControlVelocityYH,
	})
)

// Transport is the robot I/O consumed by the control loop. A failed fetch
// causes the current cycle to be skipped; it is never fatal.
type Transport interface {
	FetchSensors(ctx context.Context) ([nav.NumSensors]float64, error)
	FetchOdometry(ctx context.Context) ([]float64, error)
	SetVelocity(ctx context.Context, vx, vy, omega float64) error
}

// Command is one velocity command for the omnidirectional drive. Omega is
// always 0 here; the wire format carries it regardless.
type Command struct {
	VX    float64
	VY    float64
	Omega float64
}

type Outcome int

const (
	OutcomeContinue Outcome = iota
	OutcomeDone
	OutcomeDecisionFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeDone:
		return "done"
	case OutcomeDecisionFailed:
		return "decision failed"
	default:
		panic("unexpected outcome")
	}
}

// Config collects the control loop constants. MinVelocity is a deadband:
// when set, commands smaller in magnitude snap to zero.
type Config struct {
	TargetX      float64
	TargetY      float64
	Tolerance    float64
	MaxVelocity  float64
	MinVelocity  float64
	SamplePeriod time.Duration
	FetchTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Tolerance:    0.02,
		MaxVelocity:  0.30,
		MinVelocity:  0,
		SamplePeriod: 20 * time.Millisecond,
		FetchTimeout: 1 * time.Second,
	}
}

// Cycle drives the robot toward the target point, one decision per tick.
type Cycle struct {
	log *zap.Logger
	cfg Config
	dec *nav.Decision
}

func NewCycle(log *zap.Logger, cfg Config, dec *nav.Decision) (*Cycle, error) {
	if cfg.Tolerance <= 0 {
		return nil, fmt.Errorf("%w: tolerance must be positive: %v", errInvalidConfig, cfg.Tolerance)
	}
	if cfg.MaxVelocity <= 0 {
		return nil, fmt.Errorf("%w: max velocity must be positive: %v", errInvalidConfig, cfg.MaxVelocity)
	}
	if cfg.MinVelocity < 0 || cfg.MinVelocity >= cfg.MaxVelocity {
		return nil, fmt.Errorf("%w: min velocity out of range: %v", errInvalidConfig, cfg.MinVelocity)
	}
	if cfg.SamplePeriod <= 0 {
		return nil, fmt.Errorf("%w: sample period must be positive: %v", errInvalidConfig, cfg.SamplePeriod)
	}
	if cfg.FetchTimeout <= 0 {
		return nil, fmt.Errorf("%w: fetch timeout must be positive: %v", errInvalidConfig, cfg.FetchTimeout)
	}
	return &Cycle{log: log, cfg: cfg, dec: dec}, nil
}

// Step runs one iteration on an already fetched position offset and sensor
// snapshot.
func (c *Cycle) Step(dx, dy float64, sensors [nav.NumSensors]float64) (Outcome, Command) {
	if math.Hypot(dx, dy) <= c.cfg.Tolerance {
		return OutcomeDone, Command{}
	}
	vx, vy, err := c.dec.Decide(dx, dy, sensors)
	if err != nil {
		c.log.Error("navigation decision failed",
			zap.Float64("dx", dx),
			zap.Float64("dy", dy),
			zap.Error(err),
		)
		return OutcomeDecisionFailed, Command{}
	}
	return OutcomeContinue, c.Clamp(Command{VX: vx, VY: vy})
}

// Clamp limits a command to the platform velocity bounds and applies the
// deadband. Clamping an already admissible command returns it unchanged.
func (c *Cycle) Clamp(cmd Command) Command {
	cmd.VX = floats.Clamp(cmd.VX, -c.cfg.MaxVelocity, c.cfg.MaxVelocity)
	cmd.VY = floats.Clamp(cmd.VY, -c.cfg.MaxVelocity, c.cfg.MaxVelocity)
	if c.cfg.MinVelocity > 0 {
		if math.Abs(cmd.VX) < c.cfg.MinVelocity {
			cmd.VX = 0
		}
		if math.Abs(cmd.VY) < c.cfg.MinVelocity {
			cmd.VY = 0
		}
	}
	return cmd
}

type odometryResult struct {
	values []float64
	err    error
}

type sensorsResult struct {
	values [nav.NumSensors]float64
	err    error
}

// fetch obtains fresh odometry and sensor data concurrently, bounded by
// the fetch timeout. Both must succeed; the tick is skipped otherwise.
func (c *Cycle) fetch(ctx context.Context, tr Transport) ([]float64, [nav.NumSensors]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	odoc := make(chan odometryResult, 1)
	senc := make(chan sensorsResult, 1)
	go func() {
		o, err := tr.FetchOdometry(ctx)
		odoc <- odometryResult{values: o, err: err}
	}()
	go func() {
		s, err := tr.FetchSensors(ctx)
		senc <- sensorsResult{values: s, err: err}
	}()

	odo := <-odoc
	sen := <-senc
	if odo.err != nil {
		return nil, sen.values, odo.err
	}
	if len(odo.values) < 2 {
		return nil, sen.values, errMalformedOdometry
	}
	if sen.err != nil {
		return nil, sen.values, sen.err
	}
	return odo.values, sen.values, nil
}

// Run executes the control loop until the target is reached or ctx is
// canceled. A stop command is issued on every exit route.
func (c *Cycle) Run(ctx context.Context, tr Transport) error {
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := tr.SetVelocity(stopCtx, 0, 0, 0); err != nil {
			c.log.Error("failed to send stop command", zap.Error(err))
		}
	}()

	baseCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	base, err := tr.FetchOdometry(baseCtx)
	cancel()
	if err != nil {
		return err
	}
	if len(base) < 2 {
		return errMalformedOdometry
	}
	bx, by := base[0], base[1]
	c.log.Info("base odometry captured",
		zap.Float64("x", bx),
		zap.Float64("y", by),
	)

	ticker := time.NewTicker(c.cfg.SamplePeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("control loop canceled")
			return ctx.Err()
		case <-ticker.C:
		}

		odo, sensors, err := c.fetch(ctx, tr)
		if err != nil {
			cyclesSkipped.Inc()
			c.log.Info("skipping control cycle", zap.Error(err))
			continue
		}
		cyclesTotal.Inc()

		dx := c.cfg.TargetX - (odo[0] - bx)
		dy := c.cfg.TargetY - (odo[1] - by)
		distanceGauge.Set(math.Hypot(dx, dy))

		outcome, cmd := c.Step(dx, dy, sensors)
		switch outcome {
		case OutcomeDone:
			c.log.Info("target reached",
				zap.Float64("dx", dx),
				zap.Float64("dy", dy),
			)
			return nil
		case OutcomeDecisionFailed:
			if err := tr.SetVelocity(ctx, 0, 0, 0); err != nil {
				c.log.Error("failed to send zero velocity", zap.Error(err))
			}
			velocityXGauge.Set(0)
			velocityYGauge.Set(0)
		case OutcomeContinue:
			if err := tr.SetVelocity(ctx, cmd.VX, cmd.VY, cmd.Omega); err != nil {
				cyclesSkipped.Inc()
				c.log.Info("failed to send velocity command", zap.Error(err))
				continue
			}
			velocityXGauge.Set(cmd.VX)
			velocityYGauge.Set(cmd.VY)
			c.log.Debug("velocity command sent",
				zap.Float64("vx", cmd.VX),
				zap.Float64("vy", cmd.VY),
				zap.Float64("dx", dx),
				zap.Float64("dy", dy),
			)
		}
	}
}
