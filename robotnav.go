// Robotino fuzzy navigation service

package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"example.com/robotino-nav/base/floats"

	"example.com/robotino-nav/benchmark"

	"example.com/robotino-nav/core/control"
	"example.com/robotino-nav/core/nav"

	"example.com/robotino-nav/driver/robotino"
)

const (
	defaultMonitorAddr = "127.0.0.1:8080"

	toolSensorSnapshots = 5
)

type svcConfig struct {
	RobotHost         string  `toml:"robot_host,omitempty"`
	MonitorAddr       string  `toml:"monitor_address,omitempty"`
	TargetX           float64 `toml:"target_x,omitempty"`
	TargetY           float64 `toml:"target_y,omitempty"`
	MaxVelocity       float64 `toml:"max_velocity,omitempty"`
	MinVelocity       float64 `toml:"min_velocity,omitempty"`
	ObstacleThreshold float64 `toml:"obstacle_threshold,omitempty"`
	SensorLimit       float64 `toml:"sensor_limit,omitempty"`
	PointTolerance    float64 `toml:"point_tolerance,omitempty"`
	SamplePeriod      string  `toml:"sample_period,omitempty"`
	FetchTimeout      string  `toml:"fetch_timeout,omitempty"`
}

var (
	log *zap.Logger
)

func initLogger(verbose bool) {
	c := zap.NewDevelopmentConfig()
	c.DisableStacktrace = true
	c.EncoderConfig.EncodeCaller = func(
		caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		p := caller.TrimmedPath()
		if len(p) > 30 {
			p = "..." + p[len(p)-27:]
		}
		enc.AppendString(fmt.Sprintf("%30s", p))
	}
	if !verbose {
		c.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	var err error
	log, err = c.Build()
	if err != nil {
		panic(err)
	}
}

func runMonitor(log *zap.Logger, addr string) {
	http.Handle("/metrics", promhttp.Handler())
	err := http.ListenAndServe(addr, nil)
	log.Fatal("failed to serve metrics", zap.Error(err))
}

func loadConfig(configFile string) svcConfig {
	raw, err := os.ReadFile(configFile)
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}
	var cfg svcConfig
	err = toml.NewDecoder(bytes.NewReader(raw)).DisallowUnknownFields().Decode(&cfg)
	if err != nil {
		log.Fatal("failed to decode configuration", zap.Error(err))
	}
	return cfg
}

func robotHost(cfg svcConfig) string {
	if cfg.RobotHost == "" {
		log.Fatal("robot_host not specified in config")
	}
	return cfg.RobotHost
}

func monitorAddress(cfg svcConfig) string {
	if cfg.MonitorAddr == "" {
		return defaultMonitorAddr
	}
	return cfg.MonitorAddr
}

func parsePeriod(s, name string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatal("failed to parse duration in config",
			zap.String("key", name), zap.Error(err))
	}
	return d
}

func navConfig(cfg svcConfig) nav.Config {
	c := nav.DefaultConfig()
	if cfg.ObstacleThreshold != 0 {
		c.ObstacleThreshold = cfg.ObstacleThreshold
	}
	if cfg.SensorLimit != 0 {
		c.SensorLimit = cfg.SensorLimit
	}
	if cfg.MaxVelocity != 0 {
		c.MaxVelocity = cfg.MaxVelocity
	}
	return c
}

func controlConfig(cfg svcConfig) control.Config {
	c := control.DefaultConfig()
	c.TargetX = cfg.TargetX
	c.TargetY = cfg.TargetY
	if cfg.PointTolerance != 0 {
		c.Tolerance = cfg.PointTolerance
	}
	if cfg.MaxVelocity != 0 {
		c.MaxVelocity = cfg.MaxVelocity
	}
	c.MinVelocity = cfg.MinVelocity
	if d := parsePeriod(cfg.SamplePeriod, "sample_period"); d != 0 {
		c.SamplePeriod = d
	}
	if d := parsePeriod(cfg.FetchTimeout, "fetch_timeout"); d != 0 {
		c.FetchTimeout = d
	}
	return c
}

func runDrive(configFile string) {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig(configFile)
	host := robotHost(cfg)

	dec, err := nav.NewDecision(log, navConfig(cfg))
	if err != nil {
		log.Fatal("failed to build decision engine", zap.Error(err))
	}
	cyc, err := control.NewCycle(log, controlConfig(cfg), dec)
	if err != nil {
		log.Fatal("failed to build control cycle", zap.Error(err))
	}
	tr := robotino.NewClient(log, host)

	go runMonitor(log, monitorAddress(cfg))

	log.Info("starting drive",
		zap.String("robot", host),
		zap.Float64("target_x", cfg.TargetX),
		zap.Float64("target_y", cfg.TargetY),
	)
	err = cyc.Run(ctx, tr)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("drive failed", zap.Error(err))
	}
}

func runTool(host string) {
	ctx := context.Background()
	c := robotino.NewClient(log, host)

	odo, err := c.FetchOdometry(ctx)
	if err != nil {
		log.Fatal("failed to fetch odometry", zap.String("robot", host), zap.Error(err))
	}
	log.Info("odometry",
		zap.Float64("x", odo[0]),
		zap.Float64("y", odo[1]),
	)

	var samples [nav.NumSensors][]float64
	for i := 0; i != toolSensorSnapshots; i++ {
		sensors, err := c.FetchSensors(ctx)
		if err != nil {
			log.Fatal("failed to fetch sensors", zap.String("robot", host), zap.Error(err))
		}
		for j, v := range sensors {
			samples[j] = append(samples[j], v)
		}
		time.Sleep(100 * time.Millisecond)
	}
	for i := 0; i != nav.NumSensors; i++ {
		log.Info("sensor median",
			zap.Int("sensor", i),
			zap.Float64("distance", floats.Median(samples[i])),
		)
	}
}

func exitWithUsage() {
	fmt.Println("<usage>")
	os.Exit(1)
}

func main() {
	var (
		verbose    bool
		configFile string
		robotAddr  string
	)

	driveFlags := flag.NewFlagSet("drive", flag.ExitOnError)
	toolFlags := flag.NewFlagSet("tool", flag.ExitOnError)
	benchmarkFlags := flag.NewFlagSet("benchmark", flag.ExitOnError)

	driveFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	driveFlags.StringVar(&configFile, "config", "", "Config file")

	toolFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")
	toolFlags.StringVar(&robotAddr, "robot", "", "Robot address")

	benchmarkFlags.BoolVar(&verbose, "verbose", false, "Verbose logging")

	if len(os.Args) < 2 {
		exitWithUsage()
	}

	switch os.Args[1] {
	case driveFlags.Name():
		err := driveFlags.Parse(os.Args[2:])
		if err != nil || driveFlags.NArg() != 0 {
			exitWithUsage()
		}
		if configFile == "" {
			exitWithUsage()
		}
		initLogger(verbose)
		runDrive(configFile)
	case toolFlags.Name():
		err := toolFlags.Parse(os.Args[2:])
		if err != nil || toolFlags.NArg() != 0 {
			exitWithUsage()
		}
		if robotAddr == "" {
			exitWithUsage()
		}
		initLogger(verbose)
		runTool(robotAddr)
	case benchmarkFlags.Name():
		err := benchmarkFlags.Parse(os.Args[2:])
		if err != nil || benchmarkFlags.NArg() != 0 {
			exitWithUsage()
		}
		initLogger(verbose)
		benchmark.RunDecisionBenchmark()
	default:
		exitWithUsage()
	}
}
