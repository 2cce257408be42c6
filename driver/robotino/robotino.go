// Driver for the Robotino REST interface. Sensor and odometry data are
// fetched with GET requests; velocity commands are posted as a JSON
// triple to the omnidrive endpoint.

package robotino

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"go.uber.org/zap"

	"example.com/robotino-nav/base/floats"
	"example.com/robotino-nav/base/metrics"
	"example.com/robotino-nav/core/nav"
)

const (
	sensorPath    = "/data/distancesensorarray"
	odometryPath  = "/data/odometry"
	omnidrivePath = "/data/omnidrive"

	physicalSensorCount = 9
	odometryValueCount  = 7

	defaultTimeout = 5 * time.Second
)

var (
	errUnexpectedStatus       = errors.New("unexpected response status")
	errUnexpectedSensorData   = errors.New("unexpected sensor data")
	errUnexpectedOdometryData = errors.New("unexpected odometry data")
)

var (
	requests = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.RobotRequestsN,
		Help: metrics.RobotRequestsH,
	})
	requestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.RobotRequestErrorsN,
		Help: metrics.RobotRequestErrorsH,
	})
)

type Client struct {
	log  *zap.Logger
	base string
	hc   *http.Client
}

func NewClient(log *zap.Logger, host string) *Client {
	return &Client{
		log:  log,
		base: "http://" + host,
		hc:   &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	requests.Inc()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		requestErrors.Inc()
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		requestErrors.Inc()
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		requestErrors.Inc()
		return fmt.Errorf("%w: %s: %d", errUnexpectedStatus, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		requestErrors.Inc()
		return err
	}
	return nil
}

// FetchSensors reads the nine physical proximity sensors and folds them
// into the seven logical directions, keeping the nearer reading of each
// rear pair.
func (c *Client) FetchSensors(ctx context.Context) ([nav.NumSensors]float64, error) {
	var out [nav.NumSensors]float64
	var raw []float64
	if err := c.getJSON(ctx, sensorPath, &raw); err != nil {
		return out, err
	}
	if len(raw) != physicalSensorCount {
		return out, fmt.Errorf("%w: %d values", errUnexpectedSensorData, len(raw))
	}
	out[nav.SensorLeftFront] = raw[1]
	out[nav.SensorLeftRear] = raw[2]
	out[nav.SensorFront] = raw[0]
	out[nav.SensorRightFront] = raw[8]
	out[nav.SensorRightRear] = raw[7]
	out[nav.SensorBackLeft] = floats.Min(raw[3], raw[4])
	out[nav.SensorBackRight] = floats.Min(raw[6], raw[5])
	return out, nil
}

// FetchOdometry reads the odometry array. The first two values are the
// x and y position in meters.
func (c *Client) FetchOdometry(ctx context.Context) ([]float64, error) {
	var raw []float64
	if err := c.getJSON(ctx, odometryPath, &raw); err != nil {
		return nil, err
	}
	if len(raw) != odometryValueCount {
		return nil, fmt.Errorf("%w: %d values", errUnexpectedOdometryData, len(raw))
	}
	return raw, nil
}

// SetVelocity posts a velocity command to the omnidrive endpoint.
func (c *Client) SetVelocity(ctx context.Context, vx, vy, omega float64) error {
	requests.Inc()
	body, err := json.Marshal([3]float64{vx, vy, omega})
	if err != nil {
		requestErrors.Inc()
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.base+omnidrivePath, bytes.NewReader(body))
	if err != nil {
		requestErrors.Inc()
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		requestErrors.Inc()
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		requestErrors.Inc()
		return fmt.Errorf("%w: %s: %d", errUnexpectedStatus, omnidrivePath, resp.StatusCode)
	}
	c.log.Debug("velocity command posted",
		zap.Float64("vx", vx),
		zap.Float64("vy", vy),
		zap.Float64("omega", omega),
	)
	return nil
}

// Stop sends a zero velocity command.
func (c *Client) Stop(ctx context.Context) error {
	return c.SetVelocity(ctx, 0, 0, 0)
}
