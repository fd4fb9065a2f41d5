package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/autopark/internal/control"
	"github.com/san-kum/autopark/internal/filter"
	"github.com/san-kum/autopark/internal/park"
	"github.com/san-kum/autopark/internal/sim"
	"github.com/san-kum/autopark/internal/vehicle"
)

const (
	DefaultKp           = 0.0
	DefaultKd           = 0.2
	DefaultStopDistance = 50000
	DefaultBaudRate     = 9600

	FilterMovingAverage = "moving_average"
	FilterEMA           = "ema"

	ReverseTimed        = "timed"
	ReverseRearDistance = "rear_distance"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("config: invalid parameter")

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v %s: %s", ErrInvalid, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

type Config struct {
	Parking     ParkingConfig     `yaml:"parking"`
	Steering    SteeringConfig    `yaml:"steering"`
	Reverse     ReverseConfig     `yaml:"reverse"`
	Sim         SimConfig         `yaml:"sim"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
}

// ParkingConfig holds maneuver timings (ms), speeds (PWM) and the gap
// threshold in sensor units.
type ParkingConfig struct {
	Side            string `yaml:"side"`
	GapDistance     int    `yaml:"gap_distance"`
	ForwardSpeed    int    `yaml:"forward_speed"`
	BackwardSpeed   int    `yaml:"backward_speed"`
	ConfirmTicks    int    `yaml:"confirm_ticks"`
	ForwardDelay    int    `yaml:"forward_delay"`
	RotateDelay     int    `yaml:"rotate_delay"`
	ReverseDuration int    `yaml:"reverse_duration"`
	PivotSpeed      int    `yaml:"pivot_speed"`
	SettleDelay     int    `yaml:"settle_delay"`
	StopDelay       int    `yaml:"stop_delay"`
	StableTicks     int    `yaml:"stable_ticks"`
	Deadband        int    `yaml:"deadband"`
}

type SteeringConfig struct {
	Kp      float64 `yaml:"kp"`
	Ki      float64 `yaml:"ki"`
	Kd      float64 `yaml:"kd"`
	Filter  string  `yaml:"filter"`
	Window  int     `yaml:"window"`
	Alpha   float64 `yaml:"alpha"`
	Retries int     `yaml:"retries"`
}

type ReverseConfig struct {
	Strategy     string `yaml:"strategy"`
	StopDistance int    `yaml:"stop_distance"`
	PollInterval int    `yaml:"poll_interval"`
	MaxPolls     int    `yaml:"max_polls"`
}

type SimConfig struct {
	Integrator  string  `yaml:"integrator"`
	Step        float64 `yaml:"step"`
	Seed        int64   `yaml:"seed"`
	MaxTicks    int     `yaml:"max_ticks"`
	WallOffset  float64 `yaml:"wall_offset"`
	GapStart    float64 `yaml:"gap_start"`
	GapWidth    float64 `yaml:"gap_width"`
	SlotDepth   float64 `yaml:"slot_depth"`
	NoiseStdDev float64 `yaml:"noise_stddev"`
	DropoutRate float64 `yaml:"dropout_rate"`
	Latency     int     `yaml:"latency"`
	MotorLag    float64 `yaml:"motor_lag"`
}

// DiagnosticsConfig selects where telemetry lines go and how the real
// vehicle is reached.
type DiagnosticsConfig struct {
	SerialPort   string `yaml:"serial_port"`
	BaudRate     int    `yaml:"baud_rate"`
	CANInterface string `yaml:"can_interface"`
	MetricsAddr  string `yaml:"metrics_addr"`
}

func DefaultConfig() *Config {
	geo := sim.DefaultGeometry()
	sensor := sim.DefaultSensorModel()
	opts := sim.DefaultOptions()
	return &Config{
		Parking: ParkingConfig{
			Side:            vehicle.Left.String(),
			GapDistance:     park.DefaultGapDistance,
			ForwardSpeed:    park.DefaultForwardSpeed,
			BackwardSpeed:   park.DefaultBackwardSpeed,
			ConfirmTicks:    park.DefaultConfirmTicks,
			ForwardDelay:    park.DefaultForwardDelay,
			RotateDelay:     park.DefaultRotateDelay,
			ReverseDuration: park.DefaultReverseDuration,
			PivotSpeed:      park.DefaultPivotSpeed,
			SettleDelay:     park.DefaultSettleDelay,
			StopDelay:       park.DefaultStopDelay,
			StableTicks:     park.DefaultStableTicks,
			Deadband:        park.DefaultDeadband,
		},
		Steering: SteeringConfig{
			Kp:      DefaultKp,
			Kd:      DefaultKd,
			Filter:  FilterMovingAverage,
			Window:  filter.DefaultWindow,
			Alpha:   filter.DefaultAlpha,
			Retries: vehicle.DefaultRetries,
		},
		Reverse: ReverseConfig{
			Strategy:     ReverseTimed,
			StopDistance: DefaultStopDistance,
			PollInterval: park.DefaultPollInterval,
		},
		Sim: SimConfig{
			Integrator:  opts.Integrator,
			Step:        opts.Step,
			Seed:        opts.Seed,
			MaxTicks:    sim.DefaultMaxTicks,
			WallOffset:  geo.WallOffset,
			GapStart:    geo.GapStart,
			GapWidth:    geo.GapWidth,
			SlotDepth:   geo.SlotDepth,
			NoiseStdDev: sensor.NoiseStdDev,
			DropoutRate: sensor.DropoutRate,
			Latency:     sensor.Latency,
			MotorLag:    opts.Plant.MotorLag,
		},
		Diagnostics: DiagnosticsConfig{
			BaudRate:     DefaultBaudRate,
			CANInterface: "can0",
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver layers the file at path over a copy of base. Keys missing from
// the file keep the base values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := *base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	p := c.Parking
	if _, err := c.side(); err != nil {
		return invalid("parking.side", err.Error())
	}
	positive := []struct {
		field string
		v     int
	}{
		{"parking.gap_distance", p.GapDistance},
		{"parking.forward_speed", p.ForwardSpeed},
		{"parking.backward_speed", p.BackwardSpeed},
		{"parking.confirm_ticks", p.ConfirmTicks},
		{"parking.pivot_speed", p.PivotSpeed},
		{"parking.stable_ticks", p.StableTicks},
		{"parking.deadband", p.Deadband},
	}
	for _, f := range positive {
		if f.v <= 0 {
			return invalid(f.field, fmt.Sprintf("must be positive, got %d", f.v))
		}
	}
	nonNegative := []struct {
		field string
		v     int
	}{
		{"parking.forward_delay", p.ForwardDelay},
		{"parking.rotate_delay", p.RotateDelay},
		{"parking.reverse_duration", p.ReverseDuration},
		{"parking.settle_delay", p.SettleDelay},
		{"parking.stop_delay", p.StopDelay},
		{"steering.retries", c.Steering.Retries},
		{"reverse.max_polls", c.Reverse.MaxPolls},
		{"sim.latency", c.Sim.Latency},
		{"sim.max_ticks", c.Sim.MaxTicks},
	}
	for _, f := range nonNegative {
		if f.v < 0 {
			return invalid(f.field, fmt.Sprintf("must not be negative, got %d", f.v))
		}
	}

	s := c.Steering
	if s.Kp < 0 || s.Kd < 0 || s.Ki < 0 {
		return invalid("steering", "gains must not be negative")
	}
	switch s.Filter {
	case FilterMovingAverage:
		if s.Window <= 0 {
			return invalid("steering.window", "must be positive")
		}
	case FilterEMA:
		if s.Alpha <= 0 || s.Alpha > 1 {
			return invalid("steering.alpha", "must be in (0, 1]")
		}
	default:
		return invalid("steering.filter", fmt.Sprintf("unknown filter %q", s.Filter))
	}

	switch c.Reverse.Strategy {
	case ReverseTimed:
	case ReverseRearDistance:
		if c.Reverse.StopDistance <= 0 {
			return invalid("reverse.stop_distance", "must be positive")
		}
	default:
		return invalid("reverse.strategy", fmt.Sprintf("unknown strategy %q", c.Reverse.Strategy))
	}

	if c.Sim.Step <= 0 {
		return invalid("sim.step", "must be positive")
	}
	if c.Sim.DropoutRate < 0 || c.Sim.DropoutRate > 1 {
		return invalid("sim.dropout_rate", "must be in [0, 1]")
	}
	if c.Sim.GapWidth <= 0 || c.Sim.SlotDepth <= 0 {
		return invalid("sim", "slot must have positive width and depth")
	}
	return nil
}

func (c *Config) side() (vehicle.Side, error) {
	s, err := vehicle.ParseSide(c.Parking.Side)
	if err != nil {
		return s, err
	}
	if s == vehicle.Rear {
		return s, fmt.Errorf("the rear sensor cannot follow a wall")
	}
	return s, nil
}

// ParkParams converts the parking section. Call Validate first.
func (c *Config) ParkParams() park.Params {
	side, _ := c.side()
	p := c.Parking
	return park.Params{
		Side:            side,
		GapDistance:     p.GapDistance,
		ForwardSpeed:    p.ForwardSpeed,
		BackwardSpeed:   p.BackwardSpeed,
		ConfirmTicks:    p.ConfirmTicks,
		ForwardDelay:    p.ForwardDelay,
		RotateDelay:     p.RotateDelay,
		ReverseDuration: p.ReverseDuration,
		PivotSpeed:      p.PivotSpeed,
		SettleDelay:     p.SettleDelay,
		StopDelay:       p.StopDelay,
		StableTicks:     p.StableTicks,
		Deadband:        p.Deadband,
	}
}

func (c *Config) Gains() control.Gains {
	return control.Gains{Kp: c.Steering.Kp, Ki: c.Steering.Ki, Kd: c.Steering.Kd}
}

func (c *Config) RetryPolicy() vehicle.RetryPolicy {
	return vehicle.RetryPolicy{MaxRetries: c.Steering.Retries}
}

// Smoother builds the configured distance filter.
func (c *Config) Smoother() filter.Smoother {
	if c.Steering.Filter == FilterEMA {
		return filter.NewEMA(c.Steering.Alpha)
	}
	return filter.NewMovingAverage(c.Steering.Window)
}

// ReverseCheck builds the completion check for the Reversing phase.
func (c *Config) ReverseCheck(rear vehicle.DistanceSensor) park.MotionCompletionCheck {
	if c.Reverse.Strategy == ReverseRearDistance {
		return park.RearDistance{
			Sensor:       rear,
			Retry:        c.RetryPolicy(),
			StopDistance: c.Reverse.StopDistance,
			PollInterval: c.Reverse.PollInterval,
			MaxPolls:     c.maxPolls(),
		}
	}
	return park.Timed{Duration: c.Parking.ReverseDuration}
}

// maxPolls bounds the rear distance poll. Without an explicit max_polls
// the poll gives up once the timed reverse duration has elapsed.
func (c *Config) maxPolls() int {
	if c.Reverse.MaxPolls > 0 {
		return c.Reverse.MaxPolls
	}
	interval := c.Reverse.PollInterval
	if interval <= 0 {
		interval = park.DefaultPollInterval
	}
	return max(1, c.Parking.ReverseDuration/interval)
}

// Apply sets the retry policy, filter and reverse check on m. rear is
// the sensor polled by the rear_distance strategy.
func (c *Config) Apply(m *park.Maneuver, rear vehicle.DistanceSensor) {
	m.Retry = c.RetryPolicy()
	m.Steering.SetFilter(c.Smoother())
	m.Reverse = c.ReverseCheck(rear)
}

// SimOptions converts the sim section, mirroring the wall onto the
// parking side.
func (c *Config) SimOptions() sim.Options {
	side, _ := c.side()
	opts := sim.DefaultOptions()
	opts.Integrator = c.Sim.Integrator
	opts.Step = c.Sim.Step
	opts.Seed = c.Sim.Seed
	opts.Geometry.Side = side
	opts.Geometry.WallOffset = c.Sim.WallOffset
	opts.Geometry.GapStart = c.Sim.GapStart
	opts.Geometry.GapWidth = c.Sim.GapWidth
	opts.Geometry.SlotDepth = c.Sim.SlotDepth
	opts.Sensor.NoiseStdDev = c.Sim.NoiseStdDev
	opts.Sensor.DropoutRate = c.Sim.DropoutRate
	opts.Sensor.Latency = c.Sim.Latency
	opts.Plant.MotorLag = c.Sim.MotorLag
	return opts
}

// NewRunner builds a fully configured simulated run.
func (c *Config) NewRunner(diag vehicle.Diagnostics) (*sim.Runner, error) {
	r, err := sim.NewRunner(c.SimOptions(), c.ParkParams(), c.Gains(), diag)
	if err != nil {
		return nil, err
	}
	c.Apply(r.Maneuver, r.World)
	r.MaxTicks = c.Sim.MaxTicks
	return r, nil
}
