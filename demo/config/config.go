// Package config holds the viewer settings. Defaults are applied first, then the
// TOML file, then command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"gonoisesurface/common/logger"
	"gonoisesurface/geometry"
	"gonoisesurface/noise"
)

type Config struct {
	Log      logger.Options `toml:"log"`
	Window   WindowConfig   `toml:"window"`
	Loop     LoopConfig     `toml:"loop"`
	Noise    NoiseConfig    `toml:"noise"`
	Geometry GeometryConfig `toml:"geometry"`
	Trace    TraceConfig    `toml:"trace"`

	// set from flags only
	Mode   Mode   `toml:"-"`
	Frames int    `toml:"-"`
	Out    string `toml:"-"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	// ClearColor is straight RGBA in [0,1].
	ClearColor [4]float32 `toml:"clear_color"`
	HUD        bool       `toml:"hud"`
}

type LoopConfig struct {
	FixedStep      float32  `toml:"fixed_step"`
	TickRate       int      `toml:"tick_rate"`
	ResizeDebounce Duration `toml:"resize_debounce"`
	Workers        int      `toml:"workers"`
}

type NoiseConfig struct {
	Backend string `toml:"backend"`
	Seed    int64  `toml:"seed"`
}

type GeometryConfig struct {
	Initial string `toml:"initial"`
}

type TraceConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Duration reads Go duration strings such as "100ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	c := &Config{}
	c.Reset()
	return c
}

func (c *Config) Reset() {
	*c = Config{
		Log: logger.DefaultOptions(),
		Window: WindowConfig{
			Width:      1280,
			Height:     720,
			Title:      "Noise Surface",
			ClearColor: [4]float32{1, 1, 1, 1},
		},
		Loop: LoopConfig{
			FixedStep:      0.01,
			TickRate:       60,
			ResizeDebounce: Duration{100 * time.Millisecond},
		},
		Noise:    NoiseConfig{Backend: string(noise.BackendSimplex)},
		Geometry: GeometryConfig{Initial: geometry.Plane.String()},
		Trace:    TraceConfig{Dir: "trace"},
		Mode:     ModeGL,
		Frames:   120,
		Out:      "frames",
	}
}

// Load reads path over the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Decode(data); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func (c *Config) Decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return errors.New(strict.String())
		}
		return err
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d: must be positive", c.Window.Width, c.Window.Height))
	}
	for i, v := range c.Window.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("window clear_color[%d] = %v: outside [0,1]", i, v))
		}
	}
	if !(c.Loop.FixedStep > 0) {
		errs = append(errs, fmt.Errorf("loop fixed_step %v: must be positive", c.Loop.FixedStep))
	}
	if c.Loop.TickRate <= 0 {
		errs = append(errs, fmt.Errorf("loop tick_rate %d: must be positive", c.Loop.TickRate))
	}
	if c.Loop.ResizeDebounce.Duration < 0 {
		errs = append(errs, fmt.Errorf("loop resize_debounce %v: must not be negative", c.Loop.ResizeDebounce))
	}
	if c.Loop.Workers < 0 {
		errs = append(errs, fmt.Errorf("loop workers %d: must not be negative", c.Loop.Workers))
	}
	if _, err := noise.ParseBackend(c.Noise.Backend); err != nil {
		errs = append(errs, err)
	}
	if _, err := geometry.ParseKind(c.Geometry.Initial); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		errs = append(errs, err)
	}
	if c.Mode == ModeHeadless && c.Frames <= 0 {
		errs = append(errs, fmt.Errorf("frames %d: headless mode needs at least one", c.Frames))
	}
	if c.Trace.Enabled && c.Trace.Dir == "" {
		errs = append(errs, errors.New("trace dir: required when trace is enabled"))
	}
	return errors.Join(errs...)
}
