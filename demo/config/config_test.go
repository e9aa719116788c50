package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, float32(0.01), c.Loop.FixedStep)
	assert.Equal(t, 100*time.Millisecond, c.Loop.ResizeDebounce.Duration)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, c.Window.ClearColor)
	assert.Equal(t, "Plane", c.Geometry.Initial)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surface.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[log]
level = "debug"

[loop]
resize_debounce = "250ms"
workers = 4

[noise]
backend = "perlin"
seed = 7

[geometry]
initial = "sphere"
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 250*time.Millisecond, c.Loop.ResizeDebounce.Duration)
	assert.Equal(t, 4, c.Loop.Workers)
	assert.Equal(t, int64(7), c.Noise.Seed)
	// untouched keys keep their defaults
	assert.Equal(t, 60, c.Loop.TickRate)
	assert.Equal(t, 1280, c.Window.Width)
}

func TestUnknownKeyRejected(t *testing.T) {
	c := Default()
	err := c.Decode([]byte("[loop]\nfixed_stp = 0.02\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fixed_stp")
}

func TestBadDuration(t *testing.T) {
	c := Default()
	assert.Error(t, c.Decode([]byte("[loop]\nresize_debounce = \"soon\"\n")))
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := Default()
	c.Window.Width = 0
	c.Loop.TickRate = -1
	c.Noise.Backend = "value"
	c.Geometry.Initial = "torus"
	c.Window.ClearColor[3] = 2

	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"window size", "tick_rate", "value", "torus", "clear_color[3]"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ModeGL, c.Mode)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode(" Headless ")
	require.NoError(t, err)
	assert.Equal(t, ModeHeadless, m)
	_, err = ParseMode("vr")
	assert.Error(t, err)
	assert.Contains(t, Usage(), "panel")
}
