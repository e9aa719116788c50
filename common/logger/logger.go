// Package logger builds the zap logger shared by the viewer, optionally rotating
// to a file through lumberjack.
package logger

import (
	"fmt"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Options struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // console or json
	// File enables rotation into the named file in addition to stderr.
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
}

func DefaultOptions() Options {
	return Options{Level: "info", Format: "console", MaxSizeMB: 16, MaxBackups: 3, MaxAgeDays: 7}
}

func (o Options) Validate() error {
	if _, err := zapcore.ParseLevel(o.Level); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch strings.ToLower(o.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("log format %q: want console or json", o.Format)
	}
	if o.File != "" && o.MaxSizeMB <= 0 {
		return fmt.Errorf("log max_size_mb %d: must be positive", o.MaxSizeMB)
	}
	return nil
}

// New returns the logger and a function that flushes it.
func New(o Options) (*zap.Logger, func(), error) {
	if err := o.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := zapcore.ParseLevel(o.Level)

	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if strings.EqualFold(o.Format, "json") {
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(os.Stderr), level)}
	var rotator *lumberjack.Logger
	if o.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
		}
		// files always get json
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(rotator), level))
	}

	log := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	flush := func() {
		_ = log.Sync()
		if rotator != nil {
			_ = rotator.Close()
		}
	}
	return log, flush, nil
}
