package logging

import (
	"os"
	"strings"

	"github.com/mikey/email-triage/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel maps a configured level name to a zap level, defaulting to info
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(name) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// InitLogger initializes a logger based on configuration. Logs always go to
// stdout; when a file is configured they are also written there with rotation.
func InitLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))
	jsonFormat := cfg.Format == "json"

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(jsonFormat, true), zapcore.Lock(os.Stdout), level),
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		}
		// Files always get JSON so they stay machine readable
		cores = append(cores, zapcore.NewCore(newEncoder(true, false), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// InitConsoleLogger initializes a console-friendly logger on stderr, leaving
// stdout free for command output
func InitConsoleLogger(verbose bool, jsonFormat bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	core := zapcore.NewCore(newEncoder(jsonFormat, true), zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(level))
	return zap.New(core)
}

func newEncoder(jsonFormat, color bool) zapcore.Encoder {
	if jsonFormat {
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	if color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encCfg)
}
