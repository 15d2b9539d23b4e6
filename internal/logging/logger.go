package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type Config struct {
	ServiceName string
	// Env is local or docker
	Env string
	// Level is any zap level name, default info
	Level string
	// Format is json or console; docker defaults to json
	Format string
}

// New builds a stderr logger tagged with service and env. Caller info is
// only added outside docker.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	format := cfg.Format
	switch {
	case format == "" && cfg.Env == "docker":
		format = FormatJSON
	case format == "":
		format = FormatConsole
	case format != FormatJSON && format != FormatConsole:
		return nil, fmt.Errorf("invalid log format %q (must be json or console)", cfg.Format)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	encoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder

	zcfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          format,
		EncoderConfig:     encoderConfig,
		DisableCaller:     cfg.Env == "docker",
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		InitialFields: map[string]any{
			"service": cfg.ServiceName,
			"env":     cfg.Env,
		},
	}

	return zcfg.Build()
}

// Sync flushes buffered entries, ignoring the error stderr returns on some
// platforms.
func Sync(log *zap.Logger) {
	_ = log.Sync()
}
