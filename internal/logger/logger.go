package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the process logger is built
type Options struct {
	// Debug lowers the level to debug and enables enrichment prompt logging upstream
	Debug bool
	// Console switches to the human readable development encoder
	Console bool
}

// New builds the process logger. Servers use JSON; the CLI may ask for console output.
func New(opts Options) (*zap.Logger, error) {
	if opts.Console {
		return NewDevelopmentLogger(opts.Debug)
	}
	return NewProductionLogger(opts.Debug)
}

// NewProductionLogger creates a logger with JSON encoding
func NewProductionLogger(debugMode bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(level(debugMode))
	config.Encoding = "json"
	config.EncoderConfig = encoderConfig()
	config.DisableStacktrace = false

	return config.Build()
}

// NewDevelopmentLogger creates a console logger for local runs
func NewDevelopmentLogger(debugMode bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(level(debugMode))
	// Keep stdout free for command output.
	config.OutputPaths = []string{"stderr"}

	return config.Build()
}

// Sync flushes any buffered log entries. Safe to call more than once.
func Sync(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	return logger.Sync()
}

func level(debugMode bool) zapcore.Level {
	if debugMode {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}
