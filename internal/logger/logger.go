package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Option configures optional logger outputs
type Option func(*options)

type options struct {
	filePath      string
	fileMaxSizeMB int
	fileBackups   int
	fileMaxAgeDay int
}

// WithFile additionally writes JSON logs to a size-rotated file.
// An empty path leaves the logger writing to stdout only.
func WithFile(path string, maxSizeMB int) Option {
	return func(o *options) {
		o.filePath = path
		o.fileMaxSizeMB = maxSizeMB
	}
}

// encoderConfig is shared by every production core
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
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

// NewProductionLogger creates a production-ready logger with JSON encoding
func NewProductionLogger(debugMode bool, opts ...Option) (*zap.Logger, error) {
	o := options{fileBackups: 5, fileMaxAgeDay: 14}
	for _, opt := range opts {
		opt(&o)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if debugMode {
		level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	encoder := zapcore.NewJSONEncoder(encoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level),
	}

	if o.filePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   o.filePath,
			MaxSize:    o.fileMaxSizeMB,
			MaxBackups: o.fileBackups,
			MaxAge:     o.fileMaxAgeDay,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotator), level))
	}

	return zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
		zap.ErrorOutput(zapcore.Lock(os.Stderr)),
	), nil
}

// Sync flushes any buffered log entries. This should be called before application exit.
// It's safe to call Sync() multiple times.
func Sync(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	return logger.Sync()
}

// NewDevelopmentLogger creates a development logger with console encoding (for local dev)
func NewDevelopmentLogger(debugMode bool) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()

	if debugMode {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return config.Build()
}
