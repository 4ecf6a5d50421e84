// Package logging builds the process logger.
package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/danielpatrickdp/scenechat/internal/config"
)

// #region options
type options struct {
	console bool
}

// Option adjusts New.
type Option func(*options)

// WithoutConsole drops the stderr core, for programs that own the terminal.
// With no log file configured the logger discards everything.
func WithoutConsole() Option {
	return func(o *options) { o.console = false }
}

// #endregion options

// #region new
// New builds a logger that writes to stderr and, when cfg.File is set, to a
// rotated JSON file. The console uses the development encoder unless
// cfg.JSON is set.
func New(cfg config.LogConfig, opts ...Option) (*zap.Logger, error) {
	o := options{console: true}
	for _, opt := range opts {
		opt(&o)
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.TimeKey = "timestamp"
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder

	var consoleEncoder zapcore.Encoder
	if cfg.JSON {
		consoleEncoder = zapcore.NewJSONEncoder(fileEnc)
	} else {
		consoleEncoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	var cores []zapcore.Core
	if o.console {
		cores = append(cores, zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stderr), level))
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(rotator), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), nil
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// #endregion new
