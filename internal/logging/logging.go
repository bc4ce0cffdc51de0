// Package logging builds the zap loggers used by the command line tool.
package logging

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to stderr. Verbose enables debug output; json
// switches from the human readable console encoding to one JSON object per
// line.
func New(verbose, json bool) *zap.Logger {
	return NewTo(os.Stderr, verbose, json)
}

// NewTo is New with an explicit destination.
func NewTo(w io.Writer, verbose, json bool) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	var encoder zapcore.Encoder
	if json {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.TimeKey = "timestamp"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.MessageKey = "message"
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = ""
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core)
}

// OrNop returns l, or a logger that discards everything when l is nil.
func OrNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
