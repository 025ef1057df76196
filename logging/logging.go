// Package logging provides the small structured-logging wrapper used across
// this module: zap-backed, keysAndValues-style structured logging without a
// net log appender or multi-logger registry, which a single-frame library
// has no use for.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Logger is the structured logger interface used throughout this module. It
// carries both the keysAndValues style used by the engine's internal stages
// and the printf style a command-line entry point expects from whatever
// logger it hands to a long-running main function.
type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Named(name string) Logger
	Sync() error
}

type impl struct {
	sugar *zap.SugaredLogger
}

func (l *impl) Debugw(msg string, kv ...interface{}) { l.sugar.Debugw(msg, kv...) }
func (l *impl) Infow(msg string, kv ...interface{})  { l.sugar.Infow(msg, kv...) }
func (l *impl) Warnw(msg string, kv ...interface{})  { l.sugar.Warnw(msg, kv...) }
func (l *impl) Errorw(msg string, kv ...interface{}) { l.sugar.Errorw(msg, kv...) }
func (l *impl) Debugf(template string, args ...interface{}) { l.sugar.Debugf(template, args...) }
func (l *impl) Infof(template string, args ...interface{})  { l.sugar.Infof(template, args...) }
func (l *impl) Warnf(template string, args ...interface{})  { l.sugar.Warnf(template, args...) }
func (l *impl) Errorf(template string, args ...interface{}) { l.sugar.Errorf(template, args...) }
func (l *impl) Sync() error                                 { return l.sugar.Sync() }

func (l *impl) Named(name string) Logger {
	return &impl{sugar: l.sugar.Named(name)}
}

// NewLogger returns a logger that emits Info+ logs to stderr.
func NewLogger(name string) Logger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return &impl{sugar: base.Sugar().Named(name)}
}

// NewDebugLogger returns a logger that emits Debug+ logs to stderr.
func NewDebugLogger(name string) Logger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}
	return &impl{sugar: base.Sugar().Named(name)}
}

// NewTestLogger returns a logger that writes through tb.Log.
func NewTestLogger(tb testing.TB) Logger {
	return &impl{sugar: zaptest.NewLogger(tb).Sugar()}
}
