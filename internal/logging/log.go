package logging

import (
	"go.uber.org/zap"
)

// Fields to be added to a logger
type Fields map[string]interface{}

// Logger is a sugared zap logger carrying a set of fields.
type Logger struct {
	logger *zap.SugaredLogger
	fields []interface{}
}

// New returns a production logger. Use Nop in tests.
func New(debug bool) (Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return Logger{}, err
	}

	return Logger{logger: l.Sugar()}, nil
}

// Nop discards everything.
func Nop() Logger {
	return Logger{logger: zap.NewNop().Sugar()}
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) Logger {
	return Logger{logger: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// WithField add a key/value pair to its fields
func (l Logger) WithField(key string, value interface{}) Logger {
	fields := make([]interface{}, 0, len(l.fields)+2)
	fields = append(fields, l.fields...)
	l.fields = append(fields, key, value)
	return l
}

// WithFields add multiple key/value pairs to its fields
func (l Logger) WithFields(kvs Fields) Logger {
	for k, v := range kvs {
		l = l.WithField(k, v)
	}
	return l
}

func (l Logger) sugar() *zap.SugaredLogger {
	if l.logger == nil {
		return zap.NewNop().Sugar()
	}
	return l.logger.With(l.fields...)
}

func (l Logger) Debug(args ...interface{}) {
	l.sugar().Debug(args...)
}

func (l Logger) Info(args ...interface{}) {
	l.sugar().Info(args...)
}

func (l Logger) Warn(args ...interface{}) {
	l.sugar().Warn(args...)
}

func (l Logger) Error(args ...interface{}) {
	l.sugar().Error(args...)
}

func (l Logger) Fatal(args ...interface{}) {
	l.sugar().Fatal(args...)
}

// Sync flushes buffered entries, call before exit.
func (l Logger) Sync() error {
	if l.logger == nil {
		return nil
	}
	return l.logger.Sync()
}
