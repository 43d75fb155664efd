// Package log is the structured logger shared by the call screening daemon.
// It wraps zap behind a small interface so components can take a Logger and
// tests can swap in their own.
package log

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global Logger = newZapLogger(false, zapcore.InfoLevel)

// SetLogger replaces the global logger instance.
func SetLogger(l Logger) {
	global = l
}

// GetLogger returns the current global logger instance.
func GetLogger() Logger {
	return global
}

// Logger defines the call screening logging interface.
type Logger interface {
	Info(fields map[string]any, msg string)
	Error(fields map[string]any, msg string)
	Debug(fields map[string]any, msg string)
	Warn(fields map[string]any, msg string)
	Panic(fields map[string]any, msg string)
	Fatal(fields map[string]any, msg string)
}

// Configure replaces the global logger. "prod" logs JSON; any other env
// logs colored console lines. Output always goes to stderr, stdout belongs
// to call events.
func Configure(env, level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	global = newZapLogger(env != "prod", lvl)
	return nil
}

func Info(fields map[string]any, msg string)  { global.Info(fields, msg) }
func Error(fields map[string]any, msg string) { global.Error(fields, msg) }
func Debug(fields map[string]any, msg string) { global.Debug(fields, msg) }
func Warn(fields map[string]any, msg string)  { global.Warn(fields, msg) }
func Panic(fields map[string]any, msg string) { global.Panic(fields, msg) }
func Fatal(fields map[string]any, msg string) { global.Fatal(fields, msg) }

type zapLogger struct {
	base *zap.Logger
}

func newZapLogger(dev bool, level zapcore.Level) Logger {
	return &zapLogger{base: zap.New(newCore(dev, level, zapcore.Lock(os.Stderr)))}
}

func newCore(dev bool, level zapcore.Level, out zapcore.WriteSyncer) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	if dev {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encCfg.TimeKey = "time"
	encCfg.MessageKey = "msg"
	encCfg.LevelKey = "level"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	enc := zapcore.NewJSONEncoder(encCfg)
	if dev {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewCore(enc, out, level)
}

// write logs msg at lvl. Check runs the panic and fatal hooks after writing.
func (l *zapLogger) write(lvl zapcore.Level, fields map[string]any, msg string) {
	if ce := l.base.Check(lvl, msg); ce != nil {
		ce.Write(zapFields(fields)...)
	}
}

func (l *zapLogger) Info(f map[string]any, msg string)  { l.write(zapcore.InfoLevel, f, msg) }
func (l *zapLogger) Error(f map[string]any, msg string) { l.write(zapcore.ErrorLevel, f, msg) }
func (l *zapLogger) Debug(f map[string]any, msg string) { l.write(zapcore.DebugLevel, f, msg) }
func (l *zapLogger) Warn(f map[string]any, msg string)  { l.write(zapcore.WarnLevel, f, msg) }
func (l *zapLogger) Panic(f map[string]any, msg string) { l.write(zapcore.PanicLevel, f, msg) }
func (l *zapLogger) Fatal(f map[string]any, msg string) { l.write(zapcore.FatalLevel, f, msg) }

// zapFields converts m to zap fields in key order.
func zapFields(m map[string]any) []zap.Field {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(m))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, m[k]))
	}
	return fields
}

type noopLogger struct{}

func (noopLogger) Info(map[string]any, string)  {}
func (noopLogger) Error(map[string]any, string) {}
func (noopLogger) Debug(map[string]any, string) {}
func (noopLogger) Warn(map[string]any, string)  {}
func (noopLogger) Panic(map[string]any, string) {}
func (noopLogger) Fatal(map[string]any, string) {}

// NewNoopLogger returns a Logger that discards all log messages.
func NewNoopLogger() Logger {
	return noopLogger{}
}
