package log

import (
	"context"
	"io"
	"os"
	"sync"

	cerrors "github.com/cockroachdb/errors"
	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/jetscope/pkg/errors"
)

const (
	// ErrAttrKey is the key errors are logged under.
	ErrAttrKey = "error"
	// StacktraceAttrKey holds the stack captured by cockroachdb/errors.
	StacktraceAttrKey = "error.stacktrace"
)

// ZerologLogger implements Logger on top of zerolog.
type ZerologLogger struct {
	zl    zerolog.Logger
	level *levelVar
}

// levelVar is shared by every logger derived from one provider so SetLevel
// applies to loggers already handed out.
type levelVar struct {
	mu    sync.RWMutex
	level Level
}

func (v *levelVar) get() Level {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.level
}

func (v *levelVar) set(l Level) {
	v.mu.Lock()
	v.level = l
	v.mu.Unlock()
}

// NewZerologLogger creates a logger writing JSON lines to w.
func NewZerologLogger(w io.Writer, level Level) *ZerologLogger {
	return &ZerologLogger{
		zl:    zerolog.New(w).With().Timestamp().Logger(),
		level: &levelVar{level: level},
	}
}

func toZerologLevel(l Level) zerolog.Level {
	switch {
	case l <= LevelDebug:
		return zerolog.DebugLevel
	case l <= LevelInfo:
		return zerolog.InfoLevel
	case l <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

func (z *ZerologLogger) log(level Level, msg string, fields []any) {
	if level < z.level.get() {
		return
	}
	ev := z.zl.WithLevel(toZerologLevel(level))
	if len(fields) > 0 {
		if err, ok := fields[0].(error); ok {
			addError(ev, err)
			fields = fields[1:]
		}
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(msg)
}

func addError(ev *zerolog.Event, err error) {
	ev.AnErr(ErrAttrKey, err)
	var m zerolog.LogObjectMarshaler
	if cerrors.As(err, &m) {
		ev.Object("error.detail", m)
	}
	if st := extractStacktrace(err); st != "" {
		ev.Str(StacktraceAttrKey, st)
	}
}

func extractStacktrace(err error) string {
	safeDetails := cerrors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// Debug implements Logger.Debug.
func (z *ZerologLogger) Debug(msg string, fields ...any) { z.log(LevelDebug, msg, fields) }

// Info implements Logger.Info.
func (z *ZerologLogger) Info(msg string, fields ...any) { z.log(LevelInfo, msg, fields) }

// Warn implements Logger.Warn.
func (z *ZerologLogger) Warn(msg string, fields ...any) { z.log(LevelWarn, msg, fields) }

// Error implements Logger.Error.
func (z *ZerologLogger) Error(msg string, fields ...any) { z.log(LevelError, msg, fields) }

// With implements Logger.With.
func (z *ZerologLogger) With(fields ...any) Logger {
	return &ZerologLogger{
		zl:    z.zl.With().Fields(fields).Logger(),
		level: z.level,
	}
}

// Enabled implements Logger.Enabled.
func (z *ZerologLogger) Enabled(_ context.Context, level Level) bool {
	return level >= z.level.get()
}

// ZerologProvider implements LoggerProvider.
type ZerologProvider struct {
	root *ZerologLogger
}

// NewZerologProvider returns a provider whose loggers write to w.
func NewZerologProvider(w io.Writer, level Level) *ZerologProvider {
	return &ZerologProvider{root: NewZerologLogger(w, level)}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *ZerologProvider) GetLogger() Logger { return p.root }

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *ZerologProvider) GetLoggerWithName(name string) Logger {
	return p.root.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *ZerologProvider) SetLevel(level Level) { p.root.level.set(level) }

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = NewZerologProvider(os.Stderr, LevelInfo)
)

func init() {
	errors.SetZerologWarnFunc(func(w error) {
		GetLoggerWithName("warnings").Warn(w.Error(), warningFields(w)...)
	})
}

func warningFields(w error) []any {
	if m, ok := w.(zerolog.LogObjectMarshaler); ok {
		return []any{"warning", m}
	}
	return nil
}

// SetProvider replaces the package-level provider. Tests use it with
// NewTestLoggerProvider to capture output.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
}

// GetLogger returns the default logger.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with the component name.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SetLevel sets the minimum level of the package-level provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	provider.SetLevel(level)
}
