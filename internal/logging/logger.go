package logging

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/rs/zerolog"
)

// Field is a structured key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// String builds a string-valued Field.
func String(key, value string) Field { return Field{Key: key, Value: value} }

// Int builds an int-valued Field.
func Int(key string, value int) Field { return Field{Key: key, Value: value} }

// Uint64 builds a uint64-valued Field.
func Uint64(key string, value uint64) Field { return Field{Key: key, Value: value} }

// Float64 builds a float64-valued Field.
func Float64(key string, value float64) Field { return Field{Key: key, Value: value} }

// Err builds a Field under the conventional "error" key.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err}
}

// Logger is the structured logging interface every component in this
// module logs through, so the backend (zerolog, or plain stdlib log for
// environments that can't take the dependency) can be swapped without
// touching call sites.
type Logger interface {
	Info(msg string, fields ...Field)
	Error(msg string, err error, fields ...Field)
	Debug(msg string, fields ...Field)
	Printf(format string, args ...any)
	Println(args ...any)
}

// ZerologAdapter implements Logger on top of zerolog.Logger.
type ZerologAdapter struct {
	zl zerolog.Logger
}

// NewZerologAdapter wraps an already-configured zerolog.Logger.
func NewZerologAdapter(zl zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{zl: zl}
}

// NewDefaultLogger returns a ZerologAdapter writing human-readable output
// to stderr at info level, suitable for a CLI's default diagnostic stream.
func NewDefaultLogger() *ZerologAdapter {
	return NewZerologAdapter(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger())
}

// NewLogger returns a ZerologAdapter writing JSON lines to w, stamped with
// a "component" field identifying the caller.
func NewLogger(w io.Writer, component string) *ZerologAdapter {
	zl := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return NewZerologAdapter(zl)
}

func applyZerologFields(e *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			e = e.Str(f.Key, v)
		case int:
			e = e.Int(f.Key, v)
		case int64:
			e = e.Int64(f.Key, v)
		case uint64:
			e = e.Uint64(f.Key, v)
		case float64:
			e = e.Float64(f.Key, v)
		case bool:
			e = e.Bool(f.Key, v)
		case error:
			e = e.AnErr(f.Key, v)
		default:
			e = e.Interface(f.Key, v)
		}
	}
	return e
}

// Info implements Logger.
func (a *ZerologAdapter) Info(msg string, fields ...Field) {
	applyZerologFields(a.zl.Info(), fields).Msg(msg)
}

// Error implements Logger.
func (a *ZerologAdapter) Error(msg string, err error, fields ...Field) {
	e := a.zl.Error()
	if err != nil {
		e = e.Err(err)
	}
	applyZerologFields(e, fields).Msg(msg)
}

// Debug implements Logger.
func (a *ZerologAdapter) Debug(msg string, fields ...Field) {
	applyZerologFields(a.zl.Debug(), fields).Msg(msg)
}

// Printf implements Logger by logging a formatted message at info level.
func (a *ZerologAdapter) Printf(format string, args ...any) {
	a.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Println implements Logger by logging its arguments space-joined at info level.
func (a *ZerologAdapter) Println(args ...any) {
	a.zl.Info().Msg(fmt.Sprintln(args...))
}

// StdLoggerAdapter implements Logger on top of the standard library's
// *log.Logger, for environments that want plain-text output with no
// structured-logging dependency.
type StdLoggerAdapter struct {
	std *log.Logger
}

// NewStdLoggerAdapter wraps an existing *log.Logger.
func NewStdLoggerAdapter(std *log.Logger) *StdLoggerAdapter {
	return &StdLoggerAdapter{std: std}
}

func formatStdFields(fields []Field) string {
	s := ""
	for _, f := range fields {
		s += fmt.Sprintf(" %s=%v", f.Key, f.Value)
	}
	return s
}

// Info implements Logger.
func (a *StdLoggerAdapter) Info(msg string, fields ...Field) {
	a.std.Printf("[INFO] %s%s", msg, formatStdFields(fields))
}

// Error implements Logger.
func (a *StdLoggerAdapter) Error(msg string, err error, fields ...Field) {
	if err != nil {
		a.std.Printf("[ERROR] %s: %v%s", msg, err, formatStdFields(fields))
		return
	}
	a.std.Printf("[ERROR] %s%s", msg, formatStdFields(fields))
}

// Debug implements Logger.
func (a *StdLoggerAdapter) Debug(msg string, fields ...Field) {
	a.std.Printf("[DEBUG] %s%s", msg, formatStdFields(fields))
}

// Printf implements Logger.
func (a *StdLoggerAdapter) Printf(format string, args ...any) {
	a.std.Printf(format, args...)
}

// Println implements Logger.
func (a *StdLoggerAdapter) Println(args ...any) {
	a.std.Println(args...)
}
