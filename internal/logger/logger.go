package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Logger struct {
	zl zerolog.Logger
}

type Config struct {
	Level      string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error"`
	Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output     string `yaml:"output" default:"stderr"` // stdout, stderr, or file path
	TimeFormat string `yaml:"time_format"`
}

func New(cfg *Config) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	var output io.Writer
	switch cfg.Output {
	case "", "stderr":
		output = os.Stderr
	case "stdout":
		output = os.Stdout
	default:
		file, err := os.OpenFile(cfg.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("could not open log file: %w", err)
		}
		output = file
	}

	if cfg.TimeFormat == "" {
		cfg.TimeFormat = time.RFC3339
	}
	if cfg.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: cfg.TimeFormat}
	}
	return NewWithWriter(output, level), nil
}

// NewWithWriter builds a JSON logger on w.
func NewWithWriter(w io.Writer, level zerolog.Level) *Logger {
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// With returns a child logger that always carries fields.
func (l *Logger) With(fields ...Field) *Logger {
	ctx := l.zl.With()
	for _, f := range fields {
		ctx = f.addToContext(ctx)
	}
	return &Logger{zl: ctx.Logger()}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.emit(l.zl.Debug(), msg, fields) }
func (l *Logger) Info(msg string, fields ...Field)  { l.emit(l.zl.Info(), msg, fields) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.emit(l.zl.Warn(), msg, fields) }
func (l *Logger) Error(msg string, fields ...Field) { l.emit(l.zl.Error(), msg, fields) }

func (l *Logger) emit(event *zerolog.Event, msg string, fields []Field) {
	if event == nil {
		return
	}
	for _, f := range fields {
		f.addTo(event)
	}
	event.Msg(msg)
}

// Field is a typed structured-logging attribute.
type Field struct {
	key   string
	kind  fieldKind
	str   string
	num   int64
	float float64
	err   error
	any   interface{}
}

type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
	kindFloat
	kindError
	kindAny
)

func (f Field) addTo(e *zerolog.Event) {
	switch f.kind {
	case kindString:
		e.Str(f.key, f.str)
	case kindInt:
		e.Int64(f.key, f.num)
	case kindFloat:
		e.Float64(f.key, f.float)
	case kindError:
		e.Err(f.err)
	default:
		e.Interface(f.key, f.any)
	}
}

func (f Field) addToContext(c zerolog.Context) zerolog.Context {
	switch f.kind {
	case kindString:
		return c.Str(f.key, f.str)
	case kindInt:
		return c.Int64(f.key, f.num)
	case kindFloat:
		return c.Float64(f.key, f.float)
	case kindError:
		return c.Err(f.err)
	default:
		return c.Interface(f.key, f.any)
	}
}

// --- Field constructors ---

func String(key, value string) Field { return Field{key: key, kind: kindString, str: value} }

func Strings(key string, value []string) Field {
	return String(key, strings.Join(value, ", "))
}

func Int(key string, value int) Field { return Field{key: key, kind: kindInt, num: int64(value)} }

func Float(key string, value float64) Field { return Field{key: key, kind: kindFloat, float: value} }

func Duration(key string, value time.Duration) Field {
	return Field{key: key, kind: kindInt, num: int64(value / time.Millisecond)}
}

func Error(err error) Field { return Field{key: "error", kind: kindError, err: err} }

func Any(key string, value interface{}) Field { return Field{key: key, kind: kindAny, any: value} }
