package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

type level struct {
	tag string
	c   *color.Color
}

var (
	levelDebug = level{"[DEBUG]", color.New(color.FgHiBlack)}
	levelInfo  = level{"[INFO]", color.New(color.FgCyan)}
	levelWarn  = level{"[WARN]", color.New(color.FgYellow)}
	levelError = level{"[ERROR]", color.New(color.FgRed, color.Bold)}
)

// Logger is a levelled printf logger. Debug output is dropped unless Debug is
// set. It is safe for concurrent use.
type Logger struct {
	Debug bool

	mu    sync.Mutex
	out   io.Writer
	err   io.Writer
	plain bool
}

func NewLogger(debug bool) *Logger {
	return &Logger{Debug: debug, out: os.Stdout, err: os.Stderr}
}

// NewLoggerTo sends every level to w without colour.
func NewLoggerTo(w io.Writer, debug bool) *Logger {
	return &Logger{Debug: debug, out: w, err: w, plain: true}
}

func (l *Logger) write(w io.Writer, lv level, format string, args ...any) {
	tag := lv.tag
	if !l.plain {
		tag = lv.c.Sprint(tag)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = fmt.Fprintf(w, tag+" "+format, args...)
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.Debug {
		l.write(l.out, levelDebug, format, args...)
	}
}

func (l *Logger) Infof(format string, args ...any) {
	l.write(l.out, levelInfo, format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.write(l.err, levelWarn, format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.write(l.err, levelError, format, args...)
}
