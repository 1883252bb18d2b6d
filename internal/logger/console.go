// Package logger provides the leveled console logger used across graphscout.
// Output is prefixed with [HH:MM:SS] timestamps; color is enabled only when
// writing to a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a level name to a Level, defaulting to info for empty or
// unknown names.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger writes leveled, timestamped messages to a single writer.
type Logger struct {
	mu       sync.Mutex
	writer   io.Writer
	level    Level
	colorize bool
}

// New creates a Logger. A nil writer discards all output.
func New(writer io.Writer, level Level) *Logger {
	return &Logger{
		writer:   writer,
		level:    level,
		colorize: isTerminal(writer),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, "DEBUG", color.FgHiBlack, format, args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, "INFO", color.FgCyan, format, args...)
}

// Warnf logs at warn level.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, "WARN", color.FgYellow, format, args...)
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, "ERROR", color.FgRed, format, args...)
}

func (l *Logger) logf(level Level, tag string, attr color.Attribute, format string, args ...any) {
	if l == nil || l.writer == nil || level < l.level {
		return
	}

	label := fmt.Sprintf("%-5s", tag)
	if l.colorize {
		label = color.New(attr).Sprint(label)
	}
	line := fmt.Sprintf("[%s] %s %s\n", time.Now().Format("15:04:05"), label, fmt.Sprintf(format, args...))

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.writer, line)
}
