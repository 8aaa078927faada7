// Package logx is the component-tagged structured logger used across the HAL.
// It defaults to warn level so firmware builds stay quiet unless asked.
package logx

import (
	"io"
	"log/slog"
	"os"
	"sync"
)

// Component identifies a subsystem for log filtering.
type Component string

const (
	Device Component = "device"
	Clock  Component = "clock"
	GPIO   Component = "gpio"
	IRQ    Component = "irq"
	GCR    Component = "gcr"
	Driver Component = "driver"
	Config Component = "config"
)

var (
	logger *slog.Logger
	level  = new(slog.LevelVar)
	mu     sync.RWMutex
)

func init() {
	level.Set(slog.LevelWarn)
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// SetLevel sets the minimum level for all HAL logging.
func SetLevel(l slog.Level) { level.Set(l) }

// Level returns the current minimum level.
func Level() slog.Level { return level.Level() }

// SetLogger replaces the logger. A nil logger restores the stderr default.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}
	logger = l
}

// New returns a text logger on w that honours the shared level.
func New(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func current() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	return l
}

func with(c Component, args []any) []any {
	return append([]any{"component", string(c)}, args...)
}

func Debug(c Component, msg string, args ...any) { current().Debug(msg, with(c, args)...) }
func Info(c Component, msg string, args ...any)  { current().Info(msg, with(c, args)...) }
func Warn(c Component, msg string, args ...any)  { current().Warn(msg, with(c, args)...) }
func Error(c Component, msg string, args ...any) { current().Error(msg, with(c, args)...) }
