// Package logging provides component-scoped leveled logging for the
// automation engine.
package logging

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a configuration string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return Level(s)
	default:
		return LevelInfo
	}
}

// Logger writes leveled, component-tagged log lines.
type Logger struct {
	component string
	minLevel  Level
	out       io.Writer
	mu        sync.Mutex
}

// New creates a logger for a component, writing to stdout at INFO.
func New(component string) *Logger {
	return &Logger{
		component: component,
		minLevel:  LevelInfo,
		out:       os.Stdout,
	}
}

// SetMinLevel sets the minimum level to output.
func (l *Logger) SetMinLevel(level Level) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
	return l
}

// SetOutput redirects log output.
func (l *Logger) SetOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	return l
}

// Debug logs a debug message with optional context fields.
func (l *Logger) Debug(message string, fields ...map[string]interface{}) {
	l.log(LevelDebug, message, nil, fields)
}

// Info logs an info message with optional context fields.
func (l *Logger) Info(message string, fields ...map[string]interface{}) {
	l.log(LevelInfo, message, nil, fields)
}

// Warn logs a warning with optional context fields.
func (l *Logger) Warn(message string, fields ...map[string]interface{}) {
	l.log(LevelWarn, message, nil, fields)
}

// Error logs an error with optional context fields.
func (l *Logger) Error(message string, err error, fields ...map[string]interface{}) {
	l.log(LevelError, message, err, fields)
}

func (l *Logger) log(level Level, message string, err error, fields []map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if levelRank[level] < levelRank[l.minLevel] {
		return
	}

	ts := time.Now().Format("2006-01-02 15:04:05.000")
	line := fmt.Sprintf("[%s] %s [%s] %s", ts, level, l.component, message)

	if err != nil {
		line += fmt.Sprintf(" | error=%v", err)
	}

	for _, ctx := range fields {
		// Keys are sorted so lines are stable and diffable.
		keys := make([]string, 0, len(ctx))
		for k := range ctx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, ctx[k])
		}
	}

	fmt.Fprintln(l.out, line)
}
