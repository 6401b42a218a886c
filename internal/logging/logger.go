// Package logging emits one JSON object per line, which is what the log
// pipeline ingests. Handlers and services attach context through field maps
// rather than formatting it into the message.
package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// LogEntry is the wire shape of a single log line.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// Logger writes levelled entries to a single destination. Base fields set
// with WithField ride along on every entry the derived logger emits.
type Logger struct {
	mu   sync.Mutex
	out  io.Writer
	min  Level
	base map[string]any
}

func New() *Logger {
	return &Logger{out: os.Stdout, min: LevelInfo}
}

func (l *Logger) SetOutput(w io.Writer) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
	return l
}

func (l *Logger) SetLevel(min Level) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.min = min
	return l
}

// WithField derives a logger that stamps key/value onto every entry. The
// receiver is left untouched.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	base := make(map[string]any, len(l.base)+len(fields))
	for k, v := range l.base {
		base[k] = v
	}
	for k, v := range fields {
		base[k] = v
	}
	return &Logger{out: l.out, min: l.min, base: base}
}

func (l *Logger) Debug(msg string, fields ...map[string]any) { l.emit(LevelDebug, msg, fields) }
func (l *Logger) Info(msg string, fields ...map[string]any)  { l.emit(LevelInfo, msg, fields) }
func (l *Logger) Warn(msg string, fields ...map[string]any)  { l.emit(LevelWarn, msg, fields) }
func (l *Logger) Error(msg string, fields ...map[string]any) { l.emit(LevelError, msg, fields) }

func (l *Logger) emit(level Level, msg string, extra []map[string]any) {
	if level < l.min {
		return
	}

	merged := make(map[string]any, len(l.base))
	for k, v := range l.base {
		merged[k] = v
	}
	for _, f := range extra {
		for k, v := range f {
			merged[k] = v
		}
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
	}
	if len(merged) > 0 {
		entry.Fields = merged
	}

	line, err := json.Marshal(entry)
	if err != nil {
		// A field that cannot marshal must not swallow the entry.
		line = []byte(entry.Timestamp + " " + entry.Level + " " + msg)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(line, '\n'))
}

// Default backs the package-level helpers used where threading a logger
// through would add noise, notification delivery mostly.
var Default = New()

func Info(msg string, fields ...map[string]any)  { Default.Info(msg, fields...) }
func Warn(msg string, fields ...map[string]any)  { Default.Warn(msg, fields...) }
func Error(msg string, fields ...map[string]any) { Default.Error(msg, fields...) }
