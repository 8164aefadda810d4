package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init initializes the default logger with a console writer on stderr.
// It ensures that the logger is initialized only once.
func Init(level string) {
	once.Do(func() {
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil || level == "" {
			lvl = zerolog.InfoLevel
		}

		writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
		defaultLogger = zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	})
}

// Get returns the initialized default logger. It calls Init() with the info
// level to ensure the logger is ready before returning it.
func Get() zerolog.Logger {
	Init("info")
	return defaultLogger
}

// Debug logs a debug message with optional key/value fields.
func Debug(msg string, fields ...any) {
	l := Get()
	logEvent(l.Debug(), msg, fields)
}

// Info logs an informational message with optional key/value fields.
func Info(msg string, fields ...any) {
	l := Get()
	logEvent(l.Info(), msg, fields)
}

// Warn logs a warning message with optional key/value fields.
func Warn(msg string, fields ...any) {
	l := Get()
	logEvent(l.Warn(), msg, fields)
}

// Error logs an error message. A non-nil err is attached as the "error" field.
func Error(msg string, err error, fields ...any) {
	l := Get()
	ev := l.Error()
	if err != nil {
		ev = ev.Err(err)
	}
	logEvent(ev, msg, fields)
}

func logEvent(ev *zerolog.Event, msg string, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}
