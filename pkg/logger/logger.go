package logger

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

// Init sets the global log level. Unrecognized levels fall back to info.
func Init(level string) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	mu.Lock()
	log = log.Level(parsed)
	mu.Unlock()
}

func emit(event *zerolog.Event, component, msg string, fields map[string]interface{}) {
	event = event.Str("component", component)
	for key, value := range fields {
		event = event.Interface(key, value)
	}
	event.Msg(msg)
}

func DebugCF(component, msg string, fields map[string]interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	emit(log.Debug(), component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	emit(log.Info(), component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	emit(log.Warn(), component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	emit(log.Error(), component, msg, fields)
}
