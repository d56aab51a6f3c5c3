// Package logging defines the structured logger interface the client
// injects into the request driver, defaulting to a no-op
// implementation so the core never forces a concrete backend on
// callers. A zerolog adapter is provided for tests and examples.
package logging

import "github.com/rs/zerolog"

// Logger accepts structured key-value pairs alongside a message, in
// alternating key/value order (kv[0] is a key, kv[1] its value, ...).
// A key that isn't a string, or a trailing unpaired key, is dropped.
type Logger interface {
	Debug(msg string, kv ...interface{})
	Info(msg string, kv ...interface{})
	Warn(msg string, kv ...interface{})
	Error(msg string, kv ...interface{})
}

type noop struct{}

// NoOp returns a Logger that discards everything, the client's default.
func NoOp() Logger { return noop{} }

func (noop) Debug(string, ...interface{}) {}
func (noop) Info(string, ...interface{})  {}
func (noop) Warn(string, ...interface{})  {}
func (noop) Error(string, ...interface{}) {}

type zerologAdapter struct {
	logger zerolog.Logger
}

// NewZerolog adapts a zerolog.Logger to the Logger interface.
func NewZerolog(l zerolog.Logger) Logger {
	return zerologAdapter{logger: l}
}

func (z zerologAdapter) event(ev *zerolog.Event, msg string, kv []interface{}) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

func (z zerologAdapter) Debug(msg string, kv ...interface{}) {
	z.event(z.logger.Debug(), msg, kv)
}

func (z zerologAdapter) Info(msg string, kv ...interface{}) {
	z.event(z.logger.Info(), msg, kv)
}

func (z zerologAdapter) Warn(msg string, kv ...interface{}) {
	z.event(z.logger.Warn(), msg, kv)
}

func (z zerologAdapter) Error(msg string, kv ...interface{}) {
	z.event(z.logger.Error(), msg, kv)
}
