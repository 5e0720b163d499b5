package emitter

import "log/slog"

// Sink is the minimal emission contract shared by all emitters.
type Sink interface {
	Emit(name, units string, value float64)
}

// Multi fans every metric out to each wrapped sink.
type Multi []Sink

// Emit forwards the metric to every sink in order.
func (m Multi) Emit(name, units string, value float64) {
	for _, s := range m {
		s.Emit(name, units, value)
	}
}

// Log writes every metric to the debug log. Useful as the sole emitter when
// no backend is configured.
type Log struct{}

// Emit logs the metric at debug level.
func (Log) Emit(name, units string, value float64) {
	slog.Debug("metric", "name", name, "units", units, "value", value)
}
