// Package utils holds small helpers shared across modules.
package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// DefaultSlowThreshold is the duration above which a timed operation is logged as slow
const DefaultSlowThreshold = 10 * time.Second

// Timer measures the duration of one operation and logs it on Stop
type Timer struct {
	start     time.Time
	name      string
	log       zerolog.Logger
	threshold time.Duration
	fields    map[string]interface{}
}

// NewTimer starts a timer with the default slow threshold
func NewTimer(name string, log zerolog.Logger) *Timer {
	return &Timer{
		start:     time.Now(),
		name:      name,
		log:       log,
		threshold: DefaultSlowThreshold,
	}
}

// WithThreshold overrides the slow-operation threshold
func (t *Timer) WithThreshold(d time.Duration) *Timer {
	t.threshold = d
	return t
}

// With attaches a field logged alongside the measurement
func (t *Timer) With(key string, value interface{}) *Timer {
	if t.fields == nil {
		t.fields = make(map[string]interface{})
	}
	t.fields[key] = value
	return t
}

// Stop logs the elapsed duration and returns it
func (t *Timer) Stop() time.Duration {
	duration := time.Since(t.start)

	event := t.log.Debug()
	if duration > t.threshold {
		event = t.log.Warn()
	}
	event = event.
		Str("operation", t.name).
		Dur("duration_ms", duration)

	for key, value := range t.fields {
		switch v := value.(type) {
		case string:
			event = event.Str(key, v)
		case int:
			event = event.Int(key, v)
		case float64:
			event = event.Float64(key, v)
		case bool:
			event = event.Bool(key, v)
		default:
			event = event.Interface(key, v)
		}
	}

	if duration > t.threshold {
		event.Msg("Slow operation detected")
	} else {
		event.Msg("Performance measurement")
	}
	return duration
}

// MeasureQuery measures a database query and logs rows affected
//
// Usage:
//
//	done := utils.MeasureQuery("evict_expired", log)
//	res, err := db.Exec(...)
//	done(n)
func MeasureQuery(queryName string, log zerolog.Logger) func(rowsAffected int64) {
	start := time.Now()

	return func(rowsAffected int64) {
		duration := time.Since(start)

		log.Debug().
			Str("query", queryName).
			Dur("duration_ms", duration).
			Int64("rows_affected", rowsAffected).
			Msg("Database query completed")

		if duration > 5*time.Second {
			log.Warn().
				Str("query", queryName).
				Dur("duration", duration).
				Msg("Slow database query detected")
		}
	}
}
