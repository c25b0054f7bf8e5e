package domain

import "time"

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// RunConfig is the immutable input of one optimization run
type RunConfig struct {
	Tickers      []string  // User-facing tickers, without exchange suffix
	Start        time.Time // Inclusive
	End          time.Time // Exclusive
	Objective    Objective
	RiskFreeRate float64 // Annualized fraction, e.g. 0.0688
}

// WithTickers returns a copy of the config with its own ticker slice
func (c RunConfig) WithTickers(tickers []string) RunConfig {
	c.Tickers = append([]string(nil), tickers...)
	return c
}

// PricePoint is one daily close
type PricePoint struct {
	Date  time.Time `msgpack:"d"`
	Close float64   `msgpack:"c"`
}

// PriceSeries is the daily close history of one symbol, ascending by date
type PriceSeries struct {
	Symbol string       `msgpack:"s"`
	Points []PricePoint `msgpack:"p"`
}

// Closes returns the close of each point keyed by calendar day
func (s PriceSeries) Closes() map[time.Time]float64 {
	out := make(map[time.Time]float64, len(s.Points))
	for _, p := range s.Points {
		out[TruncateDay(p.Date)] = p.Close
	}
	return out
}

// TruncateDay drops the time-of-day component in UTC
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
