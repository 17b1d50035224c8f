package models

import "time"

// Bar is one daily OHLCV observation.
type Bar struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is a chronological series of bars for one symbol.
// It is treated as immutable once a provider returns it.
type PriceSeries struct {
	Symbol string `json:"symbol"`
	Period string `json:"period"`
	Source string `json:"source"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of observations.
func (s PriceSeries) Len() int { return len(s.Bars) }

// Empty reports whether the provider returned no observations.
func (s PriceSeries) Empty() bool { return len(s.Bars) == 0 }

// Closes returns the closing prices in chronological order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Last returns the most recent bar. ok is false for an empty series.
func (s PriceSeries) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}
