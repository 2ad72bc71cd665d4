package model

import (
	"math"
	"time"
)

// IndicatorSample holds the trend indicators computed for one bar.
// SMA fields are NaN until their window is full.
type IndicatorSample struct {
	Time   time.Time
	Close  float64
	SMA150 float64
	SMA75  float64
	EMA50  float64
	EMA20  float64
}

// Averages returns the four indicators ordered slowest to fastest.
func (s IndicatorSample) Averages() [4]float64 {
	return [4]float64{s.SMA150, s.SMA75, s.EMA50, s.EMA20}
}

// Defined reports whether every indicator has a value.
func (s IndicatorSample) Defined() bool {
	for _, v := range s.Averages() {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// IndicatorFrame is aligned 1:1 with the price bars it was computed from.
type IndicatorFrame struct {
	Samples []IndicatorSample
}

// Len returns the number of samples.
func (f IndicatorFrame) Len() int { return len(f.Samples) }

// LastPair returns the previous and current samples.
func (f IndicatorFrame) LastPair() (prev, cur IndicatorSample, ok bool) {
	n := len(f.Samples)
	if n < 2 {
		return IndicatorSample{}, IndicatorSample{}, false
	}
	return f.Samples[n-2], f.Samples[n-1], true
}

// Last returns the newest sample.
func (f IndicatorFrame) Last() (IndicatorSample, bool) {
	if len(f.Samples) == 0 {
		return IndicatorSample{}, false
	}
	return f.Samples[len(f.Samples)-1], true
}
