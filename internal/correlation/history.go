// Package correlation holds the per-instrument history of price crossovers
// used to pair them with a later average-stack crossover.
package correlation

import "time"

// History is a bounded FIFO of crossover timestamps. When full, appending
// evicts the oldest entry. It is not safe for concurrent use; access it
// through Store.With.
type History struct {
	times    []time.Time
	capacity int

	lastBar time.Time
	counted bool
}

// NewHistory creates an empty history holding at most capacity entries.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		times:    make([]time.Time, 0, capacity),
		capacity: capacity,
	}
}

// Append records t, evicting the oldest entry past capacity.
func (h *History) Append(t time.Time) {
	if len(h.times) == h.capacity {
		copy(h.times, h.times[1:])
		h.times = h.times[:len(h.times)-1]
	}
	h.times = append(h.times, t)
}

// CountBar reports whether the bar opened at barTime has not been counted yet
// and marks it counted. Bars at or before the last counted bar return false, so
// several triggers seeing the same bar record one crossover. Clear keeps the mark.
func (h *History) CountBar(barTime time.Time) bool {
	if h.counted && !barTime.After(h.lastBar) {
		return false
	}
	h.lastBar = barTime
	h.counted = true
	return true
}

// Oldest returns the earliest retained timestamp.
func (h *History) Oldest() (time.Time, bool) {
	if len(h.times) == 0 {
		return time.Time{}, false
	}
	return h.times[0], true
}

// Len returns the number of retained timestamps.
func (h *History) Len() int { return len(h.times) }

// Cap returns the fixed capacity.
func (h *History) Cap() int { return h.capacity }

// Clear empties the history.
func (h *History) Clear() { h.times = h.times[:0] }

// Times returns a copy of the retained timestamps, oldest first.
func (h *History) Times() []time.Time {
	out := make([]time.Time, len(h.times))
	copy(out, h.times)
	return out
}
