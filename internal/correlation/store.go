package correlation

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownInstrument is returned for instruments the store was not created with.
var ErrUnknownInstrument = errors.New("unknown instrument")

type entry struct {
	mu      sync.Mutex
	history *History
}

// Store owns one History per instrument. The instrument set is fixed at
// creation; each instrument has its own lock so instruments never contend.
type Store struct {
	entries map[string]*entry
	symbols []string
}

// NewStore creates empty histories for every instrument.
func NewStore(instruments []string, capacity int) *Store {
	s := &Store{entries: make(map[string]*entry, len(instruments))}
	for _, sym := range instruments {
		if _, dup := s.entries[sym]; dup {
			continue
		}
		s.entries[sym] = &entry{history: NewHistory(capacity)}
		s.symbols = append(s.symbols, sym)
	}
	return s
}

// Instruments returns the configured instruments in creation order.
func (s *Store) Instruments() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Has reports whether instrument is configured.
func (s *Store) Has(instrument string) bool {
	_, ok := s.entries[instrument]
	return ok
}

// With runs fn while holding the instrument's lock. Everything fn does to the
// history is one transaction with respect to other callers.
func (s *Store) With(instrument string, fn func(h *History)) error {
	e, ok := s.entries[instrument]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstrument, instrument)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.history)
	return nil
}

// Sizes returns the current history length per instrument, sorted by symbol.
func (s *Store) Sizes() []Size {
	out := make([]Size, 0, len(s.entries))
	for sym, e := range s.entries {
		e.mu.Lock()
		out = append(out, Size{Instrument: sym, Len: e.history.Len()})
		e.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Instrument < out[j].Instrument })
	return out
}

// Size is the history length of one instrument.
type Size struct {
	Instrument string `json:"instrument"`
	Len        int    `json:"price_crossovers"`
}
