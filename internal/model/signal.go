package model

import "time"

// TriggerType indicates which path invoked an evaluation.
type TriggerType string

const (
	TriggerPeriodic TriggerType = "PERIODIC"
	TriggerOnDemand TriggerType = "ON_DEMAND"
	TriggerCommand  TriggerType = "COMMAND"
	TriggerStartup  TriggerType = "STARTUP"
)

// CrossoverKind names one of the two detected conditions.
type CrossoverKind string

const (
	CrossoverPrice   CrossoverKind = "PRICE"
	CrossoverAverage CrossoverKind = "AVERAGE_STACK"
)

// Direction is the side a crossover flipped to.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionBullish
	DirectionBearish
)

func (d Direction) String() string {
	switch d {
	case DirectionBullish:
		return "BULLISH"
	case DirectionBearish:
		return "BEARISH"
	default:
		return "NONE"
	}
}

// Alert is a confirmed signal: a price crossover followed by an
// average-stack crossover inside the correlation window.
type Alert struct {
	ID         string
	Instrument string
	Message    string
	Close      float64
	Direction  Direction
	FiredAt    time.Time
	Elapsed    time.Duration // since the oldest recorded price crossover
	Trigger    TriggerType
}

// InstrumentSnapshot is a read-only copy of an instrument's correlation state.
type InstrumentSnapshot struct {
	Instrument      string      `json:"instrument"`
	PriceCrossovers []time.Time `json:"price_crossovers"`
	Capacity        int         `json:"capacity"`
}
