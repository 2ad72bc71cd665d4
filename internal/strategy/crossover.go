package strategy

import "github.com/Alien67x6/mt5-monitoring-API/internal/model"

// PriceCrossover reports whether the close flipped from one side of all four
// indicators to the other side of all four between the last two samples.
func PriceCrossover(frame model.IndicatorFrame) model.Direction {
	prev, cur, ok := frame.LastPair()
	if !ok || !prev.Defined() || !cur.Defined() {
		return model.DirectionNone
	}
	switch {
	case allAbove(prev.Averages(), prev.Close) && allBelow(cur.Averages(), cur.Close):
		return model.DirectionBullish
	case allBelow(prev.Averages(), prev.Close) && allAbove(cur.Averages(), cur.Close):
		return model.DirectionBearish
	}
	return model.DirectionNone
}

// AverageCrossover reports whether the indicator stack reversed its full
// ordering: SMA150 > SMA75 > EMA50 > EMA20 into SMA150 < SMA75 < EMA50 < EMA20
// (bullish) or the reverse (bearish).
func AverageCrossover(frame model.IndicatorFrame) model.Direction {
	prev, cur, ok := frame.LastPair()
	if !ok || !prev.Defined() || !cur.Defined() {
		return model.DirectionNone
	}
	switch {
	case descending(prev.Averages()) && ascending(cur.Averages()):
		return model.DirectionBullish
	case ascending(prev.Averages()) && descending(cur.Averages()):
		return model.DirectionBearish
	}
	return model.DirectionNone
}

// DetectPriceCrossover is the boolean form of PriceCrossover.
func DetectPriceCrossover(frame model.IndicatorFrame) bool {
	return PriceCrossover(frame) != model.DirectionNone
}

// DetectAverageCrossover is the boolean form of AverageCrossover.
func DetectAverageCrossover(frame model.IndicatorFrame) bool {
	return AverageCrossover(frame) != model.DirectionNone
}

func allAbove(values [4]float64, price float64) bool {
	for _, v := range values {
		if !(v > price) {
			return false
		}
	}
	return true
}

func allBelow(values [4]float64, price float64) bool {
	for _, v := range values {
		if !(v < price) {
			return false
		}
	}
	return true
}

func descending(v [4]float64) bool {
	return v[0] > v[1] && v[1] > v[2] && v[2] > v[3]
}

func ascending(v [4]float64) bool {
	return v[0] < v[1] && v[1] < v[2] && v[2] < v[3]
}
