package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

const tolerance = 1e-9

func barsFromCloses(closes ...float64) []model.PriceBar {
	start := time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)
	bars := make([]model.PriceBar, len(closes))
	for i, c := range closes {
		bars[i] = model.PriceBar{
			Time:  start.Add(time.Duration(i) * time.Minute),
			Open:  c,
			High:  c,
			Low:   c,
			Close: c,
		}
	}
	return bars
}

func TestCalculateSMA(t *testing.T) {
	tests := []struct {
		name    string
		prices  []float64
		period  int
		want    float64
		wantErr bool
	}{
		{"exact window", []float64{1, 2, 3}, 3, 2, false},
		{"trailing window", []float64{10, 1, 2, 3}, 3, 2, false},
		{"not enough data", []float64{1, 2}, 3, 0, true},
		{"zero period", []float64{1, 2}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSMA(tt.prices, tt.period)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CalculateSMA() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > tolerance {
				t.Errorf("CalculateSMA() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeIndicators_ConstantSeries(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 1.0842
	}
	frame := ComputeIndicators(barsFromCloses(closes...))
	if frame.Len() != len(closes) {
		t.Fatalf("expected %d samples, got %d", len(closes), frame.Len())
	}
	for i := SlowSMAPeriod - 1; i < frame.Len(); i++ {
		s := frame.Samples[i]
		for j, v := range s.Averages() {
			if math.Abs(v-s.Close) > tolerance {
				t.Fatalf("index %d indicator %d: got %v, want %v", i, j, v, s.Close)
			}
		}
	}
}

func TestComputeIndicators_SMAWindowing(t *testing.T) {
	closes := make([]float64, 180)
	for i := range closes {
		closes[i] = float64(i%17) + 0.25*float64(i)
	}
	frame := ComputeIndicators(barsFromCloses(closes...))

	check := func(name string, period int, get func(model.IndicatorSample) float64) {
		for i, s := range frame.Samples {
			v := get(s)
			if i < period-1 {
				if !math.IsNaN(v) {
					t.Errorf("%s[%d] = %v, want NaN", name, i, v)
				}
				continue
			}
			sum := 0.0
			for _, c := range closes[i-period+1 : i+1] {
				sum += c
			}
			if want := sum / float64(period); math.Abs(v-want) > tolerance {
				t.Errorf("%s[%d] = %v, want %v", name, i, v, want)
			}
		}
	}
	check("SMA150", SlowSMAPeriod, func(s model.IndicatorSample) float64 { return s.SMA150 })
	check("SMA75", FastSMAPeriod, func(s model.IndicatorSample) float64 { return s.SMA75 })
}

func TestComputeIndicators_EMARecursion(t *testing.T) {
	c0, c1 := 1.2500, 1.2620
	frame := ComputeIndicators(barsFromCloses(c0, c1))

	first := frame.Samples[0]
	if first.EMA20 != c0 || first.EMA50 != c0 {
		t.Errorf("EMA must be seeded with the first close, got EMA20=%v EMA50=%v", first.EMA20, first.EMA50)
	}

	want20 := c1*(2.0/21) + c0*(1-2.0/21)
	if got := frame.Samples[1].EMA20; math.Abs(got-want20) > tolerance {
		t.Errorf("EMA20[1] = %v, want %v", got, want20)
	}
	want50 := c1*(2.0/51) + c0*(1-2.0/51)
	if got := frame.Samples[1].EMA50; math.Abs(got-want50) > tolerance {
		t.Errorf("EMA50[1] = %v, want %v", got, want50)
	}
	if !math.IsNaN(frame.Samples[1].SMA75) || !math.IsNaN(frame.Samples[1].SMA150) {
		t.Error("SMA must be undefined for a two-bar series")
	}
}

func TestComputeIndicators_EmptyInput(t *testing.T) {
	frame := ComputeIndicators(nil)
	if frame.Len() != 0 {
		t.Errorf("expected empty frame, got %d samples", frame.Len())
	}
}

func TestComputeIndicators_DoesNotMutateInput(t *testing.T) {
	bars := barsFromCloses(3, 1, 4, 1, 5, 9, 2, 6)
	orig := make([]model.PriceBar, len(bars))
	copy(orig, bars)

	frame := ComputeIndicators(bars)
	for i := range bars {
		if bars[i] != orig[i] {
			t.Fatalf("bar %d mutated: %+v -> %+v", i, orig[i], bars[i])
		}
		if !frame.Samples[i].Time.Equal(bars[i].Time) || frame.Samples[i].Close != bars[i].Close {
			t.Errorf("sample %d not aligned with bar", i)
		}
	}
}
