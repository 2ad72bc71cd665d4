// Package engine pairs price crossovers with later average-stack crossovers
// and raises one alert per confirmed signal.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Alien67x6/mt5-monitoring-API/internal/correlation"
	"github.com/Alien67x6/mt5-monitoring-API/internal/logger"
	"github.com/Alien67x6/mt5-monitoring-API/internal/metrics"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
	"github.com/Alien67x6/mt5-monitoring-API/internal/notifier"
	"github.com/Alien67x6/mt5-monitoring-API/internal/recorder"
	"github.com/Alien67x6/mt5-monitoring-API/internal/strategy"
)

const (
	// HistoryCapacity is how many unconfirmed price crossovers are kept per instrument.
	HistoryCapacity = 10
	// CorrelationWindow is the maximum age of the oldest price crossover for an
	// average-stack crossover to confirm it.
	CorrelationWindow = 600 * time.Second
)

// ResetPolicy decides when an instrument's history is cleared after an alert.
type ResetPolicy string

const (
	// ResetOnAttempt clears as soon as the alert is raised; delivery happens
	// after the lock is released and its outcome does not matter.
	ResetOnAttempt ResetPolicy = "on_attempt"
	// ResetOnDelivery delivers while holding the instrument lock and clears
	// only when every channel accepted the alert.
	ResetOnDelivery ResetPolicy = "on_delivery"
)

// ParseResetPolicy accepts the config spelling. Empty means ResetOnAttempt.
func ParseResetPolicy(s string) (ResetPolicy, error) {
	switch ResetPolicy(s) {
	case "", ResetOnAttempt:
		return ResetOnAttempt, nil
	case ResetOnDelivery:
		return ResetOnDelivery, nil
	}
	return "", fmt.Errorf("unknown reset policy %q", s)
}

// FrameSource produces the indicator frame for an instrument.
type FrameSource interface {
	Collect(ctx context.Context, symbol string) (model.IndicatorFrame, error)
}

// Engine evaluates instruments. It is safe for concurrent use; evaluations of
// the same instrument serialize on that instrument's lock.
type Engine struct {
	source   FrameSource
	store    *correlation.Store
	notifier notifier.Notifier
	recorder recorder.Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
	policy   ResetPolicy
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithRecorder sets the audit log. The default records nothing.
func WithRecorder(r recorder.Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithResetPolicy overrides the default ResetOnAttempt.
func WithResetPolicy(p ResetPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// New creates an Engine over store. A nil notifier logs alerts only.
func New(source FrameSource, store *correlation.Store, n notifier.Notifier, opts ...Option) *Engine {
	if n == nil {
		n = notifier.LogNotifier{}
	}
	e := &Engine{
		source:   source,
		store:    store,
		notifier: n,
		recorder: recorder.NewNoopRecorder(),
		now:      time.Now,
		policy:   ResetOnAttempt,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Instruments returns the configured instruments.
func (e *Engine) Instruments() []string { return e.store.Instruments() }

// Capacity returns the per-instrument history capacity.
func (e *Engine) Capacity() int { return HistoryCapacity }

// Policy returns the active reset policy.
func (e *Engine) Policy() ResetPolicy { return e.policy }

// Evaluate runs one detection step for symbol. It returns the alert when a
// signal was confirmed and nil otherwise. Data-source failures are logged and
// treated as "nothing happened"; the only error is an unknown instrument.
func (e *Engine) Evaluate(ctx context.Context, symbol string, trigger model.TriggerType) (*model.Alert, error) {
	if !e.store.Has(symbol) {
		return nil, fmt.Errorf("%w: %s", correlation.ErrUnknownInstrument, symbol)
	}
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.Evaluations.WithLabelValues(string(trigger)).Inc()
			e.metrics.EvaluationDuration.WithLabelValues(string(trigger)).Observe(time.Since(start).Seconds())
		}
	}()

	frame, err := e.source.Collect(ctx, symbol)
	if err != nil {
		logger.Warn("skipping %s: data unavailable: %v", symbol, err)
		if e.metrics != nil {
			e.metrics.FetchFailures.WithLabelValues(symbol).Inc()
		}
		return nil, nil
	}

	priceDir := strategy.PriceCrossover(frame)
	avgDir := strategy.AverageCrossover(frame)
	last, _ := frame.Last()

	var (
		alert      *model.Alert
		deliverErr error
		size       int
	)
	err = e.store.With(symbol, func(h *correlation.History) {
		now := e.now()
		if priceDir != model.DirectionNone && !h.CountBar(last.Time) {
			logger.Debug("%s: price crossover on bar %s already counted", symbol, last.Time.Format(time.RFC3339))
			priceDir = model.DirectionNone
		}
		if priceDir != model.DirectionNone {
			h.Append(now)
			logger.Info("%s: price crossover (%s), %d pending", symbol, priceDir, h.Len())
		}
		defer func() { size = h.Len() }()

		if avgDir == model.DirectionNone {
			return
		}
		oldest, ok := h.Oldest()
		if !ok {
			logger.Debug("%s: average crossover (%s) with no pending price crossover", symbol, avgDir)
			return
		}
		elapsed := now.Sub(oldest)
		if elapsed >= CorrelationWindow {
			logger.Info("%s: average crossover %s after oldest price crossover, outside window", symbol, elapsed)
			return
		}

		alert = &model.Alert{
			ID:         uuid.NewString(),
			Instrument: symbol,
			Message:    notifier.AlertMessage(symbol),
			Close:      last.Close,
			Direction:  avgDir,
			FiredAt:    now,
			Elapsed:    elapsed,
			Trigger:    trigger,
		}
		if e.policy == ResetOnDelivery {
			deliverErr = e.deliver(ctx, *alert)
			if deliverErr != nil {
				logger.Warn("%s: keeping %d pending price crossovers until delivery succeeds", symbol, h.Len())
				return
			}
		}
		h.Clear()
	})
	if err != nil {
		return nil, err
	}

	e.recordCrossovers(symbol, trigger, last, priceDir, avgDir)
	if e.metrics != nil {
		e.metrics.HistorySize.WithLabelValues(symbol).Set(float64(size))
	}
	if alert == nil {
		return nil, nil
	}

	if e.policy != ResetOnDelivery {
		deliverErr = e.deliver(ctx, *alert)
	}
	if e.metrics != nil {
		e.metrics.Alerts.WithLabelValues(symbol).Inc()
	}
	e.recordAlert(alert, deliverErr)
	return alert, nil
}

// EvaluateAll evaluates every configured instrument in order and returns the
// alerts raised in this cycle.
func (e *Engine) EvaluateAll(ctx context.Context, trigger model.TriggerType) []model.Alert {
	var alerts []model.Alert
	for _, symbol := range e.store.Instruments() {
		if ctx.Err() != nil {
			logger.Warn("evaluation cycle (%s) cancelled: %v", trigger, ctx.Err())
			break
		}
		alert, err := e.Evaluate(ctx, symbol, trigger)
		if err != nil {
			logger.Error("evaluate %s: %v", symbol, err)
			continue
		}
		if alert != nil {
			alerts = append(alerts, *alert)
		}
	}
	return alerts
}

// Snapshot returns a copy of symbol's pending price crossovers.
func (e *Engine) Snapshot(symbol string) (model.InstrumentSnapshot, error) {
	snap := model.InstrumentSnapshot{Instrument: symbol, Capacity: HistoryCapacity}
	err := e.store.With(symbol, func(h *correlation.History) {
		snap.PriceCrossovers = h.Times()
	})
	return snap, err
}

// Sizes returns the pending price crossover count of every instrument.
func (e *Engine) Sizes() []correlation.Size { return e.store.Sizes() }

func (e *Engine) deliver(ctx context.Context, alert model.Alert) error {
	if err := e.notifier.Send(ctx, alert); err != nil {
		logger.Error("%s: alert delivery failed: %v", alert.Instrument, err)
		if e.metrics != nil {
			e.metrics.NotifyFailures.Inc()
		}
		return err
	}
	return nil
}

func (e *Engine) recordCrossovers(symbol string, trigger model.TriggerType, last model.IndicatorSample, priceDir, avgDir model.Direction) {
	kinds := []struct {
		kind model.CrossoverKind
		dir  model.Direction
	}{
		{model.CrossoverPrice, priceDir},
		{model.CrossoverAverage, avgDir},
	}
	for _, k := range kinds {
		if k.dir == model.DirectionNone {
			continue
		}
		if e.metrics != nil {
			e.metrics.Crossovers.WithLabelValues(symbol, string(k.kind)).Inc()
		}
		if err := e.recorder.RecordCrossover(&recorder.CrossoverEvent{
			Instrument: symbol,
			Kind:       string(k.kind),
			Direction:  k.dir.String(),
			Close:      last.Close,
			Trigger:    string(trigger),
			DetectedAt: e.now(),
		}); err != nil {
			logger.Error("record crossover: %v", err)
		}
	}
}

func (e *Engine) recordAlert(alert *model.Alert, deliverErr error) {
	rec := &recorder.AlertRecord{
		ID:             alert.ID,
		Instrument:     alert.Instrument,
		Direction:      alert.Direction.String(),
		Close:          alert.Close,
		ElapsedSeconds: alert.Elapsed.Seconds(),
		Message:        alert.Message,
		Trigger:        string(alert.Trigger),
		Delivered:      deliverErr == nil,
		FiredAt:        alert.FiredAt,
	}
	if deliverErr != nil {
		rec.DeliveryError = deliverErr.Error()
	}
	if err := e.recorder.RecordAlert(rec); err != nil {
		logger.Error("record alert: %v", err)
	}
}
