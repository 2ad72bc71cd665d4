package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alien67x6/mt5-monitoring-API/internal/correlation"
	"github.com/Alien67x6/mt5-monitoring-API/internal/metrics"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
	"github.com/Alien67x6/mt5-monitoring-API/internal/notifier"
	"github.com/Alien67x6/mt5-monitoring-API/internal/recorder"
)

type fakeEngine struct {
	alerts   []model.Alert
	triggers []model.TriggerType
	pending  map[string][]time.Time
}

func (f *fakeEngine) EvaluateAll(_ context.Context, trigger model.TriggerType) []model.Alert {
	f.triggers = append(f.triggers, trigger)
	return f.alerts
}

func (f *fakeEngine) Snapshot(symbol string) (model.InstrumentSnapshot, error) {
	times, ok := f.pending[symbol]
	if !ok {
		return model.InstrumentSnapshot{}, fmt.Errorf("%w: %s", correlation.ErrUnknownInstrument, symbol)
	}
	return model.InstrumentSnapshot{Instrument: symbol, PriceCrossovers: times, Capacity: 10}, nil
}

func (f *fakeEngine) Sizes() []correlation.Size {
	return []correlation.Size{{Instrument: "EURUSD", Len: len(f.pending["EURUSD"])}}
}

type fakeRecorder struct {
	recorder.NoopRecorder
	records []recorder.AlertRecord
	err     error
	limit   int
}

func (r *fakeRecorder) RecentAlerts(_ string, limit int) ([]recorder.AlertRecord, error) {
	r.limit = limit
	return r.records, r.err
}

var t0 = time.Date(2024, 6, 3, 8, 0, 0, 0, time.UTC)

func newTestRouter(eng *fakeEngine, rec recorder.Recorder) http.Handler {
	return SetupRoutes(NewHandler(eng, rec), prometheus.NewRegistry())
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRootAndHealth(t *testing.T) {
	h := newTestRouter(&fakeEngine{}, nil)

	rr := do(t, h, "/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"crossover monitor running"}`, rr.Body.String())

	rr = do(t, h, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rr.Body.String())
}

func TestMonitorNoAlerts(t *testing.T) {
	eng := &fakeEngine{}
	rr := do(t, newTestRouter(eng, nil), "/monitor")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"alerts":[],"message":"No crossovers detected."}`, rr.Body.String())
	assert.Equal(t, []model.TriggerType{model.TriggerOnDemand}, eng.triggers)
}

func TestMonitorWithAlerts(t *testing.T) {
	eng := &fakeEngine{alerts: []model.Alert{{
		ID: "x", Instrument: "EURUSD", Message: notifier.AlertMessage("EURUSD"),
		Direction: model.DirectionBullish, Close: 1.1, Elapsed: 90 * time.Second,
		Trigger: model.TriggerOnDemand, FiredAt: t0,
	}}}
	rr := do(t, newTestRouter(eng, nil), "/monitor")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Alerts  []alertView `json:"alerts"`
		Message *string     `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Len(t, body.Alerts, 1)
	assert.Nil(t, body.Message)
	assert.Equal(t, "🚀 ALERT on EURUSD: full crossover detected (price + averages).", body.Alerts[0].Message)
	assert.Equal(t, "BULLISH", body.Alerts[0].Direction)
	assert.Equal(t, 90.0, body.Alerts[0].ElapsedSeconds)
}

func TestInstruments(t *testing.T) {
	eng := &fakeEngine{pending: map[string][]time.Time{"EURUSD": {t0, t0.Add(time.Minute)}}}
	h := newTestRouter(eng, nil)

	rr := do(t, h, "/api/v1/instruments")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"instrument":"EURUSD","price_crossovers":2}]`, rr.Body.String())

	rr = do(t, h, "/api/v1/instruments/eurusd")
	require.Equal(t, http.StatusOK, rr.Code)
	var snap model.InstrumentSnapshot
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snap))
	assert.Equal(t, "EURUSD", snap.Instrument)
	assert.Len(t, snap.PriceCrossovers, 2)

	rr = do(t, h, "/api/v1/instruments/XAUUSD")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInstrumentAlerts(t *testing.T) {
	eng := &fakeEngine{pending: map[string][]time.Time{"EURUSD": nil}}
	rec := &fakeRecorder{records: []recorder.AlertRecord{{ID: "a", Instrument: "EURUSD", Delivered: true, FiredAt: t0}}}
	h := newTestRouter(eng, rec)

	rr := do(t, h, "/api/v1/instruments/EURUSD/alerts?limit=5")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 5, rec.limit)
	assert.Contains(t, rr.Body.String(), `"delivered":true`)

	assert.Equal(t, http.StatusBadRequest, do(t, h, "/api/v1/instruments/EURUSD/alerts?limit=zero").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, "/api/v1/instruments/USDCHF/alerts").Code)

	rec.err = errors.New("database is locked")
	assert.Equal(t, http.StatusInternalServerError, do(t, h, "/api/v1/instruments/EURUSD/alerts").Code)
}

func TestInstrumentAlertsEmptyList(t *testing.T) {
	eng := &fakeEngine{pending: map[string][]time.Time{"EURUSD": nil}}
	rr := do(t, newTestRouter(eng, nil), "/api/v1/instruments/EURUSD/alerts")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Alerts.WithLabelValues("EURUSD").Inc()

	h := SetupRoutes(NewHandler(&fakeEngine{}, nil), reg)
	rr := do(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `crossmon_alerts_total{instrument="EURUSD"} 1`)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestRouter(&fakeEngine{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/monitor", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
