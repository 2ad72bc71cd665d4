package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/Alien67x6/mt5-monitoring-API/internal/correlation"
	"github.com/Alien67x6/mt5-monitoring-API/internal/logger"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
	"github.com/Alien67x6/mt5-monitoring-API/internal/notifier"
	"github.com/Alien67x6/mt5-monitoring-API/internal/recorder"
)

// Evaluator is the part of the engine the HTTP surface uses.
type Evaluator interface {
	EvaluateAll(ctx context.Context, trigger model.TriggerType) []model.Alert
	Snapshot(symbol string) (model.InstrumentSnapshot, error)
	Sizes() []correlation.Size
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	engine   Evaluator
	recorder recorder.Recorder
}

// NewHandler creates a new Handler. A nil recorder serves empty alert lists.
func NewHandler(engine Evaluator, rec recorder.Recorder) *Handler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Handler{engine: engine, recorder: rec}
}

type alertView struct {
	ID             string    `json:"id"`
	Instrument     string    `json:"instrument"`
	Message        string    `json:"message"`
	Direction      string    `json:"direction"`
	Close          float64   `json:"close"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Trigger        string    `json:"trigger"`
	FiredAt        time.Time `json:"fired_at"`
}

func viewAlerts(alerts []model.Alert) []alertView {
	out := make([]alertView, len(alerts))
	for i, a := range alerts {
		out[i] = alertView{
			ID:             a.ID,
			Instrument:     a.Instrument,
			Message:        a.Message,
			Direction:      a.Direction.String(),
			Close:          a.Close,
			ElapsedSeconds: a.Elapsed.Seconds(),
			Trigger:        string(a.Trigger),
			FiredAt:        a.FiredAt.UTC(),
		}
	}
	return out
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"message": "crossover monitor running"})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Monitor handles GET /monitor by running an on-demand cycle.
func (h *Handler) Monitor(w http.ResponseWriter, r *http.Request) {
	alerts := h.engine.EvaluateAll(r.Context(), model.TriggerOnDemand)
	resp := map[string]interface{}{"alerts": viewAlerts(alerts)}
	if len(alerts) == 0 {
		resp["message"] = notifier.NoCrossoversMessage
	}
	respondJSON(w, http.StatusOK, resp)
}

// ListInstruments handles GET /api/v1/instruments
func (h *Handler) ListInstruments(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Sizes())
}

// GetInstrument handles GET /api/v1/instruments/{symbol}
func (h *Handler) GetInstrument(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	snap, err := h.engine.Snapshot(symbol)
	if err != nil {
		writeLookupError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// GetInstrumentAlerts handles GET /api/v1/instruments/{symbol}/alerts?limit=N
func (h *Handler) GetInstrumentAlerts(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	if _, err := h.engine.Snapshot(symbol); err != nil {
		writeLookupError(w, err)
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	records, err := h.recorder.RecentAlerts(symbol, limit)
	if err != nil {
		logger.Error("query alerts for %s: %v", symbol, err)
		http.Error(w, "failed to load alerts", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []recorder.AlertRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}

func writeLookupError(w http.ResponseWriter, err error) {
	if errors.Is(err, correlation.ErrUnknownInstrument) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("encode response: %v", err)
	}
}
