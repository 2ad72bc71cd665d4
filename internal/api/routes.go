package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures all API routes. gatherer backs /metrics; nil uses
// the default registry.
func SetupRoutes(handler *Handler, gatherer prometheus.Gatherer) *mux.Router {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r := mux.NewRouter()

	r.HandleFunc("/", handler.Root).Methods(http.MethodGet)
	r.HandleFunc("/health", handler.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/monitor", handler.Monitor).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/instruments", handler.ListInstruments).Methods(http.MethodGet)
	api.HandleFunc("/instruments/{symbol}", handler.GetInstrument).Methods(http.MethodGet)
	api.HandleFunc("/instruments/{symbol}/alerts", handler.GetInstrumentAlerts).Methods(http.MethodGet)

	return r
}
