package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vainnor/reflector-dashboard/metrics"
	"github.com/vainnor/reflector-dashboard/types"
)

type Collector interface {
	GetCurrentData(ctx context.Context) (*types.ReflectorData, error)
}

// NewRouter creates and configures a new router with all dashboard endpoints
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestID, AccessLog)

	cors := CORS(h.cfg.Security)
	r.NotFoundHandler = cors(http.HandlerFunc(NotFound))

	// JSON views, read by other dashboards and aggregators
	j := r.PathPrefix("/json").Subrouter()
	j.Use(cors, RateLimit(h.cfg.Security))
	j.NotFoundHandler = r.NotFoundHandler

	get := []string{http.MethodGet, http.MethodOptions}
	j.HandleFunc("/links", h.GetLinks).Methods(get...)
	j.HandleFunc("/peers", h.GetPeers).Methods(get...)
	j.HandleFunc("/stations", h.GetStations).Methods(get...)
	j.HandleFunc("/modulesinuse", h.GetModulesInUse).Methods(get...)
	j.HandleFunc("/metadata", h.GetMetadata).Methods(get...)
	j.HandleFunc("/status", h.GetStatus).Methods(get...)
	j.HandleFunc("/reflector", h.GetReflector).Methods(get...)

	// HTML partial for the dashboard page
	r.HandleFunc("/repeaters", h.GetRepeaters).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	return r
}
