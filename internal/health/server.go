package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vietddude/eventmailer/internal/core/domain"
	"github.com/vietddude/eventmailer/internal/recommend"
)

// Recommender selects events for a customer with one strategy.
type Recommender interface {
	Recommend(ctx context.Context, strategy domain.StrategyName, customer domain.Customer) ([]domain.Event, error)
}

// Server provides the health, metrics and recommendation endpoints.
type Server struct {
	monitor     *Monitor
	recommender Recommender
	server      *http.Server
}

// NewServer creates a new server. A nil recommender disables /v1/recommendations.
func NewServer(monitor *Monitor, recommender Recommender, port int) *Server {
	mux := http.NewServeMux()
	s := &Server{
		monitor:     monitor,
		recommender: recommender,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		},
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/detailed", s.handleDetailed)
	mux.Handle("GET /metrics", promhttp.Handler())
	if recommender != nil {
		mux.HandleFunc("GET /v1/recommendations", s.handleRecommendations)
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.monitor.CheckHealth(r.Context())

	code := http.StatusOK
	if report.SystemStatus == StatusCritical {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": string(report.SystemStatus)})
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.monitor.CheckHealth(r.Context()))
}

// RecommendationResponse is the body of /v1/recommendations.
type RecommendationResponse struct {
	Customer domain.Customer                        `json:"customer"`
	Results  map[domain.StrategyName][]domain.Event `json:"results"`
	Warnings []string                               `json:"warnings,omitempty"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	customer := domain.Customer{Name: q.Get("name"), City: q.Get("city")}
	if customer.City == "" {
		writeError(w, http.StatusBadRequest, "city is required")
		return
	}

	strategies := domain.Strategies
	if name := q.Get("strategy"); name != "" {
		strategies = []domain.StrategyName{domain.StrategyName(name)}
	}

	resp := RecommendationResponse{
		Customer: customer,
		Results:  make(map[domain.StrategyName][]domain.Event, len(strategies)),
	}
	for _, strategy := range strategies {
		events, err := s.recommender.Recommend(r.Context(), strategy, customer)
		switch {
		case errors.Is(err, recommend.ErrUnknownStrategy):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, recommend.ErrInsufficientInventory):
			resp.Warnings = append(resp.Warnings, err.Error())
		case err != nil:
			slog.Error("Recommendation failed", "strategy", strategy, "error", err)
			writeError(w, http.StatusInternalServerError, "recommendation failed")
			return
		}
		if events == nil {
			events = []domain.Event{}
		}
		resp.Results[strategy] = events
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
