// Package api declares HTTP contracts and route registration for the
// dashboard read API.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/digilab/metalab/internal/app"
	"github.com/digilab/metalab/internal/domain/model"
	"github.com/digilab/metalab/internal/domain/timeline"
	"github.com/digilab/metalab/internal/domain/trend"
	"github.com/digilab/metalab/pkg/logger"
)

// Dependencies required by the HTTP handlers. The interface bundle
// keeps the handler layer loosely coupled to the service package.
type Dependencies interface {
	Stats(ctx context.Context, f model.Filter) (app.Stats, error)
	TopPlayers(ctx context.Context, f model.Filter) ([]app.TopPlayer, error)
	TopDecks(ctx context.Context, f model.Filter) ([]app.TopDeck, error)
	MostPopularDeck(ctx context.Context, f model.Filter) (*app.PopularDeck, error)
	RecentTournaments(ctx context.Context, f model.Filter) ([]app.RecentTournament, error)
	HotDeck(ctx context.Context, f model.Filter) (trend.Result, error)
	MetaTimeline(ctx context.Context, f model.Filter) (timeline.ShareSeries, error)
	AttendanceTrend(ctx context.Context, f model.Filter) (app.AttendanceTrend, error)
	Conversion(ctx context.Context, f model.Filter) ([]app.Conversion, error)
	ColorDistribution(ctx context.Context, f model.Filter) ([]app.ColorCount, error)
	Formats(ctx context.Context) ([]app.FormatInfo, error)
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	deps   Dependencies
	logger logger.Logger
}

// NewServer creates the API server.
func NewServer(deps Dependencies) *Server {
	return &Server{deps: deps, logger: logger.Named("api")}
}

// Register attaches all routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.HandleFunc("/api/dashboard/stats", MetricsMiddleware(s.handleStats, "stats"))
	mux.HandleFunc("/api/dashboard/top-players", MetricsMiddleware(s.handleTopPlayers, "top_players"))
	mux.HandleFunc("/api/dashboard/top-decks", MetricsMiddleware(s.handleTopDecks, "top_decks"))
	mux.HandleFunc("/api/dashboard/hot-deck", MetricsMiddleware(s.handleHotDeck, "hot_deck"))
	mux.HandleFunc("/api/dashboard/most-popular-deck", MetricsMiddleware(s.handleMostPopularDeck, "most_popular_deck"))
	mux.HandleFunc("/api/dashboard/recent-tournaments", MetricsMiddleware(s.handleRecentTournaments, "recent_tournaments"))
	mux.HandleFunc("/api/dashboard/meta-timeline", MetricsMiddleware(s.handleMetaTimeline, "meta_timeline"))
	mux.HandleFunc("/api/dashboard/formats", MetricsMiddleware(s.handleFormats, "formats"))
	mux.HandleFunc("/api/dashboard/charts/trend", MetricsMiddleware(s.handleAttendanceTrend, "chart_trend"))
	mux.HandleFunc("/api/dashboard/charts/conversion", MetricsMiddleware(s.handleConversion, "chart_conversion"))
	mux.HandleFunc("/api/dashboard/charts/color-dist", MetricsMiddleware(s.handleColorDistribution, "chart_color_dist"))
}

// filterFromQuery reads the optional format and eventType parameters.
// Absent or "all" values leave the dimension unconstrained.
func filterFromQuery(r *http.Request) model.Filter {
	q := r.URL.Query()
	f := model.Filter{
		Format:    q.Get("format"),
		EventType: q.Get("eventType"),
	}
	if f.Format == "all" {
		f.Format = ""
	}
	if f.EventType == "all" {
		f.EventType = ""
	}
	return f
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
