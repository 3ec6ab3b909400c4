package api

import (
	"context"
	"net/http"

	"github.com/digilab/metalab/internal/domain/model"
	"github.com/digilab/metalab/pkg/logger"
)

// serve runs one filtered read operation and writes the JSON result.
// Internal failures are logged with the endpoint name and surfaced as a
// bare 500 so repository details never leak to clients.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, endpoint string,
	fn func(ctx context.Context, f model.Filter) (any, error)) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
		return
	}
	out, err := fn(r.Context(), filterFromQuery(r))
	if err != nil {
		s.logger.Error(r.Context(), "dashboard query failed",
			logger.String("endpoint", endpoint), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStats handles GET /api/dashboard/stats.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "stats", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.Stats(ctx, f)
	})
}

// handleTopPlayers handles GET /api/dashboard/top-players.
func (s *Server) handleTopPlayers(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "top_players", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.TopPlayers(ctx, f)
	})
}

// handleTopDecks handles GET /api/dashboard/top-decks.
func (s *Server) handleTopDecks(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "top_decks", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.TopDecks(ctx, f)
	})
}

// handleHotDeck handles GET /api/dashboard/hot-deck.
func (s *Server) handleHotDeck(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "hot_deck", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.HotDeck(ctx, f)
	})
}

// handleMostPopularDeck handles GET /api/dashboard/most-popular-deck.
// A view with no known-archetype entries returns a JSON null body.
func (s *Server) handleMostPopularDeck(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "most_popular_deck", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.MostPopularDeck(ctx, f)
	})
}

// handleRecentTournaments handles GET /api/dashboard/recent-tournaments.
func (s *Server) handleRecentTournaments(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "recent_tournaments", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.RecentTournaments(ctx, f)
	})
}

// handleMetaTimeline handles GET /api/dashboard/meta-timeline.
func (s *Server) handleMetaTimeline(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "meta_timeline", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.MetaTimeline(ctx, f)
	})
}

// handleFormats handles GET /api/dashboard/formats.
func (s *Server) handleFormats(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "formats", func(ctx context.Context, _ model.Filter) (any, error) {
		return s.deps.Formats(ctx)
	})
}

// handleAttendanceTrend handles GET /api/dashboard/charts/trend.
func (s *Server) handleAttendanceTrend(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "chart_trend", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.AttendanceTrend(ctx, f)
	})
}

// handleConversion handles GET /api/dashboard/charts/conversion.
func (s *Server) handleConversion(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "chart_conversion", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.Conversion(ctx, f)
	})
}

// handleColorDistribution handles GET /api/dashboard/charts/color-dist.
func (s *Server) handleColorDistribution(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, "chart_color_dist", func(ctx context.Context, f model.Filter) (any, error) {
		return s.deps.ColorDistribution(ctx, f)
	})
}
