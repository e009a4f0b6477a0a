package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"game_catalog/internal/domain"
	"game_catalog/internal/metrics"
)

const healthTimeout = 2 * time.Second

// Server exposes the catalog over HTTP.
type Server struct {
	games  Games
	db     Pinger
	logger *slog.Logger
	mux    *http.ServeMux
}

func NewServer(games Games, db Pinger, logger *slog.Logger) *Server {
	s := &Server{
		games:  games,
		db:     db,
		logger: logger.With("component", "api"),
		mux:    http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /api/games", s.handleList)
	s.mux.HandleFunc("GET /api/games/search", s.handleSearch)
	s.mux.HandleFunc("GET /api/games/top-rated", s.handleTopRated)
	s.mux.HandleFunc("GET /api/games/upcoming", s.handleUpcoming)
	s.mux.HandleFunc("GET /api/games/slug/{slug}", s.handleGetBySlug)
	s.mux.HandleFunc("GET /api/games/genre/{genre}", s.handleGenre)
	s.mux.HandleFunc("GET /api/games/{id}", s.handleGetByID)
	s.mux.HandleFunc("PUT /api/games/{id}/rating", s.handleUpdateRating)

	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// Handler returns the routes wrapped with tracing and request metrics.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.instrument(s.mux), "http.server")
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// The mux fills in Pattern on the request it routed.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	games, err := s.games.SearchGames(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleGetByID(w http.ResponseWriter, r *http.Request) {
	s.getGame(w, r, domain.GameRef{ID: r.PathValue("id")})
}

func (s *Server) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	s.getGame(w, r, domain.GameRef{Slug: r.PathValue("slug")})
}

func (s *Server) getGame(w http.ResponseWriter, r *http.Request, ref domain.GameRef) {
	game, err := s.games.GetGame(r.Context(), ref)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleGenre(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	games, err := s.games.GetGamesByGenre(r.Context(), r.PathValue("genre"), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleTopRated(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	games, err := s.games.GetTopRatedGames(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleUpcoming(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	games, err := s.games.GetUpcomingGames(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sort, err := domain.ParseSortMode(r.URL.Query().Get("sort"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	games, err := s.games.ListGames(r.Context(), domain.ListQuery{Limit: limit, Offset: offset, Sort: sort})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"games": games})
}

type ratingRequest struct {
	Rating *float64 `json:"rating"`
}

func (s *Server) handleUpdateRating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, domain.InvalidArgument("malformed request body: %v", err))
		return
	}
	if req.Rating == nil {
		s.writeError(w, r, domain.InvalidArgument("rating is required"))
		return
	}

	if err := s.games.UpdateRating(r.Context(), r.PathValue("id"), *req.Rating); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	status := map[string]string{"status": "ok", "database": "ok"}
	code := http.StatusOK
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		status["status"] = "degraded"
		status["database"] = "unreachable"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeJSON(w, code, map[string]string{"error": message})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway, "game provider unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > math.MaxInt32 {
		return 0, domain.InvalidArgument("%s must be a non-negative integer", name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
