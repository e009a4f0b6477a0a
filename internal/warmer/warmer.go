package warmer

import (
	"context"
	"log/slog"
	"time"

	"game_catalog/internal/domain"
)

// Lister serves the discovery lists the warmer primes.
type Lister interface {
	GetTopRatedGames(ctx context.Context, limit int) ([]domain.Game, error)
	GetUpcomingGames(ctx context.Context, limit int) ([]domain.Game, error)
}

// Warmer primes an empty store with discovery lists on start and then on
// every interval. Lists already present in the store are served from it, so
// existing rows are never refreshed.
type Warmer struct {
	games    Lister
	interval time.Duration
	limit    int
	timeout  time.Duration
	logger   *slog.Logger
}

func New(games Lister, interval time.Duration, limit int, logger *slog.Logger) *Warmer {
	return &Warmer{
		games:    games,
		interval: interval,
		limit:    limit,
		timeout:  time.Minute,
		logger:   logger.With("component", "warmer"),
	}
}

func (w *Warmer) Start(ctx context.Context) error {
	w.logger.Info("warmer started", "interval", w.interval, "limit", w.limit)

	w.warm(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("warmer stopped")
			return ctx.Err()
		case <-ticker.C:
			w.warm(ctx)
		}
	}
}

func (w *Warmer) warm(ctx context.Context) {
	warmCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	topRated, err := w.games.GetTopRatedGames(warmCtx, w.limit)
	if err != nil {
		w.logger.Error("warm top rated failed", "error", err)
	}

	upcoming, err := w.games.GetUpcomingGames(warmCtx, w.limit)
	if err != nil {
		w.logger.Error("warm upcoming failed", "error", err)
	}

	w.logger.Debug("warm cycle done", "top_rated", len(topRated), "upcoming", len(upcoming))
}
