package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"game_catalog/internal/config"
	"game_catalog/internal/domain"
	"game_catalog/internal/metrics"
	"game_catalog/internal/tracing"
)

// GameService answers catalog queries from the store and falls back to the
// provider on a miss, writing provider results back before returning them.
type GameService struct {
	store        GameStore
	catalog      Catalog
	txManager    TransactionManager
	publisher    Publisher
	logger       *slog.Logger
	defaultLimit int
}

func NewGameService(
	store GameStore,
	catalog Catalog,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.ServiceConfig,
) *GameService {
	defaultLimit := cfg.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultLimit
	}
	defaultLimit = min(defaultLimit, domain.MaxLimit)
	return &GameService{
		store:        store,
		catalog:      catalog,
		txManager:    txManager,
		publisher:    publisher,
		logger:       logger.With("component", "game_service"),
		defaultLimit: defaultLimit,
	}
}

type fetchFunc func(ctx context.Context) ([]domain.Game, error)

func (s *GameService) SearchGames(ctx context.Context, query string, limit int) (_ []domain.Game, err error) {
	ctx, span := tracing.StartSpan(ctx, "GameService.SearchGames", attribute.String("query", query))
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(query) == "" {
		return nil, domain.InvalidArgument("search query is required")
	}
	limit = s.limit(limit)

	return s.lookaside(ctx, "search",
		func(ctx context.Context) ([]domain.Game, error) { return s.store.FindByName(ctx, query, limit) },
		func(ctx context.Context) ([]domain.Game, error) { return s.catalog.SearchByText(ctx, query, limit) },
	)
}

// GetGame looks a game up by id, which never reaches the provider, or by slug.
func (s *GameService) GetGame(ctx context.Context, ref domain.GameRef) (_ *domain.Game, err error) {
	ctx, span := tracing.StartSpan(ctx, "GameService.GetGame",
		attribute.String("id", ref.ID),
		attribute.String("slug", ref.Slug),
	)
	defer func() { tracing.End(span, err) }()

	id, slug := strings.TrimSpace(ref.ID), strings.TrimSpace(ref.Slug)
	switch {
	case id != "":
		return s.getByID(ctx, id)
	case slug != "":
		return s.getBySlug(ctx, slug)
	default:
		return nil, domain.InvalidArgument("game id or slug is required")
	}
}

func (s *GameService) GetGamesByGenre(ctx context.Context, genre string, limit int) (_ []domain.Game, err error) {
	ctx, span := tracing.StartSpan(ctx, "GameService.GetGamesByGenre", attribute.String("genre", genre))
	defer func() { tracing.End(span, err) }()

	if strings.TrimSpace(genre) == "" {
		return nil, domain.InvalidArgument("genre is required")
	}
	limit = s.limit(limit)

	return s.lookaside(ctx, "genre",
		func(ctx context.Context) ([]domain.Game, error) { return s.store.ListByGenre(ctx, genre, limit) },
		func(ctx context.Context) ([]domain.Game, error) { return s.catalog.GetByGenre(ctx, genre, limit) },
	)
}

func (s *GameService) GetTopRatedGames(ctx context.Context, limit int) (_ []domain.Game, err error) {
	ctx, span := tracing.StartSpan(ctx, "GameService.GetTopRatedGames")
	defer func() { tracing.End(span, err) }()

	limit = s.limit(limit)

	return s.lookaside(ctx, "top_rated",
		func(ctx context.Context) ([]domain.Game, error) { return s.store.ListTopRated(ctx, limit) },
		func(ctx context.Context) ([]domain.Game, error) { return s.catalog.GetTopRated(ctx, limit) },
	)
}

func (s *GameService) GetUpcomingGames(ctx context.Context, limit int) (_ []domain.Game, err error) {
	ctx, span := tracing.StartSpan(ctx, "GameService.GetUpcomingGames")
	defer func() { tracing.End(span, err) }()

	limit = s.limit(limit)

	return s.lookaside(ctx, "upcoming",
		func(ctx context.Context) ([]domain.Game, error) { return s.store.ListUpcoming(ctx, limit) },
		func(ctx context.Context) ([]domain.Game, error) { return s.catalog.GetUpcoming(ctx, limit) },
	)
}

// ListGames pages through stored games only.
func (s *GameService) ListGames(ctx context.Context, q domain.ListQuery) (_ []domain.Game, err error) {
	ctx, span := tracing.StartSpan(ctx, "GameService.ListGames",
		attribute.Int("limit", q.Limit),
		attribute.Int("offset", q.Offset),
		attribute.String("sort", string(q.Sort)),
	)
	defer func() { tracing.End(span, err) }()

	q.Limit = s.limit(q.Limit)
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Sort == "" {
		q.Sort = domain.SortNewest
	}

	games, err := s.store.List(ctx, q)
	if err != nil {
		metrics.Lookups.WithLabelValues("list", "error").Inc()
		return nil, domain.StoreFailure("list games", err)
	}
	metrics.Lookups.WithLabelValues("list", "hit").Inc()

	return games, nil
}

// UpdateRating sets the service-owned aggregate rating of a stored game.
func (s *GameService) UpdateRating(ctx context.Context, id string, rating float64) (err error) {
	ctx, span := tracing.StartSpan(ctx, "GameService.UpdateRating", attribute.String("id", id))
	defer func() { tracing.End(span, err) }()

	gameID, err := uuid.Parse(id)
	if err != nil {
		return domain.InvalidArgument("invalid game id %q", id)
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return domain.InvalidArgument("rating must be a finite number")
	}

	if err := s.store.UpdateAggregateRating(ctx, gameID.String(), rating); err != nil {
		return domain.StoreFailure("update rating", err)
	}

	s.logger.Info("rating updated", "game_id", gameID, "rating", rating)
	s.publish(ctx, domain.GameEvent{
		Action:    domain.ActionRatingUpdated,
		Game:      domain.Game{ID: gameID.String(), AggregateRating: &rating},
		Timestamp: time.Now().UTC(),
	})

	return nil
}

func (s *GameService) getByID(ctx context.Context, id string) (*domain.Game, error) {
	if _, err := uuid.Parse(id); err != nil {
		metrics.Lookups.WithLabelValues("get_by_id", "empty").Inc()
		return nil, domain.NotFound(id)
	}

	game, err := s.store.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		metrics.Lookups.WithLabelValues("get_by_id", "empty").Inc()
		return nil, domain.NotFound(id)
	}
	if err != nil {
		metrics.Lookups.WithLabelValues("get_by_id", "error").Inc()
		return nil, domain.StoreFailure("get game by id", err)
	}

	metrics.Lookups.WithLabelValues("get_by_id", "hit").Inc()
	return game, nil
}

func (s *GameService) getBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	game, err := s.store.GetBySlug(ctx, slug)
	if err == nil {
		metrics.Lookups.WithLabelValues("get_by_slug", "hit").Inc()
		return game, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		metrics.Lookups.WithLabelValues("get_by_slug", "error").Inc()
		return nil, domain.StoreFailure("get game by slug", err)
	}

	games, err := s.fetchAndStore(ctx, "get_by_slug", func(ctx context.Context) ([]domain.Game, error) {
		return s.catalog.GetBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, domain.NotFound(slug)
	}

	for i := range games {
		if games[i].Slug == slug {
			return &games[i], nil
		}
	}
	return &games[0], nil
}

// lookaside returns store results when there are any, otherwise the
// provider results after writing them back.
func (s *GameService) lookaside(ctx context.Context, op string, fromStore, fromCatalog fetchFunc) ([]domain.Game, error) {
	games, err := fromStore(ctx)
	if err != nil {
		metrics.Lookups.WithLabelValues(op, "error").Inc()
		return nil, domain.StoreFailure(op+": read store", err)
	}
	if len(games) > 0 {
		metrics.Lookups.WithLabelValues(op, "hit").Inc()
		s.logger.Debug("store hit", "operation", op, "count", len(games))
		return games, nil
	}

	return s.fetchAndStore(ctx, op, fromCatalog)
}

func (s *GameService) fetchAndStore(ctx context.Context, op string, fromCatalog fetchFunc) ([]domain.Game, error) {
	candidates, err := fromCatalog(ctx)
	if err != nil {
		metrics.Lookups.WithLabelValues(op, "error").Inc()
		s.logger.Error("catalog fetch failed", "operation", op, "error", err)
		return nil, domain.UpstreamFailure(op+": fetch catalog", err)
	}
	if len(candidates) == 0 {
		metrics.Lookups.WithLabelValues(op, "empty").Inc()
		s.logger.Debug("catalog returned nothing", "operation", op)
		return []domain.Game{}, nil
	}

	stored, err := s.writeBack(ctx, candidates)
	if err != nil {
		metrics.Lookups.WithLabelValues(op, "error").Inc()
		s.logger.Error("write back failed", "operation", op, "error", err)
		return nil, domain.StoreFailure(op+": write back", err)
	}

	metrics.Lookups.WithLabelValues(op, "miss").Inc()
	s.logger.Info("stored catalog results", "operation", op, "count", len(stored))

	for i := range stored {
		s.publish(ctx, domain.GameEvent{
			Action:    domain.ActionIngested,
			Game:      stored[i],
			Timestamp: time.Now().UTC(),
		})
	}

	return stored, nil
}

func (s *GameService) writeBack(ctx context.Context, candidates []domain.Game) ([]domain.Game, error) {
	order := make([]int, 0, len(candidates))
	for i := range candidates {
		if candidates[i].ProviderID == "" {
			s.logger.Warn("skipping candidate without provider id", "name", candidates[i].Name)
			continue
		}
		order = append(order, i)
	}
	// Rows are locked in provider id order so overlapping write-backs cannot deadlock.
	slices.SortStableFunc(order, func(a, b int) int {
		return strings.Compare(candidates[a].ProviderID, candidates[b].ProviderID)
	})

	results := make([]*domain.Game, len(candidates))
	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		for _, i := range order {
			game, err := s.store.Upsert(txCtx, &candidates[i])
			if err != nil {
				return fmt.Errorf("upsert game %s: %w", candidates[i].ProviderID, err)
			}
			results[i] = game
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stored := make([]domain.Game, 0, len(order))
	for _, game := range results {
		if game != nil {
			stored = append(stored, *game)
		}
	}

	metrics.GamesUpserted.Add(float64(len(stored)))
	return stored, nil
}

func (s *GameService) publish(ctx context.Context, event domain.GameEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			"action", event.Action,
			"game_id", event.Game.ID,
			"error", err,
		)
	}
}

func (s *GameService) limit(n int) int {
	switch {
	case n <= 0:
		return s.defaultLimit
	case n > domain.MaxLimit:
		return domain.MaxLimit
	default:
		return n
	}
}
