package api

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"game_catalog/internal/domain"
)

type Games interface {
	SearchGames(ctx context.Context, query string, limit int) ([]domain.Game, error)
	GetGame(ctx context.Context, ref domain.GameRef) (*domain.Game, error)
	GetGamesByGenre(ctx context.Context, genre string, limit int) ([]domain.Game, error)
	GetTopRatedGames(ctx context.Context, limit int) ([]domain.Game, error)
	GetUpcomingGames(ctx context.Context, limit int) ([]domain.Game, error)
	ListGames(ctx context.Context, q domain.ListQuery) ([]domain.Game, error)
	UpdateRating(ctx context.Context, id string, rating float64) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}
