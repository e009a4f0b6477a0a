package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"game_catalog/internal/domain"
)

// GameStore is the durable tier. Single-record lookups return
// domain.ErrNotFound when nothing matches.
type GameStore interface {
	FindByName(ctx context.Context, query string, limit int) ([]domain.Game, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Game, error)
	GetByID(ctx context.Context, id string) (*domain.Game, error)
	ListByGenre(ctx context.Context, genre string, limit int) ([]domain.Game, error)
	ListTopRated(ctx context.Context, limit int) ([]domain.Game, error)
	ListUpcoming(ctx context.Context, limit int) ([]domain.Game, error)
	List(ctx context.Context, q domain.ListQuery) ([]domain.Game, error)
	Upsert(ctx context.Context, game *domain.Game) (*domain.Game, error)
	UpdateAggregateRating(ctx context.Context, id string, rating float64) error
}

// Catalog is the external provider consulted on a store miss.
type Catalog interface {
	SearchByText(ctx context.Context, query string, limit int) ([]domain.Game, error)
	GetBySlug(ctx context.Context, slug string) ([]domain.Game, error)
	GetByGenre(ctx context.Context, genre string, limit int) ([]domain.Game, error)
	GetTopRated(ctx context.Context, limit int) ([]domain.Game, error)
	GetUpcoming(ctx context.Context, limit int) ([]domain.Game, error)
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, event domain.GameEvent) error
	Close() error
}
