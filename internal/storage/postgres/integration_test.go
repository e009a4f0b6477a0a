//go:build integration

package postgres

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"game_catalog/internal/config"
	"game_catalog/internal/domain"
	"game_catalog/internal/service"
)

type PostgresIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *sqlx.DB
	store     *GameStore
	txManager *TransactionManager
}

func (s *PostgresIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	migrationsPath, err := filepath.Abs("../../../migrations")
	s.Require().NoError(err)

	container, err := postgres.Run(s.ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("test_db"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_games.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	connStr, err := container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", connStr)
	s.Require().NoError(err)
	s.db = db
	s.store = NewGameStore(db)
	s.txManager = NewTransactionManager(db)
}

func (s *PostgresIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func (s *PostgresIntegrationSuite) SetupTest() {
	_, _ = s.db.ExecContext(s.ctx, "DELETE FROM games")
}

func witcher() *domain.Game {
	return &domain.Game{
		ProviderID:       "1942",
		Slug:             "the-witcher-3-wild-hunt",
		Name:             "The Witcher 3: Wild Hunt",
		Summary:          "Geralt hunts monsters.",
		FirstReleaseDate: "2015-05-19",
		ReleaseDates:     []string{"2015-05-19"},
		CoverURL:         "https://images.igdb.com/igdb/image/upload/t_original/co1wyy.jpg",
		Genres:           []string{"Role-playing (RPG)", "Adventure"},
		Platforms:        []string{"PC (Microsoft Windows)"},
		ProviderRating:   93.5,
		Hypes:            10,
	}
}

func (s *PostgresIntegrationSuite) TestUpsert_InsertsAndAssignsID() {
	stored, err := s.store.Upsert(s.ctx, witcher())
	s.Require().NoError(err)

	_, err = uuid.Parse(stored.ID)
	s.NoError(err)
	s.Equal("1942", stored.ProviderID)
	s.Equal("2015-05-19", stored.FirstReleaseDate)
	s.Equal([]string{"Role-playing (RPG)", "Adventure"}, stored.Genres)
	s.NotNil(stored.Themes)
	s.Empty(stored.Themes)
	s.Nil(stored.AggregateRating)
	s.False(stored.CreatedAt.IsZero())
}

func (s *PostgresIntegrationSuite) TestUpsert_IsIdempotentOnProviderID() {
	first, err := s.store.Upsert(s.ctx, witcher())
	s.Require().NoError(err)

	second, err := s.store.Upsert(s.ctx, witcher())
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM games"))
	s.Equal(1, count)
}

func (s *PostgresIntegrationSuite) TestUpsert_RefreshesProviderFieldsKeepsAggregateRating() {
	first, err := s.store.Upsert(s.ctx, witcher())
	s.Require().NoError(err)
	s.Require().NoError(s.store.UpdateAggregateRating(s.ctx, first.ID, 9.5))

	updated := witcher()
	updated.ProviderRating = 95
	updated.Summary = "Updated summary"
	second, err := s.store.Upsert(s.ctx, updated)
	s.Require().NoError(err)

	s.Equal(95.0, second.ProviderRating)
	s.Equal("Updated summary", second.Summary)
	s.Require().NotNil(second.AggregateRating)
	s.Equal(9.5, *second.AggregateRating)
}

func (s *PostgresIntegrationSuite) TestUpsert_UnknownReleaseDate() {
	g := witcher()
	g.FirstReleaseDate = domain.UnknownReleaseDate

	stored, err := s.store.Upsert(s.ctx, g)
	s.Require().NoError(err)
	s.Equal(domain.UnknownReleaseDate, stored.FirstReleaseDate)
}

func (s *PostgresIntegrationSuite) TestUpsert_RequiresProviderID() {
	_, err := s.store.Upsert(s.ctx, &domain.Game{Name: "Nameless"})
	s.ErrorIs(err, domain.ErrInvalidArgument)
}

func (s *PostgresIntegrationSuite) TestGetBySlugAndID() {
	stored, err := s.store.Upsert(s.ctx, witcher())
	s.Require().NoError(err)

	bySlug, err := s.store.GetBySlug(s.ctx, "the-witcher-3-wild-hunt")
	s.Require().NoError(err)
	s.Equal(stored.ID, bySlug.ID)

	byID, err := s.store.GetByID(s.ctx, stored.ID)
	s.Require().NoError(err)
	s.Equal("The Witcher 3: Wild Hunt", byID.Name)

	_, err = s.store.GetBySlug(s.ctx, "missing")
	s.ErrorIs(err, domain.ErrNotFound)

	_, err = s.store.GetByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestFindByName() {
	_, err := s.store.Upsert(s.ctx, witcher())
	s.Require().NoError(err)
	_, err = s.store.Upsert(s.ctx, &domain.Game{ProviderID: "1877", Name: "Cyberpunk 2077", Slug: "cyberpunk-2077"})
	s.Require().NoError(err)

	games, err := s.store.FindByName(s.ctx, "witcher", 10)
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal("1942", games[0].ProviderID)

	games, err = s.store.FindByName(s.ctx, "100%", 10)
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *PostgresIntegrationSuite) TestListByGenreAndTopRated() {
	_, err := s.store.Upsert(s.ctx, witcher())
	s.Require().NoError(err)
	_, err = s.store.Upsert(s.ctx, &domain.Game{ProviderID: "2", Name: "Lesser RPG", Genres: []string{"Role-playing (RPG)"}, ProviderRating: 60})
	s.Require().NoError(err)
	_, err = s.store.Upsert(s.ctx, &domain.Game{ProviderID: "3", Name: "Unrated Shooter", Genres: []string{"Shooter"}})
	s.Require().NoError(err)

	rpgs, err := s.store.ListByGenre(s.ctx, "Role-playing (RPG)", 10)
	s.Require().NoError(err)
	s.Require().Len(rpgs, 2)
	s.Equal("1942", rpgs[0].ProviderID)

	top, err := s.store.ListTopRated(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal("1942", top[0].ProviderID)
}

func (s *PostgresIntegrationSuite) TestListUpcoming() {
	future := time.Now().AddDate(1, 0, 0).Format(domain.DateLayout)
	later := time.Now().AddDate(2, 0, 0).Format(domain.DateLayout)

	_, err := s.store.Upsert(s.ctx, witcher())
	s.Require().NoError(err)
	_, err = s.store.Upsert(s.ctx, &domain.Game{ProviderID: "20", Name: "Later", FirstReleaseDate: later})
	s.Require().NoError(err)
	_, err = s.store.Upsert(s.ctx, &domain.Game{ProviderID: "10", Name: "Sooner", FirstReleaseDate: future})
	s.Require().NoError(err)

	games, err := s.store.ListUpcoming(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal("Sooner", games[0].Name)
	s.Equal("Later", games[1].Name)
}

func (s *PostgresIntegrationSuite) TestListSortAndPaging() {
	for _, g := range []*domain.Game{
		{ProviderID: "1", Name: "Alpha", Hypes: 1},
		{ProviderID: "2", Name: "Bravo", Hypes: 30},
		{ProviderID: "3", Name: "Charlie", Hypes: 20},
	} {
		_, err := s.store.Upsert(s.ctx, g)
		s.Require().NoError(err)
	}

	games, err := s.store.List(s.ctx, domain.ListQuery{Limit: 2, Offset: 0, Sort: domain.SortName})
	s.Require().NoError(err)
	s.Require().Len(games, 2)
	s.Equal("Alpha", games[0].Name)
	s.Equal("Bravo", games[1].Name)

	games, err = s.store.List(s.ctx, domain.ListQuery{Limit: 2, Offset: 2, Sort: domain.SortName})
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal("Charlie", games[0].Name)

	games, err = s.store.List(s.ctx, domain.ListQuery{Limit: 1, Sort: domain.SortHypes})
	s.Require().NoError(err)
	s.Require().Len(games, 1)
	s.Equal("Bravo", games[0].Name)
}

func (s *PostgresIntegrationSuite) TestUpdateAggregateRating_NotFound() {
	err := s.store.UpdateAggregateRating(s.ctx, uuid.NewString(), 5)
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestTransaction_RollbackDiscardsWrites() {
	err := s.txManager.WithTransaction(s.ctx, func(ctx context.Context) error {
		if _, err := s.store.Upsert(ctx, witcher()); err != nil {
			return err
		}
		return errors.New("abort")
	})
	s.Require().Error(err)

	_, err = s.store.GetBySlug(s.ctx, "the-witcher-3-wild-hunt")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *PostgresIntegrationSuite) TestTransaction_CommitKeepsWrites() {
	err := s.txManager.WithTransaction(s.ctx, func(ctx context.Context) error {
		_, err := s.store.Upsert(ctx, witcher())
		return err
	})
	s.Require().NoError(err)

	_, err = s.store.GetBySlug(s.ctx, "the-witcher-3-wild-hunt")
	s.NoError(err)
}

// gatedStore holds the first two successful upserts until both have landed,
// so two write-backs each keep one row locked while they move on.
type gatedStore struct {
	*GameStore
	calls    atomic.Int32
	arrived  sync.WaitGroup
	released chan struct{}
}

func newGatedStore(store *GameStore) *gatedStore {
	g := &gatedStore{GameStore: store, released: make(chan struct{})}
	g.arrived.Add(2)
	go func() {
		g.arrived.Wait()
		close(g.released)
	}()
	return g
}

func (g *gatedStore) Upsert(ctx context.Context, game *domain.Game) (*domain.Game, error) {
	stored, err := g.GameStore.Upsert(ctx, game)
	if err != nil {
		return nil, err
	}
	if g.calls.Add(1) <= 2 {
		g.arrived.Done()
		select {
		case <-g.released:
		case <-time.After(time.Second):
		}
	}
	return stored, nil
}

// fixedCatalog answers searches and genre lookups with fixed batches.
type fixedCatalog struct {
	search []domain.Game
	genre  []domain.Game
}

func (c fixedCatalog) SearchByText(context.Context, string, int) ([]domain.Game, error) {
	return c.search, nil
}

func (c fixedCatalog) GetBySlug(context.Context, string) ([]domain.Game, error) {
	return nil, nil
}

func (c fixedCatalog) GetByGenre(context.Context, string, int) ([]domain.Game, error) {
	return c.genre, nil
}

func (c fixedCatalog) GetTopRated(context.Context, int) ([]domain.Game, error) {
	return nil, nil
}

func (c fixedCatalog) GetUpcoming(context.Context, int) ([]domain.Game, error) {
	return nil, nil
}

func (s *PostgresIntegrationSuite) TestWriteBack_OverlappingBatchesInOppositeOrder() {
	x := domain.Game{ProviderID: "101", Slug: "lockstep-x", Name: "Lockstep X", Genres: []string{"Lockstep"}}
	y := domain.Game{ProviderID: "202", Slug: "lockstep-y", Name: "Lockstep Y", Genres: []string{"Lockstep"}}

	games := service.NewGameService(
		newGatedStore(s.store),
		fixedCatalog{search: []domain.Game{x, y}, genre: []domain.Game{y, x}},
		s.txManager,
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		config.ServiceConfig{DefaultLimit: 10},
	)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	results := make([][]domain.Game, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		results[0], errs[0] = games.SearchGames(s.ctx, "Lockstep", 10)
	}()
	go func() {
		defer wg.Done()
		results[1], errs[1] = games.GetGamesByGenre(s.ctx, "Lockstep", 10)
	}()
	wg.Wait()

	s.Require().NoError(errs[0])
	s.Require().NoError(errs[1])
	s.Require().Len(results[0], 2)
	s.Require().Len(results[1], 2)

	var count int
	s.Require().NoError(s.db.GetContext(s.ctx, &count, "SELECT COUNT(*) FROM games"))
	s.Equal(2, count)
}

func TestPostgresIntegrationSuite(t *testing.T) {
	suite.Run(t, new(PostgresIntegrationSuite))
}
