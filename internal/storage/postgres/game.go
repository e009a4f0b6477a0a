package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"game_catalog/internal/domain"
)

const gameColumns = `
	id, provider_id, slug, name, summary, first_release_date, release_dates,
	cover_url, artwork_urls, screenshots, genres, themes, platforms,
	provider_rating, aggregate_rating, hypes, created_at, updated_at`

var orderBy = map[domain.SortMode]string{
	domain.SortNewest:          "created_at DESC, id",
	domain.SortName:            "name ASC, id",
	domain.SortProviderRating:  "provider_rating DESC, id",
	domain.SortAggregateRating: "aggregate_rating DESC NULLS LAST, provider_rating DESC, id",
	domain.SortReleaseDate:     "first_release_date ASC NULLS LAST, id",
	domain.SortHypes:           "hypes DESC, id",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type gameRow struct {
	ID               string          `db:"id"`
	ProviderID       string          `db:"provider_id"`
	Slug             string          `db:"slug"`
	Name             string          `db:"name"`
	Summary          string          `db:"summary"`
	FirstReleaseDate sql.NullTime    `db:"first_release_date"`
	ReleaseDates     pq.StringArray  `db:"release_dates"`
	CoverURL         string          `db:"cover_url"`
	ArtworkURLs      pq.StringArray  `db:"artwork_urls"`
	Screenshots      pq.StringArray  `db:"screenshots"`
	Genres           pq.StringArray  `db:"genres"`
	Themes           pq.StringArray  `db:"themes"`
	Platforms        pq.StringArray  `db:"platforms"`
	ProviderRating   float64         `db:"provider_rating"`
	AggregateRating  sql.NullFloat64 `db:"aggregate_rating"`
	Hypes            int32           `db:"hypes"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}

func (r gameRow) toDomain() domain.Game {
	g := domain.Game{
		ID:               r.ID,
		ProviderID:       r.ProviderID,
		Slug:             r.Slug,
		Name:             r.Name,
		Summary:          r.Summary,
		FirstReleaseDate: domain.UnknownReleaseDate,
		ReleaseDates:     r.ReleaseDates,
		CoverURL:         r.CoverURL,
		ArtworkURLs:      r.ArtworkURLs,
		Screenshots:      r.Screenshots,
		Genres:           r.Genres,
		Themes:           r.Themes,
		Platforms:        r.Platforms,
		ProviderRating:   r.ProviderRating,
		Hypes:            r.Hypes,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
	if r.FirstReleaseDate.Valid {
		g.FirstReleaseDate = r.FirstReleaseDate.Time.UTC().Format(domain.DateLayout)
	}
	if r.AggregateRating.Valid {
		rating := r.AggregateRating.Float64
		g.AggregateRating = &rating
	}
	g.Normalize()
	return g
}

type GameStore struct {
	db *sqlx.DB
}

func NewGameStore(db *sqlx.DB) *GameStore {
	return &GameStore{db: db}
}

// Upsert inserts a provider record or refreshes the row with the same
// provider id. The aggregate rating is never written here.
func (s *GameStore) Upsert(ctx context.Context, game *domain.Game) (*domain.Game, error) {
	if game.ProviderID == "" {
		return nil, domain.InvalidArgument("game %q has no provider id", game.Name)
	}

	query := `
		INSERT INTO games (
			provider_id, slug, name, summary, first_release_date, release_dates,
			cover_url, artwork_urls, screenshots, genres, themes, platforms,
			provider_rating, hypes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		ON CONFLICT (provider_id) DO UPDATE SET
			slug = EXCLUDED.slug,
			name = EXCLUDED.name,
			summary = EXCLUDED.summary,
			first_release_date = EXCLUDED.first_release_date,
			release_dates = EXCLUDED.release_dates,
			cover_url = EXCLUDED.cover_url,
			artwork_urls = EXCLUDED.artwork_urls,
			screenshots = EXCLUDED.screenshots,
			genres = EXCLUDED.genres,
			themes = EXCLUDED.themes,
			platforms = EXCLUDED.platforms,
			provider_rating = EXCLUDED.provider_rating,
			hypes = EXCLUDED.hypes,
			updated_at = NOW()
		RETURNING ` + gameColumns

	g := *game
	g.Normalize()

	var row gameRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query,
		g.ProviderID,
		g.Slug,
		g.Name,
		g.Summary,
		releaseDateParam(g.FirstReleaseDate),
		pq.StringArray(g.ReleaseDates),
		g.CoverURL,
		pq.StringArray(g.ArtworkURLs),
		pq.StringArray(g.Screenshots),
		pq.StringArray(g.Genres),
		pq.StringArray(g.Themes),
		pq.StringArray(g.Platforms),
		g.ProviderRating,
		g.Hypes,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert game %s: %w", g.ProviderID, err)
	}

	stored := row.toDomain()
	return &stored, nil
}

func (s *GameStore) GetByID(ctx context.Context, id string) (*domain.Game, error) {
	return s.getOne(ctx, "id = $1", id)
}

func (s *GameStore) GetBySlug(ctx context.Context, slug string) (*domain.Game, error) {
	return s.getOne(ctx, "slug = $1", slug)
}

func (s *GameStore) FindByName(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	return s.list(ctx,
		`name ILIKE '%' || $1::text || '%'`,
		"provider_rating DESC, name, id",
		limit, 0,
		likeEscaper.Replace(query),
	)
}

func (s *GameStore) ListByGenre(ctx context.Context, genre string, limit int) ([]domain.Game, error) {
	return s.list(ctx, "$1 = ANY(genres)", "provider_rating DESC, id", limit, 0, genre)
}

func (s *GameStore) ListTopRated(ctx context.Context, limit int) ([]domain.Game, error) {
	return s.list(ctx,
		"provider_rating > 0 OR aggregate_rating IS NOT NULL",
		"COALESCE(aggregate_rating, provider_rating) DESC, provider_rating DESC, id",
		limit, 0,
	)
}

func (s *GameStore) ListUpcoming(ctx context.Context, limit int) ([]domain.Game, error) {
	return s.list(ctx, "first_release_date > CURRENT_DATE", "first_release_date ASC, id", limit, 0)
}

func (s *GameStore) List(ctx context.Context, q domain.ListQuery) ([]domain.Game, error) {
	order, ok := orderBy[q.Sort]
	if !ok {
		order = orderBy[domain.SortNewest]
	}
	return s.list(ctx, "", order, q.Limit, q.Offset)
}

func (s *GameStore) UpdateAggregateRating(ctx context.Context, id string, rating float64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		"UPDATE games SET aggregate_rating = $2, updated_at = NOW() WHERE id = $1",
		id, rating,
	)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	if n == 0 {
		return domain.NotFound(id)
	}

	return nil
}

func (s *GameStore) getOne(ctx context.Context, where string, arg any) (*domain.Game, error) {
	query := "SELECT " + gameColumns + " FROM games WHERE " + where + " LIMIT 1"

	var row gameRow
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFound(fmt.Sprint(arg))
	}
	if err != nil {
		return nil, fmt.Errorf("get game: %w", err)
	}

	g := row.toDomain()
	return &g, nil
}

func (s *GameStore) list(ctx context.Context, where, order string, limit, offset int, args ...any) ([]domain.Game, error) {
	var b strings.Builder
	b.WriteString("SELECT " + gameColumns + " FROM games")
	if where != "" {
		b.WriteString(" WHERE " + where)
	}
	b.WriteString(" ORDER BY " + order)
	b.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2))

	var rows []gameRow
	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, b.String(), append(args, limit, offset)...); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	games := make([]domain.Game, 0, len(rows))
	for _, r := range rows {
		games = append(games, r.toDomain())
	}
	return games, nil
}

func releaseDateParam(date string) any {
	t, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		return nil
	}
	return t
}
