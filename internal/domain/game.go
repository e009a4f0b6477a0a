package domain

import (
	"fmt"
	"strings"
	"time"
)

// UnknownReleaseDate marks a game whose first release date the catalog does not know.
const UnknownReleaseDate = "N/A"

// DateLayout is the calendar format used for every release date.
const DateLayout = "2006-01-02"

// DefaultLimit applies to every list operation called with a non-positive limit.
const DefaultLimit = 10

// MaxLimit is the largest page the provider accepts; larger limits are clamped.
const MaxLimit = 500

type Game struct {
	ID               string    `json:"id"`
	ProviderID       string    `json:"provider_id"` // IGDB id, natural key
	Slug             string    `json:"slug"`
	Name             string    `json:"name"`
	Summary          string    `json:"summary"`
	FirstReleaseDate string    `json:"first_release_date"`
	ReleaseDates     []string  `json:"release_dates"`
	CoverURL         string    `json:"cover_url"`
	ArtworkURLs      []string  `json:"artwork_urls"`
	Screenshots      []string  `json:"screenshots"`
	Genres           []string  `json:"genres"`
	Themes           []string  `json:"themes"`
	Platforms        []string  `json:"platforms"`
	ProviderRating   float64   `json:"provider_rating"`
	AggregateRating  *float64  `json:"aggregate_rating"` // owned by this service, nil until rated
	Hypes            int32     `json:"hypes"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Normalize replaces nil collections with empty ones and fills the release date sentinel.
func (g *Game) Normalize() {
	if g.FirstReleaseDate == "" {
		g.FirstReleaseDate = UnknownReleaseDate
	}
	for _, list := range []*[]string{&g.ReleaseDates, &g.ArtworkURLs, &g.Screenshots, &g.Genres, &g.Themes, &g.Platforms} {
		if *list == nil {
			*list = []string{}
		}
	}
}

// FormatUnixDate renders a unix timestamp as a UTC calendar date.
// Non-positive timestamps are unknown.
func FormatUnixDate(ts int64) string {
	if ts <= 0 {
		return UnknownReleaseDate
	}
	return time.Unix(ts, 0).UTC().Format(DateLayout)
}

type SortMode string

const (
	SortNewest          SortMode = "newest"
	SortName            SortMode = "name"
	SortProviderRating  SortMode = "provider_rating"
	SortAggregateRating SortMode = "aggregate_rating"
	SortReleaseDate     SortMode = "release_date"
	SortHypes           SortMode = "hypes"
)

// ParseSortMode accepts the sort names exposed to callers. Empty means newest first.
func ParseSortMode(s string) (SortMode, error) {
	switch mode := SortMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return SortNewest, nil
	case SortNewest, SortName, SortProviderRating, SortAggregateRating, SortReleaseDate, SortHypes:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: unknown sort mode %q", ErrInvalidArgument, s)
	}
}

type ListQuery struct {
	Limit  int
	Offset int
	Sort   SortMode
}

// GameRef selects a single game by store id or by slug. ID wins when both are set.
type GameRef struct {
	ID   string
	Slug string
}
