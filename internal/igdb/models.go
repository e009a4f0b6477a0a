package igdb

import "encoding/json"

// gameJSON is one element of a /v4/games response. Scalars are pointers so
// absent fields can be told apart from zero values; nested collections stay
// raw and are decoded entry by entry.
type gameJSON struct {
	ID               *int64          `json:"id"`
	Name             string          `json:"name"`
	Slug             string          `json:"slug"`
	Summary          string          `json:"summary"`
	Rating           *float64        `json:"rating"`
	Hypes            *int32          `json:"hypes"`
	FirstReleaseDate *int64          `json:"first_release_date"`
	Cover            json.RawMessage `json:"cover"`
	Artworks         json.RawMessage `json:"artworks"`
	Screenshots      json.RawMessage `json:"screenshots"`
	Genres           json.RawMessage `json:"genres"`
	Themes           json.RawMessage `json:"themes"`
	Platforms        json.RawMessage `json:"platforms"`
	ReleaseDates     json.RawMessage `json:"release_dates"`
}

type namedJSON struct {
	Name *string `json:"name"`
}

type imageJSON struct {
	URL *string `json:"url"`
}

type releaseDateJSON struct {
	Date *int64 `json:"date"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}
