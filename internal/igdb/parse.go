package igdb

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"game_catalog/internal/domain"
)

var imageSizeSegment = regexp.MustCompile(`/t_[a-zA-Z0-9_]+/`)

// NormalizeImageURL rewrites an IGDB image URL to its full-resolution https form.
func NormalizeImageURL(u string) string {
	if u == "" {
		return ""
	}

	u = imageSizeSegment.ReplaceAllString(u, "/t_original/")

	switch {
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.Contains(u, "://"):
		return u
	default:
		return "https://" + u
	}
}

// parseGames decodes a games response. Anything other than a JSON array yields
// no games; elements that fail to decode are skipped.
func parseGames(payload []byte, logger *slog.Logger) []domain.Game {
	games := []domain.Game{}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		logger.Warn("unexpected games payload, expected array", "bytes", len(payload))
		return games
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		logger.Warn("failed to decode games payload", "error", err)
		return games
	}

	for i, raw := range elements {
		var g gameJSON
		if err := json.Unmarshal(raw, &g); err != nil {
			logger.Warn("skipping malformed game", "index", i, "error", err)
			continue
		}
		if g.ID == nil {
			logger.Warn("skipping game without id", "index", i, "name", g.Name)
			continue
		}
		games = append(games, g.toDomain())
	}

	return games
}

func (g gameJSON) toDomain() domain.Game {
	game := domain.Game{
		ProviderID:       strconv.FormatInt(*g.ID, 10),
		Name:             g.Name,
		Slug:             g.Slug,
		Summary:          g.Summary,
		FirstReleaseDate: domain.UnknownReleaseDate,
		ReleaseDates:     releaseDates(g.ReleaseDates),
		ArtworkURLs:      imageURLs(g.Artworks),
		Screenshots:      imageURLs(g.Screenshots),
		Genres:           names(g.Genres),
		Themes:           names(g.Themes),
		Platforms:        names(g.Platforms),
	}

	if g.Rating != nil {
		game.ProviderRating = *g.Rating
	}
	if g.Hypes != nil {
		game.Hypes = *g.Hypes
	}
	if g.FirstReleaseDate != nil {
		game.FirstReleaseDate = domain.FormatUnixDate(*g.FirstReleaseDate)
	}

	var cover imageJSON
	if len(g.Cover) > 0 && json.Unmarshal(g.Cover, &cover) == nil && cover.URL != nil {
		game.CoverURL = NormalizeImageURL(*cover.URL)
	}

	return game
}

// entries splits a JSON array into its elements. Non-arrays have no entries.
func entries(raw json.RawMessage) []json.RawMessage {
	var list []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &list) != nil {
		return nil
	}
	return list
}

func names(raw json.RawMessage) []string {
	out := []string{}
	for _, e := range entries(raw) {
		var n namedJSON
		if json.Unmarshal(e, &n) != nil || n.Name == nil {
			continue
		}
		out = append(out, *n.Name)
	}
	return out
}

func imageURLs(raw json.RawMessage) []string {
	out := []string{}
	for _, e := range entries(raw) {
		var img imageJSON
		if json.Unmarshal(e, &img) != nil || img.URL == nil || *img.URL == "" {
			continue
		}
		out = append(out, NormalizeImageURL(*img.URL))
	}
	return out
}

func releaseDates(raw json.RawMessage) []string {
	out := []string{}
	for _, e := range entries(raw) {
		var rd releaseDateJSON
		if json.Unmarshal(e, &rd) != nil || rd.Date == nil || *rd.Date <= 0 {
			continue
		}
		out = append(out, domain.FormatUnixDate(*rd.Date))
	}
	return out
}
