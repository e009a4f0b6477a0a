package igdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQueries(t *testing.T) {
	const relevance = "game_type = (0,8,9,10) & (game_status = null | game_status != (6, 7))"
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "search",
			query: searchQuery("Witcher", 10),
			want:  gameFields + `where name ~ *"Witcher"* & ` + relevance + "; limit 10;",
		},
		{
			name:  "slug",
			query: slugQuery("the-witcher-3-wild-hunt"),
			want:  gameFields + `where slug = "the-witcher-3-wild-hunt" & ` + relevance + ";",
		},
		{
			name:  "genre",
			query: genreQuery("Role-playing (RPG)", 5),
			want:  gameFields + `where genres.name = "Role-playing (RPG)" & ` + relevance + "; sort rating desc; limit 5;",
		},
		{
			name:  "top rated",
			query: topRatedQuery(20),
			want:  gameFields + "where rating != null & " + relevance + "; sort rating desc; limit 20;",
		},
		{
			name:  "upcoming",
			query: upcomingQuery(now, 3),
			want:  gameFields + "where first_release_date > 1700000000 & " + relevance + "; sort first_release_date asc; limit 3;",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.query)
		})
	}
}

func TestQueryFieldsProjection(t *testing.T) {
	q := NewQuery().Build()

	assert.Contains(t, q, "fields name,summary,rating,genres.name,first_release_date,artworks.url,cover.url,hypes,platforms.name,screenshots.url,slug,themes.name")
	assert.Contains(t, q, "release_dates.date")
	assert.NotContains(t, q, "limit")
	assert.NotContains(t, q, "sort")
}

func TestQueryLiteralCannotEscape(t *testing.T) {
	q := slugQuery(`x"; where id = 1; \`)

	assert.Contains(t, q, `slug = "x; where id = 1; "`)
}

func TestQueryBuildIsRepeatable(t *testing.T) {
	q := NewQuery().Where("rating != null").Limit(1)

	assert.Equal(t, q.Build(), q.Build())
}
