package igdb

import (
	"strconv"
	"strings"
	"time"
)

const (
	gameFields = "fields name,summary,rating,genres.name,first_release_date,artworks.url,cover.url," +
		"hypes,platforms.name,screenshots.url,slug,themes.name,release_dates.date; "

	// Main games, remakes, remasters and expanded games that are not cancelled or rumored.
	relevanceFilter = "game_type = (0,8,9,10) & (game_status = null | game_status != (6, 7))"
)

var literalSanitizer = strings.NewReplacer(`"`, "", `\`, "")

// Query builds an IGDB query over the games endpoint.
type Query struct {
	where []string
	sort  string
	limit int
}

func NewQuery() *Query {
	return &Query{}
}

func (q *Query) Where(cond string) *Query {
	q.where = append(q.where, cond)
	return q
}

func (q *Query) Sort(field, direction string) *Query {
	q.sort = field + " " + direction
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) Build() string {
	var b strings.Builder
	b.WriteString(gameFields)
	b.WriteString("where ")
	conds := append(append([]string{}, q.where...), relevanceFilter)
	b.WriteString(strings.Join(conds, " & "))
	b.WriteString(";")
	if q.sort != "" {
		b.WriteString(" sort ")
		b.WriteString(q.sort)
		b.WriteString(";")
	}
	if q.limit > 0 {
		b.WriteString(" limit ")
		b.WriteString(strconv.Itoa(q.limit))
		b.WriteString(";")
	}
	return b.String()
}

// literal renders s as a DSL string literal body.
func literal(s string) string {
	return literalSanitizer.Replace(s)
}

func searchQuery(text string, limit int) string {
	return NewQuery().
		Where(`name ~ *"` + literal(text) + `"*`).
		Limit(limit).
		Build()
}

func slugQuery(slug string) string {
	return NewQuery().
		Where(`slug = "` + literal(slug) + `"`).
		Build()
}

func genreQuery(genre string, limit int) string {
	return NewQuery().
		Where(`genres.name = "` + literal(genre) + `"`).
		Sort("rating", "desc").
		Limit(limit).
		Build()
}

func topRatedQuery(limit int) string {
	return NewQuery().
		Where("rating != null").
		Sort("rating", "desc").
		Limit(limit).
		Build()
}

func upcomingQuery(now time.Time, limit int) string {
	return NewQuery().
		Where("first_release_date > " + strconv.FormatInt(now.Unix(), 10)).
		Sort("first_release_date", "asc").
		Limit(limit).
		Build()
}
