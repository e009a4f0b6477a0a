package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticationFailedIsUpstream(t *testing.T) {
	err := AuthenticationFailed(errors.New("bad status 403"))

	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.NotErrorIs(t, err, ErrStoreFailure)
}

func TestFailureWrappersKeepExistingKind(t *testing.T) {
	notFound := NotFound("witcher-3")

	err := StoreFailure("get by slug", notFound)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrStoreFailure)

	err = UpstreamFailure("search", fmt.Errorf("dial: %w", errors.New("refused")))
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)

	err = StoreFailure("upsert", errors.New("connection reset"))
	assert.ErrorIs(t, err, ErrStoreFailure)
	assert.Contains(t, err.Error(), "upsert")
}

func TestFormatUnixDate(t *testing.T) {
	assert.Equal(t, "2015-05-19", FormatUnixDate(1431993600))
	assert.Equal(t, "1970-01-01", FormatUnixDate(1))
	assert.Equal(t, UnknownReleaseDate, FormatUnixDate(0))
	assert.Equal(t, UnknownReleaseDate, FormatUnixDate(-5))
}

func TestNormalizeFillsEmptyCollections(t *testing.T) {
	g := Game{Name: "Cyberpunk 2077"}
	g.Normalize()

	assert.Equal(t, UnknownReleaseDate, g.FirstReleaseDate)
	assert.NotNil(t, g.ReleaseDates)
	assert.NotNil(t, g.ArtworkURLs)
	assert.NotNil(t, g.Screenshots)
	assert.NotNil(t, g.Genres)
	assert.NotNil(t, g.Themes)
	assert.NotNil(t, g.Platforms)
	assert.Empty(t, g.Genres)
}

func TestParseSortMode(t *testing.T) {
	tests := []struct {
		in   string
		want SortMode
	}{
		{"", SortNewest},
		{"name", SortName},
		{" Aggregate_Rating ", SortAggregateRating},
		{"hypes", SortHypes},
	}
	for _, tt := range tests {
		got, err := ParseSortMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseSortMode("popularity")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
