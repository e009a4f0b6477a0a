package igdb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"game_catalog/internal/domain"
	"game_catalog/internal/metrics"
)

// Config holds the games endpoint settings.
type Config struct {
	ClientID       string
	Host           string
	Path           string
	Port           int
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// TokenSource supplies bearer tokens for the games endpoint.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate()
}

// Client queries the IGDB games endpoint.
type Client struct {
	transport      Requester
	tokens         TokenSource
	clientID       string
	host           string
	path           string
	port           int
	timeout        time.Duration
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
	now            func() time.Time
}

func NewClient(cfg Config, transport Requester, tokens TokenSource, logger *slog.Logger) *Client {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Client{
		transport:      transport,
		tokens:         tokens,
		clientID:       cfg.ClientID,
		host:           cfg.Host,
		path:           cfg.Path,
		port:           cfg.Port,
		timeout:        cfg.Timeout,
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("component", "igdb"),
		now:            time.Now,
	}
}

func (c *Client) SearchByText(ctx context.Context, query string, limit int) ([]domain.Game, error) {
	return c.fetch(ctx, "search", searchQuery(query, limit))
}

func (c *Client) GetBySlug(ctx context.Context, slug string) ([]domain.Game, error) {
	return c.fetch(ctx, "slug", slugQuery(slug))
}

func (c *Client) GetByGenre(ctx context.Context, genre string, limit int) ([]domain.Game, error) {
	return c.fetch(ctx, "genre", genreQuery(genre, limit))
}

func (c *Client) GetTopRated(ctx context.Context, limit int) ([]domain.Game, error) {
	return c.fetch(ctx, "top_rated", topRatedQuery(limit))
}

func (c *Client) GetUpcoming(ctx context.Context, limit int) ([]domain.Game, error) {
	return c.fetch(ctx, "upcoming", upcomingQuery(c.now(), limit))
}

func (c *Client) fetch(ctx context.Context, op, query string) ([]domain.Game, error) {
	start := time.Now()

	payload, err := c.postWithRetry(ctx, query)
	if err != nil {
		metrics.RecordProviderRequest(op, "error", start)
		return nil, domain.UpstreamFailure("igdb "+op, err)
	}
	metrics.RecordProviderRequest(op, "ok", start)

	games := parseGames(payload, c.logger)
	c.logger.Debug("fetched games", "operation", op, "count", len(games))

	return games, nil
}

func (c *Client) postWithRetry(ctx context.Context, query string) ([]byte, error) {
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		var payload []byte
		payload, err = c.post(ctx, query)
		if err == nil {
			return payload, nil
		}

		if !retryable(err) || attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, err
}

func (c *Client) post(ctx context.Context, query string) ([]byte, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := c.transport.Request(ctx, c.host, c.port, c.path, http.MethodPost, []byte(query),
		map[string]string{
			"Client-ID":     c.clientID,
			"Authorization": "Bearer " + token,
			"Accept":        "application/json",
			"Content-Type":  "text/plain",
		},
	)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized {
			c.tokens.Invalidate()
		}
		return nil, fmt.Errorf("query games: %w", err)
	}

	return payload, nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

func retryable(err error) bool {
	if errors.Is(err, domain.ErrAuthenticationFailed) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusUnauthorized ||
			statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= 500
	}

	return errors.Is(err, ErrTransport)
}
