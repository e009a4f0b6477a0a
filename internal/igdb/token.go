package igdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"game_catalog/internal/domain"
	"game_catalog/internal/metrics"
)

type TokenConfig struct {
	ClientID     string
	ClientSecret string
	Host         string
	Path         string
	Port         int
	ExpiryBuffer time.Duration
	Timeout      time.Duration
}

// TokenState is the cached grant. ExpiresAt already has the expiry buffer
// subtracted.
type TokenState struct {
	Token     string
	ExpiresAt time.Time
}

// TokenCache holds the client-credentials access token and refreshes it
// before it expires. Concurrent callers share one in-flight grant.
type TokenCache struct {
	cfg       TokenConfig
	transport Requester
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	state TokenState
	group singleflight.Group
}

func NewTokenCache(cfg TokenConfig, transport Requester, logger *slog.Logger) *TokenCache {
	return &TokenCache{
		cfg:       cfg,
		transport: transport,
		logger:    logger.With("component", "token_cache"),
		now:       time.Now,
	}
}

// Token returns a valid access token, requesting a new one when the cached
// token is missing or inside its expiry buffer.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}

	ch := c.group.DoChan("token", func() (any, error) {
		if token, ok := c.cached(); ok {
			return token, nil
		}

		refreshCtx := context.WithoutCancel(ctx)
		if c.cfg.Timeout > 0 {
			var cancel context.CancelFunc
			refreshCtx, cancel = context.WithTimeout(refreshCtx, c.cfg.Timeout)
			defer cancel()
		}
		return c.refresh(refreshCtx)
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("await token: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token so the next call requests a new one.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.state = TokenState{}
	c.mu.Unlock()
	c.logger.Info("access token invalidated")
}

func (c *TokenCache) State() TokenState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state.Token == "" || !c.now().Before(c.state.ExpiresAt) {
		return "", false
	}
	return c.state.Token, true
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("grant_type", "client_credentials")

	payload, err := c.transport.Request(ctx, c.cfg.Host, c.cfg.Port, c.cfg.Path, http.MethodPost,
		[]byte(form.Encode()),
		map[string]string{
			"Content-Type": "application/x-www-form-urlencoded",
			"Accept":       "application/json",
		},
	)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		c.logger.Error("token request failed", "host", c.cfg.Host, "error", err)
		return "", domain.AuthenticationFailed(fmt.Errorf("request token: %w", err))
	}

	grant, err := parseTokenResponse(payload)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("failure").Inc()
		c.logger.Error("token response rejected", "error", err)
		return "", domain.AuthenticationFailed(err)
	}

	state := TokenState{
		Token:     grant.AccessToken,
		ExpiresAt: c.now().Add(time.Duration(grant.ExpiresIn)*time.Second - c.cfg.ExpiryBuffer),
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	metrics.TokenRefreshes.WithLabelValues("success").Inc()
	c.logger.Info("access token refreshed", "expires_at", state.ExpiresAt)

	return state.Token, nil
}

func parseTokenResponse(payload []byte) (*tokenResponse, error) {
	var resp tokenResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, errors.New("token response has no access_token")
	}
	if resp.ExpiresIn <= 0 {
		return nil, errors.New("token response has no expires_in")
	}
	return &resp, nil
}
