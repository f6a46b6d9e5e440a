package providers

import (
	"context"
	"sync"
	"time"

	"travelbook/airports/internal/constants"
	"travelbook/airports/internal/logging"

	"golang.org/x/sync/singleflight"
)

// TokenFetcher performs one client-credentials exchange.
type TokenFetcher func(ctx context.Context) (token string, expiresIn time.Duration, err error)

// TokenCache holds a single bearer token and its expiry. Concurrent callers
// hitting a cold cache share one in-flight fetch.
type TokenCache struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time

	fetch   TokenFetcher
	margin  time.Duration
	timeout time.Duration
	now     func() time.Time
	group   singleflight.Group
}

func NewTokenCache(fetch TokenFetcher) *TokenCache {
	return &TokenCache{
		fetch:   fetch,
		margin:  constants.TokenExpiryMarginSec * time.Second,
		timeout: constants.TokenFetchTimeoutSec * time.Second,
		now:     time.Now,
	}
}

// WithClock overrides the time source, used by tests to expire tokens.
func (c *TokenCache) WithClock(now func() time.Time) *TokenCache {
	c.now = now
	return c
}

// Token returns the cached token while now < expiresAt, otherwise fetches a new one.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	token, expiresAt := c.token, c.expiresAt
	c.mu.RUnlock()

	if token != "" && c.now().Before(expiresAt) {
		return token, nil
	}

	ch := c.group.DoChan("token", func() (interface{}, error) {
		// another caller may have refreshed while we waited on the group
		c.mu.RLock()
		if c.token != "" && c.now().Before(c.expiresAt) {
			t := c.token
			c.mu.RUnlock()
			return t, nil
		}
		c.mu.RUnlock()

		// shared by every waiter, so not bound to any single caller's cancellation
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		fresh, expiresIn, err := c.fetch(fetchCtx)
		if err != nil {
			return "", err
		}

		c.mu.Lock()
		c.token = fresh
		c.expiresAt = c.now().Add(expiresIn - c.margin)
		c.mu.Unlock()

		logging.Debug("[TokenCache] Token refreshed", "expires_in_s", int(expiresIn.Seconds()))
		return fresh, nil
	})

	select {
	case <-ctx.Done():
		return "", transportError(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token so the next call re-authenticates.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expiresAt = time.Time{}
	c.mu.Unlock()
}

// ExpiresAt reports the current expiry; zero when cold.
func (c *TokenCache) ExpiresAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiresAt
}
