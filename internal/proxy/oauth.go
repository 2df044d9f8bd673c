package proxy

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/secrets"
)

// Token is an OAuth access token plus the refresh material needed to
// renew it.
type Token struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Refresher exchanges a refresh token for a new access token. Each OAuth-
// capable vendor provider implements this against its own token endpoint;
// this package only owns the scheduling and .env rewrite, not any
// vendor-specific refresh request shape.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (Token, error)
}

// RefreshManager eagerly refreshes one vendor's OAuth token a margin
// before it expires and persists the new token back to a .env file via
// internal/secrets, so the proxy always has a live access token without
// the operator ever re-running an interactive login flow mid-session.
// Grounded on internal/config.ProxyConfig.OAuthRefreshMarginSec (the
// configured margin) and the line-preserving secrets.SaveDotenv rewrite.
type RefreshManager struct {
	mu        sync.Mutex
	secret    secrets.Name
	dotenvPth string
	margin    time.Duration
	refresher Refresher
	current   Token
	log       *slog.Logger
}

func NewRefreshManager(secret secrets.Name, dotenvPath string, margin time.Duration, refresher Refresher, initial Token, log *slog.Logger) *RefreshManager {
	if log == nil {
		log = slog.Default()
	}
	return &RefreshManager{secret: secret, dotenvPth: dotenvPath, margin: margin, refresher: refresher, current: initial, log: log}
}

// AccessToken returns the current access token, refreshing first if it
// is within margin of expiring.
func (m *RefreshManager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Until(m.current.ExpiresAt) > m.margin {
		return m.current.AccessToken, nil
	}

	next, err := m.refresher.Refresh(ctx, m.current.RefreshToken)
	if err != nil {
		// Non-fatal per spec: the stale token is still returned so the
		// caller can try the call and prompt for re-auth on a 401,
		// rather than blocking the whole turn on a refresh hiccup.
		m.log.Warn("proxy: oauth refresh failed, using existing token", "err", err)
		return m.current.AccessToken, nil
	}
	m.current = next

	if m.dotenvPth != "" {
		if err := secrets.SaveDotenv(m.dotenvPth, map[secrets.Name]string{m.secret: next.AccessToken}); err != nil {
			m.log.Error("proxy: persist refreshed oauth token", "err", err)
		}
	}
	return m.current.AccessToken, nil
}

// Run starts a background loop that proactively refreshes the token
// margin before expiry rather than waiting for the next AccessToken call,
// so a scheduled cron turn firing while nothing else is active still
// gets a live token. Returns when ctx is cancelled.
func (m *RefreshManager) Run(ctx context.Context) {
	for {
		m.mu.Lock()
		wait := time.Until(m.current.ExpiresAt) - m.margin
		m.mu.Unlock()
		if wait < 0 {
			wait = 0
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
			if _, err := m.AccessToken(ctx); err != nil {
				m.log.Error("proxy: background oauth refresh", "err", err)
			}
		}
	}
}
