package proxy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nextlevelbuilder/goclaw/internal/secrets"
)

type fakeRefresher struct {
	calls int
	next  Token
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (Token, error) {
	f.calls++
	return f.next, f.err
}

func TestAccessTokenSkipsRefreshWhenFresh(t *testing.T) {
	refresher := &fakeRefresher{}
	initial := Token{AccessToken: "fresh-token", ExpiresAt: time.Now().Add(time.Hour)}
	m := NewRefreshManager(secrets.Anthropic, "", 5*time.Minute, refresher, initial, nil)

	got, err := m.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if got != "fresh-token" {
		t.Fatalf("AccessToken = %q, want fresh-token", got)
	}
	if refresher.calls != 0 {
		t.Fatalf("refresher called %d times, want 0", refresher.calls)
	}
}

func TestAccessTokenRefreshesWithinMargin(t *testing.T) {
	refresher := &fakeRefresher{next: Token{AccessToken: "new-token", ExpiresAt: time.Now().Add(time.Hour)}}
	initial := Token{AccessToken: "stale-token", ExpiresAt: time.Now().Add(1 * time.Minute)}
	m := NewRefreshManager(secrets.Anthropic, "", 5*time.Minute, refresher, initial, nil)

	got, err := m.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken: %v", err)
	}
	if got != "new-token" {
		t.Fatalf("AccessToken = %q, want new-token", got)
	}
	if refresher.calls != 1 {
		t.Fatalf("refresher called %d times, want 1", refresher.calls)
	}
}

func TestAccessTokenPersistsToDotenv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")

	refresher := &fakeRefresher{next: Token{AccessToken: "persisted-token", ExpiresAt: time.Now().Add(time.Hour)}}
	initial := Token{AccessToken: "stale", ExpiresAt: time.Now()}
	m := NewRefreshManager(secrets.Anthropic, path, 5*time.Minute, refresher, initial, nil)

	if _, err := m.AccessToken(context.Background()); err != nil {
		t.Fatalf("AccessToken: %v", err)
	}

	out, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dotenv: %v", err)
	}
	if string(out) != "AX_ANTHROPIC_API_KEY=persisted-token\n" {
		t.Fatalf("dotenv content = %q", out)
	}
}

func TestAccessTokenFallsBackOnRefreshError(t *testing.T) {
	refresher := &fakeRefresher{err: context.DeadlineExceeded}
	initial := Token{AccessToken: "still-usable", ExpiresAt: time.Now()}
	m := NewRefreshManager(secrets.Anthropic, "", 5*time.Minute, refresher, initial, nil)

	got, err := m.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken should not return an error on refresh failure: %v", err)
	}
	if got != "still-usable" {
		t.Fatalf("AccessToken = %q, want fallback to still-usable", got)
	}
}
