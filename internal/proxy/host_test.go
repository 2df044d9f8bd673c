package proxy

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/nextlevelbuilder/goclaw/internal/secrets"
)

func TestMatchRouteByPrefix(t *testing.T) {
	h := NewHost(DefaultRoutes(), secrets.NewStore(), nil)
	r := h.matchRoute("/anthropic/v1/messages")
	if r == nil || r.UpstreamHost != "api.anthropic.com" {
		t.Fatalf("matchRoute = %+v, want anthropic route", r)
	}
}

func TestMatchRouteRejectsUnlistedPath(t *testing.T) {
	h := NewHost(DefaultRoutes(), secrets.NewStore(), nil)
	if r := h.matchRoute("/not-a-vendor/foo"); r != nil {
		t.Fatalf("matchRoute for unlisted path = %+v, want nil", r)
	}
}

func TestHandleRejectsUnallowlistedPath(t *testing.T) {
	store := secrets.NewStore()
	store.Set(secrets.Anthropic, "sk-ant-test")
	h := NewHost(DefaultRoutes(), store, nil)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/evil/path")
	h.handle(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusForbidden {
		t.Fatalf("status = %d, want 403", ctx.Response.StatusCode())
	}
}

func TestHandleRejectsMissingCredential(t *testing.T) {
	store := secrets.NewStore() // no Anthropic key set
	h := NewHost(DefaultRoutes(), store, nil)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/anthropic/v1/messages")
	h.handle(ctx)

	if ctx.Response.StatusCode() != fasthttp.StatusBadGateway {
		t.Fatalf("status = %d, want 502", ctx.Response.StatusCode())
	}
}

func TestHandleStripsForgedAuthHeader(t *testing.T) {
	store := secrets.NewStore()
	store.Set(secrets.Anthropic, "sk-ant-real")
	h := NewHost([]Route{{Prefix: "/anthropic/", UpstreamHost: "127.0.0.1:0", Secret: secrets.Anthropic, Header: "x-api-key"}}, store, nil)

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.SetRequestURI("/anthropic/v1/messages")
	ctx.Request.Header.Set("Authorization", "Bearer forged-by-sandbox")

	// handle() will attempt (and fail) to dial the bogus upstream, but
	// we only care that the forged header was stripped and the real
	// credential was injected before that dial was attempted.
	h.handle(ctx)

	if string(ctx.Request.Header.Peek("x-api-key")) != "sk-ant-real" {
		t.Fatalf("x-api-key = %q, want sk-ant-real", ctx.Request.Header.Peek("x-api-key"))
	}
}

func TestSocketPermissions(t *testing.T) {
	dir := t.TempDir()
	sockPath := filepath.Join(dir, "proxy.sock")
	h := NewHost(DefaultRoutes(), secrets.NewStore(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() { errc <- h.Serve(ctx, sockPath) }()
	time.Sleep(20 * time.Millisecond)

	info, err := os.Stat(sockPath)
	if err != nil {
		t.Fatalf("stat socket: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("socket permissions = %v, want 0600", info.Mode().Perm())
	}
	cancel()
}
