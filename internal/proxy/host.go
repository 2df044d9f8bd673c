// Package proxy implements the credential-injecting boundary described in
// spec §4.3: the sandboxed agent process never holds a vendor API key.
// Host is the host-side forward proxy — it listens on a Unix domain
// socket reachable only from the sandbox's mount namespace, allowlists
// the handful of vendor API paths the agent is permitted to call, strips
// any credential header the sandbox itself tried to set, and injects the
// real one from internal/secrets before forwarding upstream.
//
// Grounded on internal/providers's net/http-based per-vendor clients
// (anthropic.go's doRequest, openai.go's equivalent) for the allowlist of
// hosts/paths and header shapes each vendor expects, reimplemented here
// with github.com/valyala/fasthttp since this proxy sits on the hot path
// of every model turn and fasthttp's connection reuse matters more here
// than in the one-shot provider clients.
package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/valyala/fasthttp"

	"github.com/nextlevelbuilder/goclaw/internal/apperr"
	"github.com/nextlevelbuilder/goclaw/internal/secrets"
)

// Route describes one allowlisted upstream vendor path.
type Route struct {
	// Prefix is matched against the inbound request path, e.g. "/anthropic/".
	Prefix string
	// UpstreamHost is the real vendor host the request is forwarded to.
	UpstreamHost string
	// Secret is the credential injected into Header for every forwarded request.
	Secret secrets.Name
	// Header names the header the credential is injected into (e.g.
	// "x-api-key" for Anthropic, "Authorization" for OpenAI-shaped vendors).
	Header string
	// HeaderPrefix is prepended to the secret value, e.g. "Bearer ".
	HeaderPrefix string
}

// DefaultRoutes is the allowlist for the eleven vendors internal/config's
// ProvidersConfig names. Every vendor not listed here is unreachable
// through the proxy — the sandbox cannot widen its own network access by
// naming an unlisted host.
func DefaultRoutes() []Route {
	return []Route{
		{Prefix: "/anthropic/", UpstreamHost: "api.anthropic.com", Secret: secrets.Anthropic, Header: "x-api-key"},
		{Prefix: "/openai/", UpstreamHost: "api.openai.com", Secret: secrets.OpenAI, Header: "Authorization", HeaderPrefix: "Bearer "},
		{Prefix: "/openrouter/", UpstreamHost: "openrouter.ai", Secret: secrets.OpenRouter, Header: "Authorization", HeaderPrefix: "Bearer "},
		{Prefix: "/groq/", UpstreamHost: "api.groq.com", Secret: secrets.Groq, Header: "Authorization", HeaderPrefix: "Bearer "},
		{Prefix: "/gemini/", UpstreamHost: "generativelanguage.googleapis.com", Secret: secrets.Gemini, Header: "x-goog-api-key"},
		{Prefix: "/deepseek/", UpstreamHost: "api.deepseek.com", Secret: secrets.DeepSeek, Header: "Authorization", HeaderPrefix: "Bearer "},
		{Prefix: "/mistral/", UpstreamHost: "api.mistral.ai", Secret: secrets.Mistral, Header: "Authorization", HeaderPrefix: "Bearer "},
		{Prefix: "/xai/", UpstreamHost: "api.x.ai", Secret: secrets.XAI, Header: "Authorization", HeaderPrefix: "Bearer "},
		{Prefix: "/minimax/", UpstreamHost: "api.minimax.chat", Secret: secrets.MiniMax, Header: "Authorization", HeaderPrefix: "Bearer "},
		{Prefix: "/cohere/", UpstreamHost: "api.cohere.com", Secret: secrets.Cohere, Header: "Authorization", HeaderPrefix: "Bearer "},
		{Prefix: "/perplexity/", UpstreamHost: "api.perplexity.ai", Secret: secrets.Perplexity, Header: "Authorization", HeaderPrefix: "Bearer "},
	}
}

// strippedHeaders lists the headers the proxy deletes from every inbound
// request before forwarding — a compromised sandbox forging its own
// Authorization header must never reach the vendor, it is always
// overwritten by the route's injected credential below.
var strippedHeaders = []string{"Authorization", "X-Api-Key", "X-Goog-Api-Key", "Cookie"}

// Host is the host-side credential-injecting proxy.
type Host struct {
	routes []Route
	store  *secrets.Store
	log    *slog.Logger
	server *fasthttp.Server
	client *fasthttp.Client
}

func NewHost(routes []Route, store *secrets.Store, log *slog.Logger) *Host {
	if log == nil {
		log = slog.Default()
	}
	h := &Host{routes: routes, store: store, log: log, client: &fasthttp.Client{}}
	h.server = &fasthttp.Server{Handler: h.handle}
	return h
}

// Serve listens on a Unix domain socket at socketPath. The socket file is
// removed first if stale (e.g. left over from an unclean shutdown).
func (h *Host) Serve(ctx context.Context, socketPath string) error {
	_ = os.Remove(socketPath)
	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return fmt.Errorf("proxy: listen on %s: %w", socketPath, err)
	}
	if err := os.Chmod(socketPath, 0600); err != nil {
		h.log.Warn("proxy: chmod socket", "err", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- h.server.Serve(ln) }()

	select {
	case <-ctx.Done():
		_ = h.server.Shutdown()
		return ctx.Err()
	case err := <-errc:
		return err
	}
}

func (h *Host) handle(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	route := h.matchRoute(path)
	if route == nil {
		ctx.Error("proxy: no allowlisted route for this path", fasthttp.StatusForbidden)
		h.log.Warn("proxy: rejected unallowlisted path", "path", path)
		return
	}

	for _, name := range strippedHeaders {
		ctx.Request.Header.Del(name)
	}

	secret := h.store.Get(route.Secret)
	if secret == "" {
		ctx.Error(apperr.Policy("no credential configured for this vendor").Error(), fasthttp.StatusBadGateway)
		return
	}
	ctx.Request.Header.Set(route.Header, route.HeaderPrefix+secret)

	upstreamPath := strings.TrimPrefix(path, strings.TrimSuffix(route.Prefix, "/"))
	ctx.Request.SetHost(route.UpstreamHost)
	ctx.Request.URI().SetScheme("https")
	ctx.Request.URI().SetPath(upstreamPath)

	if err := h.client.Do(&ctx.Request, &ctx.Response); err != nil {
		h.log.Error("proxy: upstream request failed", "host", route.UpstreamHost, "err", err)
		ctx.Error(apperr.Provider(err, "upstream request failed").Error(), fasthttp.StatusBadGateway)
	}
}

func (h *Host) matchRoute(path string) *Route {
	for i := range h.routes {
		if strings.HasPrefix(path, h.routes[i].Prefix) {
			return &h.routes[i]
		}
	}
	return nil
}
