package ipc

import (
	"context"

	"github.com/nextlevelbuilder/goclaw/internal/taint"
)

type WebSearchPayload struct {
	Query string `json:"query"`
}

type WebSearchResult struct {
	Results []WebSearchHit `json:"results"`
}

type WebSearchHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

type WebFetchPayload struct {
	URL string `json:"url"`
}

type WebFetchResult struct {
	Content string `json:"content"`
}

// Browser action payloads, one per spec action, each independently
// schema-validated rather than collapsed into one generic instruction —
// every browser_* action gets its own DecodePayload call against its own
// struct, so an unknown or malformed field in one action can never be
// silently accepted by another.

type BrowserNavigatePayload struct {
	URL string `json:"url"`
}

type BrowserNavigateResult struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type BrowserSnapshotPayload struct{}

type BrowserSnapshotResult struct {
	Text string `json:"text"`
}

type BrowserClickPayload struct {
	Selector string `json:"selector"`
}

type BrowserClickResult struct {
	Observation string `json:"observation"`
}

type BrowserTypePayload struct {
	Selector string `json:"selector"`
	Text     string `json:"text"`
}

type BrowserTypeResult struct {
	Observation string `json:"observation"`
}

type BrowserScreenshotPayload struct {
	FullPage bool `json:"fullPage"`
}

type BrowserScreenshotResult struct {
	ImageBase64 string `json:"imageBase64"`
}

// WebBackend performs outbound network fetches on the sandbox's behalf —
// the sandbox itself has no route to the public internet, per §4.3; every
// byte that crosses this boundary is external-trust content and gets
// taint-tagged before the handler returns it.
type WebBackend interface {
	Search(ctx context.Context, query string) (WebSearchResult, error)
	Fetch(ctx context.Context, url string) (WebFetchResult, error)
}

// BrowserBackend drives the host-side headless browser (go-rod) the
// sandbox cannot launch directly. One session gets at most one live page,
// keyed by sessionID, so Click/Type/Screenshot act on whatever Navigate
// last opened.
type BrowserBackend interface {
	Navigate(ctx context.Context, sessionID, url string) (BrowserNavigateResult, error)
	Snapshot(ctx context.Context, sessionID string) (BrowserSnapshotResult, error)
	Click(ctx context.Context, sessionID, selector string) (BrowserClickResult, error)
	Type(ctx context.Context, sessionID, selector, text string) (BrowserTypeResult, error)
	Screenshot(ctx context.Context, sessionID string, fullPage bool) (BrowserScreenshotResult, error)
}

func RegisterWebHandlers(s *Server, web WebBackend, browser BrowserBackend, trackers *taint.Registry) {
	s.Register(ActionWebSearch, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req WebSearchPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := ValidateFreeText("query", req.Query, 1024); err != nil {
			return nil, err
		}
		res, err := web.Search(ctx, req.Query)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("web_search:"+req.Query, taint.TrustExternal, estimateTokens(res.Results))
		return res, nil
	})

	s.Register(ActionWebFetch, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req WebFetchPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		res, err := web.Fetch(ctx, req.URL)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("web_fetch:"+req.URL, taint.TrustExternal, len(res.Content)/4)
		return res, nil
	})

	s.Register(ActionBrowserNavigate, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req BrowserNavigatePayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		res, err := browser.Navigate(ctx, conn.SessionID, req.URL)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("browser_navigate:"+req.URL, taint.TrustExternal, len(res.Title)/4)
		return res, nil
	})

	s.Register(ActionBrowserSnapshot, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		res, err := browser.Snapshot(ctx, conn.SessionID)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("browser_snapshot", taint.TrustExternal, len(res.Text)/4)
		return res, nil
	})

	s.Register(ActionBrowserClick, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req BrowserClickPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		res, err := browser.Click(ctx, conn.SessionID, req.Selector)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("browser_click:"+req.Selector, taint.TrustExternal, len(res.Observation)/4)
		return res, nil
	})

	s.Register(ActionBrowserType, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req BrowserTypePayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		res, err := browser.Type(ctx, conn.SessionID, req.Selector, req.Text)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("browser_type:"+req.Selector, taint.TrustExternal, len(res.Observation)/4)
		return res, nil
	})

	s.Register(ActionBrowserShot, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req BrowserScreenshotPayload
		if len(msg.Payload) > 0 {
			if err := DecodePayload(msg, &req); err != nil {
				return nil, err
			}
		}
		return browser.Screenshot(ctx, conn.SessionID, req.FullPage)
	})
}

// estimateTokens is a rough, conservative per-hit token estimate used
// only to size the taint budget contribution of a search result set —
// not a tokenizer substitute.
func estimateTokens(hits []WebSearchHit) int {
	total := 0
	for _, h := range hits {
		total += (len(h.Title) + len(h.Snippet)) / 4
	}
	return total
}
