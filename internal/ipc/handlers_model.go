package ipc

import "context"

// ModelPayload requests one LLM turn through the host's credential proxy.
// The sandbox never supplies a vendor key — Provider selects which
// upstream the host's proxy routes to.
type ModelPayload struct {
	Provider string   `json:"provider"`
	Model    string   `json:"model"`
	Messages []string `json:"messages"`
	Stream   bool     `json:"stream"`
}

type ModelResult struct {
	Content      string `json:"content"`
	PromptTokens int    `json:"promptTokens"`
	OutputTokens int    `json:"outputTokens"`
}

// ModelRunner executes a completion request against a vendor through the
// credential proxy, keyed on ModelPayload.Provider. No type in this
// module implements it; internal/providers' clients have a different
// method set.
type ModelRunner interface {
	Complete(ctx context.Context, sessionID string, req ModelPayload) (ModelResult, error)
}

// RegisterModelHandlers wires the model.* action family onto s.
func RegisterModelHandlers(s *Server, runner ModelRunner) {
	s.Register(ActionModelComplete, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req ModelPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		return runner.Complete(ctx, conn.SessionID, req)
	})
	s.Register(ActionModelStream, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req ModelPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		req.Stream = true
		return runner.Complete(ctx, conn.SessionID, req)
	})
}
