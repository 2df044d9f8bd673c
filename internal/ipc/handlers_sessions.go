package ipc

import (
	"context"

	"github.com/nextlevelbuilder/goclaw/internal/taint"
)

type SessionsListResult struct {
	Sessions []SessionSummary `json:"sessions"`
}

type SessionSummary struct {
	Key     string `json:"key"`
	Channel string `json:"channel"`
	Label   string `json:"label,omitempty"`
}

type SessionsHistoryPayload struct {
	Key   string `json:"key"`
	Limit int    `json:"limit"`
}

type SessionsHistoryResult struct {
	Messages []string `json:"messages"`
}

type SessionsSendPayload struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

type SessionsSendResult struct {
	Delivered bool `json:"delivered"`
}

// SessionsBackend is the read/send surface exposed to a sandboxed agent's
// "sessions" tool group — listing and messaging peer sessions under the
// same agent, never sessions belonging to a different agent or principal.
type SessionsBackend interface {
	List(ctx context.Context, agentID string) (SessionsListResult, error)
	History(ctx context.Context, agentID, key string, limit int) (SessionsHistoryResult, error)
	Send(ctx context.Context, agentID, key, content string) (SessionsSendResult, error)
}

func RegisterSessionsHandlers(s *Server, backend SessionsBackend, agentIDOf func(sessionID string) string, trackers *taint.Registry) {
	s.Register(ActionSessionsList, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		return backend.List(ctx, agentIDOf(conn.SessionID))
	})

	s.Register(ActionSessionsHistory, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req SessionsHistoryPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if req.Limit <= 0 {
			req.Limit = 50
		}
		return backend.History(ctx, agentIDOf(conn.SessionID), req.Key, req.Limit)
	})

	s.Register(ActionSessionsSend, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req SessionsSendPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := ValidateFreeText("content", req.Content, 16<<10); err != nil {
			return nil, err
		}
		res, err := backend.Send(ctx, agentIDOf(conn.SessionID), req.Key, req.Content)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("sessions.send:"+req.Key, taint.TrustUser, len(req.Content)/4)
		return res, nil
	})
}
