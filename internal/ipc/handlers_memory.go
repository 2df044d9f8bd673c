package ipc

import (
	"context"

	"github.com/nextlevelbuilder/goclaw/internal/taint"
)

type MemorySearchPayload struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type MemoryQueryPayload struct {
	Tags  []string `json:"tags"`
	Limit int      `json:"limit"`
}

type MemoryGetPayload struct {
	ID string `json:"id"`
}

type MemoryReadPayload struct {
	ID string `json:"id"`
}

type MemoryListPayload struct {
	Limit int `json:"limit"`
}

type MemoryDeletePayload struct {
	ID string `json:"id"`
}

type MemoryWritePayload struct {
	Content string `json:"content"`
	Trust   string `json:"trust"` // provenance of the content being written, e.g. "user" or "web_fetch:<url>"
}

type MemoryRecord struct {
	ID      string `json:"id"`
	Content string `json:"content"`
}

// MemoryBackend is the durable memory store the memory.* actions dispatch
// to. internal/store/sqlite's MemoryStore satisfies it. Read and Get both return a single
// record: Get is keyed off a full-text/semantic search hit's opaque ID,
// Read off an ID the agent already knows (e.g. echoed from a prior list
// or write) — the distinction spec.md draws between memory_get (search
// result retrieval) and memory_read (direct lookup).
type MemoryBackend interface {
	Search(ctx context.Context, sessionID, query string, limit int) ([]MemoryRecord, error)
	Query(ctx context.Context, sessionID string, tags []string, limit int) ([]MemoryRecord, error)
	Get(ctx context.Context, sessionID, id string) (MemoryRecord, error)
	Read(ctx context.Context, sessionID, id string) (MemoryRecord, error)
	List(ctx context.Context, sessionID string, limit int) ([]MemoryRecord, error)
	Write(ctx context.Context, sessionID, content string) (MemoryRecord, error)
	Delete(ctx context.Context, sessionID, id string) error
}

// RegisterMemoryHandlers wires the memory.* action family onto s.
// memory.write additionally records a taint Tag, since writing agent
// output into durable memory is how an injected instruction could
// persist past the session it arrived in.
func RegisterMemoryHandlers(s *Server, backend MemoryBackend, trackers *taint.Registry) {
	s.Register(ActionMemorySearch, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req MemorySearchPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if req.Limit <= 0 {
			req.Limit = 10
		}
		return backend.Search(ctx, conn.SessionID, req.Query, req.Limit)
	})

	s.Register(ActionMemoryQuery, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req MemoryQueryPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if req.Limit <= 0 {
			req.Limit = 10
		}
		return backend.Query(ctx, conn.SessionID, req.Tags, req.Limit)
	})

	s.Register(ActionMemoryGet, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req MemoryGetPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		return backend.Get(ctx, conn.SessionID, req.ID)
	})

	s.Register(ActionMemoryRead, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req MemoryReadPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		return backend.Read(ctx, conn.SessionID, req.ID)
	})

	s.Register(ActionMemoryList, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req MemoryListPayload
		if len(msg.Payload) > 0 {
			if err := DecodePayload(msg, &req); err != nil {
				return nil, err
			}
		}
		if req.Limit <= 0 {
			req.Limit = 50
		}
		return backend.List(ctx, conn.SessionID, req.Limit)
	})

	s.Register(ActionMemoryDelete, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req MemoryDeletePayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := backend.Delete(ctx, conn.SessionID, req.ID); err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("memory.delete:"+req.ID, taint.TrustUser, 0)
		return struct{}{}, nil
	})

	s.Register(ActionMemoryWrite, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req MemoryWritePayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := ValidateFreeText("content", req.Content, 64<<10); err != nil {
			return nil, err
		}
		rec, err := backend.Write(ctx, conn.SessionID, req.Content)
		if err != nil {
			return nil, err
		}
		trackers.Get(conn.SessionID).Record("memory.write:"+req.Trust, trustFromString(req.Trust), len(req.Content))
		return rec, nil
	})
}
