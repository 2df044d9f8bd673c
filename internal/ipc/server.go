package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/nextlevelbuilder/goclaw/internal/apperr"
	"github.com/nextlevelbuilder/goclaw/internal/taint"
)

// Handler processes one decoded Message and returns its response
// payload, or an error. Registered per Action in Server.Register.
type Handler func(ctx context.Context, conn *Conn, msg *Message) (any, error)

// Conn is one sandbox connection: a framed duplex stream plus the
// session taint tracker the sensitive-action gate consults. One Conn per
// launched sandbox instance — matching the teacher's one-goroutine-per-
// connection idiom (internal/gateway/server.go's websocket handler,
// internal/channels/manager.go's per-platform listener goroutine).
type Conn struct {
	SessionID string
	AgentID   string
	reader    *FrameReader
	writeMu   sync.Mutex
	writer    io.Writer
	tracker   *taint.SessionTracker
	audit     AuditSink
	log       *slog.Logger
}

// AuditSink records every IPC call for later review. The host is the only
// writer: the sandbox has no action that reaches this interface directly
// (audit.query, the sandbox-facing read action, dispatches to an
// AuditBackend instead — see handlers_audit.go).
type AuditSink interface {
	Record(ctx context.Context, sessionID, agentID string, action Action, argsSummary string, status string, durationMs int64, taintTag string)
}

// Server owns the action→Handler registry and runs one Conn per accepted
// sandbox stream.
type Server struct {
	handlers map[Action]Handler
	trackers *taint.Registry
	audit    AuditSink
	log      *slog.Logger
}

func NewServer(trackers *taint.Registry, audit AuditSink, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{handlers: make(map[Action]Handler), trackers: trackers, audit: audit, log: log}
}

// Register adds a handler for action. Panics on duplicate registration,
// matching internal/sandbox's backend registry — a double-register is a
// build-time programming error, not a runtime condition to recover from.
func (s *Server) Register(action Action, h Handler) {
	if _, exists := s.handlers[action]; exists {
		panic("ipc: handler already registered for action " + string(action))
	}
	s.handlers[action] = h
}

// Serve runs the request/response loop for one sandbox connection until
// r is closed or returns a framing error. Every request dispatches onto
// its own goroutine so a slow handler (e.g. a web fetch) never blocks
// other in-flight requests on the same connection — ordering guarantees
// the session needs are provided by the per-session lock inside
// taint.SessionTracker and the scheduler's per-session queue, not by
// serializing the connection itself. Serve waits for every dispatched
// goroutine to finish writing its response before returning, so a
// caller that closes w right after Serve returns never truncates an
// in-flight reply.
func (s *Server) Serve(ctx context.Context, sessionID, agentID string, r io.Reader, w io.Writer) error {
	conn := &Conn{
		SessionID: sessionID,
		AgentID:   agentID,
		reader:    NewFrameReader(r),
		writer:    w,
		tracker:   s.trackers.Get(sessionID),
		audit:     s.audit,
		log:       s.log,
	}

	var wg sync.WaitGroup
	for {
		raw, err := conn.reader.ReadFrame()
		if err != nil {
			wg.Wait()
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func(raw []byte) {
			defer wg.Done()
			s.dispatch(ctx, conn, raw)
		}(raw)
	}
}

func (s *Server) dispatch(ctx context.Context, conn *Conn, raw []byte) {
	msg, err := DecodeStrict(raw)
	if err != nil {
		s.log.Warn("ipc: rejected malformed frame", "err", err)
		// No message ID could be recovered — nothing to reply to here;
		// the sandbox will see its request time out and can retry.
		return
	}

	if msg.Action.IsSensitive() && conn.tracker.Exhausted() {
		if conn.audit != nil {
			conn.audit.Record(ctx, conn.SessionID, conn.AgentID, msg.Action, summarizeArgs(msg.Payload), "blocked", 0, "")
		}
		s.reply(conn, msg.ID, nil, apperr.Policy("taint budget exhausted for session"))
		return
	}

	handler, ok := s.handlers[msg.Action]
	if !ok {
		if conn.audit != nil {
			conn.audit.Record(ctx, conn.SessionID, conn.AgentID, msg.Action, summarizeArgs(msg.Payload), "error", 0, "")
		}
		s.reply(conn, msg.ID, nil, apperr.Validation("unknown action %q", msg.Action))
		return
	}

	result, herr := handler(ctx, conn, msg)
	status := "ok"
	if herr != nil {
		status = "error"
	}
	if conn.audit != nil {
		conn.audit.Record(ctx, conn.SessionID, conn.AgentID, msg.Action, summarizeArgs(msg.Payload), status, 0, "")
	}
	s.reply(conn, msg.ID, result, herr)
}

func (s *Server) reply(conn *Conn, id string, result any, err error) {
	resp := Message{ID: id, Action: "", SessionID: conn.SessionID, AgentID: conn.AgentID}
	if err != nil {
		resp.Error = toErrorPayload(err)
	} else if result != nil {
		payload, merr := json.Marshal(result)
		if merr != nil {
			resp.Error = toErrorPayload(apperr.Fatal(merr, "marshal response"))
		} else {
			resp.Payload = payload
		}
	}

	data, merr := json.Marshal(resp)
	if merr != nil {
		s.log.Error("ipc: marshal response envelope", "err", merr)
		return
	}
	conn.writeMu.Lock()
	defer conn.writeMu.Unlock()
	if err := WriteFrame(conn.writer, data); err != nil {
		s.log.Error("ipc: write response frame", "err", err)
	}
}

func toErrorPayload(err error) *ErrorPayload {
	kind := apperr.KindOf(err)
	if kind == "" {
		kind = apperr.KindFatal
	}
	return &ErrorPayload{Kind: string(kind), Message: err.Error()}
}

// summarizeArgs renders a short, non-sensitive summary of a payload for
// the audit log — the full payload (which may contain message text) is
// never persisted verbatim, only its size and shape.
func summarizeArgs(payload json.RawMessage) string {
	if len(payload) == 0 {
		return "{}"
	}
	const max = 256
	if len(payload) > max {
		return string(payload[:max]) + "...(truncated)"
	}
	return string(payload)
}
