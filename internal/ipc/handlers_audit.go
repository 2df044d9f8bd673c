package ipc

import "context"

type AuditQueryPayload struct {
	Limit int `json:"limit"`
}

// AuditBackend is the read-only view of the audit log the sandbox may
// consult. It is deliberately narrower than AuditSink: a sandbox can only
// ever query its own session's history, never write to it.
type AuditBackend interface {
	Query(sessionID string, limit int) ([]AuditRecord, error)
}

// RegisterAuditHandlers wires audit.query — the only audit action the
// sandbox can reach. The audit log itself is append-only from the host:
// every call dispatched through this server is already recorded by
// Server.dispatch's own conn.audit.Record call, regardless of what action
// ran or whether it errored, so there is no audit.append/write action for
// the sandbox to invoke.
func RegisterAuditHandlers(s *Server, backend AuditBackend) {
	s.Register(ActionAuditQuery, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req AuditQueryPayload
		if len(msg.Payload) > 0 {
			if err := DecodePayload(msg, &req); err != nil {
				return nil, err
			}
		}
		return backend.Query(conn.SessionID, req.Limit)
	})
}
