package ipc

import "context"

type SkillsListResult struct {
	Skills []SkillSummary `json:"skills"`
}

type SkillSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type SkillsGetPayload struct {
	Name string `json:"name"`
}

type SkillDetail struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

type SkillsProposePayload struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

type SkillsProposeResult struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

// SkillsBackend is the self-authored skill library the skills.* actions
// read and propose into. Proposals are staged, not auto-installed — a
// human reviews SkillsProposeResult.Accepted == false entries out of
// band, mirroring the teacher's approval-gated tool-policy pattern in
// internal/tools/policy.go.
type SkillsBackend interface {
	List(ctx context.Context, agentID string) (SkillsListResult, error)
	Get(ctx context.Context, agentID, name string) (SkillDetail, error)
	Propose(ctx context.Context, agentID, name, body string) (SkillsProposeResult, error)
}

func RegisterSkillsHandlers(s *Server, backend SkillsBackend, agentIDOf func(sessionID string) string) {
	s.Register(ActionSkillsList, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		return backend.List(ctx, agentIDOf(conn.SessionID))
	})

	s.Register(ActionSkillsGet, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req SkillsGetPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		return backend.Get(ctx, agentIDOf(conn.SessionID), req.Name)
	})

	s.Register(ActionSkillsPropose, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req SkillsProposePayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := ValidateFreeText("body", req.Body, 32<<10); err != nil {
			return nil, err
		}
		return backend.Propose(ctx, agentIDOf(conn.SessionID), req.Name, req.Body)
	})
}
