package ipc

import (
	"context"

	"github.com/nextlevelbuilder/goclaw/internal/taint"
)

type DelegationSpawnPayload struct {
	Task  string `json:"task"`
	Label string `json:"label,omitempty"`
}

type DelegationSpawnResult struct {
	ChildSessionID string `json:"childSessionId"`
}

type DelegationAwaitPayload struct {
	ChildSessionID string `json:"childSessionId"`
}

type DelegationAwaitResult struct {
	Content string `json:"content"`
	Done    bool   `json:"done"`
}

// DelegationBackend spawns and awaits subagent turns. The spawned child
// shares its parent's taint state (see taint.Registry.Fork) — a
// delegated subagent is reachable by the same attacker surface that
// tainted the parent, so it cannot be used to launder a clean budget.
type DelegationBackend interface {
	Spawn(ctx context.Context, parentSessionID, task, label string) (childSessionID string, err error)
	Await(ctx context.Context, childSessionID string) (DelegationAwaitResult, error)
}

func RegisterDelegationHandlers(s *Server, backend DelegationBackend, trackers *taint.Registry) {
	s.Register(ActionDelegationSpawn, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req DelegationSpawnPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		if err := ValidateFreeText("task", req.Task, 16<<10); err != nil {
			return nil, err
		}
		childID, err := backend.Spawn(ctx, conn.SessionID, req.Task, req.Label)
		if err != nil {
			return nil, err
		}
		trackers.Fork(conn.SessionID, childID)
		return DelegationSpawnResult{ChildSessionID: childID}, nil
	})

	s.Register(ActionDelegationAwait, func(ctx context.Context, conn *Conn, msg *Message) (any, error) {
		var req DelegationAwaitPayload
		if err := DecodePayload(msg, &req); err != nil {
			return nil, err
		}
		return backend.Await(ctx, req.ChildSessionID)
	})
}
