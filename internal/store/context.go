package store

import (
	"context"

	"github.com/google/uuid"
)

// Context keys carrying request-scoped identity for tool routing: which
// agent is running, which end user and channel sender originated the
// message. Tools read these via the FromContext helpers to scope memory,
// context files, and permission checks without threading extra
// parameters through every call signature.
type ctxKey int

const (
	ctxKeyAgentID ctxKey = iota
	ctxKeyUserID
	ctxKeyAgentType
	ctxKeySenderID
)

func WithAgentID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxKeyAgentID, id)
}

// AgentIDFromContext returns uuid.Nil if no agent ID was set (standalone
// mode, where there is exactly one local agent and nothing to scope by).
func AgentIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxKeyAgentID).(uuid.UUID)
	return id
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKeyUserID, userID)
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeyUserID).(string)
	return id
}

func WithAgentType(ctx context.Context, agentType string) context.Context {
	return context.WithValue(ctx, ctxKeyAgentType, agentType)
}

func AgentTypeFromContext(ctx context.Context) string {
	t, _ := ctx.Value(ctxKeyAgentType).(string)
	return t
}

func WithSenderID(ctx context.Context, senderID string) context.Context {
	return context.WithValue(ctx, ctxKeySenderID, senderID)
}

func SenderIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKeySenderID).(string)
	return id
}
