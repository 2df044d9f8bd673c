package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nextlevelbuilder/goclaw/internal/store"
)

// TraceStore persists the trace/span tree internal/tracing.Collector
// emits. No binary under cmd/ constructs one.
type TraceStore struct {
	db *DB
}

func NewTraceStore(db *DB) *TraceStore { return &TraceStore{db: db} }

func (s *TraceStore) CreateTrace(ctx context.Context, t *store.TraceData) error {
	var parentID, agentID sql.NullString
	if t.ParentTraceID != nil {
		parentID = sql.NullString{String: t.ParentTraceID.String(), Valid: true}
	}
	if t.AgentID != nil {
		agentID = sql.NullString{String: t.AgentID.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO traces (id, parent_trace_id, agent_id, run_id, session_key, user_id, channel, name, input_preview, status, tags, start_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), parentID, agentID, t.RunID, t.SessionKey, t.UserID, t.Channel, t.Name, t.InputPreview, t.Status,
		strings.Join(t.Tags, ","), t.StartTime, t.CreatedAt)
	return err
}

func (s *TraceStore) FinishTrace(ctx context.Context, id uuid.UUID, status, errMsg, outputPreview string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE traces SET status = ?, error = ?, output_preview = ?, end_time = ? WHERE id = ?`,
		status, errMsg, outputPreview, time.Now().UTC(), id.String())
	return err
}

func (s *TraceStore) SaveSpan(ctx context.Context, sp store.SpanData) error {
	var parentID, agentID sql.NullString
	if sp.ParentSpanID != nil {
		parentID = sql.NullString{String: sp.ParentSpanID.String(), Valid: true}
	}
	if sp.AgentID != nil {
		agentID = sql.NullString{String: sp.AgentID.String(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO spans (id, trace_id, parent_span_id, agent_id, span_type, name, start_time, end_time, duration_ms,
			model, provider, tool_name, tool_call_id, finish_reason, input_preview, output_preview,
			input_tokens, output_tokens, metadata, status, error, level, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sp.ID.String(), sp.TraceID.String(), parentID, agentID, sp.SpanType, sp.Name, sp.StartTime, sp.EndTime, sp.DurationMS,
		sp.Model, sp.Provider, sp.ToolName, sp.ToolCallID, sp.FinishReason, sp.InputPreview, sp.OutputPreview,
		sp.InputTokens, sp.OutputTokens, string(sp.Metadata), sp.Status, sp.Error, sp.Level, sp.CreatedAt)
	return err
}
