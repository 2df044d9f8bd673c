package store

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GenNewID returns a fresh random identifier for a trace or span. Kept as
// a store-level helper (rather than calling uuid.New directly from
// internal/agent) so every ID in the trace tree is generated the same
// way as every other store-managed primary key.
func GenNewID() uuid.UUID { return uuid.New() }

// Trace status values, mirrored by internal/ipc's audit query surface.
const (
	TraceStatusRunning   = "running"
	TraceStatusCompleted = "completed"
	TraceStatusError     = "error"
	TraceStatusCancelled = "cancelled"
)

// Span type/status/level values used by internal/tracing.Collector.
const (
	SpanTypeAgent   = "agent"
	SpanTypeLLMCall = "llm_call"
	SpanTypeToolCall = "tool_call"

	SpanStatusCompleted = "completed"
	SpanStatusError     = "error"

	SpanLevelDefault = "DEFAULT"
)

// TraceData is the root record of one agent run: one user message in,
// one assistant response out, with every LLM call and tool call nested
// under it as a SpanData. Persisted only when the agent loop is given an
// internal/tracing.Collector with a sink; Telemetry.Enabled in
// internal/config does not create one, and the Collector is nil by default.
type TraceData struct {
	ID            uuid.UUID  `json:"id"`
	ParentTraceID *uuid.UUID `json:"parentTraceId,omitempty"`
	AgentID       *uuid.UUID `json:"agentId,omitempty"`
	RunID         string     `json:"runId"`
	SessionKey    string     `json:"sessionKey"`
	UserID        string     `json:"userId,omitempty"`
	Channel       string     `json:"channel,omitempty"`
	Name          string     `json:"name"`
	InputPreview  string     `json:"inputPreview,omitempty"`
	OutputPreview string     `json:"outputPreview,omitempty"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	StartTime     time.Time  `json:"startTime"`
	EndTime       *time.Time `json:"endTime,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// SpanData is one LLM call, tool call, or agent-run span nested under a
// TraceData by TraceID/ParentSpanID.
type SpanData struct {
	ID           uuid.UUID       `json:"id"`
	TraceID      uuid.UUID       `json:"traceId"`
	ParentSpanID *uuid.UUID      `json:"parentSpanId,omitempty"`
	AgentID      *uuid.UUID      `json:"agentId,omitempty"`
	SpanType     string          `json:"spanType"`
	Name         string          `json:"name"`
	StartTime    time.Time       `json:"startTime"`
	EndTime      *time.Time      `json:"endTime,omitempty"`
	DurationMS   int             `json:"durationMs"`
	Model        string          `json:"model,omitempty"`
	Provider     string          `json:"provider,omitempty"`
	ToolName     string          `json:"toolName,omitempty"`
	ToolCallID   string          `json:"toolCallId,omitempty"`
	FinishReason string          `json:"finishReason,omitempty"`
	InputPreview string          `json:"inputPreview,omitempty"`
	OutputPreview string         `json:"outputPreview,omitempty"`
	InputTokens  int             `json:"inputTokens,omitempty"`
	OutputTokens int             `json:"outputTokens,omitempty"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	Status       string          `json:"status"`
	Error        string          `json:"error,omitempty"`
	Level        string          `json:"level"`
	CreatedAt    time.Time       `json:"createdAt"`
}
