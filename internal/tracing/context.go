// Package tracing carries the per-run trace/span identifiers through a
// request's context.Context and, when internal/config's TelemetryConfig
// is enabled, mirrors every span onto an OpenTelemetry tracer so the same
// run shows up in both the SQLite-backed Collector (for ax's own trace
// query surface) and any OTLP-compatible backend (Jaeger, Tempo, Honeycomb).
//
// Grounded on the teacher's internal/agent/loop_tracing.go call sites
// (context.WithTraceID/CollectorFromContext/ParentSpanIDFromContext) for
// the context-propagation shape, and on the otel-using example repo's
// internal/agentctl/tracing/otel.go for the real SDK wiring.
package tracing

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey int

const (
	keyTraceID ctxKey = iota
	keyCollector
	keyParentSpanID
	keyAnnounceParentSpanID
	keyDelegateParentTraceID
)

func WithTraceID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyTraceID, id)
}

func TraceIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(keyTraceID).(uuid.UUID)
	return id
}

func WithCollector(ctx context.Context, c *Collector) context.Context {
	return context.WithValue(ctx, keyCollector, c)
}

func CollectorFromContext(ctx context.Context) *Collector {
	c, _ := ctx.Value(keyCollector).(*Collector)
	return c
}

func WithParentSpanID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyParentSpanID, id)
}

func ParentSpanIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(keyParentSpanID).(uuid.UUID)
	return id
}

// WithAnnounceParentSpanID marks an announce run (a proactive message, not
// a reply) as nested under the root span of the run that triggered it.
func WithAnnounceParentSpanID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyAnnounceParentSpanID, id)
}

func AnnounceParentSpanIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(keyAnnounceParentSpanID).(uuid.UUID)
	return id
}

// WithDelegateParentTraceID marks a delegated subagent run as a child of
// the delegating session's trace, so Collector.CreateTrace can link the
// two instead of recording two unrelated root traces.
func WithDelegateParentTraceID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, keyDelegateParentTraceID, id)
}

func DelegateParentTraceIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(keyDelegateParentTraceID).(uuid.UUID)
	return id
}
