package tracing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/goclaw/internal/store"
)

// Sink persists trace/span records. internal/store/sqlite.TraceStore
// implements it; nil Collector (not
// nil Sink) is how standalone mode disables tracing entirely, matching
// the pattern every other optional managed-mode dependency uses.
type Sink interface {
	CreateTrace(ctx context.Context, t *store.TraceData) error
	FinishTrace(ctx context.Context, id uuid.UUID, status, errMsg, outputPreview string) error
	SaveSpan(ctx context.Context, s store.SpanData) error
}

// Collector is the per-process trace recorder internal/agent.Loop emits
// spans through. A nil *Collector is the standalone-mode default —
// Loop checks for it before ever touching tracing.
type Collector struct {
	sink    Sink
	verbose bool
}

// NewCollector wraps sink. verbose controls whether full message/tool
// payloads are recorded (GOCLAW_TRACE_VERBOSE in the teacher's env-var
// convention) or just truncated previews.
func NewCollector(sink Sink, verbose bool) *Collector {
	return &Collector{sink: sink, verbose: verbose}
}

func (c *Collector) Verbose() bool { return c.verbose }

func (c *Collector) CreateTrace(ctx context.Context, t *store.TraceData) error {
	return c.sink.CreateTrace(ctx, t)
}

func (c *Collector) FinishTrace(ctx context.Context, id uuid.UUID, status, errMsg, outputPreview string) error {
	if id != uuid.Nil {
		sc := remoteSpanContext(id, uuid.Nil)
		spanCtx := trace.ContextWithRemoteSpanContext(ctx, sc)
		_, span := tracer().Start(spanCtx, "trace", trace.WithTimestamp(time.Now()))
		span.SetAttributes(attribute.String("ax.trace_status", status))
		span.End(trace.WithTimestamp(time.Now()))
	}
	return c.sink.FinishTrace(ctx, id, status, errMsg, outputPreview)
}

// EmitSpan persists span and, when OTel export is active, mirrors it as a
// span on the real tracer with the original start/end timestamps so a
// backend like Jaeger/Tempo shows the exact same timeline as ax's own
// trace query surface.
func (c *Collector) EmitSpan(span store.SpanData) {
	if span.ID == uuid.Nil {
		span.ID = uuid.New()
	}
	ctx := context.Background()
	_ = c.sink.SaveSpan(ctx, span)

	var parentID uuid.UUID
	if span.ParentSpanID != nil {
		parentID = *span.ParentSpanID
	}
	sc := remoteSpanContext(span.TraceID, parentID)
	spanCtx := trace.ContextWithRemoteSpanContext(ctx, sc)

	_, otelSpan := tracer().Start(spanCtx, span.Name, trace.WithTimestamp(span.StartTime))
	otelSpan.SetAttributes(
		attribute.String("ax.span_type", span.SpanType),
		attribute.String("ax.status", span.Status),
	)
	if span.Model != "" {
		otelSpan.SetAttributes(attribute.String("ax.model", span.Model))
	}
	if span.Provider != "" {
		otelSpan.SetAttributes(attribute.String("ax.provider", span.Provider))
	}
	if span.ToolName != "" {
		otelSpan.SetAttributes(attribute.String("ax.tool_name", span.ToolName))
	}
	if span.InputTokens > 0 {
		otelSpan.SetAttributes(attribute.Int("ax.input_tokens", span.InputTokens))
	}
	if span.OutputTokens > 0 {
		otelSpan.SetAttributes(attribute.Int("ax.output_tokens", span.OutputTokens))
	}
	end := span.StartTime
	if span.EndTime != nil {
		end = *span.EndTime
	}
	otelSpan.End(trace.WithTimestamp(end))
}

// remoteSpanContext builds a SpanContext carrying traceID (and, when set,
// parentSpanID) so the span started against it lands in the same OTel
// trace as every other span sharing traceID, without needing a live
// in-process parent span (EmitSpan runs after the real work completed).
func remoteSpanContext(traceID, parentSpanID uuid.UUID) trace.SpanContext {
	var sid trace.SpanID
	copy(sid[:], parentSpanID[:8])
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID(traceID),
		SpanID:     sid,
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
}
