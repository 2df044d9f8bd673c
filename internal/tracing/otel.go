package tracing

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	initMu         sync.Mutex
	tracerProvider trace.TracerProvider = noop.NewTracerProvider()
	sdkProvider    *sdktrace.TracerProvider
)

// OTelConfig mirrors the fields of internal/config.TelemetryConfig this
// package needs, so it doesn't have to import internal/config (which
// would create an import cycle back through internal/agent).
type OTelConfig struct {
	Enabled     bool
	Endpoint    string
	Protocol    string // "grpc" (default) or "http"
	ServiceName string
	Insecure    bool
}

// InitOTel wires the process's global tracer provider to an OTLP exporter.
// Safe to call multiple times; only the first call with Enabled=true takes
// effect. No binary under cmd/ calls it, so the tracer stays the no-op
// provider unless a caller does.
func InitOTel(cfg OTelConfig) error {
	initMu.Lock()
	defer initMu.Unlock()
	if !cfg.Enabled || cfg.Endpoint == "" || sdkProvider != nil {
		return nil
	}

	ctx := context.Background()
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "ax"
	}

	var exporter sdktrace.SpanExporter
	var err error
	if cfg.Protocol == "http" {
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(stripScheme(cfg.Endpoint))}
		if cfg.Insecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		exporter, err = otlptracehttp.New(ctx, opts...)
	} else {
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(stripScheme(cfg.Endpoint))}
		if cfg.Insecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		exporter, err = otlptracegrpc.New(ctx, opts...)
	}
	if err != nil {
		return err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		res = resource.Default()
	}

	sdkProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	tracerProvider = sdkProvider
	otel.SetTracerProvider(tracerProvider)
	return nil
}

func stripScheme(endpoint string) string {
	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(endpoint, prefix) {
			return endpoint[len(prefix):]
		}
	}
	return endpoint
}

// ShutdownOTel flushes pending spans. No-op when InitOTel was never called
// with a usable endpoint.
func ShutdownOTel(ctx context.Context) error {
	initMu.Lock()
	defer initMu.Unlock()
	if sdkProvider == nil {
		return nil
	}
	return sdkProvider.Shutdown(ctx)
}

func tracer() trace.Tracer {
	return tracerProvider.Tracer("github.com/nextlevelbuilder/goclaw/internal/agent")
}
