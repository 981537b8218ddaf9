package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/cardvault/card-vault-backend/internal/config"
)

func preserveOTelGlobals(t *testing.T) {
	t.Helper()
	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
	})
}

func otelCfg(name string) config.OTELConfig {
	return config.OTELConfig{
		Enabled:     true,
		Insecure:    true,
		Endpoint:    "localhost:4317",
		ServiceName: name,
		SampleRatio: 1.0,
	}
}

func TestSetupOTel_DisabledIsNoOp(t *testing.T) {
	preserveOTelGlobals(t)

	cfg := otelCfg("svc")
	cfg.Enabled = false
	shutdown, err := SetupOTel(context.Background(), cfg, "v0.0.0")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if shutdown == nil {
		t.Fatalf("expected non-nil shutdown func")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("no-op shutdown returned error: %v", err)
	}
}

func TestSetupOTel_InstallsProviderAndPropagator(t *testing.T) {
	preserveOTelGlobals(t)

	shutdown, err := SetupOTel(context.Background(), otelCfg("svc-insecure"), "v1.2.3")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected *sdktrace.TracerProvider")
	}

	// inject/extract must round-trip through the composite propagator
	carrier := propagation.MapCarrier{}
	ctx, span := otel.Tracer("test").Start(context.Background(), "span")
	span.End()
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	_ = otel.GetTextMapPropagator().Extract(context.Background(), carrier)
}

func TestSetupOTel_TLSBranch(t *testing.T) {
	preserveOTelGlobals(t)

	cfg := otelCfg("svc-tls")
	cfg.Insecure = false
	shutdown, err := SetupOTel(context.Background(), cfg, "v9.9.9")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("expected *sdktrace.TracerProvider")
	}
}

func TestSetupOTel_CanceledContextStillSucceeds(t *testing.T) {
	preserveOTelGlobals(t)

	// exporter init is lazy; a dead context must not fail setup
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	shutdown, err := SetupOTel(ctx, otelCfg("svc-canceled"), "vX.Y.Z")
	if err != nil {
		t.Fatalf("unexpected err with canceled ctx: %v", err)
	}
	_ = shutdown(context.Background())
}

func TestSetupOTel_ExporterErrorLeavesGlobalsIntact(t *testing.T) {
	preserveOTelGlobals(t)

	orig := exporterFor
	t.Cleanup(func() { exporterFor = orig })
	exporterFor = func(ctx context.Context, client otlptrace.Client) (*otlptrace.Exporter, error) {
		return nil, errors.New("boom-exporter")
	}

	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()

	if _, err := SetupOTel(context.Background(), otelCfg("svc"), "v0"); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("tracer provider changed on failure")
	}
	if otel.GetTextMapPropagator() != prevProp {
		t.Fatalf("propagator changed on failure")
	}
}

func TestSetupOTel_ResourceErrorLeavesGlobalsIntact(t *testing.T) {
	preserveOTelGlobals(t)

	orig := resourceFor
	t.Cleanup(func() { resourceFor = orig })
	resourceFor = func(ctx context.Context, serviceName, version string) (*resource.Resource, error) {
		return nil, errors.New("boom-resource")
	}

	prevTP := otel.GetTracerProvider()
	prevProp := otel.GetTextMapPropagator()

	if _, err := SetupOTel(context.Background(), otelCfg("svc"), "v0"); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if otel.GetTracerProvider() != prevTP {
		t.Fatalf("tracer provider changed on failure")
	}
	if otel.GetTextMapPropagator() != prevProp {
		t.Fatalf("propagator changed on failure")
	}
}

func TestSetupOTel_ShutdownWithinDeadline(t *testing.T) {
	preserveOTelGlobals(t)

	shutdown, err := SetupOTel(context.Background(), otelCfg("svc-shutdown"), "v1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
}
