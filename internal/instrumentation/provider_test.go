package instrumentation

import (
	"context"
	"testing"
	"time"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(context.Background(), Config{
		ServiceName:    "calagent-test",
		ServiceVersion: "1.0.0",
		Enabled:        false,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if provider.Enabled() {
		t.Error("expected provider to be disabled")
	}
	// Callers record metrics and open spans without checking whether
	// telemetry is configured.
	if provider.Metrics() == nil {
		t.Error("expected a metrics recorder even when disabled")
	}
	if provider.Tracer("test") == nil {
		t.Error("expected a no-op tracer when disabled")
	}
	if err := provider.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestNewProvider_PrometheusExporter(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:     "calagent-test",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	if !provider.Enabled() {
		t.Error("expected provider to be enabled")
	}
	if provider.Metrics() == nil {
		t.Error("expected a metrics recorder")
	}
	if provider.PrometheusExporter() == nil {
		t.Error("expected a prometheus exporter for the prometheus configuration")
	}
	if provider.Tracer("test") == nil {
		t.Error("expected a tracer")
	}
}

func TestNewProvider_RejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
	}{
		{
			name: "unknown metrics exporter",
			config: Config{
				MetricsExporter: "invalid",
				TracingExporter: ExporterNone,
			},
		},
		{
			name: "unknown tracing exporter",
			config: Config{
				MetricsExporter: ExporterPrometheus,
				TracingExporter: "invalid",
			},
		},
		{
			name: "OTLP metrics without an endpoint",
			config: Config{
				MetricsExporter: ExporterOTLP,
				TracingExporter: ExporterNone,
			},
		},
		{
			name: "OTLP tracing without an endpoint",
			config: Config{
				MetricsExporter: ExporterPrometheus,
				TracingExporter: ExporterOTLP,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tt.config.ServiceName = "calagent-test"
			tt.config.ServiceVersion = "1.0.0"
			tt.config.Enabled = true

			if _, err := NewProvider(ctx, tt.config); err == nil {
				t.Error("expected NewProvider to reject the configuration")
			}
		})
	}
}

func TestProvider_Shutdown(t *testing.T) {
	ctx := context.Background()
	provider, err := NewProvider(ctx, Config{
		ServiceName:     "calagent-test",
		ServiceVersion:  "1.0.0",
		Enabled:         true,
		MetricsExporter: ExporterPrometheus,
		TracingExporter: ExporterNone,
	})
	if err != nil {
		t.Fatalf("NewProvider() error = %v", err)
	}

	if err := provider.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
