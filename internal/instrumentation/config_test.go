package instrumentation

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.ServiceName != "iris" {
		t.Errorf("expected service name 'iris', got %q", config.ServiceName)
	}
	if !config.Enabled {
		t.Error("expected instrumentation to be enabled by default")
	}
	if config.MetricsExporter != ExporterPrometheus {
		t.Errorf("expected metrics exporter %q, got %q", ExporterPrometheus, config.MetricsExporter)
	}
	if config.TracingExporter != ExporterNone {
		t.Errorf("expected tracing exporter %q, got %q", ExporterNone, config.TracingExporter)
	}
	if config.TraceSamplingRate != 0.1 {
		t.Errorf("expected trace sampling rate 0.1, got %g", config.TraceSamplingRate)
	}
	if !config.Audit.Enabled {
		t.Error("expected audit logging to be enabled by default")
	}
	if config.Audit.IncludeSummaries {
		t.Error("expected event titles to be left out of audit logs by default")
	}
	if err := config.Validate(); err != nil {
		t.Errorf("expected default config to be valid, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:   "empty exporters fall back to defaults",
			mutate: func(c *Config) { c.MetricsExporter, c.TracingExporter = "", "" },
		},
		{
			name:    "sampling rate below zero",
			mutate:  func(c *Config) { c.TraceSamplingRate = -0.1 },
			wantErr: "sampling rate",
		},
		{
			name:    "sampling rate above one",
			mutate:  func(c *Config) { c.TraceSamplingRate = 1.5 },
			wantErr: "sampling rate",
		},
		{
			name:    "unknown metrics exporter",
			mutate:  func(c *Config) { c.MetricsExporter = "statsd" },
			wantErr: "invalid metrics exporter",
		},
		{
			name:    "unknown tracing exporter",
			mutate:  func(c *Config) { c.TracingExporter = "jaeger" },
			wantErr: "invalid tracing exporter",
		},
		{
			name:    "otlp tracing without endpoint",
			mutate:  func(c *Config) { c.TracingExporter = ExporterOTLP },
			wantErr: "OTLP endpoint",
		},
		{
			name:    "otlp metrics without endpoint",
			mutate:  func(c *Config) { c.MetricsExporter = ExporterOTLP },
			wantErr: "OTLP endpoint",
		},
		{
			name: "otlp with endpoint",
			mutate: func(c *Config) {
				c.MetricsExporter = ExporterOTLP
				c.TracingExporter = ExporterOTLP
				c.OTLPEndpoint = "localhost:4318"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(&config)

			err := config.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
