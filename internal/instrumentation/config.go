package instrumentation

import (
	"fmt"
	"slices"
)

// Exporter types.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusNoMatch = "no_match"
	StatusAborted = "aborted"
)

// Delete confirmation results.
const (
	ConfirmAccepted = "accepted"
	ConfirmDeclined = "declined"
)

// ServiceCalendar is the service label of Google Calendar operations.
const ServiceCalendar = "calendar"

var (
	metricsExporters = []string{ExporterPrometheus, ExporterOTLP, ExporterStdout}
	tracingExporters = []string{ExporterOTLP, ExporterStdout, ExporterNone}
)

// Config selects the telemetry exporters. The config package fills it from
// the telemetry section of the assistant configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	// InstanceID defaults to the hostname.
	InstanceID string

	// Enabled turns metrics and tracing on. When false the provider hands out
	// no-op recorders.
	Enabled bool

	// MetricsExporter is one of prometheus, otlp or stdout.
	MetricsExporter string
	// TracingExporter is one of otlp, stdout or none.
	TracingExporter string

	// OTLPEndpoint is a host:port without scheme, e.g. localhost:4318.
	OTLPEndpoint string
	OTLPInsecure bool

	// TraceSamplingRate is the fraction of root spans kept, 0.0 to 1.0.
	TraceSamplingRate float64

	Audit AuditConfig
}

// AuditConfig configures the calendar mutation audit log.
type AuditConfig struct {
	Enabled bool

	// IncludeSummaries writes event titles to the audit log. Titles are user
	// content; when false only event IDs are logged.
	IncludeSummaries bool
}

// DefaultConfig returns the configuration used when nothing is overridden:
// Prometheus metrics, no tracing, audit logging without titles.
func DefaultConfig() Config {
	return Config{
		ServiceName:       "iris",
		ServiceVersion:    "unknown",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 0.1,
		Audit: AuditConfig{
			Enabled: true,
		},
	}
}

// Validate checks exporter names, the sampling rate and the OTLP endpoint.
func (c Config) Validate() error {
	if c.TraceSamplingRate < 0 || c.TraceSamplingRate > 1 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %g", c.TraceSamplingRate)
	}
	if c.MetricsExporter != "" && !slices.Contains(metricsExporters, c.MetricsExporter) {
		return fmt.Errorf("invalid metrics exporter %q, must be one of: prometheus, otlp, stdout", c.MetricsExporter)
	}
	if c.TracingExporter != "" && !slices.Contains(tracingExporters, c.TracingExporter) {
		return fmt.Errorf("invalid tracing exporter %q, must be one of: otlp, stdout, none", c.TracingExporter)
	}

	usesOTLP := c.MetricsExporter == ExporterOTLP || c.TracingExporter == ExporterOTLP
	if usesOTLP && c.OTLPEndpoint == "" {
		return fmt.Errorf("an OTLP endpoint is required when an exporter is set to otlp")
	}
	return nil
}
