// Package config loads the assistant configuration.
//
// Values are resolved by viper in this order: defaults, an optional YAML
// config file, IRIS_* environment variables, then command-line flags bound by
// the cmd package. Nested keys map to environment variables by replacing dots
// with underscores, e.g. model.provider becomes IRIS_MODEL_PROVIDER.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/teemow/iris/internal/instrumentation"
	"github.com/teemow/iris/internal/llm"
	"github.com/teemow/iris/internal/logging"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "IRIS"

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the complete assistant configuration.
type Config struct {
	AssistantName string          `mapstructure:"assistant_name"`
	UserName      string          `mapstructure:"user_name"`
	Timezone      string          `mapstructure:"timezone"`
	Model         ModelConfig     `mapstructure:"model"`
	Calendar      CalendarConfig  `mapstructure:"calendar"`
	Store         StoreConfig     `mapstructure:"store"`
	Timeouts      TimeoutConfig   `mapstructure:"timeouts"`
	Log           LogConfig       `mapstructure:"log"`
	Telemetry     TelemetryConfig `mapstructure:"telemetry"`
	MetricsAddr   string          `mapstructure:"metrics_addr"`

	loc *time.Location
}

// ModelConfig selects the language model.
type ModelConfig struct {
	Provider    string  `mapstructure:"provider"`
	Name        string  `mapstructure:"name"`
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// CalendarConfig configures Google Calendar access.
type CalendarConfig struct {
	ID              string `mapstructure:"id"`
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
	UpcomingLimit   int    `mapstructure:"upcoming_limit"`
}

// StoreConfig configures transcript persistence.
type StoreConfig struct {
	Backend      string `mapstructure:"backend"`
	Path         string `mapstructure:"path"`
	Session      string `mapstructure:"session"`
	ResetOnStart bool   `mapstructure:"reset_on_start"`
}

// TimeoutConfig bounds collaborator calls. Zero means no timeout.
type TimeoutConfig struct {
	Model    time.Duration `mapstructure:"model"`
	Calendar time.Duration `mapstructure:"calendar"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Format string `mapstructure:"format"`
	Debug  bool   `mapstructure:"debug"`
}

// TelemetryConfig selects the OpenTelemetry exporters and the audit log.
type TelemetryConfig struct {
	Enabled         bool    `mapstructure:"enabled"`
	ServiceName     string  `mapstructure:"service_name"`
	InstanceID      string  `mapstructure:"instance_id"`
	MetricsExporter string  `mapstructure:"metrics_exporter"`
	TracingExporter string  `mapstructure:"tracing_exporter"`
	OTLPEndpoint    string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure    bool    `mapstructure:"otlp_insecure"`
	TraceSampleRate float64 `mapstructure:"trace_sample_rate"`
	Audit           bool    `mapstructure:"audit"`
	AuditSummaries  bool    `mapstructure:"audit_summaries"`
}

// SetDefaults registers every key with its default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("assistant_name", "IRIS")
	v.SetDefault("user_name", "")
	v.SetDefault("timezone", "America/Edmonton")

	v.SetDefault("model.provider", string(llm.ProviderOllama))
	v.SetDefault("model.name", "gemma3:4b")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.temperature", 0.1)
	v.SetDefault("model.max_tokens", 0)

	v.SetDefault("calendar.id", "primary")
	v.SetDefault("calendar.credentials_file", "credentials.json")
	v.SetDefault("calendar.token_file", "token.json")
	v.SetDefault("calendar.upcoming_limit", 10)

	v.SetDefault("store.backend", BackendFile)
	v.SetDefault("store.path", "memory.json")
	v.SetDefault("store.session", "")
	v.SetDefault("store.reset_on_start", true)

	v.SetDefault("timeouts.model", time.Duration(0))
	v.SetDefault("timeouts.calendar", time.Duration(0))

	v.SetDefault("log.format", logging.FormatText)
	v.SetDefault("log.debug", false)

	telemetry := instrumentation.DefaultConfig()
	v.SetDefault("telemetry.enabled", telemetry.Enabled)
	v.SetDefault("telemetry.service_name", telemetry.ServiceName)
	v.SetDefault("telemetry.instance_id", "")
	v.SetDefault("telemetry.metrics_exporter", telemetry.MetricsExporter)
	v.SetDefault("telemetry.tracing_exporter", telemetry.TracingExporter)
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.trace_sample_rate", telemetry.TraceSamplingRate)
	v.SetDefault("telemetry.audit", telemetry.Audit.Enabled)
	v.SetDefault("telemetry.audit_summaries", telemetry.Audit.IncludeSummaries)

	v.SetDefault("metrics_addr", "")
}

// telemetryEnv lists the conventional variable names accepted besides the
// IRIS_TELEMETRY_* ones.
var telemetryEnv = map[string][]string{
	"telemetry.enabled":           {"INSTRUMENTATION_ENABLED"},
	"telemetry.service_name":      {"OTEL_SERVICE_NAME"},
	"telemetry.instance_id":       {"OTEL_SERVICE_INSTANCE_ID"},
	"telemetry.metrics_exporter":  {"METRICS_EXPORTER"},
	"telemetry.tracing_exporter":  {"TRACING_EXPORTER"},
	"telemetry.otlp_endpoint":     {"OTEL_EXPORTER_OTLP_ENDPOINT"},
	"telemetry.otlp_insecure":     {"OTEL_EXPORTER_OTLP_INSECURE"},
	"telemetry.trace_sample_rate": {"OTEL_TRACES_SAMPLER_ARG"},
	"telemetry.audit":             {"AUDIT_LOGGING_ENABLED"},
	"telemetry.audit_summaries":   {"AUDIT_LOGGING_INCLUDE_SUMMARIES"},
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Historic variable names.
	_ = v.BindEnv("calendar.credentials_file", "IRIS_CALENDAR_CREDENTIALS_FILE", "GOOGLE_CREDENTIALS_FILE")
	for key, names := range telemetryEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(append([]string{key, prefixed}, names...)...)
	}

	return v
}

// Load reads an optional config file into v and decodes the result.
// An empty configPath looks for iris.yaml in the working directory and
// $HOME/.config/iris; a missing file is not an error in that case.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("iris")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/iris")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and resolves the time zone.
func (c *Config) Validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.loc = loc

	if _, err := llm.ParseProvider(c.Model.Provider); err != nil {
		return err
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model temperature must be between 0 and 2, got %g", c.Model.Temperature)
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("model max_tokens must not be negative")
	}
	if c.Calendar.UpcomingLimit < 1 {
		return fmt.Errorf("calendar upcoming_limit must be at least 1, got %d", c.Calendar.UpcomingLimit)
	}

	switch c.Store.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("invalid store backend %q, must be one of: file, sqlite", c.Store.Backend)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store path is required")
	}

	if c.Timeouts.Model < 0 || c.Timeouts.Calendar < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}

	switch c.Log.Format {
	case logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q, must be one of: text, json", c.Log.Format)
	}

	if c.Telemetry.Enabled {
		if err := c.Instrumentation("").Validate(); err != nil {
			return fmt.Errorf("invalid telemetry config: %w", err)
		}
	}
	return nil
}

// Location returns the configured time zone. It is UTC until Validate succeeds.
func (c *Config) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

// LLM returns the model client configuration.
func (c *Config) LLM() llm.Config {
	provider, _ := llm.ParseProvider(c.Model.Provider)
	return llm.Config{
		Provider: provider,
		APIKey:   c.Model.APIKey,
		BaseURL:  c.Model.BaseURL,
	}
}

// Instrumentation returns the telemetry configuration for a build version.
func (c *Config) Instrumentation(version string) instrumentation.Config {
	t := c.Telemetry
	return instrumentation.Config{
		ServiceName:       t.ServiceName,
		ServiceVersion:    version,
		InstanceID:        t.InstanceID,
		Enabled:           t.Enabled,
		MetricsExporter:   t.MetricsExporter,
		TracingExporter:   t.TracingExporter,
		OTLPEndpoint:      t.OTLPEndpoint,
		OTLPInsecure:      t.OTLPInsecure,
		TraceSamplingRate: t.TraceSampleRate,
		Audit: instrumentation.AuditConfig{
			Enabled:          t.Audit,
			IncludeSummaries: t.AuditSummaries,
		},
	}
}
