// Package config loads and hot-reloads the engine's runtime configuration:
// server binding, the governance store DSN, the LLM provider, the Event
// Transmitter's tunables, per-device rate limits, human-escalation notifier
// credentials, and OTEL telemetry — JSON5 from disk overlaid with
// environment-variable secrets.
package config

import (
	"sync"
	"time"
)

// Config is the root configuration object. Secrets (API keys, tokens, the
// Postgres DSN) are always tagged `json:"-"` and only ever populated from
// environment variables.
type Config struct {
	Server      ServerConfig      `json:"server"`
	Database    DatabaseConfig    `json:"database,omitempty"`
	LLM         LLMConfig         `json:"llm"`
	Transmitter TransmitterConfig `json:"transmitter,omitempty"`
	RateLimit   RateLimitConfig   `json:"rate_limit,omitempty"`
	Notify      NotifyConfig      `json:"notify,omitempty"`
	Telemetry   TelemetryConfig   `json:"telemetry,omitempty"`
	Scheduler   SchedulerConfig   `json:"scheduler,omitempty"`
	OrgDefaults OrgDefaultsConfig `json:"org_defaults,omitempty"`

	mu sync.RWMutex
}

// ServerConfig configures the HTTP API listener (internal/httpapi).
type ServerConfig struct {
	Host            string `json:"host"`
	Port            int    `json:"port"`
	BearerToken     string `json:"-"` // from env GHOST_BEARER_TOKEN only
	MaxBodyBytes    int64  `json:"max_body_bytes,omitempty"`
	ReadTimeoutSec  int    `json:"read_timeout_sec,omitempty"`
	WriteTimeoutSec int    `json:"write_timeout_sec,omitempty"`
}

// DatabaseConfig selects and configures the governance store backend.
// The DSN is a secret and never file configurable, only the backend mode is.
type DatabaseConfig struct {
	PostgresDSN string `json:"-"`              // from env GHOST_POSTGRES_DSN only
	Mode        string `json:"mode,omitempty"` // "postgres" (default) or "memstore" (offline/dev)
}

func (d DatabaseConfig) IsMemstoreMode() bool {
	return d.Mode == "memstore"
}

// LLMConfig configures the abstraction-lifting LLM port (internal/llm).
type LLMConfig struct {
	Provider    string  `json:"provider"` // "anthropic" (default) or "stub"
	Model       string  `json:"model"`
	APIKey      string  `json:"-"` // from env GHOST_ANTHROPIC_API_KEY only
	APIBase     string  `json:"api_base,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
	TimeoutSec  int     `json:"timeout_sec,omitempty"`
}

// TransmitterConfig is the file-configurable projection of
// transmitter.Config: durations are Go duration strings so they round-trip
// through JSON5 cleanly.
type TransmitterConfig struct {
	Endpoint          string `json:"endpoint,omitempty"`
	MaxBatchSize      int    `json:"max_batch_size,omitempty"`
	FlushInterval     string `json:"flush_interval,omitempty"`
	MaxRetries        int    `json:"max_retries,omitempty"`
	RetryBaseDelay    string `json:"retry_base_delay,omitempty"`
	PerMinuteLimit    int    `json:"per_minute_limit,omitempty"`
	StorageDir        string `json:"storage_dir,omitempty"`
	DeviceFingerprint string `json:"-"` // device identity, env-injected per deployment
	APIKey            string `json:"-"` // from env GHOST_TRANSMITTER_API_KEY only
}

// parseDurationOr parses a Go duration string, falling back to def on empty
// or unparsable input.
func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

// RateLimitConfig configures the HTTP ingest endpoint's per-device token
// bucket (internal/ratelimit), independent from the Transmitter's own
// client-side limiter.
type RateLimitConfig struct {
	PerMinuteLimit int `json:"per_minute_limit,omitempty"`
	Burst          int `json:"burst,omitempty"`
	EvictAgeSec    int `json:"evict_age_sec,omitempty"`
}

// NotifyConfig configures the human-escalation / approval notifier fan-out
// (internal/notify). Credentials are secrets; IDs/flags are file
// configurable: Token comes from env, Enabled/ChatID from file.
type NotifyConfig struct {
	Telegram TelegramNotifyConfig `json:"telegram,omitempty"`
	Discord  DiscordNotifyConfig  `json:"discord,omitempty"`
}

type TelegramNotifyConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Token   string `json:"-"` // from env GHOST_TELEGRAM_TOKEN only
	ChatID  int64  `json:"chat_id,omitempty"`
}

type DiscordNotifyConfig struct {
	Enabled   bool   `json:"enabled,omitempty"`
	Token     string `json:"-"` // from env GHOST_DISCORD_TOKEN only
	ChannelID string `json:"channel_id,omitempty"`
}

// TelemetryConfig configures the OTLP exporter for this engine's spans
// (LLM calls, clustering runs, execution steps).
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`
	Endpoint    string            `json:"endpoint,omitempty"`
	Protocol    string            `json:"protocol,omitempty"` // default "http"; not read by internal/telemetry, which always exports OTLP/HTTP
	Insecure    bool              `json:"insecure,omitempty"`
	ServiceName string            `json:"service_name,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// SchedulerConfig configures the schedule-trigger loop (internal/trigger):
// which orgs' Ghost schedules are evaluated and how often. Disabled unless
// at least one org is listed.
type SchedulerConfig struct {
	Orgs        []string `json:"orgs,omitempty"`
	IntervalSec int      `json:"interval_sec,omitempty"` // default 60
}

// OrgDefaultsConfig holds fleet-wide org_settings defaults. It is loaded,
// overlaid and hot-reloaded with the rest of the file, but no store reads
// it: internal/store/pg's defaultOrgSettings and memstore's GetOrgSettings
// fallback use their own built-in values.
type OrgDefaultsConfig struct {
	AutoApproveThreshold   float64 `json:"auto_approve_threshold,omitempty"`
	MaxExecutionsPerMinute int     `json:"max_executions_per_minute,omitempty"`
	LLMProvider            string  `json:"llm_provider,omitempty"`
}

// ReplaceFrom copies every field of src into c under lock, the mechanism
// the hot-reload watcher uses to swap in a freshly parsed Config without
// invalidating pointers callers may be holding to c.
func (c *Config) ReplaceFrom(src *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Server = src.Server
	c.Database = src.Database
	c.LLM = src.LLM
	c.Transmitter = src.Transmitter
	c.RateLimit = src.RateLimit
	c.Notify = src.Notify
	c.Telemetry = src.Telemetry
	c.Scheduler = src.Scheduler
	c.OrgDefaults = src.OrgDefaults
}

// Snapshot returns a copy of c safe to read without holding its lock.
func (c *Config) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cp := *c
	cp.mu = sync.RWMutex{}
	return cp
}
