package config

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/titanous/json5"
)

// Default returns a Config with the standard defaults applied
// (100-event batch cap, 1000/min per-device limit, etc.).
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8787,
			MaxBodyBytes:    2 << 20,
			ReadTimeoutSec:  15,
			WriteTimeoutSec: 15,
		},
		Database: DatabaseConfig{
			Mode: "postgres",
		},
		LLM: LLMConfig{
			Provider:    "anthropic",
			Model:       "claude-sonnet-4-5-20250929",
			MaxTokens:   2048,
			Temperature: 0.2,
			TimeoutSec:  30,
		},
		Transmitter: TransmitterConfig{
			MaxBatchSize:   100,
			FlushInterval:  "10s",
			MaxRetries:     3,
			RetryBaseDelay: "1s",
			PerMinuteLimit: 1000,
		},
		RateLimit: RateLimitConfig{
			PerMinuteLimit: 1000,
			Burst:          1000,
			EvictAgeSec:    600,
		},
		Telemetry: TelemetryConfig{
			Protocol:    "http",
			ServiceName: "ghost-engine",
		},
		OrgDefaults: OrgDefaultsConfig{
			AutoApproveThreshold:   0.95,
			MaxExecutionsPerMinute: 10,
			LLMProvider:            "anthropic",
		},
	}
}

// Load reads config from a JSON5 file, then overlays env vars. A missing
// file is not an error — Default() plus env overrides is a valid config for
// local/offline runs.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config. Env vars take
// precedence over file values and are the only source for secrets.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("GHOST_HOST", &c.Server.Host)
	if v := os.Getenv("GHOST_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	envStr("GHOST_BEARER_TOKEN", &c.Server.BearerToken)

	envStr("GHOST_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("GHOST_DB_MODE", &c.Database.Mode)

	envStr("GHOST_LLM_PROVIDER", &c.LLM.Provider)
	envStr("GHOST_LLM_MODEL", &c.LLM.Model)
	envStr("GHOST_ANTHROPIC_API_KEY", &c.LLM.APIKey)
	envStr("GHOST_ANTHROPIC_BASE_URL", &c.LLM.APIBase)

	envStr("GHOST_TRANSMITTER_ENDPOINT", &c.Transmitter.Endpoint)
	envStr("GHOST_TRANSMITTER_API_KEY", &c.Transmitter.APIKey)
	envStr("GHOST_DEVICE_FINGERPRINT", &c.Transmitter.DeviceFingerprint)

	envStr("GHOST_TELEGRAM_TOKEN", &c.Notify.Telegram.Token)
	if c.Notify.Telegram.Token != "" {
		c.Notify.Telegram.Enabled = true
	}
	envStr("GHOST_DISCORD_TOKEN", &c.Notify.Discord.Token)
	if c.Notify.Discord.Token != "" {
		c.Notify.Discord.Enabled = true
	}
	if v := os.Getenv("GHOST_TELEGRAM_CHAT_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Notify.Telegram.ChatID = id
		}
	}
	envStr("GHOST_DISCORD_CHANNEL_ID", &c.Notify.Discord.ChannelID)

	envStr("GHOST_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("GHOST_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("GHOST_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("GHOST_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("GHOST_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}
}

// ApplyEnvOverrides re-applies environment variable overrides onto the
// config. Call this after a hot-reload swap to restore runtime secrets that
// the file on disk never carries.
func (c *Config) ApplyEnvOverrides() {
	c.applyEnvOverrides()
}

// Save writes the config to a JSON file. Secrets tagged `json:"-"` are
// never serialized, so Save is safe to call on a config populated from env
// overrides.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Hash returns a SHA-256 hash of the config for optimistic concurrency /
// reload-skip checks.
func (c *Config) Hash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, _ := json.Marshal(c)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:8])
}

// ToTransmitterConfig converts the file-configurable shape into the
// transmitter package's runtime Config, applying its own defaults for any
// zero-valued duration fields.
func (c *Config) ToTransmitterConfig() TransmitterRuntimeConfig {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t := c.Transmitter
	return TransmitterRuntimeConfig{
		Endpoint:          t.Endpoint,
		APIKey:            t.APIKey,
		DeviceFingerprint: t.DeviceFingerprint,
		MaxBatchSize:      t.MaxBatchSize,
		FlushInterval:     parseDurationOr(t.FlushInterval, 10*time.Second),
		MaxRetries:        t.MaxRetries,
		RetryBase:         parseDurationOr(t.RetryBaseDelay, time.Second),
		PerMinuteLimit:    t.PerMinuteLimit,
		StorageDir:        t.StorageDir,
	}
}

// TransmitterRuntimeConfig is a duration-typed mirror of
// transmitter.Config, kept in this package so internal/config does not
// import internal/transmitter. Copying it into a transmitter.Config is up
// to the caller; cmd/ghost-server builds no transmitter.
type TransmitterRuntimeConfig struct {
	Endpoint          string
	APIKey            string
	DeviceFingerprint string
	MaxBatchSize      int
	FlushInterval     time.Duration
	MaxRetries        int
	RetryBase         time.Duration
	PerMinuteLimit    int
	StorageDir        string
}
