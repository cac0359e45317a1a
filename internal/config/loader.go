package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "lukthan.yaml"

// DefaultEnvFile is loaded into the process environment before overlays.
const DefaultEnvFile = ".env"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadDotEnv(DefaultEnvFile); err != nil {
		return nil, fmt.Errorf("config dotenv: %w", err)
	}

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv populates unset environment variables from a dotenv file.
// Variables already present in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from the --config flag
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	// The web frontend's variable is honoured so one .env serves both clients.
	setString(&cfg.API.BaseURL, "VITE_API_BASE_URL")
	setString(&cfg.API.BaseURL, "LUKTHAN_API_BASE_URL")
	setDuration(&cfg.API.Timeout, "LUKTHAN_API_TIMEOUT")
	setDuration(&cfg.API.TranscribeTimeout, "LUKTHAN_API_TRANSCRIBE_TIMEOUT")
	setString(&cfg.API.UserAgent, "LUKTHAN_API_USER_AGENT")

	setInt(&cfg.Breaker.MaxFailures, "LUKTHAN_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "LUKTHAN_BREAKER_TIMEOUT")

	setString(&cfg.Logging.Level, "LUKTHAN_LOG_LEVEL")
	setString(&cfg.Logging.Service, "LUKTHAN_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "LUKTHAN_LOG_ASYNC")
	setString(&cfg.Logging.File, "LUKTHAN_LOG_FILE")

	// Settings
	setString(&cfg.Settings.Domain, "LUKTHAN_DOMAIN")
	setString(&cfg.Settings.Mode, "LUKTHAN_MODE")
	setString(&cfg.Settings.TargetAI, "LUKTHAN_TARGET_AI")
	setString(&cfg.Settings.ExpertiseLevel, "LUKTHAN_EXPERTISE_LEVEL")
	setString(&cfg.Settings.Language, "LUKTHAN_LANGUAGE")

	setDuration(&cfg.Wizard.AdvanceDelay, "LUKTHAN_WIZARD_ADVANCE_DELAY")
	setDuration(&cfg.Voice.MaxDuration, "LUKTHAN_VOICE_MAX_DURATION")
	setInt64(&cfg.Attachments.MaxBytes, "LUKTHAN_ATTACHMENT_MAX_BYTES")

	// Cache
	setInt64(&cfg.Cache.L1MaxSizeMB, "LUKTHAN_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "LUKTHAN_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.HistoryTTL, "LUKTHAN_CACHE_HISTORY_TTL")

	setString(&cfg.NATS.URL, "NATS_URL")

	setString(&cfg.Mirror.Addr, "LUKTHAN_MIRROR_ADDR")
	setString(&cfg.Mirror.CORSOrigin, "LUKTHAN_MIRROR_CORS_ORIGIN")
	setFloat(&cfg.Mirror.WriteRate, "LUKTHAN_MIRROR_WRITE_RATE")
	setInt(&cfg.Mirror.WriteBurst, "LUKTHAN_MIRROR_WRITE_BURST")

	setString(&cfg.OTEL.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.OTEL.ServiceName, "OTEL_SERVICE_NAME")
	setBool(&cfg.OTEL.Insecure, "LUKTHAN_OTEL_INSECURE")

	setString(&cfg.Sentry.DSN, "SENTRY_DSN")
	setString(&cfg.Sentry.Environment, "SENTRY_ENVIRONMENT")
}

var (
	validDomains = map[string]bool{
		"auto": true, "coding": true, "data_science": true,
		"ai_builder": true, "research": true, "general": true,
	}
	validModes = map[string]bool{"direct": true, "guided": true}
)

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(cfg.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout <= 0 {
		return errors.New("api.timeout must be > 0")
	}
	if cfg.API.TranscribeTimeout <= 0 {
		return errors.New("api.transcribe_timeout must be > 0")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if !validDomains[cfg.Settings.Domain] {
		return fmt.Errorf("settings.domain %q is not supported", cfg.Settings.Domain)
	}
	if !validModes[cfg.Settings.Mode] {
		return fmt.Errorf("settings.mode must be direct or guided, got %q", cfg.Settings.Mode)
	}
	if cfg.Wizard.AdvanceDelay < 0 {
		return errors.New("wizard.advance_delay must be >= 0")
	}
	if cfg.Attachments.MaxBytes < 1 {
		return errors.New("attachments.max_bytes must be >= 1")
	}
	if cfg.Mirror.WriteRate < 0 {
		return errors.New("mirror.write_rate must be >= 0")
	}
	if cfg.Mirror.WriteRate > 0 && cfg.Mirror.WriteBurst < 1 {
		return errors.New("mirror.write_burst must be >= 1 when write_rate is set")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
