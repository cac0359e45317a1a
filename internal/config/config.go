// Package config provides hierarchical configuration loading for lukthan.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the lukthan client.
type Config struct {
	API         API         `yaml:"api"`
	Breaker     Breaker     `yaml:"breaker"`
	Logging     Logging     `yaml:"logging"`
	Settings    Settings    `yaml:"settings"`
	Wizard      Wizard      `yaml:"wizard"`
	Voice       Voice       `yaml:"voice"`
	Attachments Attachments `yaml:"attachments"`
	Cache       Cache       `yaml:"cache"`
	NATS        NATS        `yaml:"nats"`
	Mirror      Mirror      `yaml:"mirror"`
	OTEL        OTEL        `yaml:"otel"`
	Sentry      Sentry      `yaml:"sentry"`
}

// API holds the prompt backend connection settings.
type API struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`            // per-request timeout for chat/files/history
	TranscribeTimeout time.Duration `yaml:"transcribe_timeout"` // voice uploads are slower
	UserAgent         string        `yaml:"user_agent"`
}

// Breaker holds circuit breaker configuration.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
	Async   bool   `yaml:"async"`
	File    string `yaml:"file"` // empty = stderr
}

// Settings holds the initial user settings shown in a fresh session.
type Settings struct {
	Domain         string `yaml:"domain"`
	Mode           string `yaml:"mode"`
	TargetAI       string `yaml:"target_ai"`
	ExpertiseLevel string `yaml:"expertise_level"`
	Language       string `yaml:"language"`
}

// Wizard holds guided questionnaire configuration.
type Wizard struct {
	AdvanceDelay time.Duration `yaml:"advance_delay"`
}

// Voice holds audio capture configuration. Commands receive the output
// path as their final argument and must write audio until interrupted.
type Voice struct {
	Commands    map[string][]string `yaml:"commands"` // mime type -> argv
	MaxDuration time.Duration       `yaml:"max_duration"`
}

// Attachments holds local file upload limits.
type Attachments struct {
	MaxBytes int64 `yaml:"max_bytes"`
}

// Cache holds history cache configuration.
type Cache struct {
	L1MaxSizeMB int64         `yaml:"l1_max_size_mb"`
	L2Bucket    string        `yaml:"l2_bucket"`
	HistoryTTL  time.Duration `yaml:"history_ttl"`
}

// NATS holds NATS JetStream configuration. An empty URL disables events.
type NATS struct {
	URL string `yaml:"url"`
}

// Mirror holds the optional live conversation mirror server.
type Mirror struct {
	Addr       string  `yaml:"addr"` // empty = disabled
	CORSOrigin string  `yaml:"cors_origin"`
	WriteRate  float64 `yaml:"write_rate"` // settings changes per second per client, 0 = unlimited
	WriteBurst int     `yaml:"write_burst"`
}

// OTEL holds OpenTelemetry export configuration.
type OTEL struct {
	Endpoint    string `yaml:"endpoint"` // empty = no export
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Sentry holds error reporting configuration.
type Sentry struct {
	DSN         string `yaml:"dsn"`
	Environment string `yaml:"environment"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		API: API{
			BaseURL:           "http://localhost:8000/api",
			Timeout:           60 * time.Second,
			TranscribeTimeout: 2 * time.Minute,
			UserAgent:         "lukthan-cli",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Logging: Logging{
			Level:   "warn",
			Service: "lukthan",
		},
		Settings: Settings{
			Domain:         "coding",
			Mode:           "direct",
			TargetAI:       "ChatGPT (GPT-4)",
			ExpertiseLevel: "Professional",
			Language:       "English",
		},
		Wizard: Wizard{
			AdvanceDelay: 300 * time.Millisecond,
		},
		Voice: Voice{
			Commands: map[string][]string{
				"audio/ogg;codecs=opus": {"ffmpeg", "-loglevel", "error", "-f", "pulse", "-i", "default", "-c:a", "libopus", "-f", "ogg", "-y"},
				"audio/wav":             {"arecord", "-q", "-f", "S16_LE", "-r", "16000", "-c", "1", "-t", "wav"},
			},
			MaxDuration: 2 * time.Minute,
		},
		Attachments: Attachments{
			MaxBytes: 10 << 20,
		},
		Cache: Cache{
			L1MaxSizeMB: 16,
			L2Bucket:    "LUKTHAN_HISTORY",
			HistoryTTL:  30 * time.Second,
		},
		Mirror: Mirror{
			CORSOrigin: "http://localhost:5173",
			WriteRate:  1,
			WriteBurst: 5,
		},
		OTEL: OTEL{
			ServiceName: "lukthan",
			Insecure:    true,
		},
		Sentry: Sentry{
			Environment: "development",
		},
	}
}
