package config

import "time"

// DefaultAPIBaseURL is used when neither the environment nor flags name a
// backend.
const DefaultAPIBaseURL = "http://localhost:8000"

// Config holds runtime settings for the testimony CLI.
//
// Units: every interval and timeout is a time.Duration.
type Config struct {
	APIBaseURL string

	RequestTimeout     time.Duration
	SubmitTimeout      time.Duration
	ImageUploadTimeout time.Duration
	AudioUploadTimeout time.Duration
	VideoUploadTimeout time.Duration

	OnlineCheckInterval time.Duration
	SessionTTL          time.Duration

	DataDir  string
	LogLevel string

	RedisAddr string
	CacheTTL  time.Duration

	// InlineMedia sends media inside the testimony multipart request
	// instead of uploading it first.
	InlineMedia       bool
	UploadConcurrency int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = DefaultAPIBaseURL
	c.RequestTimeout = 10 * time.Second
	c.SubmitTimeout = 300 * time.Second
	c.ImageUploadTimeout = 120 * time.Second
	c.AudioUploadTimeout = 120 * time.Second
	c.VideoUploadTimeout = 300 * time.Second
	c.OnlineCheckInterval = 3 * time.Second
	c.SessionTTL = 24 * time.Hour
	c.DataDir = "data"
	c.LogLevel = "INFO"
	c.CacheTTL = 5 * time.Minute
	c.UploadConcurrency = 4
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment, a JSON file (if present) and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
