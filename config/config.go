package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
	ModeTest        = "test"
)

//go:embed default.yaml
var defaultConfig []byte

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Auth     AuthConfig     `yaml:"auth"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	KV       KVConfig       `yaml:"kv"`
	Capture  CaptureConfig  `yaml:"capture"`
	Pushover PushoverConfig `yaml:"pushover"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr        string        `yaml:"addr"`
	Mode        string        `yaml:"mode"`
	MaxDuration time.Duration `yaml:"max_duration"`
	BodyLimitMB int           `yaml:"body_limit_mb"`
	RateLimit   int           `yaml:"rate_limit"` // requests per window per client, 0 disables
	RateWindow  time.Duration `yaml:"rate_window"`
	// TrustedProxies lists proxy IPs or CIDRs allowed to set X-Forwarded-For.
	TrustedProxies []string `yaml:"trusted_proxies"`
	Metrics        bool     `yaml:"metrics"`
}

// AuthConfig holds one shared bearer secret per endpoint group.
type AuthConfig struct {
	ListToken       string `yaml:"list_token"`
	TranscribeToken string `yaml:"transcribe_token"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
}

type KVConfig struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

type CaptureConfig struct {
	Dir string `yaml:"dir"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment. Variables
// already set win; a missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading env file: %w", err)
	}
	return nil
}

// Load reads the YAML config at path, expanding ${VAR} references from the
// environment. When path does not exist the embedded default is used.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		data = defaultConfig
	} else if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = ModeProduction
	}
	if c.Server.MaxDuration == 0 {
		c.Server.MaxDuration = 300 * time.Second
	}
	if c.Server.BodyLimitMB == 0 {
		c.Server.BodyLimitMB = 25
	}
	if c.Server.RateWindow == 0 {
		c.Server.RateWindow = time.Minute
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-transcribe"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "de"
	}
	if c.KV.URL == "" {
		c.KV.URL = "redis://localhost:6379/0"
	}
	if c.KV.Key == "" {
		c.KV.Key = "shopping:list"
	}
	if c.Capture.Dir == "" {
		c.Capture.Dir = "uploads/audio"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.KV.Validate(); err != nil {
		return fmt.Errorf("kv config: %w", err)
	}
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	switch s.Mode {
	case ModeDevelopment, ModeProduction, ModeTest:
	default:
		return fmt.Errorf("mode must be one of [development, production, test], got %q", s.Mode)
	}

	if s.MaxDuration < 0 {
		return fmt.Errorf("max_duration cannot be negative, got %s", s.MaxDuration)
	}

	if s.BodyLimitMB < 1 {
		return fmt.Errorf("body_limit_mb must be at least 1, got %d", s.BodyLimitMB)
	}

	if s.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative, got %d", s.RateLimit)
	}

	if s.RateWindow < 0 {
		return fmt.Errorf("rate_window cannot be negative, got %s", s.RateWindow)
	}

	for _, proxy := range s.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("trusted_proxies entry %q is neither an IP nor a CIDR", proxy)
		}
	}

	return nil
}

// IsDevelopment gates the diagnostic upload capture.
func (s *ServerConfig) IsDevelopment() bool {
	return s.Mode == ModeDevelopment
}

// BodyLimit returns the request body limit in bytes.
func (s *ServerConfig) BodyLimit() int {
	return s.BodyLimitMB * 1024 * 1024
}

func (k *KVConfig) Validate() error {
	u, err := url.Parse(k.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return fmt.Errorf("url scheme must be redis or rediss, got %q", u.Scheme)
	}
	if k.Key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	return nil
}

func (l *LogConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of [debug, info, warn, error], got %q", l.Level)
	}

	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be 'text' or 'json', got %q", l.Format)
	}

	return nil
}
