package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/foxzi/tweetsift/internal/web/models"
)

// EnvBackendHost overrides backend.base_url when set
const EnvBackendHost = "TWEETSIFT_BACKEND_HOST"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	App      AppConfig      `yaml:"app"`
	UI       UIConfig       `yaml:"ui"`
	Security SecurityConfig `yaml:"security"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	ListenAddr     string    `yaml:"listen_addr"`
	PublicURL      string    `yaml:"public_url"` // Used for copy links; request host when empty
	TLS            TLSConfig `yaml:"tls"`
	TrustedProxies []string  `yaml:"trusted_proxies"` // Peers allowed to set X-Forwarded-For / X-Real-IP
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

// BackendConfig points at the classification backend REST API
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

// AppConfig holds branding and the label set
type AppConfig struct {
	Name         string   `yaml:"name"`
	Description  string   `yaml:"description"`
	Labels       []string `yaml:"labels"`
	SettingsFile string   `yaml:"settings_file"` // Optional JSON settings artifact
}

type UIConfig struct {
	// DisplayDelay is waited after every backend response. Default: 500ms, 0 disables.
	DisplayDelay *time.Duration `yaml:"display_delay"`
}

type SecurityConfig struct {
	CSRFEnabled    bool            `yaml:"csrf_enabled"`
	CSRFKey        string          `yaml:"csrf_key"` // 32 bytes
	TrustedOrigins []string        `yaml:"trusted_origins"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig limits form posts per client IP. Zero disables a window.
type RateLimitConfig struct {
	PerMinute int `yaml:"per_minute"`
	PerHour   int `yaml:"per_hour"`
}

type MetricsConfig struct {
	Enabled       bool          `yaml:"enabled"`
	ListenAddr    string        `yaml:"listen_addr"`    // Default: :9090
	Path          string        `yaml:"path"`           // Default: /metrics
	StoragePath   string        `yaml:"storage_path"`   // bbolt file for counters, empty keeps them in memory
	FlushInterval time.Duration `yaml:"flush_interval"` // Default: 10s
	AllowedIPs    []string      `yaml:"allowed_ips"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// settingsFile is the JSON artifact exported by the backend admin
type settingsFile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Predictor   struct {
		Labels []string `json:"labels"`
	} `json:"predictor"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := applySettingsFile(cfg); err != nil {
		return nil, err
	}
	applyEnv(cfg)
	setDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applySettingsFile fills branding and labels from app.settings_file.
// Values set in the YAML file take precedence.
func applySettingsFile(cfg *Config) error {
	if cfg.App.SettingsFile == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.App.SettingsFile)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	var s settingsFile
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to parse settings file: %w", err)
	}

	if cfg.App.Name == "" {
		cfg.App.Name = s.Name
	}
	if cfg.App.Description == "" {
		cfg.App.Description = s.Description
	}
	if len(cfg.App.Labels) == 0 {
		cfg.App.Labels = s.Predictor.Labels
	}
	return nil
}

func applyEnv(cfg *Config) {
	if host := os.Getenv(EnvBackendHost); host != "" {
		cfg.Backend.BaseURL = host
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8088"
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000"
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	cfg.Server.PublicURL = strings.TrimRight(cfg.Server.PublicURL, "/")
	if cfg.UI.DisplayDelay == nil {
		d := 500 * time.Millisecond
		cfg.UI.DisplayDelay = &d
	}
	if cfg.Metrics.ListenAddr == "" {
		cfg.Metrics.ListenAddr = ":9090"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.FlushInterval == 0 {
		cfg.Metrics.FlushInterval = 10 * time.Second
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute http(s) URL, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Server.PublicURL != "" {
		u, err := url.Parse(cfg.Server.PublicURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server.public_url must be an absolute URL, got %q", cfg.Server.PublicURL)
		}
	}
	if cfg.Server.TLS.Enabled && (cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "") {
		return fmt.Errorf("server.tls.cert_file and server.tls.key_file are required when TLS is enabled")
	}
	for _, p := range cfg.Server.TrustedProxies {
		if !validIPOrCIDR(p) {
			return fmt.Errorf("server.trusted_proxies: invalid IP or CIDR %q", p)
		}
	}
	if *cfg.UI.DisplayDelay < 0 {
		return fmt.Errorf("ui.display_delay must not be negative")
	}
	if cfg.Metrics.FlushInterval < 0 {
		return fmt.Errorf("metrics.flush_interval must not be negative")
	}
	if cfg.Security.CSRFEnabled && len(cfg.Security.CSRFKey) != 32 {
		return fmt.Errorf("security.csrf_key must be exactly 32 characters when CSRF is enabled")
	}
	if cfg.Security.RateLimit.PerMinute < 0 || cfg.Security.RateLimit.PerHour < 0 {
		return fmt.Errorf("security.rate_limit values must not be negative")
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	return nil
}

func validIPOrCIDR(s string) bool {
	if strings.Contains(s, "/") {
		_, _, err := net.ParseCIDR(s)
		return err == nil
	}
	return net.ParseIP(s) != nil
}

// Labels returns the configured label set
func (c *Config) Labels() models.LabelSet {
	return models.LabelSet(c.App.Labels)
}

// Configured reports whether the application has a name and enough labels
// to run. An unconfigured application only serves the setup notice.
func (c *Config) Configured() bool {
	return strings.TrimSpace(c.App.Name) != "" && c.Labels().Configured()
}

// AdminURL is where the backend's administration UI lives
func (c *Config) AdminURL() string {
	return c.Backend.BaseURL + "/admin/"
}

// Delay returns the display delay
func (c *Config) Delay() time.Duration {
	if c.UI.DisplayDelay == nil {
		return 0
	}
	return *c.UI.DisplayDelay
}
