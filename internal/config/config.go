package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration shared by the dashboard,
// the analytics API and the CLI
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Backend   BackendConfig   `yaml:"backend"`
	API       APIConfig       `yaml:"api"`
	Database  DatabaseConfig  `yaml:"database"`
	NATS      NATSConfig      `yaml:"nats"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// DashboardConfig represents the web dashboard listener and theme
type DashboardConfig struct {
	Host  string      `yaml:"host"`
	Port  int         `yaml:"port"`
	Theme ThemeConfig `yaml:"theme"`
}

// ThemeConfig is the render-tree theme. Mode is light, dark or system.
type ThemeConfig struct {
	Mode          string `yaml:"mode"`
	AccentPalette string `yaml:"accent_palette"`
}

// BackendConfig represents the analytics API the dashboard reads from
type BackendConfig struct {
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	ServiceSecret string        `yaml:"service_secret"`
}

// APIConfig represents the analytics API listener
type APIConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	RecentRuns  int      `yaml:"recent_runs"`
	CORSOrigins []string `yaml:"cors_origins"`
}

// DatabaseConfig represents database configuration
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// NATSConfig represents NATS configuration
type NATSConfig struct {
	URL               string        `yaml:"url"`
	Subject           string        `yaml:"subject"`
	ClientName        string        `yaml:"client_name"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	MaxReconnects     int           `yaml:"max_reconnects"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval"`
}

// JWTConfig represents JWT configuration for service tokens
type JWTConfig struct {
	Secret         string        `yaml:"secret"`
	Issuer         string        `yaml:"issuer"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultBackendURL is the local-development analytics API address.
const DefaultBackendURL = "http://localhost:8000"

// Default returns a configuration with every default applied and env
// overrides honoured. Used when no config file exists.
func Default() *Config {
	var cfg Config
	cfg.applyEnvOverrides()
	cfg.setDefaults()
	return &cfg
}

// Load loads configuration from file
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads filename, falling back to Default when it does not exist.
func LoadOrDefault(filename string) (*Config, error) {
	cfg, err := Load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("file", filename).Msg("Config file not found, using defaults")
		return Default(), nil
	}
	return cfg, err
}

// applyEnvOverrides applies environment variable overrides
func (c *Config) applyEnvOverrides() {
	if baseURL := os.Getenv("API_BASE_URL"); baseURL != "" {
		c.Backend.BaseURL = baseURL
	}

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Database.DSN = dsn
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		c.NATS.URL = natsURL
	}

	if jwtSecret := os.Getenv("JWT_SECRET"); jwtSecret != "" {
		c.JWT.Secret = jwtSecret
	}

	if serviceSecret := os.Getenv("SERVICE_SECRET"); serviceSecret != "" {
		c.Backend.ServiceSecret = serviceSecret
	}

	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.Log.Level = logLevel
	}

	if theme := os.Getenv("DASHBOARD_THEME"); theme != "" {
		c.Dashboard.Theme.Mode = theme
	}
}

func (c *Config) setDefaults() {
	if c.Server.Name == "" {
		c.Server.Name = "EdYou Engine Dashboard"
	}
	if c.Server.Version == "" {
		c.Server.Version = "1.0.0"
	}

	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 3000
	}
	if c.Dashboard.Theme.Mode == "" {
		c.Dashboard.Theme.Mode = "system"
	}
	if c.Dashboard.Theme.AccentPalette == "" {
		c.Dashboard.Theme.AccentPalette = "indigo"
	}

	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBackendURL
	}
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")
	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = 10 * time.Second
	}

	if c.API.Port == 0 {
		c.API.Port = 8000
	}
	if c.API.RecentRuns <= 0 {
		c.API.RecentRuns = 20
	}
	if len(c.API.CORSOrigins) == 0 {
		c.API.CORSOrigins = []string{"*"}
	}

	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 30 * time.Minute
	}

	if c.NATS.Subject == "" {
		c.NATS.Subject = "edyou.runs.>"
	}
	if c.NATS.ClientName == "" {
		c.NATS.ClientName = "edyou-analytics-api"
	}
	if c.NATS.MaxReconnects == 0 {
		c.NATS.MaxReconnects = 10
	}
	if c.NATS.ReconnectInterval == 0 {
		c.NATS.ReconnectInterval = 2 * time.Second
	}

	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "edyou-dashboard"
	}
	if c.JWT.AccessTokenTTL <= 0 {
		c.JWT.AccessTokenTTL = 5 * time.Minute
	}
	// The dashboard signs with the same secret the API validates with.
	if c.Backend.ServiceSecret == "" {
		c.Backend.ServiceSecret = c.JWT.Secret
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

func (c *Config) validate() error {
	switch c.Dashboard.Theme.Mode {
	case "light", "dark", "system":
	default:
		return fmt.Errorf("dashboard.theme.mode must be light, dark or system, got %q", c.Dashboard.Theme.Mode)
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", c.Backend.BaseURL)
	}
	return nil
}

// DashboardAddr returns the host:port the dashboard listens on
func (c *Config) DashboardAddr() string {
	return fmt.Sprintf("%s:%d", c.Dashboard.Host, c.Dashboard.Port)
}

// APIAddr returns the host:port the analytics API listens on
func (c *Config) APIAddr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// PrintConfigSummary prints a short configuration summary
func (c *Config) PrintConfigSummary() {
	fmt.Printf("=== %s v%s ===\n", c.Server.Name, c.Server.Version)
	fmt.Printf("Dashboard: %s (theme %s/%s)\n", c.DashboardAddr(), c.Dashboard.Theme.Mode, c.Dashboard.Theme.AccentPalette)
	fmt.Printf("Backend:   %s (timeout %s)\n", c.Backend.BaseURL, c.Backend.Timeout)
	fmt.Printf("API:       %s\n", c.APIAddr())
	fmt.Printf("NATS:      %t\n", c.NATS.URL != "")
	fmt.Printf("Auth:      %t\n", c.JWT.Secret != "")
	fmt.Printf("==========================================\n")
}
