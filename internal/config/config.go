package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/recipebox/internal/errors"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "recipebox.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "recipebox.yaml"

	// EnvFileName is the dotenv file loaded next to the configuration file.
	EnvFileName = ".env"

	// DefaultPort is the default HTTP port.
	DefaultPort = 8080

	// DefaultHost is the default HTTP host.
	DefaultHost = "localhost"

	// DefaultBackendURL is the default REST backend.
	DefaultBackendURL = "http://localhost:5000"

	// DefaultMongoURI matches the provisioning container of the platform.
	DefaultMongoURI = "mongodb://mongodb:27017"

	// DefaultDatabase is the default database name.
	DefaultDatabase = "recipe_platform"
)

// Config represents the complete recipebox configuration.
type Config struct {
	// Name is the application name shown in the page title.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty" yaml:"server,omitempty"`

	// Backend contains REST backend configuration.
	Backend BackendConfig `json:"backend,omitempty" yaml:"backend,omitempty"`

	// Notifications contains notification timing.
	Notifications NotificationConfig `json:"notifications,omitempty" yaml:"notifications,omitempty"`

	// Database contains document database configuration.
	Database DatabaseConfig `json:"database,omitempty" yaml:"database,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty"`

	configPath string
	parsed     durations
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
}

// BackendConfig contains REST backend settings.
type BackendConfig struct {
	// URL is the base URL of the recipe platform API.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Timeout bounds a single backend request (e.g., "10s").
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// HTTP2 enables HTTP/2 for https backends.
	HTTP2 bool `json:"http2,omitempty" yaml:"http2,omitempty"`
}

// NotificationConfig contains notification timing.
type NotificationConfig struct {
	// Display is how long a notification stays fully visible.
	Display string `json:"display,omitempty" yaml:"display,omitempty"`

	// Fade is the delay between hiding a notification and removing it.
	Fade string `json:"fade,omitempty" yaml:"fade,omitempty"`

	// Flash is how long server-rendered flash messages stay visible.
	Flash string `json:"flash,omitempty" yaml:"flash,omitempty"`
}

// DatabaseConfig contains document database settings.
type DatabaseConfig struct {
	URI  string `json:"uri,omitempty" yaml:"uri,omitempty"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

type durations struct {
	shutdown time.Duration
	timeout  time.Duration
	display  time.Duration
	fade     time.Duration
	flash    time.Duration
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Name: "Recipe Discovery Platform",
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: "10s",
		},
		Backend: BackendConfig{
			URL:     DefaultBackendURL,
			Timeout: "10s",
		},
		Notifications: NotificationConfig{
			Display: "3s",
			Fade:    "150ms",
			Flash:   "5s",
		},
		Database: DatabaseConfig{
			URI:  DefaultMongoURI,
			Name: DefaultDatabase,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from dir. It looks for recipebox.json, then
// recipebox.yaml; if neither exists the defaults are used.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}

	cfg := New()
	cfg.configPath = filepath.Join(dir, ConfigFileName)
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from a specific file. The format is chosen
// by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").WithDetail(path).Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E121").
			WithDetail("Failed to parse " + filepath.Base(path)).
			Wrap(err)
	}

	cfg.configPath = path
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnv reads the optional .env file and applies environment overrides.
func (c *Config) loadEnv() error {
	envPath := filepath.Join(c.Dir(), EnvFileName)
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return errors.New("E121").WithDetail("Failed to parse " + envPath).Wrap(err)
		}
	}
	return c.applyEnv()
}

// applyEnv overrides fields from environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv("RECIPEBOX_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("RECIPEBOX_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("E122").WithDetail("RECIPEBOX_PORT must be a number").Wrap(err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("RECIPEBOX_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("RECIPEBOX_BACKEND_TIMEOUT"); v != "" {
		c.Backend.Timeout = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		c.Database.URI = v
	}
	if v := os.Getenv("RECIPEBOX_DB_NAME"); v != "" {
		c.Database.Name = v
	}
	if v := os.Getenv("RECIPEBOX_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("RECIPEBOX_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	return nil
}

// Path returns the path of the configuration file.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the configuration file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

// Validate checks the configuration and parses duration fields.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").WithDetail("Port must be between 0 and 65535")
	}

	u, err := url.Parse(c.Backend.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("E122").
			WithDetailf("backend.url %q must be an absolute URL", c.Backend.URL).
			Wrap(err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("E122").WithDetailf("backend.url scheme %q is not http or https", u.Scheme)
	}

	fields := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"server.shutdownTimeout", c.Server.ShutdownTimeout, &c.parsed.shutdown},
		{"backend.timeout", c.Backend.Timeout, &c.parsed.timeout},
		{"notifications.display", c.Notifications.Display, &c.parsed.display},
		{"notifications.fade", c.Notifications.Fade, &c.parsed.fade},
		{"notifications.flash", c.Notifications.Flash, &c.parsed.flash},
	}
	for _, f := range fields {
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return errors.New("E122").WithDetailf("%s: %q is not a duration", f.name, f.value).Wrap(err)
		}
		if d < 0 {
			return errors.New("E122").WithDetailf("%s must not be negative", f.name)
		}
		*f.dst = d
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("E122").WithDetailf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return errors.New("E122").WithDetailf("log.format %q is not text or json", c.Log.Format)
	}

	if c.Database.Name == "" {
		return errors.New("E122").WithDetail("database.name is required")
	}
	return nil
}

// Address returns the host:port the HTTP server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the public URL of the HTTP server.
func (c *Config) URL() string {
	return fmt.Sprintf("http://%s", c.Address())
}

// ShutdownTimeout returns the parsed graceful shutdown bound.
func (c *Config) ShutdownTimeout() time.Duration { return c.parsed.shutdown }

// BackendTimeout returns the parsed backend request timeout.
func (c *Config) BackendTimeout() time.Duration { return c.parsed.timeout }

// NotificationDisplay returns how long notifications stay visible.
func (c *Config) NotificationDisplay() time.Duration { return c.parsed.display }

// NotificationFade returns the fade-out delay before removal.
func (c *Config) NotificationFade() time.Duration { return c.parsed.fade }

// FlashDelay returns how long flash messages stay visible.
func (c *Config) FlashDelay() time.Duration { return c.parsed.flash }
