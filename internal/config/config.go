// Package config resolves settings for the CLI and the web front.
//
// Sources, lowest precedence first: built-in defaults, the YAML file
// (~/.newsletter/config.yaml), a .env file in the working directory,
// process environment, and finally command-line flags applied by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/me/newsletter/pkg/newsapi"
)

// Environment variables.
const (
	EnvAPIURL   = "NEWSLETTER_API_URL"
	EnvStateDir = "NEWSLETTER_STATE_DIR"
	EnvWebAddr  = "NEWSLETTER_WEB_ADDR"
	EnvDB       = "NEWSLETTER_DB"
	EnvSecure   = "NEWSLETTER_SECURE_COOKIES"
)

// ClientConfig holds configuration for the newsletter CLI.
type ClientConfig struct {
	APIURL     string        `yaml:"api_url"`
	StateDir   string        `yaml:"state_dir"`   // holds session.json (default ~/.newsletter)
	Timeout    time.Duration `yaml:"timeout"`     // per-request timeout
	MaxRetries int           `yaml:"max_retries"` // read retries
	LogLevel   string        `yaml:"log_level"`
	LogFormat  string        `yaml:"log_format"`
}

// SessionPath is the file backing the CLI token store.
func (c ClientConfig) SessionPath() string {
	return filepath.Join(c.StateDir, "session.json")
}

// API returns the newsapi client configuration.
func (c ClientConfig) API() newsapi.Config {
	cfg := newsapi.DefaultConfig().WithBaseURL(c.APIURL)
	if c.Timeout > 0 {
		cfg = cfg.WithTimeout(c.Timeout)
	}
	if c.MaxRetries >= 0 {
		cfg = cfg.WithRetries(c.MaxRetries, cfg.RetryDelay)
	}
	return cfg
}

// WebConfig holds configuration for the newsletter web server.
type WebConfig struct {
	Addr          string        `yaml:"addr"`    // listen address (default ":8080")
	DBPath        string        `yaml:"db_path"` // SQLite path (":memory:" for testing)
	APIURL        string        `yaml:"api_url"`
	SessionTTL    time.Duration `yaml:"session_ttl"` // idle browser sessions are purged after this
	SecureCookies bool          `yaml:"secure_cookies"`
	Timeout       time.Duration `yaml:"timeout"`
	LogLevel      string        `yaml:"log_level"`
	LogFormat     string        `yaml:"log_format"`
}

// API returns the newsapi client configuration.
func (c WebConfig) API() newsapi.Config {
	cfg := newsapi.DefaultConfig().WithBaseURL(c.APIURL)
	if c.Timeout > 0 {
		cfg = cfg.WithTimeout(c.Timeout)
	}
	return cfg
}

// File is the on-disk layout of config.yaml.
type File struct {
	Client ClientConfig `yaml:"client"`
	Web    WebConfig    `yaml:"web"`
}

// DefaultStateDir returns ~/.newsletter, or .newsletter when the home
// directory is unknown.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".newsletter"
	}
	return filepath.Join(home, ".newsletter")
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		APIURL:     newsapi.DefaultBaseURL,
		StateDir:   DefaultStateDir(),
		Timeout:    newsapi.DefaultTimeout,
		MaxRetries: newsapi.DefaultMaxRetries,
		LogLevel:   "warn",
		LogFormat:  "text",
	}
}

// DefaultWebConfig returns sensible defaults.
func DefaultWebConfig() WebConfig {
	return WebConfig{
		Addr:       ":8080",
		DBPath:     filepath.Join(DefaultStateDir(), "web.db"),
		APIURL:     newsapi.DefaultBaseURL,
		SessionTTL: 7 * 24 * time.Hour,
		Timeout:    newsapi.DefaultTimeout,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Loader reads the config file and environment.
type Loader struct {
	path      string
	dotEnv    string
	useDotEnv bool
	lookup    func(string) (string, bool)
}

// NewLoader creates a loader for ~/.newsletter/config.yaml and ./.env.
func NewLoader() *Loader {
	return &Loader{
		path:      filepath.Join(DefaultStateDir(), "config.yaml"),
		dotEnv:    ".env",
		useDotEnv: true,
		lookup:    os.LookupEnv,
	}
}

// WithPath overrides the YAML file location. An empty path skips the file.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithDotEnv sets the .env file. An empty path disables .env loading.
func (l *Loader) WithDotEnv(path string) *Loader {
	l.dotEnv = path
	l.useDotEnv = path != ""
	return l
}

// WithLookup overrides environment lookup (useful for tests).
func (l *Loader) WithLookup(lookup func(string) (string, bool)) *Loader {
	if lookup != nil {
		l.lookup = lookup
	}
	return l
}

// Client resolves the CLI configuration.
func (l *Loader) Client() (ClientConfig, error) {
	f := File{Client: DefaultClientConfig(), Web: DefaultWebConfig()}
	if err := l.readFile(&f); err != nil {
		return ClientConfig{}, err
	}
	env, err := l.env()
	if err != nil {
		return ClientConfig{}, err
	}

	cfg := f.Client
	if v, ok := env(EnvAPIURL); ok {
		cfg.APIURL = v
	}
	if v, ok := env(EnvStateDir); ok {
		cfg.StateDir = v
	}
	return cfg, nil
}

// Web resolves the web server configuration.
func (l *Loader) Web() (WebConfig, error) {
	f := File{Client: DefaultClientConfig(), Web: DefaultWebConfig()}
	if err := l.readFile(&f); err != nil {
		return WebConfig{}, err
	}
	env, err := l.env()
	if err != nil {
		return WebConfig{}, err
	}

	cfg := f.Web
	if v, ok := env(EnvAPIURL); ok {
		cfg.APIURL = v
	}
	if v, ok := env(EnvWebAddr); ok {
		cfg.Addr = v
	}
	if v, ok := env(EnvDB); ok {
		cfg.DBPath = v
	}
	if v, ok := env(EnvSecure); ok {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return WebConfig{}, fmt.Errorf("%s: %w", EnvSecure, err)
		}
		cfg.SecureCookies = secure
	}
	return cfg, nil
}

func (l *Loader) readFile(f *File) error {
	if l.path == "" {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, f); err != nil {
		return fmt.Errorf("parse config %s: %w", l.path, err)
	}
	return nil
}

// env returns a lookup where the process environment wins over .env.
func (l *Loader) env() (func(string) (string, bool), error) {
	dotenv := map[string]string{}
	if l.useDotEnv {
		values, err := godotenv.Read(l.dotEnv)
		switch {
		case err == nil:
			dotenv = values
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", l.dotEnv, err)
		}
	}
	return func(key string) (string, bool) {
		if v, ok := l.lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}, nil
}
