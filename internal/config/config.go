package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration for lumina, stored in ~/.lumina/config.json.
// The file supports single-line // comments for documentation purposes.
type Config struct {
	// Env selects the logger flavour: "production" or "development".
	Env          string             `json:"env"`
	Storage      StorageConfig      `json:"storage"`
	Gemini       GeminiConfig       `json:"gemini"`
	Connectivity ConnectivityConfig `json:"connectivity"`
	Expenses     ExpensesConfig     `json:"expenses"`
	Serve        ServeConfig        `json:"serve"`
}

// StorageConfig selects where trip state is persisted.
type StorageConfig struct {
	// Backend is "file", "sqlite" or "memory".
	Backend string `json:"backend"`
	// Dir is the data directory. Empty = ~/.lumina.
	Dir string `json:"dir"`
}

// GeminiConfig holds the generative-language API settings.
type GeminiConfig struct {
	Model   string      `json:"model"`
	BaseURL string      `json:"base_url"`
	APIKey  string      `json:"api_key"`
	OAuth   OAuthConfig `json:"oauth"`
}

// OAuthConfig enables bearer-token auth instead of an API key. Both fields
// must be set and a token file must exist for it to take effect.
type OAuthConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// Enabled reports whether OAuth credentials are configured.
func (o OAuthConfig) Enabled() bool {
	return o.ClientID != "" && o.ClientSecret != ""
}

// ConnectivityConfig controls the one-shot reachability probe.
type ConnectivityConfig struct {
	// ProbeAddress is a host:port dialled once at startup.
	ProbeAddress string `json:"probe_address"`
	// ProbeTimeout is a Go duration string, e.g. "2s".
	ProbeTimeout string `json:"probe_timeout"`
}

// Timeout parses ProbeTimeout, falling back to DefaultProbeTimeout.
func (c ConnectivityConfig) Timeout() time.Duration {
	d, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil || d <= 0 {
		return DefaultProbeTimeout
	}
	return d
}

// ExpensesConfig controls expense defaults.
type ExpensesConfig struct {
	// DateLayout is a Go time layout for the expense date stamp.
	DateLayout      string `json:"date_layout"`
	DefaultCurrency string `json:"default_currency"`
}

// ServeConfig controls `lumina serve`.
type ServeConfig struct {
	Addr string `json:"addr"`
	// AllowedOrigins are the browser origins allowed to call the API.
	AllowedOrigins []string `json:"allowed_origins"`
}

const (
	DefaultEnv          = "development"
	DefaultBackend      = "file"
	DefaultModel        = "gemini-3-flash-preview"
	DefaultBaseURL      = "https://generativelanguage.googleapis.com/v1beta"
	DefaultProbeAddress = "generativelanguage.googleapis.com:443"
	DefaultProbeTimeout = 2 * time.Second
	DefaultDateLayout   = "1/2/2006"
	DefaultCurrency     = "USD"
	DefaultServeAddr    = "127.0.0.1:8080"
	DefaultOrigin       = "http://localhost:5173"
)

// defaultConfig returns a Config pre-filled with sensible defaults.
func defaultConfig() Config {
	return Config{
		Env:     DefaultEnv,
		Storage: StorageConfig{Backend: DefaultBackend},
		Gemini: GeminiConfig{
			Model:   DefaultModel,
			BaseURL: DefaultBaseURL,
		},
		Connectivity: ConnectivityConfig{
			ProbeAddress: DefaultProbeAddress,
			ProbeTimeout: DefaultProbeTimeout.String(),
		},
		Expenses: ExpensesConfig{
			DateLayout:      DefaultDateLayout,
			DefaultCurrency: DefaultCurrency,
		},
		Serve: ServeConfig{
			Addr:           DefaultServeAddr,
			AllowedOrigins: []string{DefaultOrigin},
		},
	}
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// lumina configuration – ~/.lumina/config.json
//
// All settings are optional; the built-in defaults shown below work out of
// the box. Environment variables override the file:
//   LUMINA_ENV, LUMINA_STORAGE, LUMINA_DATA_DIR, GEMINI_API_KEY (or API_KEY), GEMINI_MODEL
{
  // "production" for JSON logs, anything else for development logs.
  "env": "development",

  // ── Trip state persistence ───────────────────────────────────────────────
  "storage": {
    // "file" (one JSON file per key), "sqlite" (single lumina.db) or "memory".
    "backend": "file",
    // Data directory. Leave empty for ~/.lumina.
    "dir": ""
  },

  // ── Destination lookup ───────────────────────────────────────────────────
  "gemini": {
    "model": "gemini-3-flash-preview",
    "base_url": "https://generativelanguage.googleapis.com/v1beta",
    // API key sent as x-goog-api-key. Prefer the GEMINI_API_KEY variable.
    "api_key": "",
    // Optional OAuth client. When set and ~/.lumina/auth/gemini_token.json
    // exists, requests use a bearer token that is refreshed automatically.
    "oauth": {
      "client_id": "",
      "client_secret": ""
    }
  },

  // ── Online/offline detection ─────────────────────────────────────────────
  "connectivity": {
    // Dialled once at startup; failure means offline. Override with --offline.
    "probe_address": "generativelanguage.googleapis.com:443",
    "probe_timeout": "2s"
  },

  // ── Expenses ─────────────────────────────────────────────────────────────
  "expenses": {
    // Go time layout for the date stamped on new expenses.
    "date_layout": "1/2/2006",
    "default_currency": "USD"
  },

  // ── lumina serve ─────────────────────────────────────────────────────────
  "serve": {
    "addr": "127.0.0.1:8080",
    // Browser origins allowed to call the API (CORS).
    "allowed_origins": ["http://localhost:5173"]
  }
}
`

// FilePath returns the path to ~/.lumina/config.json.
func FilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".lumina", "config.json"), nil
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads ~/.lumina/config.json, creating it with annotated defaults on
// first run, then applies environment overrides.
func Load() (Config, error) {
	path, err := FilePath()
	if err != nil {
		cfg := defaultConfig()
		applyEnv(&cfg)
		return cfg, err
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
		applyEnv(&cfg)
		return cfg, nil
	}
	if err != nil {
		applyEnv(&cfg)
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fromFile Config
	if err := json.Unmarshal(stripLineComments(data), &fromFile); err != nil {
		applyEnv(&cfg)
		return cfg, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
	}

	fillDefaults(&fromFile)
	applyEnv(&fromFile)
	return fromFile, nil
}

// fillDefaults replaces zero-value fields with built-in defaults so callers
// always get a usable Config even if the file is only partially filled in.
func fillDefaults(cfg *Config) {
	def := defaultConfig()
	setIfEmpty(&cfg.Env, def.Env)
	setIfEmpty(&cfg.Storage.Backend, def.Storage.Backend)
	setIfEmpty(&cfg.Gemini.Model, def.Gemini.Model)
	setIfEmpty(&cfg.Gemini.BaseURL, def.Gemini.BaseURL)
	setIfEmpty(&cfg.Connectivity.ProbeAddress, def.Connectivity.ProbeAddress)
	setIfEmpty(&cfg.Connectivity.ProbeTimeout, def.Connectivity.ProbeTimeout)
	setIfEmpty(&cfg.Expenses.DateLayout, def.Expenses.DateLayout)
	setIfEmpty(&cfg.Expenses.DefaultCurrency, def.Expenses.DefaultCurrency)
	setIfEmpty(&cfg.Serve.Addr, def.Serve.Addr)
	if cfg.Serve.AllowedOrigins == nil {
		cfg.Serve.AllowedOrigins = def.Serve.AllowedOrigins
	}
}

func applyEnv(cfg *Config) {
	cfg.Env = getEnv("LUMINA_ENV", cfg.Env)
	cfg.Storage.Backend = getEnv("LUMINA_STORAGE", cfg.Storage.Backend)
	cfg.Storage.Dir = getEnv("LUMINA_DATA_DIR", cfg.Storage.Dir)
	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", getEnv("API_KEY", cfg.Gemini.APIKey))
	cfg.Gemini.Model = getEnv("GEMINI_MODEL", cfg.Gemini.Model)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func setIfEmpty(field *string, def string) {
	if *field == "" {
		*field = def
	}
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
