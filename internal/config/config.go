package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// maxUploadConcurrency caps UPLOAD_CONCURRENCY. Higher values only
	// queue more requests against a single ingestion endpoint.
	maxUploadConcurrency = 64
)

// Config holds all environment-based configuration for folder-sync.
type Config struct {
	// Ingestion endpoint. Session and folder endpoints live on its origin.
	BackendURL string `env:"BACKEND_URL" envDefault:"http://127.0.0.1:3002/uploads"`

	// Roots to sync, comma separated. Merged with SYNC_ROOTS_FILE.
	SyncRoots []string `env:"SYNC_ROOTS" envSeparator:","`

	// Optional YAML manifest listing roots and extra ignore names.
	SyncRootsFile string `env:"SYNC_ROOTS_FILE"`

	// Extra file names skipped by the walker, on top of the OS artifacts.
	IgnoreNames []string `env:"IGNORE_NAMES" envSeparator:","`

	UploadConcurrency int           `env:"UPLOAD_CONCURRENCY" envDefault:"4"`
	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT" envDefault:"60s"`

	// Path to the bbolt state file. Empty means ~/.folder-sync/state.db.
	StatePath string `env:"STATE_PATH"`

	// Keep running after the initial pass and upload new or changed files.
	Watch bool `env:"WATCH" envDefault:"false"`

	// Account credentials used by the login command.
	Email    string `env:"EMAIL"`
	Password string `env:"PASSWORD"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL"`
}

// Manifest is the shape of the SYNC_ROOTS_FILE document.
type Manifest struct {
	Roots  []string `yaml:"roots"`
	Ignore []string `yaml:"ignore"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.SyncRootsFile != "" {
		m, err := LoadManifest(cfg.SyncRootsFile)
		if err != nil {
			return nil, err
		}

		cfg.SyncRoots = append(cfg.SyncRoots, m.Roots...)
		cfg.IgnoreNames = append(cfg.IgnoreNames, m.Ignore...)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	roots, err := ResolveRoots(cfg.SyncRoots)
	if err != nil {
		return nil, err
	}

	cfg.SyncRoots = roots
	cfg.IgnoreNames = trimAll(cfg.IgnoreNames)

	if cfg.StatePath != "" {
		abs, err := filepath.Abs(expandHome(cfg.StatePath))
		if err != nil {
			return nil, fmt.Errorf("resolving state path: %w", err)
		}

		cfg.StatePath = abs
	}

	return cfg, nil
}

// LoadManifest reads a YAML roots manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("reading roots file: %w", err)
	}

	m := &Manifest{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing roots file %s: %w", path, err)
	}

	return m, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("BACKEND_URL is not a valid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("BACKEND_URL must use http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("BACKEND_URL must include a host")
	}

	if c.UploadConcurrency < 1 || c.UploadConcurrency > maxUploadConcurrency {
		return fmt.Errorf("UPLOAD_CONCURRENCY must be between 1 and %d, got %d", maxUploadConcurrency, c.UploadConcurrency)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTPTimeout)
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", c.LogLevel)
	}

	return nil
}

// ResolveRoots makes every root absolute and drops blanks and duplicates,
// keeping first-seen order.
func ResolveRoots(roots []string) ([]string, error) {
	seen := make(map[string]struct{}, len(roots))
	out := make([]string, 0, len(roots))

	for _, r := range roots {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}

		abs, err := filepath.Abs(expandHome(r))
		if err != nil {
			return nil, fmt.Errorf("resolving root %q: %w", r, err)
		}

		if _, dup := seen[abs]; dup {
			continue
		}

		seen[abs] = struct{}{}
		out = append(out, abs)
	}

	return out, nil
}

func trimAll(names []string) []string {
	out := names[:0]

	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}

	return out
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
