package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DBPath       string          `yaml:"db_path"`
	LogLevel     string          `yaml:"log_level"`
	Output       string          `yaml:"output"`
	NotifyURLs   []string        `yaml:"notify_urls"`
	OTelEndpoint string          `yaml:"otel_endpoint"`
	Privacy      map[string]bool `yaml:"privacy"`
}

// envConfig holds the environment overrides. Unset variables leave the
// corresponding field empty.
type envConfig struct {
	DBPath         string   `env:"FIXQ_DB_PATH"`
	DBPathFile     string   `env:"FIXQ_DB_PATH_FILE,file"`
	LogLevel       string   `env:"FIXQ_LOG_LEVEL"`
	Output         string   `env:"FIXQ_OUTPUT"`
	NotifyURLs     []string `env:"FIXQ_NOTIFY_URLS" envSeparator:","`
	OTelEndpoint   string   `env:"FIXQ_OTEL_ENDPOINT"`
	PrivacyDisable []string `env:"FIXQ_PRIVACY_DISABLE" envSeparator:","`
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. ./.env.local (dotenv) - walks up parent directories to find it
// 3. ~/.config/fixq/config.yaml (YAML)
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return load(filepath.Join(homeDir, ".config", "fixq", "config.yaml"), homeDir)
}

func load(yamlPath, homeDir string) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Output:   "table",
	}

	// Load .env.local if it exists (walking up parent directories)
	if envPath := findEnvLocal(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	if err := loadYAMLConfig(cfg, yamlPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read %s: %w", yamlPath, err)
	}

	var e envConfig
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	switch {
	case e.DBPath != "":
		cfg.DBPath = e.DBPath
	case strings.TrimSpace(e.DBPathFile) != "":
		cfg.DBPath = strings.TrimSpace(e.DBPathFile)
	}
	if e.LogLevel != "" {
		cfg.LogLevel = e.LogLevel
	}
	if e.Output != "" {
		cfg.Output = e.Output
	}
	if len(e.NotifyURLs) > 0 {
		cfg.NotifyURLs = e.NotifyURLs
	}
	if e.OTelEndpoint != "" {
		cfg.OTelEndpoint = e.OTelEndpoint
	}
	for _, toggle := range e.PrivacyDisable {
		toggle = strings.TrimSpace(toggle)
		if toggle == "" {
			continue
		}
		if cfg.Privacy == nil {
			cfg.Privacy = map[string]bool{}
		}
		cfg.Privacy[toggle] = false
	}

	if cfg.DBPath == "" {
		// Check for project-local database first
		if _, err := os.Stat(".fixq/fixq.db"); err == nil {
			cfg.DBPath = ".fixq/fixq.db"
		} else {
			cfg.DBPath = filepath.Join(homeDir, ".local", "share", "fixq", "fixq.db")
		}
	}

	return cfg, nil
}

// loadYAMLConfig merges the YAML file at path into cfg.
func loadYAMLConfig(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// PrivacyRestricted reports whether any privacy toggle is switched off.
func (c *Config) PrivacyRestricted() bool {
	for _, enabled := range c.Privacy {
		if !enabled {
			return true
		}
	}
	return false
}

// DisabledPrivacyToggles lists the toggles that are switched off, sorted.
func (c *Config) DisabledPrivacyToggles() []string {
	var out []string
	for name, enabled := range c.Privacy {
		if !enabled {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// findEnvLocal searches for .env.local starting from cwd and walking up
// parent directories. Stops at the user's home directory.
// Returns the path to .env.local if found, empty string otherwise.
func findEnvLocal() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		if _, err := os.Stat(".env.local"); err == nil {
			return ".env.local"
		}
		return ""
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	homeDir = filepath.Clean(homeDir)
	dir := filepath.Clean(cwd)

	for {
		envPath := filepath.Join(dir, ".env.local")
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
		if dir == homeDir {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}
