package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Backend string

const (
	BackendJSON   Backend = "json"
	BackendSQLite Backend = "sqlite"
	BackendNeo4j  Backend = "neo4j"
)

var (
	validBackends  = []Backend{BackendJSON, BackendSQLite, BackendNeo4j}
	validThemes    = []string{"classic", "neon", "mono"}
	validFilters   = []string{"all", "done", "pending"}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

type Config struct {
	Store   StoreConfig   `toml:"store"`
	Logging LoggingConfig `toml:"logging"`
	UI      UIConfig      `toml:"ui"`
	Server  ServerConfig  `toml:"server"`
}

type StoreConfig struct {
	Backend    Backend     `toml:"backend"`
	JSONPath   string      `toml:"json_path"`
	SQLitePath string      `toml:"sqlite_path"`
	Neo4j      Neo4jConfig `toml:"neo4j"`
}

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type UIConfig struct {
	Theme         string `toml:"theme"`
	DefaultFilter string `toml:"default_filter"`
	Group         bool   `toml:"group"`
}

type ServerConfig struct {
	Addr         string `toml:"addr"`
	RequireToken bool   `toml:"require_token"`
}

func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend:    BackendJSON,
			JSONPath:   "todos.json",
			SQLitePath: "todos.db",
			Neo4j: Neo4jConfig{
				URI:      "neo4j://localhost:7687",
				Username: "neo4j",
			},
		},
		Logging: LoggingConfig{Level: "info"},
		UI: UIConfig{
			Theme:         "classic",
			DefaultFilter: "all",
		},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// Load overlays the TOML file at path onto defaults. A missing or empty file
// yields defaults unchanged.
func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate expects a normalized config.
func (c Config) Validate() error {
	if !slices.Contains(validBackends, c.Store.Backend) {
		return fmt.Errorf("store.backend must be one of %v", validBackends)
	}
	if !slices.Contains(validThemes, c.UI.Theme) {
		return fmt.Errorf("ui.theme must be one of %v", validThemes)
	}
	if !slices.Contains(validFilters, c.UI.DefaultFilter) {
		return fmt.Errorf("ui.default_filter must be one of %v", validFilters)
	}
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %v", validLogLevels)
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	return nil
}

// Normalize lower-cases and trims the enumerated settings.
func (c *Config) Normalize() {
	c.Store.Backend = Backend(strings.ToLower(strings.TrimSpace(string(c.Store.Backend))))
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	c.UI.DefaultFilter = strings.ToLower(strings.TrimSpace(c.UI.DefaultFilter))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}
