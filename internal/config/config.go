// Package config loads TierZen settings from defaults, an optional TOML file
// and TIERZEN_ environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides, e.g. TIERZEN_SERVER_PORT
const EnvPrefix = "TIERZEN_"

// Config represents the application configuration
type Config struct {
	Server struct {
		Port           string   `koanf:"port"`
		AllowedOrigins []string `koanf:"allowed_origins"`
		StaticDir      string   `koanf:"static_dir"`
	} `koanf:"server"`

	Database struct {
		Path string `koanf:"path"`
	} `koanf:"database"`

	Drag struct {
		Deadband float64 `koanf:"deadband"`
	} `koanf:"drag"`

	Log struct {
		Level  string `koanf:"level"`
		Pretty bool   `koanf:"pretty"`
	} `koanf:"log"`
}

var defaultPaths = []string{"./tierzen.toml", "$HOME/.config/tierzen/tierzen.toml"}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server.port":            "8080",
		"server.allowed_origins": []string{"http://localhost:*", "https://*.tierzen.app"},
		"server.static_dir":      "../frontend/dist",
		"database.path":          "./tierzen.db",
		"drag.deadband":          0.0,
		"log.level":              "info",
		"log.pretty":             false,
	}
}

// Load reads the configuration. An explicit path must exist; without one the
// default locations are tried and silently skipped when absent.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading config %s: %w", path, err)
				}
				break
			}
		}
	}

	// TIERZEN_SERVER_PORT -> server.port; only the first underscore after a
	// section name splits, so TIERZEN_SERVER_STATIC_DIR -> server.static_dir.
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the configuration
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Server.Port) == "" {
		return fmt.Errorf("server port is required")
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		return fmt.Errorf("database path is required")
	}
	if cfg.Drag.Deadband < 0 {
		return fmt.Errorf("drag deadband must not be negative, got %v", cfg.Drag.Deadband)
	}
	return nil
}
