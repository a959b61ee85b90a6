// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ArcadeHub Contributors

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/arcadehub/arcadehub/internal/leaderboard"
	"github.com/arcadehub/arcadehub/internal/logging"
	"github.com/arcadehub/arcadehub/internal/score"
	"github.com/arcadehub/arcadehub/internal/xdg"
)

// Score backends.
const (
	backendJSON   = "json"
	backendSQLite = "sqlite"
)

// Default values for host flags.
const (
	defaultGamesDir  = "games"
	defaultPlayer    = "Player1"
	defaultBackend   = backendJSON
	defaultLogFormat = "text"
	defaultLogLevel  = "warn"
)

// config holds the host settings. It is loaded once per command and passed
// explicitly to everything that needs it.
type config struct {
	GamesDir         string   `koanf:"games-dir"`
	ScoresFile       string   `koanf:"scores-file"`
	ScoresBackend    string   `koanf:"scores-backend"`
	Player           string   `koanf:"player"`
	LogFormat        string   `koanf:"log-format"`
	LogLevel         string   `koanf:"log-level"`
	LeaderboardLimit int      `koanf:"leaderboard-limit"`
	Exclude          []string `koanf:"exclude"`
	MetricsFile      string   `koanf:"metrics-file"`
}

// Validate checks that the configuration is valid.
func (cfg *config) Validate() error {
	if cfg.GamesDir == "" {
		return fmt.Errorf("games-dir is required")
	}
	if strings.TrimSpace(cfg.Player) == "" {
		return fmt.Errorf("player is required")
	}
	if cfg.ScoresBackend != backendJSON && cfg.ScoresBackend != backendSQLite {
		return fmt.Errorf("scores-backend must be 'json' or 'sqlite', got %q", cfg.ScoresBackend)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return fmt.Errorf("log-format must be 'json' or 'text', got %q", cfg.LogFormat)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if cfg.LeaderboardLimit < 1 {
		return fmt.Errorf("leaderboard-limit must be at least 1, got %d", cfg.LeaderboardLimit)
	}
	return nil
}

// registerConfigFlags adds the host settings to fs.
func registerConfigFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file path (default: XDG_CONFIG_HOME/arcadehub/config.yaml)")
	fs.String("games-dir", defaultGamesDir, "directory containing game plugins")
	fs.String("scores-file", "", "score file path (default: XDG_DATA_HOME/arcadehub/scores.json)")
	fs.String("scores-backend", defaultBackend, "score storage backend (json or sqlite)")
	fs.String("player", defaultPlayer, "current player name")
	fs.String("log-format", defaultLogFormat, "log format (json or text)")
	fs.String("log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	fs.Int("leaderboard-limit", leaderboard.DisplayLimit, "entries shown on leaderboards")
	fs.StringSlice("exclude", nil, "glob patterns of game directories to skip")
	fs.String("metrics-file", "", "write Prometheus metrics to this file on exit")
}

// configPath returns the --config value or the XDG default.
func configPath(fs *pflag.FlagSet) (string, error) {
	path, err := fs.GetString("config")
	if err != nil {
		return "", err
	}
	if path != "" {
		return path, nil
	}
	return xdg.ConfigFile()
}

// loadConfig layers the YAML config file under explicitly set flags. Flag
// defaults fill keys the file does not set.
func loadConfig(fs *pflag.FlagSet) (*config, error) {
	k := koanf.New(".")

	path, err := configPath(fs)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Load(posflag.Provider(fs, ".", k), nil); err != nil {
		return nil, fmt.Errorf("load flags: %w", err)
	}

	cfg := &config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.ScoresFile == "" {
		cfg.ScoresFile, err = defaultScoresFile(cfg.ScoresBackend)
		if err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultScoresFile(backend string) (string, error) {
	path, err := xdg.ScoresFile()
	if err != nil {
		return "", fmt.Errorf("resolve scores file: %w", err)
	}
	if backend == backendSQLite {
		path = strings.TrimSuffix(path, ".json") + ".db"
	}
	return path, nil
}

// savePlayer writes player into the config file at path, keeping every
// other key the file already holds.
func savePlayer(path, player string) error {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if err := k.Set("player", player); err != nil {
		return fmt.Errorf("set player: %w", err)
	}
	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := score.WriteFileAtomic(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
