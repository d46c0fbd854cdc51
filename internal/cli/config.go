package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/agentcanvas/pkg/canvas"
	"github.com/matzehuels/agentcanvas/pkg/snapshot"
)

// =============================================================================
// Configuration
// =============================================================================

// Config is the TOML configuration for the serve command.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Snapshot SnapshotConfig `toml:"snapshot"`
	Layout   LayoutConfig   `toml:"layout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// SnapshotConfig selects and configures the persistence backend.
type SnapshotConfig struct {
	Backend   string `toml:"backend"` // file (default), redis, mongo
	Path      string `toml:"path"`
	RedisAddr string `toml:"redis_addr"`
	RedisDB   int    `toml:"redis_db"`
	MongoURI  string `toml:"mongo_uri"`
	MongoDB   string `toml:"mongo_db"`
}

// LayoutConfig holds layout defaults.
type LayoutConfig struct {
	Spacing float64 `toml:"spacing"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Server:   ServerConfig{Addr: "127.0.0.1:8640"},
		Snapshot: SnapshotConfig{Backend: "file", Path: defaultSnapshotPath()},
		Layout:   LayoutConfig{Spacing: canvas.DefaultSpacing},
	}
}

// LoadConfig reads the TOML config at path, filling every missing field with
// its default. An empty path means the default location; a missing file at
// the default location is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyConfigDefaults(&cfg)
	return cfg, nil
}

// applyConfigDefaults backfills zero values left by a partial config file.
func applyConfigDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = def.Server.Addr
	}
	if cfg.Snapshot.Backend == "" {
		cfg.Snapshot.Backend = def.Snapshot.Backend
	}
	if cfg.Snapshot.Path == "" {
		cfg.Snapshot.Path = def.Snapshot.Path
	}
	if cfg.Layout.Spacing <= 0 {
		cfg.Layout.Spacing = def.Layout.Spacing
	}
}

// openStore builds the snapshot store selected by the config.
func (c *CLI) openStore(ctx context.Context, cfg SnapshotConfig) (snapshot.Store, error) {
	switch cfg.Backend {
	case "file":
		return snapshot.NewFileStore(cfg.Path, c.Logger)
	case "redis":
		return snapshot.NewRedisStore(ctx, snapshot.RedisConfig{
			Addr: cfg.RedisAddr,
			DB:   cfg.RedisDB,
		}, c.Logger)
	case "mongo":
		return snapshot.NewMongoStore(ctx, snapshot.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDB,
		}, c.Logger)
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q (must be file, redis, or mongo)", cfg.Backend)
	}
}
