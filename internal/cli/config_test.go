package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(t *testing.T, cfg Config)
	}{
		{
			name:  "Empty",
			input: "",
			check: func(t *testing.T, cfg Config) {
				def := DefaultConfig()
				if cfg.Server.Addr != def.Server.Addr {
					t.Errorf("addr = %q, want default %q", cfg.Server.Addr, def.Server.Addr)
				}
				if cfg.Snapshot.Backend != "file" {
					t.Errorf("backend = %q, want file", cfg.Snapshot.Backend)
				}
				if cfg.Layout.Spacing != def.Layout.Spacing {
					t.Errorf("spacing = %v, want default", cfg.Layout.Spacing)
				}
			},
		},
		{
			name: "Full",
			input: `
[server]
addr = "0.0.0.0:9000"

[snapshot]
backend = "redis"
redis_addr = "localhost:6379"
redis_db = 2

[layout]
spacing = 150.0
`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Server.Addr != "0.0.0.0:9000" {
					t.Errorf("addr = %q", cfg.Server.Addr)
				}
				if cfg.Snapshot.Backend != "redis" || cfg.Snapshot.RedisAddr != "localhost:6379" || cfg.Snapshot.RedisDB != 2 {
					t.Errorf("snapshot = %+v", cfg.Snapshot)
				}
				if cfg.Layout.Spacing != 150.0 {
					t.Errorf("spacing = %v", cfg.Layout.Spacing)
				}
			},
		},
		{
			name: "PartialBackfilled",
			input: `
[server]
addr = "127.0.0.1:7777"
`,
			check: func(t *testing.T, cfg Config) {
				if cfg.Server.Addr != "127.0.0.1:7777" {
					t.Errorf("addr = %q", cfg.Server.Addr)
				}
				// Missing sections come back as defaults.
				if cfg.Snapshot.Backend != "file" || cfg.Snapshot.Path == "" {
					t.Errorf("snapshot not backfilled: %+v", cfg.Snapshot)
				}
				if cfg.Layout.Spacing <= 0 {
					t.Errorf("spacing not backfilled: %v", cfg.Layout.Spacing)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.input), 0644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			cfg, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Run("ExplicitMissingFile", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("explicitly named missing config accepted")
		}
	})

	t.Run("Malformed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[server\naddr ="), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("malformed config accepted")
		}
	})
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	if _, err := c.openStore(context.Background(),SnapshotConfig{Backend: "dynamo"}); err == nil {
		t.Error("unknown backend accepted")
	}
}
