package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/matzehuels/agentcanvas/pkg/errors"
)

// defaultRedisKey is the key used when RedisConfig.Key is empty.
const defaultRedisKey = "agentcanvas:snapshot"

// RedisConfig configures a Redis-backed snapshot store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisStore persists the snapshot as a single JSON value under one key.
// Suitable for multi-instance deployments where the snapshot must be shared.
type RedisStore struct {
	client *redis.Client
	key    string
	logger *log.Logger
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *log.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	key := cfg.Key
	if key == "" {
		key = defaultRedisKey
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "connect to redis at %s", cfg.Addr)
	}

	return &RedisStore{client: client, key: key, logger: logger}, nil
}

func (s *RedisStore) Save(ctx context.Context, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "marshal snapshot")
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "write snapshot key %s", s.key)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (Snapshot, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, nil
		}
		return Snapshot{}, apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "read snapshot key %s", s.key)
	}

	snap, err := Decode(data, s.logger)
	if err != nil {
		s.logger.Warn("stored snapshot is malformed, starting empty", "key", s.key, "error", err)
		return Snapshot{}, nil
	}
	return snap, nil
}

func (s *RedisStore) Close() error { return s.client.Close() }

var _ Store = (*RedisStore)(nil)
