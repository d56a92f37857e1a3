package backends

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/CheerlessCloud/veendor/internal/ports"
	"github.com/CheerlessCloud/veendor/internal/shared"
	"github.com/CheerlessCloud/veendor/internal/types"
)

// RedisBackend keeps bundle archives as values in a redis instance.
// Push uses SETNX so two racing writers resolve without a
// read-modify-write window.
type RedisBackend struct {
	alias   string
	archive ports.Archive
	opts    redisOptions
	client  *redis.Client
}

type redisOptions struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`

	// TTLHours expires bundles; zero keeps them forever.
	TTLHours int `yaml:"ttlHours"`

	// Ping probes the server during option validation.
	Ping bool `yaml:"ping"`
}

func NewRedisBackend(entry types.BackendConfig, archive ports.Archive) (*RedisBackend, error) {
	backend := &RedisBackend{alias: entry.Alias, archive: archive}
	if err := decodeOptions(entry, &backend.opts); err != nil {
		return nil, err
	}
	return backend, nil
}

func (b *RedisBackend) ValidateOptions(ctx context.Context) error {
	if b.opts.Addr == "" {
		return types.ErrInvalidOptions(b.alias, "addr is required")
	}
	if b.opts.TTLHours < 0 {
		return types.ErrInvalidOptions(b.alias, "ttlHours must not be negative")
	}
	if b.opts.KeyPrefix == "" {
		b.opts.KeyPrefix = "bundles"
	}
	b.client = redis.NewClient(&redis.Options{
		Addr:     b.opts.Addr,
		Password: b.opts.Password,
		DB:       b.opts.DB,
	})
	if b.opts.Ping {
		if err := b.client.Ping(ctx).Err(); err != nil {
			return types.ErrInvalidOptions(b.alias, "redis unreachable: "+err.Error())
		}
	}
	return nil
}

func (b *RedisBackend) Pull(ctx context.Context, hash string, cacheDir string) error {
	data, err := b.client.Get(ctx, b.key(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return types.ErrBundleNotFound(b.alias, hash)
	}
	if err != nil {
		return types.ErrBackend(b.alias, "failed to fetch bundle", err)
	}
	staging := filepath.Join(cacheDir, shared.BundleFileName(hash))
	if err := os.WriteFile(staging, data, 0644); err != nil {
		return types.ErrBackend(b.alias, "failed to stage bundle", err)
	}
	if err := b.archive.Extract(ctx, staging, cacheDir); err != nil {
		return types.ErrBackend(b.alias, "failed to extract bundle", err)
	}
	return nil
}

func (b *RedisBackend) Push(ctx context.Context, hash string, projectDir string, cacheDir string) error {
	staging := filepath.Join(cacheDir, shared.BundleFileName(hash))
	if err := b.archive.Create(ctx, staging, projectDir); err != nil {
		return types.ErrBackend(b.alias, "failed to archive bundle", err)
	}
	data, err := os.ReadFile(staging)
	if err != nil {
		return types.ErrBackend(b.alias, "failed to read staged bundle", err)
	}
	stored, err := b.client.SetNX(ctx, b.key(hash), data, time.Duration(b.opts.TTLHours)*time.Hour).Result()
	if err != nil {
		return types.ErrBackend(b.alias, "failed to store bundle", err)
	}
	if !stored {
		return types.ErrBundleAlreadyExists(b.alias, hash)
	}
	return nil
}

func (b *RedisBackend) key(hash string) string {
	return "veendor:" + b.opts.KeyPrefix + ":" + hash
}

var _ ports.Backend = (*RedisBackend)(nil)
