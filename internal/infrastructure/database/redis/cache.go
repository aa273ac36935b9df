package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/mwinokan/Fragmenstein/internal/config"
	"github.com/mwinokan/Fragmenstein/internal/infrastructure/monitoring/logging"
	"github.com/mwinokan/Fragmenstein/pkg/errors"
	ptypes "github.com/mwinokan/Fragmenstein/pkg/types/placement"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeNotFound, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// ResultCache stores placement summaries keyed by a content hash of the
// placement inputs.
type ResultCache interface {
	Get(ctx context.Context, key string) (*ptypes.Summary, error)
	Set(ctx context.Context, key string, summary *ptypes.Summary, ttl time.Duration) error
	// GetOrCompute returns the cached summary, or runs compute once per key
	// across concurrent callers and stores its result.  hit reports whether
	// the value came from the cache.
	GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (*ptypes.Summary, error)) (summary *ptypes.Summary, hit bool, err error)
	Delete(ctx context.Context, keys ...string) error
	// Purge removes every entry under the cache prefix.
	Purge(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
}

type Serializer interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonSerializer struct{}

func (s *jsonSerializer) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (s *jsonSerializer) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

type redisCache struct {
	client       *Client
	logger       logging.Logger
	prefix       string
	defaultTTL   time.Duration
	serializer   Serializer
	singleflight singleflight.Group
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

func WithSerializer(s Serializer) CacheOption {
	return func(c *redisCache) { c.serializer = s }
}

// NewResultCache builds a cache on client.  Prefix and TTL default to the
// configured cache values.
func NewResultCache(client *Client, log logging.Logger, opts ...CacheOption) ResultCache {
	c := &redisCache{
		client:     client,
		logger:     logging.OrNop(log).Named("cache"),
		prefix:     config.DefaultCacheKeyPrefix,
		defaultTTL: config.DefaultCacheTTL,
		serializer: &jsonSerializer{},
	}
	if client != nil {
		if client.cfg.KeyPrefix != "" {
			c.prefix = client.cfg.KeyPrefix
		}
		if client.cfg.TTL > 0 {
			c.defaultTTL = client.cfg.TTL
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key hashes the placement inputs into a cache key.  Parts are separated by
// a NUL byte so that adjacent parts cannot run together.
func Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return "placement:" + hex.EncodeToString(h.Sum(nil))
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl == 0 {
		return 0
	}
	// +/- 10%
	jitter := float64(ttl) * 0.1 * (rand.Float64()*2 - 1)
	return ttl + time.Duration(jitter)
}

func (c *redisCache) Get(ctx context.Context, key string) (*ptypes.Summary, error) {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	var s ptypes.Summary
	if err := c.serializer.Unmarshal(data, &s); err != nil {
		return nil, ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	return &s, nil
}

func (c *redisCache) Set(ctx context.Context, key string, summary *ptypes.Summary, ttl time.Duration) error {
	if summary == nil {
		return errors.InvalidParam("nil summary")
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := c.serializer.Marshal(summary)
	if err != nil {
		return ErrSerializationFailed.WithCause(err).WithDetail(key)
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to write to cache")
	}
	return nil
}

func (c *redisCache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) (*ptypes.Summary, error)) (*ptypes.Summary, bool, error) {
	s, err := c.Get(ctx, key)
	if err == nil {
		return s, true, nil
	}
	if !errors.IsCode(err, errors.ErrCodeNotFound) {
		c.logger.Warn("cache read failed, computing", logging.String("key", key), logging.Err(err))
	}

	val, err, _ := c.singleflight.Do(key, func() (interface{}, error) {
		v, loadErr := compute(ctx)
		if loadErr != nil {
			return v, loadErr
		}
		if setErr := c.Set(ctx, key, v, 0); setErr != nil {
			c.logger.Warn("Failed to store result in cache", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	summary, _ := val.(*ptypes.Summary)
	return summary, false, err
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	fullKeys := make([]string, len(keys))
	for i, k := range keys {
		fullKeys[i] = c.fullKey(k)
	}
	return c.client.Del(ctx, fullKeys...).Err()
}

func (c *redisCache) Purge(ctx context.Context) (int64, error) {
	var deleted int64
	var cursor uint64
	match := c.prefix + "*"
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "scan failed")
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, errors.Wrap(err, errors.ErrCodeCacheError, "delete failed")
			}
			deleted += int64(len(keys))
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	c.logger.Info("cache purged", logging.Int64("deleted", deleted))
	return deleted, nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

//Personal.AI order the ending
