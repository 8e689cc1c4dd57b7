package preference

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "prefs"

// RedisKV stores a profile's preferences as plain Redis strings under
// prefs:{profile}:{key}. Entries never expire.
type RedisKV struct {
	rdb     *redis.Client
	profile string
}

func (r *RedisKV) key(k string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, r.profile, k)
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.rdb.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// RedisProfiles hands out profile-scoped RedisKVs sharing one client.
type RedisProfiles struct {
	rdb *redis.Client
}

// NewRedisProfiles wraps rdb.
func NewRedisProfiles(rdb *redis.Client) *RedisProfiles {
	return &RedisProfiles{rdb: rdb}
}

func (p *RedisProfiles) ForProfile(profileID string) KV {
	return &RedisKV{rdb: p.rdb, profile: profileID}
}
