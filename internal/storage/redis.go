package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/calluna/rulebench/internal/rule"
)

// Redis key scheme: one JSON-serialized rule per "rule:<id>" key, plus a
// "rules:index" set of live ids for enumeration.
const (
	redisKeyPrefix = "rule:"
	redisIndexKey  = "rules:index"
)

// defaultRedisDialTimeout bounds the construction-time ping so a dead
// endpoint fails over promptly instead of blocking the benchmark.
const defaultRedisDialTimeout = 2 * time.Second

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	// Addr is the server endpoint, e.g. "localhost:6379".
	Addr string

	// DB is the redis logical database number.
	DB int

	// Fallback enables transparent substitution of a Memory backend when
	// the server is unreachable at construction. When false, construction
	// fails with *UnavailableError instead.
	Fallback bool

	// DialTimeout bounds the construction-time connection attempt.
	// Zero means defaultRedisDialTimeout.
	DialTimeout time.Duration
}

// Redis stores rules in a remote key/value cache.
//
// The connection is attempted eagerly at construction - the one potentially
// blocking I/O call outside the measured benchmark phases. If the ping fails
// and fallback is enabled, the backend substitutes a Memory instance and
// reports Degraded() == true so the harness can label results accurately
// instead of crediting network behavior to a server that never ran.
//
// Enumeration order follows the index set's native iteration and is not
// stable across calls. That is a deliberate weaker guarantee than the other
// backends; callers needing stable order must sort themselves.
type Redis struct {
	client   *redis.Client
	fallback *Memory // non-nil only in degraded mode
	addr     string
}

// NewRedis connects to the server and verifies it with a ping.
// See RedisOptions.Fallback for behavior when the server is unreachable.
func NewRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	timeout := opts.DialTimeout
	if timeout == 0 {
		timeout = defaultRedisDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		DB:          opts.DB,
		DialTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		if !opts.Fallback {
			return nil, &UnavailableError{Backend: "redis", Addr: opts.Addr, Err: err}
		}
		return &Redis{fallback: NewMemory(), addr: opts.Addr}, nil
	}

	return &Redis{client: client, addr: opts.Addr}, nil
}

// Degraded reports whether the backend is operating as Memory because the
// server was unreachable at construction.
func (r *Redis) Degraded() bool { return r.fallback != nil }

// AddRule implements Backend.
func (r *Redis) AddRule(ctx context.Context, ru rule.Rule) (string, error) {
	ru, err := prepare(ru)
	if err != nil {
		return "", err
	}
	if r.fallback != nil {
		// prepare already assigned the id; the fallback keeps it.
		return r.fallback.AddRule(ctx, ru)
	}

	data, err := json.Marshal(ru)
	if err != nil {
		return "", fmt.Errorf("marshal rule: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, redisKeyPrefix+ru.ID, data, 0)
	pipe.SAdd(ctx, redisIndexKey, ru.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("add rule: %w", err)
	}
	return ru.ID, nil
}

// GetRule implements Backend.
func (r *Redis) GetRule(ctx context.Context, id string) (*rule.Rule, error) {
	if r.fallback != nil {
		return r.fallback.GetRule(ctx, id)
	}

	data, err := r.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}

	var ru rule.Rule
	if err := json.Unmarshal(data, &ru); err != nil {
		return nil, fmt.Errorf("unmarshal rule %s: %w", id, err)
	}
	return &ru, nil
}

// GetAllRules implements Backend. Order follows the server's set iteration
// and is not guaranteed stable.
func (r *Redis) GetAllRules(ctx context.Context) ([]rule.Rule, error) {
	if r.fallback != nil {
		return r.fallback.GetAllRules(ctx)
	}

	ids, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list rule ids: %w", err)
	}
	if len(ids) == 0 {
		return []rule.Rule{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = redisKeyPrefix + id
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch rules: %w", err)
	}

	rules := make([]rule.Rule, 0, len(values))
	for i, v := range values {
		// A nil entry means the key vanished between SMembers and MGet;
		// skip it rather than failing the whole enumeration.
		s, ok := v.(string)
		if !ok {
			continue
		}
		var ru rule.Rule
		if err := json.Unmarshal([]byte(s), &ru); err != nil {
			return nil, fmt.Errorf("unmarshal rule %s: %w", ids[i], err)
		}
		rules = append(rules, ru)
	}
	return rules, nil
}

// DeleteRule implements Backend.
func (r *Redis) DeleteRule(ctx context.Context, id string) (bool, error) {
	if r.fallback != nil {
		return r.fallback.DeleteRule(ctx, id)
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, redisKeyPrefix+id)
	pipe.SRem(ctx, redisIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("delete rule: %w", err)
	}
	return del.Val() > 0, nil
}

// ClearAll implements Backend.
func (r *Redis) ClearAll(ctx context.Context) error {
	if r.fallback != nil {
		return r.fallback.ClearAll(ctx)
	}

	ids, err := r.client.SMembers(ctx, redisIndexKey).Result()
	if err != nil {
		return fmt.Errorf("list rule ids: %w", err)
	}

	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, redisKeyPrefix+id)
	}
	keys = append(keys, redisIndexKey)

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("clear rules: %w", err)
	}
	return nil
}

// Count implements Backend.
func (r *Redis) Count(ctx context.Context) (int, error) {
	if r.fallback != nil {
		return r.fallback.Count(ctx)
	}

	n, err := r.client.SCard(ctx, redisIndexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count rules: %w", err)
	}
	return int(n), nil
}

// Name implements Backend. Degraded instances report as such so benchmark
// results never silently credit the server.
func (r *Redis) Name() string {
	if r.fallback != nil {
		return "redis (fallback: memory)"
	}
	return "redis"
}

// Close implements Backend.
func (r *Redis) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
