package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/ahrav/go-gaucho/internal/domain"
)

// readWindow returns the log length and the requested slice in one atomic
// step so the total always matches the records returned.
//
// KEYS[1] = list key
// ARGV[1] = clamped start (>= 0)
// ARGV[2] = clamped count (> 0).
//
// Lua numbers are doubles and large ones reach LRANGE in exponent form, so
// stop is bounded by the list length before the call.
const readWindow = `
	local total = redis.call('LLEN', KEYS[1])
	local start = tonumber(ARGV[1])
	if start >= total then
		return {total, {}}
	end
	local stop = start + tonumber(ARGV[2]) - 1
	if stop >= total then
		stop = total - 1
	end
	return {total, redis.call('LRANGE', KEYS[1], start, stop)}
`

// redisClient is the subset of the go-redis client the store uses.
type redisClient interface {
	RPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisConfig locates the Redis server holding the logs.
type RedisConfig struct {
	Addr        string `yaml:"addr"`
	PasswordEnv string `yaml:"password_env"`
	Password    string `yaml:"-"` // Sensitive, never serialized.
	DB          int    `yaml:"db"           validate:"gte=0,lte=15"`
	Prefix      string `yaml:"prefix"`
}

// RedisStore keeps each category log in a Redis list named <prefix>:<category>.
// RPUSH makes appends atomic across processes, so several workers may share
// one store.
type RedisStore struct {
	client redisClient
	prefix string
	logger *slog.Logger
}

var _ CategoryStore = (*RedisStore)(nil)

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig, logger *slog.Logger) (*RedisStore, *redis.Client, error) {
	password := cfg.Password
	if password == "" && cfg.PasswordEnv != "" {
		password = os.Getenv(cfg.PasswordEnv)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return newRedisStore(client, cfg.Prefix, logger), client, nil
}

func newRedisStore(client redisClient, prefix string, logger *slog.Logger) *RedisStore {
	if prefix == "" {
		prefix = "gaucho:analyses"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, prefix: prefix, logger: logger.With("component", "redis_store")}
}

func (s *RedisStore) key(c domain.Category) string { return s.prefix + ":" + string(c) }

// Append implements CategoryStore.
func (s *RedisStore) Append(ctx context.Context, category domain.Category, rec domain.AnalysisRecord) (int, error) {
	if err := checkCategory(category); err != nil {
		return 0, err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, fmt.Errorf("encode record: %w", err)
	}
	n, err := s.client.RPush(ctx, s.key(category), data).Result()
	if err != nil {
		return 0, fmt.Errorf("append to %s: %w", category, err)
	}
	return int(n) - 1, nil
}

// Read implements CategoryStore.
func (s *RedisStore) Read(ctx context.Context, category domain.Category, start, count int) (domain.Page, error) {
	if err := checkCategory(category); err != nil {
		return domain.Page{}, err
	}
	if start < 0 {
		start = 0
	}
	if count <= 0 {
		count = domain.DefaultPageSize
	}

	res, err := s.client.Eval(ctx, readWindow, []string{s.key(category)}, start, count).Result()
	if err != nil {
		return domain.Page{}, fmt.Errorf("read %s: %w", category, err)
	}
	total, raw, err := parseWindowResult(res)
	if err != nil {
		return domain.Page{}, fmt.Errorf("read %s: %w", category, err)
	}

	records := make([]domain.AnalysisRecord, 0, len(raw))
	for i, item := range raw {
		var rec domain.AnalysisRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			s.logger.ErrorContext(ctx, "undecodable record", "category", category, "index", start+i, "error", err)
			return domain.Page{}, fmt.Errorf("%w: %s[%d]: %w", ErrCorruptRecord, category, start+i, err)
		}
		records = append(records, rec)
	}

	start, end := domain.Window(total, start, count)
	return domain.NewPage(records, total, start, end), nil
}

// parseWindowResult decodes the {total, {items...}} reply of readWindow.
func parseWindowResult(res any) (int, []string, error) {
	parts, ok := res.([]any)
	if !ok || len(parts) != 2 {
		return 0, nil, fmt.Errorf("unexpected script reply %T", res)
	}
	total, ok := parts[0].(int64)
	if !ok {
		return 0, nil, fmt.Errorf("unexpected length type %T", parts[0])
	}
	items, ok := parts[1].([]any)
	if !ok {
		return 0, nil, fmt.Errorf("unexpected items type %T", parts[1])
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			return 0, nil, fmt.Errorf("unexpected item type %T", it)
		}
		out = append(out, s)
	}
	return int(total), out, nil
}
