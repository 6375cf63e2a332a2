package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/newsrec/core"
)

// RedisConfig 是 Redis 连接与历史列表配置。
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// HistoryPrefix 历史列表 key 前缀，默认 "history"
	HistoryPrefix string

	// HistoryMaxLen 每个用户保留的最大历史条数（LTRIM），<= 0 表示不限制
	HistoryMaxLen int
}

// RedisStore 是 Redis 实现的 Store + HistoryStore。
// 阅读历史存为列表 {prefix}:{userID}，RPUSH 追加，最旧在前。
type RedisStore struct {
	client *redis.Client
	prefix string
	maxLen int
}

var (
	_ core.Store        = (*RedisStore)(nil)
	_ core.HistoryStore = (*RedisStore)(nil)
)

// NewRedisStore 连接 Redis 并 PING 校验。
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.Addr, err)
	}
	return NewRedisStoreWithClient(client, cfg.HistoryPrefix, cfg.HistoryMaxLen), nil
}

// NewRedisStoreWithClient 使用已有的客户端。
func NewRedisStoreWithClient(client *redis.Client, historyPrefix string, historyMaxLen int) *RedisStore {
	if historyPrefix == "" {
		historyPrefix = DefaultHistoryPrefix
	}
	return &RedisStore{client: client, prefix: historyPrefix, maxLen: historyMaxLen}
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte, ttl ...int) error {
	var expiration time.Duration
	if len(ttl) > 0 && ttl[0] > 0 {
		expiration = time.Duration(ttl[0]) * time.Second
	}
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// History 读取用户最近 limit 条阅读历史（最旧在前）。
func (r *RedisStore) History(ctx context.Context, userID string, limit int) ([]string, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	ids, err := r.client.LRange(ctx, historyKey(r.prefix, userID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange history %s: %w", userID, err)
	}
	return ids, nil
}

// AppendHistory 追加阅读记录；设置了 HistoryMaxLen 时在同一事务内裁剪。
func (r *RedisStore) AppendHistory(ctx context.Context, userID string, newsIDs ...string) error {
	if len(newsIDs) == 0 {
		return nil
	}
	key := historyKey(r.prefix, userID)
	values := make([]any, len(newsIDs))
	for i, id := range newsIDs {
		values[i] = id
	}
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, values...)
		if r.maxLen > 0 {
			pipe.LTrim(ctx, key, -int64(r.maxLen), -1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append history %s: %w", userID, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
