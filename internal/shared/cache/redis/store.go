// Package redis Redis 缓存实现
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"civic-portal/internal/shared/cache"
)

const listKey = "civic:proposals:list"

// Store Redis 提案列表缓存
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

var _ cache.ProposalCache = (*Store)(nil)

// NewStoreFromURL 从 URL 创建 Redis 缓存实例
func NewStoreFromURL(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Printf("[Redis/Cache] Connected to %s", opts.Addr)
	return &Store{client: client, ttl: cache.DefaultListTTL}, nil
}

// NewStoreFromClient 从现有 Redis 客户端创建缓存实例（测试用）
func NewStoreFromClient(client *redis.Client) *Store {
	return &Store{client: client, ttl: cache.DefaultListTTL}
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) GetList(ctx context.Context) ([]byte, bool) {
	data, err := s.client.Get(ctx, listKey).Bytes()
	if err != nil {
		// 缓存未命中或 Redis 故障都降级为 miss，不影响主路径
		return nil, false
	}
	return data, true
}

func (s *Store) SetList(ctx context.Context, data []byte) {
	if err := s.client.Set(ctx, listKey, data, s.ttl).Err(); err != nil {
		log.Printf("[Redis/Cache] set list failed: %v", err)
	}
}

func (s *Store) Invalidate(ctx context.Context) {
	if err := s.client.Del(ctx, listKey).Err(); err != nil {
		log.Printf("[Redis/Cache] invalidate failed: %v", err)
	}
}
