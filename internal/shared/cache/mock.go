package cache

import "context"

// NoOpCache 空操作缓存实现（未配置 Redis 或测试时使用）
type NoOpCache struct{}

// NewNoOpCache 创建 NoOpCache 实例
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetList(ctx context.Context) ([]byte, bool) { return nil, false }
func (c *NoOpCache) SetList(ctx context.Context, data []byte)   {}
func (c *NoOpCache) Invalidate(ctx context.Context)             {}
func (c *NoOpCache) Close() error                               { return nil }

var _ ProposalCache = (*NoOpCache)(nil)
