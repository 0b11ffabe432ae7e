// Package cache 定义提案列表缓存抽象接口
//
// 列表接口是全站最热的读路径（匿名可访问、首页轮询），
// 聚合查询结果以 JSON 原文缓存，任何提案/评论变更后整体失效。
// 未配置 Redis 时使用 NoOpCache，调用方只依赖接口。
package cache

import (
	"context"
	"time"
)

// DefaultListTTL 列表缓存默认过期时间
// 短 TTL 兜底：即使失效通知丢失，陈旧窗口也有限
const DefaultListTTL = 30 * time.Second

// ProposalCache 提案列表缓存
type ProposalCache interface {
	// GetList 返回缓存的列表响应 JSON；未命中时 ok=false
	GetList(ctx context.Context) (data []byte, ok bool)
	// SetList 写入列表响应 JSON
	SetList(ctx context.Context, data []byte)
	// Invalidate 使列表缓存失效（任何提案/评论写操作后调用）
	Invalidate(ctx context.Context)
	Close() error
}
