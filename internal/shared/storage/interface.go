// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/（文档库，主驱动）、repository/（SQL）
//   - 初始化时通过依赖注入传入实现
package storage

import (
	"context"

	"civic-portal/internal/shared/model"
)

// UserStore 用户存储
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	// GetUserByEmail 按邮箱精确查找，不存在时返回 (nil, nil)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUserByID 不存在时同样返回 (nil, nil)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// ProposalStore 提案存储
type ProposalStore interface {
	CreateProposal(ctx context.Context, p *model.Proposal) error
	// GetProposal 不存在时返回 ErrNotFound
	GetProposal(ctx context.Context, id int64) (*model.Proposal, error)
	// ListProposals 返回全部提案（created_at 倒序），CommentCount 由
	// 单次聚合查询附带（Mongo $lookup / SQL LEFT JOIN），禁止 N+1
	ListProposals(ctx context.Context) ([]*model.Proposal, error)
	ListProposalsByIDs(ctx context.Context, ids []int64) ([]*model.Proposal, error)
	// IncrementVotes 给提案加一票；id 不存在时静默忽略（不报错）
	IncrementVotes(ctx context.Context, id int64) error
	// ConsolidateProposals 合并的持久化步骤：主提案更新
	// votes/status/title，败者提案及其评论删除。
	// SQL 驱动在单个事务内完成；Mongo 驱动顺序执行（见包文档）。
	ConsolidateProposals(ctx context.Context, master *model.Proposal, loserIDs []int64) error
	// DeleteProposalCascade 删除提案并级联删除其全部评论
	DeleteProposalCascade(ctx context.Context, id int64) error
}

// CommentStore 评论存储
type CommentStore interface {
	CreateComment(ctx context.Context, c *model.Comment) error
	// GetComment 不存在时返回 ErrNotFound
	GetComment(ctx context.Context, id string) (*model.Comment, error)
	// ListComments 返回指定提案下的评论（created_at 倒序）
	ListComments(ctx context.Context, proposalID int64) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// ReportStore 聚合报表查询
type ReportStore interface {
	// CountByCategory 各类别提案数
	CountByCategory(ctx context.Context) (map[model.ProposalCategory]int, error)
	// CountByStatus 各状态提案数
	CountByStatus(ctx context.Context) (map[model.ProposalStatus]int, error)
	// TotalVotes 全部提案票数之和
	TotalVotes(ctx context.Context) (int, error)
	// CountComments 评论总数
	CountComments(ctx context.Context) (int, error)
}

// Store 持久化存储层完整接口
type Store interface {
	UserStore
	ProposalStore
	CommentStore
	ReportStore
	Close() error
}
