// Package proposal 提案领域 - HTTP 处理
//
// 文件组织：
//   - handler.go: Handler 结构、路由注册、公共工具
//   - create.go: POST /proposals — 创建提案
//   - query.go: GET /proposals, GET /proposals/{id} — 查询（带评论数与列表缓存）
//   - action.go: PUT /proposals — 动作分发（upvote / merge）
//   - merge.go: 合并算法
//   - comment.go: 评论的创建与删除
package proposal

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"civic-portal/internal/shared/cache"
	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"
)

// Store 提案领域所需的存储接口
type Store interface {
	storage.ProposalStore
	storage.CommentStore
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// MetricsRecorder 领域指标钩子，由 server 包实现
type MetricsRecorder interface {
	RecordVote()
	RecordMerge(absorbed int)
}

// Handler 提案领域 HTTP 处理器
type Handler struct {
	store   Store
	cache   cache.ProposalCache
	metrics MetricsRecorder
}

// NewHandler 创建提案处理器
func NewHandler(store Store, c cache.ProposalCache) *Handler {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &Handler{store: store, cache: c}
}

// SetMetrics 设置领域指标钩子
func (h *Handler) SetMetrics(m MetricsRecorder) {
	h.metrics = m
}

// RegisterRoutes 注册提案相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/proposals", h.CreateProposal)
	mux.HandleFunc("GET /api/v1/proposals", h.ListProposals)
	mux.HandleFunc("GET /api/v1/proposals/{id}", h.GetProposal)
	mux.HandleFunc("PUT /api/v1/proposals", h.HandleAction)
	mux.HandleFunc("DELETE /api/v1/proposals/{id}", h.DeleteProposal)

	mux.HandleFunc("POST /api/v1/proposals/{id}/comments", h.CreateComment)
	mux.HandleFunc("DELETE /api/v1/comments/{id}", h.DeleteComment)
}

// ============================================================================
// 公共工具
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// proposalIDFromPath 解析路径上的提案 ID
func proposalIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// invalidateListCache 列表缓存失效，任何提案/评论写操作之后调用
func (h *Handler) invalidateListCache(ctx context.Context) {
	h.cache.Invalidate(ctx)
}

// refreshedList 写操作后返回最新列表，与前端的乐观刷新约定一致
func (h *Handler) refreshedList(ctx context.Context) ([]*model.Proposal, error) {
	proposals, err := h.store.ListProposals(ctx)
	if err != nil {
		log.Printf("[proposal] refresh list error: %v", err)
		return nil, err
	}
	return proposals, nil
}
