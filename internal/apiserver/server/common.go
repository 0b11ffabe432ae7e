// Package server 路由配置与核心基础设施
//
// 文件组织：
//   - common.go: Handler 定义、健康检查、通用工具
//   - handler.go: 路由注册与中间件链
//   - metrics.go: Prometheus 指标
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"civic-portal/internal/apiserver/auth"
	"civic-portal/internal/shared/cache"
	"civic-portal/internal/shared/objstore"
	"civic-portal/internal/shared/storage"
	"civic-portal/pkg/logging"
)

// Handler API 处理器
//
// Handler 是所有 HTTP API 的入口，负责：
//   - 路由请求到对应的领域包
//   - 组装中间件链（指标 / 会话门禁 / 限速 / CORS）
//   - 持有存储、缓存、对象存储等共享依赖
type Handler struct {
	store      storage.Store       // 持久化存储（mongo 或 SQL）
	listCache  cache.ProposalCache // 提案列表缓存（Redis 或 NoOp）
	objClient  *objstore.Client    // 对象存储客户端，可为 nil
	authConfig auth.Config
	metrics    *Metrics
	logger     *logging.Logger

	// loginRatePerMin 认证端点每 IP 每分钟限速，<=0 关闭
	loginRatePerMin int
}

// NewHandler 创建 Handler 实例
func NewHandler(store storage.Store, listCache cache.ProposalCache, authCfg auth.Config) *Handler {
	if listCache == nil {
		listCache = cache.NewNoOpCache()
	}
	return &Handler{
		store:      store,
		listCache:  listCache,
		authConfig: authCfg,
		metrics:    NewMetrics("civic"),
		logger:     logging.Default("api-server"),
	}
}

// loggingMiddleware 结构化访问日志；健康检查和指标拉取不记
func (h *Handler) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		h.logger.HTTPRequestLog(r.Method, r.URL.Path, wrapped.statusCode, time.Since(start), r.RemoteAddr)
	})
}

// SetMinIOClient 设置对象存储客户端（报表导出用）
func (h *Handler) SetMinIOClient(mc *objstore.Client) {
	h.objClient = mc
}

// SetLoginRateLimit 设置认证端点限速
func (h *Handler) SetLoginRateLimit(perMinute int) {
	h.loginRatePerMin = perMinute
}

// GetMetrics 返回指标实例
func (h *Handler) GetMetrics() *Metrics {
	return h.metrics
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Health 健康检查接口
//
// 路由: GET /health
// 用于负载均衡器和监控系统检查服务状态。
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
