package server

import (
	"net/http"

	"civic-portal/internal/apiserver/auth"
	"civic-portal/internal/apiserver/proposal"
	"civic-portal/internal/apiserver/report"
)

// Router 返回配置好的 HTTP 路由
//
// 路由规则：
//
// 健康检查:
//   - GET /health - 服务健康检查
//
// 提案 (Proposal):
//   - GET    /api/v1/proposals                  - 列出提案（含评论数）
//   - POST   /api/v1/proposals                  - 创建提案
//   - GET    /api/v1/proposals/{id}             - 提案详情（含评论）
//   - PUT    /api/v1/proposals                  - 动作分发（upvote / merge）
//   - DELETE /api/v1/proposals/{id}             - 删除提案（评论级联）
//
// 评论 (Comment):
//   - POST   /api/v1/proposals/{id}/comments    - 发表评论
//   - DELETE /api/v1/comments/{id}              - 删除评论
//
// 报表 (Report):
//   - GET    /api/v1/proposals/report           - 汇总报表
//   - POST   /api/v1/proposals/report/export    - 导出报表到对象存储
//
// 认证 (Auth):
//   - POST   /api/v1/auth/signup                - 注册
//   - POST   /api/v1/auth/login                 - 登录（写会话 Cookie）
//   - POST   /api/v1/auth/logout                - 退出
//   - GET    /api/v1/auth/me                    - 当前用户
//
// 中间件链（从外到内）：CORS → 限速 → 指标 → 会话门禁 → 业务路由
func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	// 健康检查
	mux.HandleFunc("GET /health", h.Health)

	// Prometheus 指标端点
	mux.Handle("GET /metrics", MetricsHandler())

	// 提案 / 评论接口
	proposalHandler := proposal.NewHandler(h.store, h.listCache)
	proposalHandler.SetMetrics(h.metrics)
	proposalHandler.RegisterRoutes(mux)

	// 报表接口
	reportHandler := report.NewHandler(h.store)
	if h.objClient != nil {
		reportHandler.SetMinIOClient(h.objClient)
	}
	reportHandler.RegisterRoutes(mux)

	// Auth 路由
	authHandler := auth.NewHandler(h.store, h.authConfig)
	authHandler.RegisterRoutes(mux)

	// 会话门禁：受保护前缀下的写操作必须带有效 Cookie
	gated := auth.SessionGate(h.authConfig)(mux)

	// 指标中间件
	metered := h.metrics.MetricsMiddleware(gated)

	// 认证端点限速
	limited := auth.LoginRateLimit(h.loginRatePerMin)(metered)

	// 访问日志
	logged := h.loggingMiddleware(limited)

	// CORS
	return corsMiddleware(logged)
}

// corsMiddleware 添加 CORS 头支持跨域请求
// Cookie 会话需要 credentials，Allow-Origin 不能用 *，按请求回显
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
