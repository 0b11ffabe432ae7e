// Prometheus 指标导出
package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civic-portal/internal/shared/storage"
)

// Metrics 包含所有 API Server 指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// 提案领域指标
	ProposalsTotal *prometheus.GaugeVec // 按状态
	VotesTotal     prometheus.Gauge     // 全站票数（定期采样）
	VoteActions    prometheus.Counter   // 点赞请求数
	MergesTotal    prometheus.Counter   // 合并操作数
	MergedAway     prometheus.Counter   // 被合并吸收的提案数
	CommentsTotal  prometheus.Gauge     // 评论总数（定期采样）
}

// NewMetrics 创建指标实例
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		ProposalsTotal: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "proposals_total",
				Help:      "Total proposals by status",
			},
			[]string{"status"},
		),
		VotesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "votes_total",
				Help:      "Sum of votes across all proposals",
			},
		),
		VoteActions: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vote_actions_total",
				Help:      "Total upvote actions handled",
			},
		),
		MergesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merges_total",
				Help:      "Total proposal merge operations",
			},
		),
		MergedAway: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "merged_away_total",
				Help:      "Total proposals absorbed by merges",
			},
		),
		CommentsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "comments_total",
				Help:      "Total comments",
			},
		),
	}
}

// RecordVote 记录一次点赞动作
func (m *Metrics) RecordVote() {
	m.VoteActions.Inc()
}

// RecordMerge 记录一次合并及其吸收的提案数
func (m *Metrics) RecordMerge(absorbed int) {
	m.MergesTotal.Inc()
	m.MergedAway.Add(float64(absorbed))
}

// StartCollector 定期从存储采样领域规模指标（提案数、票数、评论数）
// ctx 取消后退出
func (m *Metrics) StartCollector(ctx context.Context, store storage.ReportStore, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			m.collect(ctx, store)
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (m *Metrics) collect(ctx context.Context, store storage.ReportStore) {
	if byStatus, err := store.CountByStatus(ctx); err == nil {
		for status, count := range byStatus {
			m.ProposalsTotal.WithLabelValues(string(status)).Set(float64(count))
		}
	}
	if votes, err := store.TotalVotes(ctx); err == nil {
		m.VotesTotal.Set(float64(votes))
	}
	if comments, err := store.CountComments(ctx); err == nil {
		m.CommentsTotal.Set(float64(comments))
	}
}

// MetricsMiddleware 创建 HTTP 指标中间件
func (m *Metrics) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		// 包装 ResponseWriter 以捕获状态码
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := normalizePath(r.URL.Path)
		status := strconv.Itoa(wrapped.statusCode)

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// responseWriter 包装 http.ResponseWriter 以捕获状态码
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// normalizePath 规范化路径，将 ID 替换为占位符，避免高基数
func normalizePath(path string) string {
	switch {
	case path == "/api/v1/proposals/report" || path == "/api/v1/proposals/report/export":
		return path
	case strings.HasPrefix(path, "/api/v1/proposals/") && strings.HasSuffix(path, "/comments"):
		return "/api/v1/proposals/{id}/comments"
	case strings.HasPrefix(path, "/api/v1/proposals/") && len(path) > len("/api/v1/proposals/"):
		return "/api/v1/proposals/{id}"
	case strings.HasPrefix(path, "/api/v1/comments/") && len(path) > len("/api/v1/comments/"):
		return "/api/v1/comments/{id}"
	default:
		return path
	}
}

// MetricsHandler 返回 Prometheus HTTP Handler
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
