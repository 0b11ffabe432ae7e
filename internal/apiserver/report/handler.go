// Package report 提案汇总报表与导出
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/objstore"
	"civic-portal/internal/shared/storage"
)

// Handler 报表 HTTP 处理器
type Handler struct {
	store storage.ReportStore
	mc    *objstore.Client // 可为 nil，导出接口返回 503
}

// NewHandler 创建报表处理器
func NewHandler(store storage.ReportStore) *Handler {
	return &Handler{store: store}
}

// SetMinIOClient 设置对象存储客户端
func (h *Handler) SetMinIOClient(mc *objstore.Client) {
	h.mc = mc
}

// RegisterRoutes 注册报表相关路由
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/proposals/report", h.GetReport)
	mux.HandleFunc("POST /api/v1/proposals/report/export", h.ExportReport)
}

// Report 汇总报表
type Report struct {
	GeneratedAt time.Time                      `json:"generated_at"`
	ByCategory  map[model.ProposalCategory]int `json:"by_category"`
	ByStatus    map[model.ProposalStatus]int   `json:"by_status"`
	TotalVotes  int                            `json:"total_votes"`
	Comments    int                            `json:"comments"`
}

func (h *Handler) buildReport(ctx context.Context) (*Report, error) {
	byCategory, err := h.store.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	byStatus, err := h.store.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	votes, err := h.store.TotalVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("total votes: %w", err)
	}
	comments, err := h.store.CountComments(ctx)
	if err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}
	return &Report{
		GeneratedAt: time.Now().UTC(),
		ByCategory:  byCategory,
		ByStatus:    byStatus,
		TotalVotes:  votes,
		Comments:    comments,
	}, nil
}

// GetReport 返回当前汇总报表
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.buildReport(r.Context())
	if err != nil {
		log.Printf("[report] build report error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ExportReport 生成报表快照上传到对象存储，返回限时下载链接
func (h *Handler) ExportReport(w http.ResponseWriter, r *http.Request) {
	if h.mc == nil {
		writeError(w, http.StatusServiceUnavailable, "object storage is not configured")
		return
	}

	report, err := h.buildReport(r.Context())
	if err != nil {
		log.Printf("[report.export] build report error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	key := fmt.Sprintf("reports/proposals-%s.json", report.GeneratedAt.Format("20060102-150405"))
	if err := h.mc.PutJSON(r.Context(), key, data); err != nil {
		log.Printf("[report.export] PutJSON error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to export report")
		return
	}

	url, err := h.mc.PresignedGet(r.Context(), key)
	if err != nil {
		log.Printf("[report.export] PresignedGet error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to sign download url")
		return
	}

	log.Printf("[report] Exported: %s", key)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"key":     key,
		"url":     url,
	})
}

// ============================================================================
// 工具函数
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
