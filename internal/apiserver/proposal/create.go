package proposal

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"civic-portal/internal/apiserver/auth"
	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"
)

type createProposalRequest struct {
	Title    string `json:"title"`
	Category string `json:"category"`
	Desc     string `json:"desc"`
}

// CreateProposal 创建提案
// 作者始终取自会话，客户端提交的作者字段一律忽略
func (h *Handler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "your session has expired")
		return
	}

	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" || req.Desc == "" {
		writeError(w, http.StatusBadRequest, "title and desc are required")
		return
	}
	if !model.ValidCategory(model.ProposalCategory(req.Category)) {
		writeError(w, http.StatusBadRequest, "invalid category")
		return
	}

	now := time.Now()
	p := &model.Proposal{
		ID:        now.UnixMilli(),
		Title:     req.Title,
		Category:  model.ProposalCategory(req.Category),
		Desc:      req.Desc,
		Votes:     1,
		Status:    model.StatusNew,
		AuthorID:  user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 毫秒时间戳做主键，同一毫秒内并发创建会撞：递增重试几次
	for attempt := 0; ; attempt++ {
		err := h.store.CreateProposal(r.Context(), p)
		if err == nil {
			break
		}
		if errors.Is(err, storage.ErrDuplicate) && attempt < 3 {
			p.ID++
			continue
		}
		log.Printf("[proposal.create] CreateProposal error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create proposal")
		return
	}

	h.invalidateListCache(r.Context())
	log.Printf("[proposal] Created: %d %q by %s", p.ID, p.Title, user.ID)
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "proposal": p})
}
