package proposal

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"
)

type listResponse struct {
	Proposals []*model.Proposal `json:"proposals"`
}

type detailResponse struct {
	Proposal *model.Proposal  `json:"proposal"`
	Comments []*model.Comment `json:"comments"`
}

// ListProposals 提案列表（含评论数，按创建时间倒序）
// 全站最热的读路径，响应 JSON 整体走缓存
func (h *Handler) ListProposals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if data, ok := h.cache.GetList(ctx); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}

	proposals, err := h.store.ListProposals(ctx)
	if err != nil {
		log.Printf("[proposal.list] ListProposals error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list proposals")
		return
	}

	body, err := json.Marshal(listResponse{Proposals: proposals})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	h.cache.SetList(ctx, body)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// GetProposal 单个提案详情，附带全部评论（新的在前）
func (h *Handler) GetProposal(w http.ResponseWriter, r *http.Request) {
	id, ok := proposalIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}

	p, err := h.store.GetProposal(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "proposal not found")
			return
		}
		log.Printf("[proposal.get] GetProposal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	comments, err := h.store.ListComments(r.Context(), id)
	if err != nil {
		log.Printf("[proposal.get] ListComments error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	p.CommentCount = len(comments)

	writeJSON(w, http.StatusOK, detailResponse{Proposal: p, Comments: comments})
}
