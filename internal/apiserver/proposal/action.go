package proposal

import (
	"encoding/json"
	"log"
	"net/http"

	"civic-portal/internal/apiserver/auth"
)

type actionRequest struct {
	Action string  `json:"action"` // "upvote" | "merge"
	ID     int64   `json:"id"`     // upvote 目标
	IDs    []int64 `json:"ids"`    // merge 目标集合
}

// HandleAction 提案动作统一入口，按 action 字段分发
func (h *Handler) HandleAction(w http.ResponseWriter, r *http.Request) {
	if auth.GetAuthUser(r.Context()) == nil {
		writeError(w, http.StatusUnauthorized, "your session has expired")
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "upvote":
		h.upvote(w, r, req.ID)
	case "merge":
		h.merge(w, r, req.IDs)
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}

// upvote 点赞
// 目标不存在时静默成功：列表轮询窗口里提案可能刚被合并删除，
// 此时前端的点赞只需拿到最新列表即可自愈
func (h *Handler) upvote(w http.ResponseWriter, r *http.Request, id int64) {
	if id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}

	if err := h.store.IncrementVotes(r.Context(), id); err != nil {
		log.Printf("[proposal.upvote] IncrementVotes error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to upvote")
		return
	}
	if h.metrics != nil {
		h.metrics.RecordVote()
	}

	h.invalidateListCache(r.Context())
	proposals, err := h.refreshedList(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "proposals": proposals})
}
