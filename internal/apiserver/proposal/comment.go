package proposal

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"civic-portal/internal/apiserver/auth"
	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"
)

type createCommentRequest struct {
	Text string `json:"text"`
}

// CreateComment 发表评论
// 评论上冗余存一份 UserName，列表展示时无需联表查用户
func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	authUser := auth.GetAuthUser(r.Context())
	if authUser == nil {
		writeError(w, http.StatusUnauthorized, "your session has expired")
		return
	}

	proposalID, ok := proposalIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	if _, err := h.store.GetProposal(r.Context(), proposalID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "proposal not found")
			return
		}
		log.Printf("[comment.create] GetProposal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	// 按库里的用户名冗余，不信任令牌里的快照
	user, err := h.store.GetUserByID(r.Context(), authUser.ID)
	if err != nil || user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	comment := &model.Comment{
		ID:         uuid.NewString(),
		Text:       req.Text,
		AuthorID:   user.ID,
		UserName:   user.Name,
		ProposalID: proposalID,
		CreatedAt:  time.Now(),
	}
	if err := h.store.CreateComment(r.Context(), comment); err != nil {
		log.Printf("[comment.create] CreateComment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create comment")
		return
	}

	h.invalidateListCache(r.Context())
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "comment": comment})
}

// DeleteComment 删除评论，仅评论作者或 admin 可删
func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "your session has expired")
		return
	}

	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid comment id")
		return
	}

	comment, err := h.store.GetComment(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "comment not found")
			return
		}
		log.Printf("[comment.delete] GetComment error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if comment.AuthorID != user.ID && user.Role != "admin" {
		writeError(w, http.StatusForbidden, "only the author can delete this comment")
		return
	}

	if err := h.store.DeleteComment(r.Context(), id); err != nil {
		log.Printf("[comment.delete] DeleteComment error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete comment")
		return
	}

	h.invalidateListCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
