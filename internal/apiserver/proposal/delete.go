package proposal

import (
	"errors"
	"log"
	"net/http"

	"civic-portal/internal/apiserver/auth"
	"civic-portal/internal/shared/storage"
)

// DeleteProposal 删除提案，评论级联删除
// 仅作者本人或 admin 可删
func (h *Handler) DeleteProposal(w http.ResponseWriter, r *http.Request) {
	user := auth.GetAuthUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "your session has expired")
		return
	}

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
		log.Printf("[proposal.delete] GetProposal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if p.AuthorID != user.ID && user.Role != "admin" {
		writeError(w, http.StatusForbidden, "only the author can delete this proposal")
		return
	}

	if err := h.store.DeleteProposalCascade(r.Context(), id); err != nil {
		log.Printf("[proposal.delete] DeleteProposalCascade error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to delete proposal")
		return
	}

	h.invalidateListCache(r.Context())
	log.Printf("[proposal] Deleted: %d by %s", id, user.ID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
