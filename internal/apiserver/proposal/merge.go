package proposal

import (
	"log"
	"net/http"
	"sort"
	"time"

	"civic-portal/internal/shared/model"
)

// merge 合并提案
//
// 规则：
//   - 至少选中 2 个互异的提案
//   - ID 最小者（即最早创建者）为主提案，其余被吸收后删除
//   - 主提案票数 = 所有参与者票数之和
//   - 主提案状态置为 Merged/Consolidated，标题加 [Consolidated] 前缀（幂等）
//   - 被吸收提案的评论随之级联删除
//
// 请求中不存在的 ID 被忽略；若存在的不足 2 个则整体失败，不做部分合并。
func (h *Handler) merge(w http.ResponseWriter, r *http.Request, ids []int64) {
	distinct := dedupeIDs(ids)
	if len(distinct) < 2 {
		writeError(w, http.StatusBadRequest, "select at least 2 proposals to merge")
		return
	}

	proposals, err := h.store.ListProposalsByIDs(r.Context(), distinct)
	if err != nil {
		log.Printf("[proposal.merge] ListProposalsByIDs error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(proposals) < 2 {
		writeError(w, http.StatusNotFound, "proposals not found")
		return
	}

	sort.Slice(proposals, func(i, j int) bool { return proposals[i].ID < proposals[j].ID })

	master := proposals[0]
	totalVotes := 0
	loserIDs := make([]int64, 0, len(proposals)-1)
	for _, p := range proposals {
		totalVotes += p.Votes
		if p.ID != master.ID {
			loserIDs = append(loserIDs, p.ID)
		}
	}

	master.Votes = totalVotes
	master.Status = model.StatusConsolidated
	master.Title = model.ConsolidatedTitle(master.Title)
	master.UpdatedAt = time.Now()

	if err := h.store.ConsolidateProposals(r.Context(), master, loserIDs); err != nil {
		log.Printf("[proposal.merge] ConsolidateProposals error: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to merge proposals")
		return
	}
	if h.metrics != nil {
		h.metrics.RecordMerge(len(loserIDs))
	}

	h.invalidateListCache(r.Context())
	log.Printf("[proposal] Merged %v into %d (%d votes)", loserIDs, master.ID, master.Votes)

	result, err := h.refreshedList(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "proposals": result})
}

// dedupeIDs 去重并去掉非法 ID，保持出现顺序
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
