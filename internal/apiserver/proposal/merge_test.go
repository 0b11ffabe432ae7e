package proposal

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"
)

func TestMergeProposals(t *testing.T) {
	e := newTestEnv(t)
	citizen := e.seedUser(t, "usr-1", "Alice", "citizen")
	e.seedProposal(t, 1, 5, "usr-1")
	e.seedProposal(t, 2, 3, "usr-1")
	e.seedProposal(t, 3, 7, "usr-1")

	// 给将被吸收的提案留一条评论，验证级联删除
	w := e.do(t, "POST", "/api/v1/proposals/3/comments", `{"text":"on loser"}`, citizen)
	require.Equal(t, http.StatusCreated, w.Code)

	// 乱序提交，最小 ID 胜出
	w = e.do(t, "PUT", "/api/v1/proposals", `{"action":"merge","ids":[3,1]}`, citizen)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success   bool              `json:"success"`
		Proposals []*model.Proposal `json:"proposals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	// 剩下 id=1（主）与 id=2（未参与）
	byID := map[int64]*model.Proposal{}
	for _, p := range resp.Proposals {
		byID[p.ID] = p
	}
	require.Len(t, byID, 2)

	master := byID[1]
	require.NotNil(t, master)
	assert.Equal(t, 12, master.Votes, "votes must be the sum 5+7")
	assert.Equal(t, model.StatusConsolidated, master.Status)
	assert.True(t, strings.HasPrefix(master.Title, model.ConsolidatedPrefix))

	untouched := byID[2]
	require.NotNil(t, untouched)
	assert.Equal(t, 3, untouched.Votes)
	assert.Equal(t, model.StatusNew, untouched.Status)

	// 败者及其评论已删除
	_, err := e.store.GetProposal(context.Background(), 3)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	comments, err := e.store.ListComments(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestMergeTitlePrefixIdempotent(t *testing.T) {
	e := newTestEnv(t)
	citizen := e.seedUser(t, "usr-1", "Alice", "citizen")
	e.seedProposal(t, 1, 5, "usr-1")
	e.seedProposal(t, 2, 3, "usr-1")
	e.seedProposal(t, 3, 7, "usr-1")

	w := e.do(t, "PUT", "/api/v1/proposals", `{"action":"merge","ids":[1,2]}`, citizen)
	require.Equal(t, http.StatusOK, w.Code)

	// 主提案再次参与合并，前缀不叠加
	w = e.do(t, "PUT", "/api/v1/proposals", `{"action":"merge","ids":[1,3]}`, citizen)
	require.Equal(t, http.StatusOK, w.Code)

	master, err := e.store.GetProposal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, model.ConsolidatedPrefix+"Proposal 1", master.Title)
	assert.Equal(t, 15, master.Votes)
}

func TestMergeValidation(t *testing.T) {
	e := newTestEnv(t)
	citizen := e.seedUser(t, "usr-1", "Alice", "citizen")
	e.seedProposal(t, 1, 5, "usr-1")

	tests := []struct {
		name string
		body string
		want int
	}{
		{"single id", `{"action":"merge","ids":[1]}`, http.StatusBadRequest},
		{"empty ids", `{"action":"merge","ids":[]}`, http.StatusBadRequest},
		{"duplicated single id", `{"action":"merge","ids":[1,1,1]}`, http.StatusBadRequest},
		{"only one exists", `{"action":"merge","ids":[1,424242]}`, http.StatusNotFound},
		{"none exist", `{"action":"merge","ids":[424242,434343]}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(t, "PUT", "/api/v1/proposals", tt.body, citizen)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}

	// 失败的合并不应改动任何提案
	p, err := e.store.GetProposal(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Votes)
	assert.Equal(t, model.StatusNew, p.Status)
}

func TestMergeAnonymous(t *testing.T) {
	e := newTestEnv(t)
	e.seedUser(t, "usr-1", "Alice", "citizen")
	e.seedProposal(t, 1, 5, "usr-1")
	e.seedProposal(t, 2, 3, "usr-1")

	w := e.do(t, "PUT", "/api/v1/proposals", `{"action":"merge","ids":[1,2]}`, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDedupeIDs(t *testing.T) {
	tests := []struct {
		name string
		in   []int64
		want []int64
	}{
		{"plain", []int64{3, 1, 2}, []int64{3, 1, 2}},
		{"duplicates", []int64{1, 2, 1, 3, 2}, []int64{1, 2, 3}},
		{"invalid dropped", []int64{0, -5, 7}, []int64{7}},
		{"empty", nil, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dedupeIDs(tt.in))
		})
	}
}
