package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage/driver/sqlite"
	"civic-portal/internal/shared/storage/repository"
)

func testHandler(t *testing.T) (*Handler, *repository.Store) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	dialect := sqlite.NewDialect()
	require.NoError(t, dialect.AutoMigrate(db))
	store := repository.NewStore(db, dialect)
	t.Cleanup(func() { store.Close() })
	return NewHandler(store), store
}

func seed(t *testing.T, store *repository.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	require.NoError(t, store.CreateUser(ctx, &model.User{
		ID: "usr-1", Name: "Alice", Email: "a@b.com", PasswordHash: "x",
		Role: model.UserRoleCitizen, CreatedAt: now,
	}))

	proposals := []struct {
		id       int64
		category model.ProposalCategory
		status   model.ProposalStatus
		votes    int
	}{
		{1, model.CategoryHealthcare, model.StatusNew, 5},
		{2, model.CategoryHealthcare, model.StatusTrending, 3},
		{3, model.CategoryEconomy, model.StatusConsolidated, 12},
	}
	for _, p := range proposals {
		require.NoError(t, store.CreateProposal(ctx, &model.Proposal{
			ID: p.id, Title: "t", Category: p.category, Desc: "d",
			Votes: p.votes, Status: p.status, AuthorID: "usr-1",
			CreatedAt: now, UpdatedAt: now,
		}))
	}
	require.NoError(t, store.CreateComment(ctx, &model.Comment{
		ID: "c-1", Text: "hi", AuthorID: "usr-1", UserName: "Alice",
		ProposalID: 1, CreatedAt: now,
	}))
}

func TestGetReport(t *testing.T) {
	h, store := testHandler(t)
	seed(t, store)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	r := httptest.NewRequest("GET", "/api/v1/proposals/report", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2, report.ByCategory[model.CategoryHealthcare])
	assert.Equal(t, 1, report.ByCategory[model.CategoryEconomy])
	assert.Equal(t, 1, report.ByStatus[model.StatusNew])
	assert.Equal(t, 1, report.ByStatus[model.StatusTrending])
	assert.Equal(t, 1, report.ByStatus[model.StatusConsolidated])
	assert.Equal(t, 20, report.TotalVotes)
	assert.Equal(t, 1, report.Comments)
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestGetReportEmpty(t *testing.T) {
	h, _ := testHandler(t)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	r := httptest.NewRequest("GET", "/api/v1/proposals/report", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	var report Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Zero(t, report.TotalVotes)
	assert.Zero(t, report.Comments)
}

func TestExportWithoutObjectStorage(t *testing.T) {
	h, _ := testHandler(t)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	r := httptest.NewRequest("POST", "/api/v1/proposals/report/export", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
