package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"
	"civic-portal/internal/shared/storage/driver/sqlite"
)

// testStore 基于内存 SQLite 创建测试存储
func testStore(t *testing.T) *Store {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dialect := sqlite.NewDialect()
	if err := dialect.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := NewStore(db, dialect)
	t.Cleanup(func() { s.Close() })
	return s
}

// Compile-time interface check
var _ storage.Store = (*Store)(nil)

func testProposal(id int64, votes int) *model.Proposal {
	now := time.Now().UTC().Truncate(time.Second)
	return &model.Proposal{
		ID:        id,
		Title:     "Test Proposal",
		Category:  model.CategoryHealthcare,
		Desc:      "desc",
		Votes:     votes,
		Status:    model.StatusNew,
		AuthorID:  "usr-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestUserCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	user := &model.User{
		ID:           "usr-001",
		Name:         "Bob",
		Email:        "bob@example.com",
		PasswordHash: "$2a$10$fakehash",
		Role:         model.UserRoleMP,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	dup := *user
	dup.ID = "usr-002"
	if err := s.CreateUser(ctx, &dup); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("duplicate email: err = %v, want ErrDuplicate", err)
	}

	got, err := s.GetUserByEmail(ctx, "bob@example.com")
	if err != nil || got == nil {
		t.Fatalf("GetUserByEmail: (%+v, %v)", got, err)
	}
	if got.Role != model.UserRoleMP || got.PasswordHash != "$2a$10$fakehash" {
		t.Errorf("user = %+v", got)
	}

	missing, err := s.GetUserByID(ctx, "usr-404")
	if err != nil || missing != nil {
		t.Errorf("missing user: (%v, %v), want (nil, nil)", missing, err)
	}
}

// 未命中约定：Get* 返回 ErrNotFound，用户查找例外（返回 nil, nil）
func TestGetMissReturnsNotFound(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p, err := s.GetProposal(ctx, 404)
	if p != nil || !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetProposal(missing) = (%+v, %v), want (nil, ErrNotFound)", p, err)
	}
	c, err := s.GetComment(ctx, "cmt-404")
	if c != nil || !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetComment(missing) = (%+v, %v), want (nil, ErrNotFound)", c, err)
	}
	u, err := s.GetUserByEmail(ctx, "ghost@example.com")
	if u != nil || err != nil {
		t.Errorf("GetUserByEmail(missing) = (%+v, %v), want (nil, nil)", u, err)
	}
}

func TestProposalValidation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	bad := testProposal(1, 1)
	bad.Category = "Sports"
	if err := s.CreateProposal(ctx, bad); !errors.Is(err, storage.ErrInvalidCategory) {
		t.Fatalf("invalid category: err = %v, want ErrInvalidCategory", err)
	}

	if err := s.CreateProposal(ctx, testProposal(1, 1)); err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}
	if err := s.CreateProposal(ctx, testProposal(1, 1)); !errors.Is(err, storage.ErrDuplicate) {
		t.Fatalf("duplicate id: err = %v, want ErrDuplicate", err)
	}
}

func TestIncrementVotes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateProposal(ctx, testProposal(10, 1)); err != nil {
		t.Fatal(err)
	}
	if err := s.IncrementVotes(ctx, 10); err != nil {
		t.Fatalf("IncrementVotes: %v", err)
	}
	got, _ := s.GetProposal(ctx, 10)
	if got.Votes != 2 {
		t.Errorf("Votes = %d, want 2", got.Votes)
	}

	// 不存在的 id 静默忽略
	if err := s.IncrementVotes(ctx, 404); err != nil {
		t.Errorf("IncrementVotes(missing) = %v, want nil", err)
	}
}

func TestListProposalsCommentCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	older := testProposal(100, 1)
	older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	newer := testProposal(200, 1)
	if err := s.CreateProposal(ctx, older); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateProposal(ctx, newer); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"cmt-1", "cmt-2"} {
		c := &model.Comment{ID: id, Text: "t", AuthorID: "u", UserName: "U", ProposalID: 100, CreatedAt: time.Now()}
		if err := s.CreateComment(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListProposals(ctx)
	if err != nil {
		t.Fatalf("ListProposals: %v", err)
	}
	if len(list) != 2 || list[0].ID != 200 || list[1].ID != 100 {
		t.Fatalf("list order wrong: %+v", list)
	}
	if list[1].CommentCount != 2 || list[0].CommentCount != 0 {
		t.Errorf("counts = [%d, %d], want [0, 2]", list[0].CommentCount, list[1].CommentCount)
	}
}

func TestListProposalsByIDs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		if err := s.CreateProposal(ctx, testProposal(id, 1)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListProposalsByIDs(ctx, []int64{3, 1, 99})
	if err != nil {
		t.Fatalf("ListProposalsByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}

	empty, err := s.ListProposalsByIDs(ctx, nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("empty ids: (%v, %v)", empty, err)
	}
}

func TestConsolidateProposalsTransactional(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for _, p := range []*model.Proposal{testProposal(1, 5), testProposal(2, 3), testProposal(3, 7)} {
		if err := s.CreateProposal(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	c := &model.Comment{ID: "cmt-loser", Text: "t", AuthorID: "u", UserName: "U", ProposalID: 3, CreatedAt: time.Now()}
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatal(err)
	}

	master := testProposal(1, 12)
	master.Status = model.StatusConsolidated
	master.Title = model.ConsolidatedTitle(master.Title)
	if err := s.ConsolidateProposals(ctx, master, []int64{3}); err != nil {
		t.Fatalf("ConsolidateProposals: %v", err)
	}

	got, _ := s.GetProposal(ctx, 1)
	if got.Votes != 12 || got.Status != model.StatusConsolidated || got.Title != "[Consolidated] Test Proposal" {
		t.Errorf("master = %+v", got)
	}
	if loser, _ := s.GetProposal(ctx, 3); loser != nil {
		t.Error("loser still exists")
	}
	if untouched, _ := s.GetProposal(ctx, 2); untouched == nil || untouched.Votes != 3 {
		t.Errorf("proposal 2 = %+v, want untouched", untouched)
	}
	if orphan, _ := s.GetComment(ctx, "cmt-loser"); orphan != nil {
		t.Error("loser comment not cascaded")
	}

	// master 不存在时整个事务失败
	ghost := testProposal(404, 1)
	if err := s.ConsolidateProposals(ctx, ghost, []int64{2}); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing master: err = %v, want ErrNotFound", err)
	}
	if p2, _ := s.GetProposal(ctx, 2); p2 == nil {
		t.Error("rollback failed: proposal 2 deleted despite missing master")
	}
}

func TestDeleteProposalCascade(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateProposal(ctx, testProposal(7, 1)); err != nil {
		t.Fatal(err)
	}
	c := &model.Comment{ID: "cmt-1", Text: "t", AuthorID: "u", UserName: "U", ProposalID: 7, CreatedAt: time.Now()}
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteProposalCascade(ctx, 7); err != nil {
		t.Fatalf("DeleteProposalCascade: %v", err)
	}
	if p, _ := s.GetProposal(ctx, 7); p != nil {
		t.Error("proposal still exists")
	}
	if comments, _ := s.ListComments(ctx, 7); len(comments) != 0 {
		t.Errorf("comments left = %d", len(comments))
	}

	if err := s.DeleteProposalCascade(ctx, 7); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}
}

func TestCommentCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.CreateProposal(ctx, testProposal(1, 1)); err != nil {
		t.Fatal(err)
	}

	first := &model.Comment{ID: "cmt-1", Text: "first", AuthorID: "u", UserName: "U", ProposalID: 1,
		CreatedAt: time.Now().UTC().Add(-time.Minute).Truncate(time.Second)}
	second := &model.Comment{ID: "cmt-2", Text: "second", AuthorID: "u", UserName: "U", ProposalID: 1,
		CreatedAt: time.Now().UTC().Truncate(time.Second)}
	for _, c := range []*model.Comment{first, second} {
		if err := s.CreateComment(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	list, err := s.ListComments(ctx, 1)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	// created_at 倒序
	if len(list) != 2 || list[0].ID != "cmt-2" || list[1].ID != "cmt-1" {
		t.Fatalf("list = %+v", list)
	}

	if err := s.DeleteComment(ctx, "cmt-1"); err != nil {
		t.Fatalf("DeleteComment: %v", err)
	}
	if err := s.DeleteComment(ctx, "cmt-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("double delete: err = %v, want ErrNotFound", err)
	}

	// 只删目标评论
	remaining, _ := s.ListComments(ctx, 1)
	if len(remaining) != 1 || remaining[0].ID != "cmt-2" {
		t.Errorf("remaining = %+v", remaining)
	}
}

func TestReportAggregations(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p1 := testProposal(1, 5)
	p2 := testProposal(2, 3)
	p2.Category = model.CategoryEconomy
	p2.Status = model.StatusConsolidated
	for _, p := range []*model.Proposal{p1, p2} {
		if err := s.CreateProposal(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	c := &model.Comment{ID: "cmt-1", Text: "t", AuthorID: "u", UserName: "U", ProposalID: 1, CreatedAt: time.Now()}
	if err := s.CreateComment(ctx, c); err != nil {
		t.Fatal(err)
	}

	byCat, err := s.CountByCategory(ctx)
	if err != nil || byCat[model.CategoryHealthcare] != 1 || byCat[model.CategoryEconomy] != 1 {
		t.Errorf("byCat = (%v, %v)", byCat, err)
	}
	byStatus, err := s.CountByStatus(ctx)
	if err != nil || byStatus[model.StatusConsolidated] != 1 || byStatus[model.StatusNew] != 1 {
		t.Errorf("byStatus = (%v, %v)", byStatus, err)
	}
	votes, err := s.TotalVotes(ctx)
	if err != nil || votes != 8 {
		t.Errorf("TotalVotes = (%d, %v), want 8", votes, err)
	}
	comments, err := s.CountComments(ctx)
	if err != nil || comments != 1 {
		t.Errorf("CountComments = (%d, %v), want 1", comments, err)
	}
}
