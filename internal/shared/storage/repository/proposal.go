package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"
	"civic-portal/internal/shared/storage/dbutil"
)

const proposalColumns = `id, title, category, "desc", votes, status, author, created_at, updated_at`

func scanProposal(scanner interface {
	Scan(dest ...interface{}) error
}, withCount bool) (*model.Proposal, error) {
	var p model.Proposal
	dest := []interface{}{&p.ID, &p.Title, &p.Category, &p.Desc, &p.Votes, &p.Status, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt}
	if withCount {
		dest = append(dest, &p.CommentCount)
	}
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreateProposal(ctx context.Context, p *model.Proposal) error {
	if !model.ValidCategory(p.Category) {
		return storage.ErrInvalidCategory
	}
	if !model.ValidStatus(p.Status) {
		p.Status = model.StatusNew
	}
	query := s.rebind(`INSERT INTO proposals (id, title, category, "desc", votes, status, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Category, p.Desc, p.Votes, p.Status, p.AuthorID, p.CreatedAt, p.UpdatedAt)
	return wrapError(err)
}

func (s *Store) GetProposal(ctx context.Context, id int64) (*model.Proposal, error) {
	query := s.rebind(`SELECT ` + proposalColumns + ` FROM proposals WHERE id = $1`)
	p, err := scanProposal(s.db.QueryRowContext(ctx, query, id), false)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, wrapError(err)
	}
	return p, nil
}

// ListProposals 单条 LEFT JOIN 聚合附带评论数，created_at 倒序
func (s *Store) ListProposals(ctx context.Context) ([]*model.Proposal, error) {
	query := s.rebind(`
		SELECT p.id, p.title, p.category, p."desc", p.votes, p.status, p.author,
		       p.created_at, p.updated_at, COUNT(c.id) AS comment_count
		FROM proposals p
		LEFT JOIN comments c ON c.proposal_id = p.id
		GROUP BY p.id, p.title, p.category, p."desc", p.votes, p.status, p.author,
		         p.created_at, p.updated_at
		ORDER BY p.created_at DESC, p.id DESC`)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	result := []*model.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows, true)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) ListProposalsByIDs(ctx context.Context, ids []int64) ([]*model.Proposal, error) {
	if len(ids) == 0 {
		return []*model.Proposal{}, nil
	}
	placeholders := dbutil.PlaceholderList(s.dialect, 1, len(ids))
	query := s.rebind(fmt.Sprintf(`SELECT %s FROM proposals WHERE id IN (%s)`, proposalColumns, placeholders))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	result := []*model.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows, false)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// IncrementVotes 加一票；id 不存在时静默忽略
func (s *Store) IncrementVotes(ctx context.Context, id int64) error {
	query := s.rebind(`UPDATE proposals SET votes = votes + 1, updated_at = $1 WHERE id = $2`)
	_, err := s.db.ExecContext(ctx, query, time.Now(), id)
	return wrapError(err)
}

// ConsolidateProposals 在单个事务内完成主提案更新、败者删除和评论级联删除
func (s *Store) ConsolidateProposals(ctx context.Context, master *model.Proposal, loserIDs []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapError(err)
	}
	defer tx.Rollback()

	update := s.rebind(`UPDATE proposals SET votes = $1, status = $2, title = $3, updated_at = $4 WHERE id = $5`)
	res, err := tx.ExecContext(ctx, update, master.Votes, master.Status, master.Title, time.Now(), master.ID)
	if err != nil {
		return wrapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}

	placeholders := dbutil.PlaceholderList(s.dialect, 1, len(loserIDs))
	args := make([]interface{}, len(loserIDs))
	for i, id := range loserIDs {
		args[i] = id
	}
	if _, err := tx.ExecContext(ctx,
		s.rebind(fmt.Sprintf(`DELETE FROM proposals WHERE id IN (%s)`, placeholders)), args...); err != nil {
		return wrapError(err)
	}
	if _, err := tx.ExecContext(ctx,
		s.rebind(fmt.Sprintf(`DELETE FROM comments WHERE proposal_id IN (%s)`, placeholders)), args...); err != nil {
		return wrapError(err)
	}

	return wrapError(tx.Commit())
}

// DeleteProposalCascade 在单个事务内删除提案及其全部评论
func (s *Store) DeleteProposalCascade(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapError(err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM comments WHERE proposal_id = $1`), id); err != nil {
		return wrapError(err)
	}
	res, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM proposals WHERE id = $1`), id)
	if err != nil {
		return wrapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}

	return wrapError(tx.Commit())
}
