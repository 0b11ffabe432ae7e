package repository

import (
	"context"
	"database/sql"
	"errors"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"
)

const commentColumns = "id, text, author, user_name, proposal_id, created_at"

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	query := s.rebind(`INSERT INTO comments (id, text, author, user_name, proposal_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`)
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Text, c.AuthorID, c.UserName, c.ProposalID, c.CreatedAt)
	return wrapError(err)
}

func (s *Store) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	query := s.rebind(`SELECT ` + commentColumns + ` FROM comments WHERE id = $1`)
	var c model.Comment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Text, &c.AuthorID, &c.UserName, &c.ProposalID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, wrapError(err)
	}
	return &c, nil
}

func (s *Store) ListComments(ctx context.Context, proposalID int64) ([]*model.Comment, error) {
	query := s.rebind(`SELECT ` + commentColumns + ` FROM comments
		WHERE proposal_id = $1 ORDER BY created_at DESC, id DESC`)
	rows, err := s.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	result := []*model.Comment{}
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.AuthorID, &c.UserName, &c.ProposalID, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM comments WHERE id = $1`), id)
	if err != nil {
		return wrapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
