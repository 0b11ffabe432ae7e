package repository

import (
	"context"

	"civic-portal/internal/shared/model"
)

// ============================================================================
// ReportStore
// ============================================================================

func (s *Store) countGroup(ctx context.Context, column string) (map[string]int, error) {
	query := s.rebind(`SELECT ` + column + `, COUNT(*) FROM proposals GROUP BY ` + column)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, wrapError(err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		out[key] = count
	}
	return out, rows.Err()
}

func (s *Store) CountByCategory(ctx context.Context) (map[model.ProposalCategory]int, error) {
	raw, err := s.countGroup(ctx, "category")
	if err != nil {
		return nil, err
	}
	out := make(map[model.ProposalCategory]int, len(raw))
	for k, v := range raw {
		out[model.ProposalCategory(k)] = v
	}
	return out, nil
}

func (s *Store) CountByStatus(ctx context.Context) (map[model.ProposalStatus]int, error) {
	raw, err := s.countGroup(ctx, "status")
	if err != nil {
		return nil, err
	}
	out := make(map[model.ProposalStatus]int, len(raw))
	for k, v := range raw {
		out[model.ProposalStatus(k)] = v
	}
	return out, nil
}

func (s *Store) TotalVotes(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(votes), 0) FROM proposals`).Scan(&total)
	return total, wrapError(err)
}

func (s *Store) CountComments(ctx context.Context) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments`).Scan(&total)
	return total, wrapError(err)
}
