package mongostore

import (
	"context"

	"civic-portal/internal/shared/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ============================================================================
// CommentStore
// ============================================================================

func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	return insertOne(ctx, s.col(ColComments), c)
}

func (s *Store) GetComment(ctx context.Context, id string) (*model.Comment, error) {
	return findOne[model.Comment](ctx, s.col(ColComments), bson.D{{Key: "_id", Value: id}})
}

func (s *Store) ListComments(ctx context.Context, proposalID int64) ([]*model.Comment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return findMany[model.Comment](ctx, s.col(ColComments),
		bson.D{{Key: "proposal_id", Value: proposalID}}, opts)
}

func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return deleteByID(ctx, s.col(ColComments), id)
}
