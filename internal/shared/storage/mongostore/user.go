package mongostore

import (
	"context"
	"errors"

	"civic-portal/internal/shared/model"
	"civic-portal/internal/shared/storage"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ============================================================================
// UserStore
// ============================================================================

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	return insertOne(ctx, s.col(ColUsers), user)
}

// GetUserByEmail 用户查找不到不算错误，按接口约定返回 (nil, nil)
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "email", Value: email}})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := findOne[model.User](ctx, s.col(ColUsers), bson.D{{Key: "_id", Value: id}})
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return u, err
}
