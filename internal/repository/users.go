package repository

import (
	"context"

	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/model"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns nil, nil for an unknown id.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return database.GetModel[model.User](ctx, r.db, database.Params{"id": id})
}

// Names maps user ids to display names for the given ids.
func (r *UserRepository) Names(ctx context.Context, ids []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(ids))
	for _, id := range ids {
		if _, ok := names[id]; ok {
			continue
		}
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if user != nil {
			names[id] = user.FullName()
		}
	}
	return names, nil
}
