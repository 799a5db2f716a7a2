package repository

import (
	"context"

	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/model"
)

type ExtractRepository struct {
	db *database.DB
}

func NewExtractRepository(db *database.DB) *ExtractRepository {
	return &ExtractRepository{db: db}
}

// List returns the extracts matching filter, hydrated in strict mode.
func (r *ExtractRepository) List(ctx context.Context, filter database.Params) ([]*model.Extract, error) {
	return database.GetModels[model.Extract](ctx, r.db, filter)
}

// Records returns the raw extract rows for tabular output.
func (r *ExtractRepository) Records(ctx context.Context) ([]database.Record, error) {
	return r.db.GetRecords(ctx, model.Extract{}.TableName(), nil)
}
