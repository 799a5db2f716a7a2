package repository

import (
	"context"

	"github.com/deppfellow/cla-admin/internal/database"
)

// RecordRepository exposes the generic, table-agnostic DAL operations.
type RecordRepository struct {
	db *database.DB
}

func NewRecordRepository(db *database.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

func (r *RecordRepository) List(ctx context.Context, table string, filter database.Params, fields ...string) ([]database.Record, error) {
	return r.db.GetRecords(ctx, table, filter, fields...)
}

// Get returns nil, nil when nothing matches.
func (r *RecordRepository) Get(ctx context.Context, table string, filter database.Params, fields ...string) (*database.Record, error) {
	return r.db.GetRecord(ctx, table, filter, fields...)
}

func (r *RecordRepository) Fieldset(ctx context.Context, table, field string, filter database.Params) ([]any, error) {
	return r.db.GetFieldset(ctx, table, field, filter)
}

func (r *RecordRepository) Delete(ctx context.Context, table string, filter database.Params) (int64, error) {
	return r.db.DeleteRecord(ctx, table, filter)
}
