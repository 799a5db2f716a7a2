package service

import (
	"context"

	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/middleware"
	"github.com/deppfellow/cla-admin/internal/repository"
	"github.com/deppfellow/cla-admin/internal/server"
)

// RecordService serves the table browser: filtered reads, single lookups,
// one-column fieldsets and filtered deletes on any table.
type RecordService struct {
	server *server.Server
	repo   *repository.RecordRepository
}

func NewRecordService(s *server.Server, repo *repository.RecordRepository) *RecordService {
	return &RecordService{
		server: s,
		repo:   repo,
	}
}

func (s *RecordService) List(ctx context.Context, table string, filter database.Params, fields ...string) ([]database.Record, error) {
	records, err := s.repo.List(ctx, table, filter, fields...)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []database.Record{}
	}
	return records, nil
}

func (s *RecordService) Get(ctx context.Context, table string, filter database.Params, fields ...string) (*database.Record, error) {
	return s.repo.Get(ctx, table, filter, fields...)
}

func (s *RecordService) Fieldset(ctx context.Context, table, field string, filter database.Params) ([]any, error) {
	return s.repo.Fieldset(ctx, table, field, filter)
}

// Delete removes the matching rows and logs what was removed with the
// request logger.
func (s *RecordService) Delete(ctx context.Context, table string, filter database.Params) (int64, error) {
	deleted, err := s.repo.Delete(ctx, table, filter)
	if err != nil {
		return 0, err
	}

	middleware.LoggerFromContext(ctx).Info().
		Str("table", table).
		Interface("filter", filter).
		Int64("deleted", deleted).
		Msg("records deleted")

	return deleted, nil
}

// DeleteOne removes the single row matching filter and reports whether a
// row was found. Several matches fail with the ambiguous lookup error and
// delete nothing.
func (s *RecordService) DeleteOne(ctx context.Context, table string, filter database.Params) (bool, error) {
	if len(filter) == 0 {
		// Let the DAL refuse the unfiltered delete.
		_, err := s.Delete(ctx, table, filter)
		return false, err
	}

	rec, err := s.repo.Get(ctx, table, filter)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, nil
	}

	if _, err := s.Delete(ctx, table, filter); err != nil {
		return false, err
	}
	return true, nil
}
