package service

import (
	"context"

	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/model"
	"github.com/deppfellow/cla-admin/internal/repository"
	"github.com/deppfellow/cla-admin/internal/server"
)

// ExtractSummary is an extract request with the requesting user's name.
type ExtractSummary struct {
	*model.Extract
	Requester string `json:"requester"`
}

type ExtractService struct {
	server   *server.Server
	extracts *repository.ExtractRepository
	users    *repository.UserRepository
}

func NewExtractService(s *server.Server, extracts *repository.ExtractRepository, users *repository.UserRepository) *ExtractService {
	return &ExtractService{
		server:   s,
		extracts: extracts,
		users:    users,
	}
}

// List returns the extracts, optionally only those with status, each with
// its requester resolved. A requester missing from the user table is left
// empty.
func (s *ExtractService) List(ctx context.Context, status string) ([]ExtractSummary, error) {
	var filter database.Params
	if status != "" {
		filter = database.Params{"status": status}
	}

	extracts, err := s.extracts.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(extracts))
	for i, e := range extracts {
		ids[i] = e.UserID
	}
	names, err := s.users.Names(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]ExtractSummary, len(extracts))
	for i, e := range extracts {
		summaries[i] = ExtractSummary{Extract: e, Requester: names[e.UserID]}
	}
	return summaries, nil
}

// Records returns the raw extract table for the index page.
func (s *ExtractService) Records(ctx context.Context) ([]database.Record, error) {
	return s.extracts.Records(ctx)
}
