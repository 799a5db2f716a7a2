package service

import (
	"github.com/deppfellow/cla-admin/internal/repository"
	"github.com/deppfellow/cla-admin/internal/server"
)

type Services struct {
	Records  *RecordService
	Extracts *ExtractService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	return &Services{
		Records:  NewRecordService(s, repos.Records),
		Extracts: NewExtractService(s, repos.Extracts, repos.Users),
	}, nil
}
