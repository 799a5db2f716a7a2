package repository

import (
	"github.com/deppfellow/cla-admin/internal/server"
)

// Repositories groups every repository built on the shared DAL connection.
type Repositories struct {
	Records  *RecordRepository
	Extracts *ExtractRepository
	Users    *UserRepository
}

func NewRepositories(s *server.Server) *Repositories {
	return &Repositories{
		Records:  NewRecordRepository(s.DB),
		Extracts: NewExtractRepository(s.DB),
		Users:    NewUserRepository(s.DB),
	}
}
