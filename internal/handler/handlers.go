package handler

import (
	"github.com/deppfellow/cla-admin/internal/server"
	"github.com/deppfellow/cla-admin/internal/service"
)

// Handlers groups every HTTP handler for the router.
type Handlers struct {
	Health   *HealthHandler
	OpenAPI  *OpenAPIHandler
	Home     *HomeHandler
	Records  *RecordsHandler
	Extracts *ExtractsHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(s),
		OpenAPI:  NewOpenAPIHandler(s),
		Home:     NewHomeHandler(s, services.Extracts),
		Records:  NewRecordsHandler(s, services.Records),
		Extracts: NewExtractsHandler(s, services.Extracts),
	}
}
