package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/cla-admin/internal/server"
	"github.com/deppfellow/cla-admin/internal/service"
	"github.com/deppfellow/cla-admin/internal/validation"
)

type ExtractsHandler struct {
	Handler
	extracts *service.ExtractService
}

func NewExtractsHandler(s *server.Server, extracts *service.ExtractService) *ExtractsHandler {
	return &ExtractsHandler{
		Handler:  NewHandler(s),
		extracts: extracts,
	}
}

type ListExtractsRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=pending approved rejected"`
}

func (r *ListExtractsRequest) Validate() error {
	return validation.Struct(r)
}

// List handles GET /api/v1/extracts.
func (h *ExtractsHandler) List(c echo.Context, req *ListExtractsRequest) ([]service.ExtractSummary, error) {
	return h.extracts.List(c.Request().Context(), req.Status)
}
