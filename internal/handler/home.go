package handler

import (
	"bytes"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/cla-admin/internal/presentation"
	"github.com/deppfellow/cla-admin/internal/server"
	"github.com/deppfellow/cla-admin/internal/service"
)

const (
	homeTitle   = "CLA Home"
	homeHeading = "CLA Administration"
)

// HomeHandler renders the index page: the extract table inside the
// bootstrap chrome.
type HomeHandler struct {
	Handler
	extracts *service.ExtractService
}

func NewHomeHandler(s *server.Server, extracts *service.ExtractService) *HomeHandler {
	return &HomeHandler{
		Handler:  NewHandler(s),
		extracts: extracts,
	}
}

type IndexRequest struct{}

func (r *IndexRequest) Validate() error { return nil }

// Index handles GET /.
func (h *HomeHandler) Index(c echo.Context, _ *IndexRequest) ([]byte, error) {
	records, err := h.extracts.Records(c.Request().Context())
	if err != nil {
		return nil, err
	}

	page := presentation.NewPage(c.Request().URL.Path, homeTitle)
	page.AddNav(
		presentation.Dropdown("API",
			presentation.Link("Extracts", "/api/v1/extracts"),
			presentation.Divider(),
			presentation.Link("Docs", "/docs"),
		),
		presentation.Link("Status", "/status"),
	)

	out := h.server.Output
	table := out.NewTable(records)
	table.EmptyText = "No extracts found."

	var buf bytes.Buffer
	if err := out.Page(&buf, page, homeHeading, table); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
