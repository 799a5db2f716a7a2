package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/errs"
	"github.com/deppfellow/cla-admin/internal/server"
	"github.com/deppfellow/cla-admin/internal/service"
	"github.com/deppfellow/cla-admin/internal/validation"
)

// fieldsParam is the query parameter holding the projection. Every other
// query parameter is an equality filter.
const fieldsParam = "fields"

type RecordsHandler struct {
	Handler
	records *service.RecordService
}

func NewRecordsHandler(s *server.Server, records *service.RecordService) *RecordsHandler {
	return &RecordsHandler{
		Handler: NewHandler(s),
		records: records,
	}
}

type RecordsRequest struct {
	Table  string `param:"table" validate:"required,identifier,max=64"`
	Fields string `query:"fields"`
}

func (r *RecordsRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	var problems validation.CustomValidationErrors
	for _, f := range r.fieldList() {
		if f != "*" && !validation.IsIdentifier(f) {
			problems = append(problems, validation.CustomValidationError{
				Field:   fieldsParam,
				Message: "invalid field name " + f,
			})
		}
	}
	if len(problems) > 0 {
		return problems
	}
	return nil
}

func (r *RecordsRequest) fieldList() []string {
	if strings.TrimSpace(r.Fields) == "" {
		return nil
	}
	parts := strings.Split(r.Fields, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

type FieldsetRequest struct {
	Table string `param:"table" validate:"required,identifier,max=64"`
	Field string `param:"field" validate:"required,identifier,max=64"`
}

func (r *FieldsetRequest) Validate() error {
	return validation.Struct(r)
}

type DeleteRecordsRequest struct {
	Table string `param:"table" validate:"required,identifier,max=64"`
}

func (r *DeleteRecordsRequest) Validate() error {
	return validation.Struct(r)
}

type DeleteRecordsResponse struct {
	Table   string `json:"table"`
	Deleted int64  `json:"deleted"`
}

// queryFilter turns the query string into an equality filter, skipping the
// reserved parameters. Repeated keys use their first value.
func queryFilter(c echo.Context, reserved ...string) database.Params {
	filter := database.Params{}
	for key, values := range c.QueryParams() {
		if len(values) == 0 || contains(reserved, key) {
			continue
		}
		filter[key] = values[0]
	}
	return filter
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// List handles GET /api/v1/tables/:table/records.
func (h *RecordsHandler) List(c echo.Context, req *RecordsRequest) ([]database.Record, error) {
	return h.records.List(c.Request().Context(), req.Table, queryFilter(c, fieldsParam), req.fieldList()...)
}

// Get handles GET /api/v1/tables/:table/record.
func (h *RecordsHandler) Get(c echo.Context, req *RecordsRequest) (*database.Record, error) {
	rec, err := h.records.Get(c.Request().Context(), req.Table, queryFilter(c, fieldsParam), req.fieldList()...)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, recordNotFound()
	}
	return rec, nil
}

func recordNotFound() *errs.HTTPError {
	code := "RECORD_NOT_FOUND"
	return errs.NewNotFoundError("Record not found", false, &code)
}

// Fieldset handles GET /api/v1/tables/:table/fieldset/:field.
func (h *RecordsHandler) Fieldset(c echo.Context, req *FieldsetRequest) ([]any, error) {
	return h.records.Fieldset(c.Request().Context(), req.Table, req.Field, queryFilter(c))
}

// Delete handles DELETE /api/v1/tables/:table/records. A request without
// filter parameters is refused by the DAL with a 400.
func (h *RecordsHandler) Delete(c echo.Context, req *DeleteRecordsRequest) (DeleteRecordsResponse, error) {
	deleted, err := h.records.Delete(c.Request().Context(), req.Table, queryFilter(c))
	if err != nil {
		return DeleteRecordsResponse{}, err
	}
	return DeleteRecordsResponse{Table: req.Table, Deleted: deleted}, nil
}

// DeleteOne handles DELETE /api/v1/tables/:table/record: the filter must
// match exactly one row, which is removed.
func (h *RecordsHandler) DeleteOne(c echo.Context, req *DeleteRecordsRequest) error {
	found, err := h.records.DeleteOne(c.Request().Context(), req.Table, queryFilter(c))
	if err != nil {
		return err
	}
	if !found {
		return recordNotFound()
	}
	return nil
}
