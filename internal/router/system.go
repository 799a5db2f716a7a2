package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/cla-admin/internal/handler"
	"github.com/deppfellow/cla-admin/static"
)

// registerSystemRoutes registers the endpoints outside the admin surface:
// health, the docs UI and its assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.StaticFS("/static", static.Files)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
