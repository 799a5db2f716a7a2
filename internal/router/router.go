// Package router builds the Echo instance: the global middleware chain,
// the error handler and every route.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/cla-admin/internal/handler"
	"github.com/deppfellow/cla-admin/internal/middleware"
	"github.com/deppfellow/cla-admin/internal/server"
)

// NewRouter wires the middleware chain in request order: rate limit,
// CORS and security headers, request id, APM transaction, request logger
// context, access log and panic recovery.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	router.Use(
		middlewares.RateLimit.Limit(),
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	requireAdmin := middlewares.Auth.RequireAdmin()

	router.GET("/", handler.HandlePage(h.Home.Index, http.StatusOK), requireAdmin)

	v1 := router.Group("/api/v1", requireAdmin)
	registerRecordRoutes(v1, h)
	v1.GET("/extracts", handler.Handle(h.Extracts.List, http.StatusOK))

	return router
}

func registerRecordRoutes(g *echo.Group, h *handler.Handlers) {
	tables := g.Group("/tables/:table")

	tables.GET("/records", handler.Handle(h.Records.List, http.StatusOK))
	tables.DELETE("/records", handler.Handle(h.Records.Delete, http.StatusOK))
	tables.GET("/record", handler.Handle(h.Records.Get, http.StatusOK))
	tables.DELETE("/record", handler.HandleNoContent(h.Records.DeleteOne, http.StatusNoContent))
	tables.GET("/fieldset/:field", handler.Handle(h.Records.Fieldset, http.StatusOK))
}
