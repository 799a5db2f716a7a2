package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/cla-admin/internal/database"
	"github.com/deppfellow/cla-admin/internal/errs"
	"github.com/deppfellow/cla-admin/internal/server"
	"github.com/deppfellow/cla-admin/internal/sqlerr"
)

// GlobalMiddlewares holds the middleware applied to every route and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// RequestLogger logs one "API" line per request with a level derived from
// the final status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			statusCode := v.Status

			// The error handler writes the response after this runs, so the
			// status has to come from the error itself.
			// See https://github.com/labstack/echo/issues/2310
			if v.Error != nil {
				statusCode = statusOf(toHTTPError(v.Error, global.server.DB.Prefix()))
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}
			if userID := GetUserID(c); userID != "" {
				e = e.Str("user_id", userID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

func statusOf(err error) int {
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.As(err, &echoErr):
		return echoErr.Code
	default:
		return http.StatusInternalServerError
	}
}

// toHTTPError classifies err for the client.
//
//   - *errs.HTTPError and *echo.HTTPError pass through (echo 404 and 401 get our shape)
//   - DAL invalid argument: 400
//   - DAL ambiguous lookup: 409
//   - DAL hydration failures (unknown field, missing id, bad value): 500
//   - everything else goes through sqlerr.HandleError
func toHTTPError(err error, tablePrefix string) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		switch echoErr.Code {
		case http.StatusNotFound:
			return errs.NewNotFoundError("Route not found", false, nil)
		case http.StatusUnauthorized:
			return errs.NewUnauthorizedError("Authentication required", false)
		}
		return echoErr
	}

	var dalErr *database.Error
	if errors.As(err, &dalErr) {
		switch dalErr.Kind {
		case database.KindInvalidArgument:
			code := "INVALID_ARGUMENT"
			msg := "Invalid request"
			if dalErr.Err != nil {
				msg = dalErr.Err.Error()
			}
			return errs.NewBadRequestError(msg, false, &code, nil, nil)

		case database.KindAmbiguous:
			code := "AMBIGUOUS_LOOKUP"
			return errs.NewConflictError("More than one record matches the given filter", false, &code)

		case database.KindUnknownField, database.KindMissingID, database.KindHydration:
			return errs.NewInternalServerError()
		}
	}

	return sqlerr.HandleError(err, tablePrefix)
}

// GlobalErrorHandler is the final error funnel of the HTTP server. It logs
// the original error and answers with an errs.HTTPError body.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	originalErr := err
	err = toHTTPError(err, global.server.DB.Prefix())

	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError
	var status int
	var code string
	var message string
	var fieldErrors []errs.FieldError
	var action *errs.Action

	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Status
		code = httpErr.Code
		message = httpErr.Message
		fieldErrors = httpErr.Errors
		action = httpErr.Action

	case errors.As(err, &echoErr):
		status = echoErr.Code
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(status))
		if msg, ok := echoErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(echoErr.Code)
		}

	default:
		status = http.StatusInternalServerError
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(http.StatusInternalServerError))
		message = http.StatusText(http.StatusInternalServerError)
	}

	logger := *GetLogger(c)

	evt := logger.Error()
	if status < http.StatusInternalServerError {
		evt = logger.Warn()
	}
	evt = evt.Stack().Err(originalErr).Int("status", status).Str("error_code", code)

	var dalErr *database.Error
	if errors.As(originalErr, &dalErr) {
		evt = evt.Str("dal_op", dalErr.Op).Str("sql", dalErr.SQL)
		if dalErr.Diagnostic != nil {
			evt = evt.Str("db_code", dalErr.Diagnostic.DatabaseCode)
		}
	}
	evt.Msg(message)

	if !c.Response().Committed {
		_ = c.JSON(status, errs.HTTPError{
			Code:     code,
			Message:  message,
			Status:   status,
			Override: httpErr != nil && httpErr.Override,
			Errors:   fieldErrors,
			Action:   action,
		})
	}
}
