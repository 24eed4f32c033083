package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/user"
)

var (
	errForbidden   = echo.NewHTTPError(http.StatusForbidden, "This action is unauthorized.")
	errAPINotFound = echo.NewHTTPError(http.StatusNotFound, "API endpoint not found")
	errNotFound    = "Resource not found."
	errServer      = "Server Error"
	errBadBody     = "The request body must be a valid JSON object."
)

// bind decodes the request into dst. A body echo cannot decode is reported as a validation error.
func bind(ctx echo.Context, dst interface{}) error {
	if err := ctx.Bind(dst); err != nil {
		if herr, ok := err.(*echo.HTTPError); ok && herr.Code == http.StatusBadRequest {
			return core.NewValidationError(nil, core.FieldError{Field: "body", Error: errBadBody})
		}
		return errors.Wrap(err, "binding request body")
	}
	return nil
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders our errors in the envelope.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		resp := envelope{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				resp.Message = msg
			} else {
				resp.Message = http.StatusText(code)
			}
		case *core.ValidationError:
			code = http.StatusUnprocessableEntity
			resp.Message = origErr.Error()
			resp.Errors = origErr.FieldMap()
		case validator.ValidationErrors:
			code = http.StatusUnprocessableEntity
			resp.Message = "The given data was invalid."
			resp.Errors = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				if _, ok := resp.Errors[vErr.Field()]; !ok {
					resp.Errors[vErr.Field()] = vErr.Error()
				}
			}
		default:
			switch {
			case origErr == user.ErrUnauthenticated:
				code = http.StatusUnauthorized
				resp.Message = user.ErrUnauthenticated.Error()
			case origErr == core.ErrNotFound:
				code = http.StatusNotFound
				resp.Message = errNotFound
			default: // any other error is a server error
				code = http.StatusInternalServerError
				resp.Message = errServer

				var id core.Identity
				if s, sErr := getContextSession(ctx); sErr == nil {
					id = sessionIdentity(s)
				}
				logger.Error(errServer, errors.Wrap(err, errServer), id, map[string]interface{}{
					"method":     ctx.Request().Method,
					"path":       ctx.Request().URL.Path,
					"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
				})

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			resp.Error = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
