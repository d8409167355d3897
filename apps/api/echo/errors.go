package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/area"
	"github.com/planacad/backend/core/period"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/report"
	"github.com/planacad/backend/core/subject"
	"github.com/planacad/backend/core/teacher"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "usuario no autenticado")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "autenticación fallida")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "cuenta desactivada")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "el refresh ha expirado")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permiso denegado")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "no encontrado")
	errFileStoreDown        = echo.NewHTTPError(http.StatusServiceUnavailable, "almacenamiento de archivos no disponible")
)

// isNotFound reports whether err is one of the domain "record not found" sentinels.
func isNotFound(err error) bool {
	switch err {
	case teacher.ErrNotFound,
		area.ErrNotFound,
		area.ErrAssignmentNotFound,
		subject.ErrNotFound,
		period.ErrNotFound,
		plan.ErrNotFound,
		plan.ErrStateNotFound,
		plan.ErrCommentNotFound,
		report.ErrNotFound:
		return true
	}
	return false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			switch {
			case isNotFound(origErr):
				code = errHttpNotFound.Code
				message = errHttpNotFound.Message
			case origErr == plan.ErrNoFile || origErr == report.ErrNoFile:
				code = http.StatusBadRequest
				message = origErr.Error()
			case origErr == core.ErrFileStoreUnavailable:
				code = errFileStoreDown.Code
				message = errFileStoreDown.Message
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var t teacher.Teacher
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					t.ID, _ = strconv.Atoi(claims.Subject)
					t.Name = claims.Name
					t.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), t)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		} else if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
