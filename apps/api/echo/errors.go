package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/fyp/core"
	logsvc "github.com/trezcool/fyp/services/logger"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

var kindStatus = map[core.Kind]int{
	core.KindNotFound:              http.StatusNotFound,
	core.KindConflict:              http.StatusConflict,
	core.KindCapacityExceeded:      http.StatusBadRequest,
	core.KindSupervisorUnavailable: http.StatusBadRequest,
	core.KindInvalidCapacity:       http.StatusBadRequest,
	core.KindNoSlotsAvailable:      http.StatusBadRequest,
	core.KindInvalid:               http.StatusBadRequest,
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		var appErr *core.Error
		if errors.As(err, &appErr) {
			cause = appErr
		}

		switch origErr := cause.(type) {
		case *core.Error:
			if status, ok := kindStatus[origErr.Kind]; ok {
				code = status
				message = echo.Map{"error": origErr.Error(), "code": origErr.Code}
				break
			}
			code, message = serverError(ctx, logger, err)
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
				fldErrs[vErr.Field()] = vErr.Translate(translator)
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
		default: // any other error is a server error
			code, message = serverError(ctx, logger, err)

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
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

func serverError(ctx echo.Context, logger core.Logger, err error) (int, interface{}) {
	msg := http.StatusText(http.StatusInternalServerError)

	var person logsvc.Person
	if claims, cErr := getContextClaims(ctx); cErr == nil {
		person.ID = claims.Subject
		person.Name = claims.Role
	}
	logger.Error(msg, errors.Wrap(err, msg), person, map[string]interface{}{
		"method": ctx.Request().Method, "path": ctx.Path(),
	})

	if ctx.Echo().Debug {
		return http.StatusInternalServerError, err.Error()
	}
	return http.StatusInternalServerError, msg
}
