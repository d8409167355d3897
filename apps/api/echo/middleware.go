package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core/teacher"
)

// rectorMiddleware only lets the Rector through.
func rectorMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(teacher.RoleRector)
}

// staffMiddleware lets the Rector and Area Directors through.
func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(teacher.RoleRector, teacher.RoleAreaDirector)
}

func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if _, err := getContextClaims(ctx); err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
