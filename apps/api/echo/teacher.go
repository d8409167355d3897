package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/teacher"
)

var errTeacherNotFoundInCtx = errors.New("teacher object not found in echo.Context")

type teacherApi struct {
	svc *teacher.Service
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *teacher.Service) {
	api := teacherApi{svc: svc}

	tg := g.Group("/profesores")

	// un-authed endpoints
	tg.POST("/login", api.login)

	// authed endpoints
	ag := tg.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("", api.create, rectorMiddleware())
	ag.GET("", api.query)
	ag.GET("/roles", api.queryRoles)

	// detail endpoints
	dg := ag.Group("/:id", ctxTeacherOrRectorMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, rectorMiddleware())
}

// Handlers

func (api *teacherApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Email, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *teacherApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *teacherApi) create(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}

	return ctx.JSON(http.StatusCreated, t)
}

func (api *teacherApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	teachers, err := api.svc.QueryAll(ctx.Request().Context(), ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []teacher.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *teacherApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, teacher.Roles)
}

func (api *teacherApi) retrieve(ctx echo.Context) error {
	t, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTeacherNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, t)
}

func (api *teacherApi) update(ctx echo.Context) error {
	t, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTeacherNotFoundInCtx, "retrieving object from context")
	}

	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}

	ctxT, err := getContextTeacher(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	if !ctxT.IsRector() {
		// `Rol`, `Estado` and `IsVerified` can only be changed by the Rector
		if data.Role != "" || data.IsActive != nil || data.IsVerified != nil {
			return errHttpForbidden
		}
	}

	if err := data.Validate(t, api.svc); err != nil {
		return err
	}

	t, err = api.svc.Update(ctx.Request().Context(), t.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}

	return ctx.JSON(http.StatusOK, t)
}

func (api *teacherApi) destroy(ctx echo.Context) error {
	t, ok := ctx.Get("object").(teacher.Teacher)
	if !ok {
		return errors.Wrap(errTeacherNotFoundInCtx, "retrieving object from context")
	}

	// ctxTeacher cannot delete themselves
	ctxT, err := getContextTeacher(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	if t.ID == ctxT.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), t.ID); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ctxTeacherOrRectorMiddleware loads the target teacher into the context.
// Teachers may only access their own record; the Rector may access any.
func ctxTeacherOrRectorMiddleware(svc *teacher.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxT, err := getContextTeacher(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context teacher")
			}

			if id, err := strconv.Atoi(ctx.Param("id")); err == nil {
				if id == ctxT.ID || ctxT.IsRector() {
					if t, err := svc.GetByID(ctx.Request().Context(), id); err == nil {
						ctx.Set("object", t)
						return next(ctx)
					} else if errors.Cause(err) != teacher.ErrNotFound {
						return errors.Wrap(err, "finding teacher by ID")
					}
				}
			}
			return errHttpNotFound
		}
	}
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return core.Validate.Struct(lr)
}
