package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core/area"
)

type areaApi struct {
	svc *area.Service
}

func registerAreaAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *area.Service) {
	api := areaApi{svc: svc}

	ag := g.Group("/areas", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, rectorMiddleware())
	ag.GET("/buscar", api.search)

	// reviewer assignments
	ag.POST("/asignaciones", api.assign, rectorMiddleware())
	ag.GET("/asignaciones", api.queryAssignments, staffMiddleware())
	ag.PUT("/asignaciones/:id", api.reassign, rectorMiddleware())
	ag.GET("/profesor/:id", api.teacherAreas)

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, rectorMiddleware())
	dg.DELETE("", api.destroy, rectorMiddleware())
}

func (api *areaApi) create(ctx echo.Context) error {
	var data area.NewArea
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewArea")
	}
	if err := data.Validate(api.svc); err != nil {
		return err
	}

	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating area")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *areaApi) query(ctx echo.Context) error {
	areas, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying areas")
	}
	if areas == nil {
		areas = []area.Area{}
	}
	return ctx.JSON(http.StatusOK, areas)
}

func (api *areaApi) search(ctx echo.Context) error {
	areas, err := api.svc.Search(ctx.Request().Context(), ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "searching areas")
	}
	if areas == nil {
		areas = []area.Area{}
	}
	return ctx.JSON(http.StatusOK, areas)
}

func (api *areaApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	a, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding area by ID")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *areaApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data area.UpdateArea
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateArea")
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding area by ID")
	}
	if err := data.Validate(orig, api.svc); err != nil {
		return err
	}

	a, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating area")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *areaApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting area")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Assignments

func (api *areaApi) assign(ctx echo.Context) error {
	var data area.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	as, err := api.svc.Assign(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "assigning reviewer")
	}
	return ctx.JSON(http.StatusCreated, as)
}

func (api *areaApi) queryAssignments(ctx echo.Context) error {
	assignments, err := api.svc.QueryAssignments(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []area.AssignmentInfo{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *areaApi) reassign(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data area.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	as, err := api.svc.Reassign(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "reassigning reviewer")
	}
	return ctx.JSON(http.StatusOK, as)
}

func (api *areaApi) teacherAreas(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	assignments, err := api.svc.TeacherAreas(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying teacher areas")
	}
	if assignments == nil {
		assignments = []area.AssignmentInfo{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}
