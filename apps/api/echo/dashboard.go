package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/dashboard"
	"github.com/planacad/backend/core/plan"
)

type dashboardApi struct {
	svc *dashboard.Service
}

func registerDashboardAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *dashboard.Service) {
	api := dashboardApi{svc: svc}

	dg := g.Group("/dashboard", jwt, staffMiddleware())
	dg.GET("/totales", api.totals)
	dg.GET("/profesores-por-rol", api.teachersByRole)
	dg.GET("/planificaciones-por-estado", api.plansByStatus)
	dg.GET("/planificaciones-por-area", api.plansByArea)
	dg.GET("/planificaciones-por-periodo", api.plansByPeriod)
	dg.GET("/resumen-profesor/:id", api.teacherSummary)
	dg.GET("/atrasadas", api.overduePlans)
	dg.GET("/proximas", api.dueSoon)
	dg.GET("/entregadas", api.deliveredBetween)
}

func (api *dashboardApi) totals(ctx echo.Context) error {
	totals, err := api.svc.Totals(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying totals")
	}
	return ctx.JSON(http.StatusOK, totals)
}

func (api *dashboardApi) teachersByRole(ctx echo.Context) error {
	counts, err := api.svc.TeachersByRole(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers by role")
	}
	if counts == nil {
		counts = []dashboard.RoleCount{}
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *dashboardApi) plansByStatus(ctx echo.Context) error {
	periodID, _ := strconv.Atoi(ctx.QueryParam("periodo_id")) // 0 means all periods
	counts, err := api.svc.PlansByStatus(ctx.Request().Context(), periodID)
	if err != nil {
		return errors.Wrap(err, "querying plans by status")
	}
	if counts == nil {
		counts = []dashboard.StatusCount{}
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *dashboardApi) plansByArea(ctx echo.Context) error {
	periodID, _ := strconv.Atoi(ctx.QueryParam("periodo_id"))
	counts, err := api.svc.PlansByArea(ctx.Request().Context(), periodID)
	if err != nil {
		return errors.Wrap(err, "querying plans by area")
	}
	if counts == nil {
		counts = []dashboard.AreaCount{}
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *dashboardApi) plansByPeriod(ctx echo.Context) error {
	counts, err := api.svc.PlansByPeriod(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying plans by period")
	}
	if counts == nil {
		counts = []dashboard.PeriodCount{}
	}
	return ctx.JSON(http.StatusOK, counts)
}

func (api *dashboardApi) teacherSummary(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	summary, err := api.svc.TeacherSummary(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying teacher summary")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *dashboardApi) overduePlans(ctx echo.Context) error {
	periodID, _ := strconv.Atoi(ctx.QueryParam("periodo_id"))
	infos, err := api.svc.OverduePlans(ctx.Request().Context(), periodID)
	if err != nil {
		return errors.Wrap(err, "querying overdue plans")
	}
	if infos == nil {
		infos = []plan.Info{}
	}
	return ctx.JSON(http.StatusOK, infos)
}

func (api *dashboardApi) dueSoon(ctx echo.Context) error {
	infos, err := api.svc.DueSoon(ctx.Request().Context(), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "querying plans due soon")
	}
	if infos == nil {
		infos = []plan.Info{}
	}
	return ctx.JSON(http.StatusOK, infos)
}

// deliveredBetween lists plans delivered in the [desde, hasta) window,
// defaulting to the last 7 days. Bounds are RFC 3339 timestamps.
func (api *dashboardApi) deliveredBetween(ctx echo.Context) error {
	now := time.Now().UTC()
	from, to := now.AddDate(0, 0, -7), now

	if v := ctx.QueryParam("desde"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "desde", Error: "fecha inválida"})
		}
		from = t
	}
	if v := ctx.QueryParam("hasta"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return core.NewValidationError(nil, core.FieldError{Field: "hasta", Error: "fecha inválida"})
		}
		to = t
	}

	infos, err := api.svc.DeliveredBetween(ctx.Request().Context(), from, to)
	if err != nil {
		return errors.Wrap(err, "querying delivered plans")
	}
	if infos == nil {
		infos = []plan.Info{}
	}
	return ctx.JSON(http.StatusOK, infos)
}
