package echoapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/teacher"
)

type planApi struct {
	svc        *plan.Service
	teacherSvc *teacher.Service
}

func registerPlanAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *plan.Service, teacherSvc *teacher.Service) {
	api := planApi{svc: svc, teacherSvc: teacherSvc}

	pg := g.Group("/planificaciones", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, staffMiddleware())
	pg.GET("/revision", api.queryForReviewer, staffMiddleware())
	pg.POST("/entrega", api.submit)
	pg.POST("/barrido", api.sweep, rectorMiddleware())
	pg.POST("/comentarios", api.addComment)
	pg.GET("/estado/:id/archivo", api.download)
	pg.GET("/estado/:id/comentarios", api.comments)

	dg := pg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, staffMiddleware())
	dg.DELETE("", api.destroy, rectorMiddleware())
}

func (api *planApi) create(ctx echo.Context) error {
	var data plan.NewPlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPlan")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating plan")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *planApi) query(ctx echo.Context) error {
	var filter plan.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	infos, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying plans")
	}
	if infos == nil {
		infos = []plan.Info{}
	}
	return ctx.JSON(http.StatusOK, infos)
}

// queryForReviewer lists the submissions routed to the calling Area Director
// through their area assignments.
func (api *planApi) queryForReviewer(ctx echo.Context) error {
	ctxT, err := getContextTeacher(ctx, api.teacherSvc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}

	infos, err := api.svc.QueryForReviewer(ctx.Request().Context(), ctxT.ID)
	if err != nil {
		return errors.Wrap(err, "querying plans for reviewer")
	}
	if infos == nil {
		infos = []plan.Info{}
	}
	return ctx.JSON(http.StatusOK, infos)
}

func (api *planApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	p, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding plan by ID")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *planApi) update(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	var data plan.UpdatePlan
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePlan")
	}

	p, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating plan")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *planApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting plan")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// submit receives a multipart PDF upload for a submission record. The acting
// teacher always comes from the token, never from the form.
func (api *planApi) submit(ctx echo.Context) error {
	var data plan.SubmitInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SubmitInput")
	}

	ctxT, err := getContextTeacher(ctx, api.teacherSvc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	data.ActorID = ctxT.ID

	if err := data.Validate(); err != nil {
		return err
	}

	src, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	res, err := api.svc.Submit(ctx.Request().Context(), data, src)
	if err != nil {
		return errors.Wrap(err, "submitting plan file")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *planApi) download(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	data, name, err := api.svc.Download(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "downloading plan file")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return ctx.Blob(http.StatusOK, "application/pdf", data)
}

// sweep marks every pendiente submission past its due date as no_entregado.
func (api *planApi) sweep(ctx echo.Context) error {
	n, err := api.svc.SweepOverdue(ctx.Request().Context(), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "sweeping overdue plans")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"actualizadas": n})
}

func (api *planApi) addComment(ctx echo.Context) error {
	var data plan.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}

	ctxT, err := getContextTeacher(ctx, api.teacherSvc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	data.TeacherID = ctxT.ID

	if err := data.Validate(); err != nil {
		return err
	}

	c, err := api.svc.AddComment(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "adding comment")
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *planApi) comments(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	comments, err := api.svc.Comments(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	if comments == nil {
		comments = []plan.CommentInfo{}
	}
	return ctx.JSON(http.StatusOK, comments)
}
