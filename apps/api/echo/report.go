package echoapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/report"
	"github.com/planacad/backend/core/teacher"
)

type reportApi struct {
	svc        *report.Service
	teacherSvc *teacher.Service
}

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *report.Service, teacherSvc *teacher.Service) {
	api := reportApi{svc: svc, teacherSvc: teacherSvc}

	rg := g.Group("/informes", jwt)
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.GET("/conteo", api.countByPeriod, staffMiddleware())
	rg.POST("/comentarios", api.addComment)

	dg := rg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("/entrega", api.resubmit)
	dg.GET("/archivo", api.download)
	dg.GET("/comentarios", api.comments)
	dg.DELETE("", api.destroy, rectorMiddleware())
}

// create receives the first multipart upload of a period report. The owning
// teacher always comes from the token.
func (api *reportApi) create(ctx echo.Context) error {
	var data report.NewReport
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReport")
	}

	ctxT, err := getContextTeacher(ctx, api.teacherSvc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}
	data.TeacherID = ctxT.ID

	if err := data.Validate(); err != nil {
		return err
	}

	src, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	r, err := api.svc.Create(ctx.Request().Context(), data, src)
	if err != nil {
		return errors.Wrap(err, "creating report")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *reportApi) resubmit(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	ctxT, err := getContextTeacher(ctx, api.teacherSvc)
	if err != nil {
		return errors.Wrap(err, "getting context teacher")
	}

	src, err := formFile(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	r, err := api.svc.Resubmit(ctx.Request().Context(), id, ctxT.ID, src)
	if err != nil {
		return errors.Wrap(err, "resubmitting report")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) query(ctx echo.Context) error {
	var filter report.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	infos, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying reports")
	}
	if infos == nil {
		infos = []report.Info{}
	}
	return ctx.JSON(http.StatusOK, infos)
}

func (api *reportApi) retrieve(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	r, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "finding report by ID")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *reportApi) countByPeriod(ctx echo.Context) error {
	periodID, err := strconv.Atoi(ctx.QueryParam("periodo_id"))
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "periodo_id", Error: "periodo_id es requerido"})
	}
	n, err := api.svc.CountByPeriod(ctx.Request().Context(), periodID)
	if err != nil {
		return errors.Wrap(err, "counting reports")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"total": n})
}

func (api *reportApi) download(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	data, name, err := api.svc.Download(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "downloading report file")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return ctx.Blob(http.StatusOK, "application/pdf", data)
}

func (api *reportApi) destroy(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting report")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *reportApi) addComment(ctx echo.Context) error {
	var data report.NewComment
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

func (api *reportApi) comments(ctx echo.Context) error {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	comments, err := api.svc.Comments(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "querying comments")
	}
	if comments == nil {
		comments = []report.CommentInfo{}
	}
	return ctx.JSON(http.StatusOK, comments)
}
