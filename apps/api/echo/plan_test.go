package echoapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planacad/backend/core/plan"
)

func (env *testEnv) submitFields(st plan.State) map[string]string {
	return map[string]string{
		"id_planificacion":     itoa(st.ID),
		"id_profesor_asignado": itoa(env.docente.ID),
		"periodo_nombre":       "2025-2026",
		"area_codigo":          "MAT",
		"curso_nombre":         "Octavo A",
		"nombre_asignatura":    "Matematicas",
	}
}

func TestPlanCreatePermissions(t *testing.T) {
	env := newTestEnv(t)
	body := marshallObj(t, plan.NewPlan{
		Title:     "Planificacion trimestral",
		DueAt:     time.Now().UTC().Add(72 * time.Hour),
		TeacherID: env.docente.ID,
		SubjectID: env.subj.ID,
		PeriodID:  env.per.ID,
	})

	t.Run("docente forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/planificaciones", env.token(t, env.docente), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("director ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/planificaciones", env.token(t, env.director), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created plan.Plan
		decodeBody(t, rec, &created)
		assert.Equal(t, "Planificacion trimestral", created.Title)
	})
}

func TestPlanSubmitEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, st := env.newPlan(t)
	pdf := []byte("%PDF-1.4 contenido")

	t.Run("missing file", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/planificaciones/entrega",
			env.token(t, env.docente), env.submitFields(st), nil)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("owner first upload delivers", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/planificaciones/entrega",
			env.token(t, env.docente), env.submitFields(st), pdf)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res plan.SubmitResult
		decodeBody(t, rec, &res)
		assert.Equal(t, plan.StatusDelivered, res.Status)
		assert.True(t, env.store.Exists(res.Path))
	})

	t.Run("reviewer resubmission reviews", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/planificaciones/entrega",
			env.token(t, env.director), env.submitFields(st), pdf)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res plan.SubmitResult
		decodeBody(t, rec, &res)
		assert.Equal(t, plan.StatusReviewed, res.Status)
	})

	t.Run("download", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/planificaciones/estado/"+itoa(st.ID)+"/archivo",
			env.token(t, env.docente))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "attachment")
		assert.Equal(t, pdf, rec.Body.Bytes())
	})

	t.Run("unknown state", func(t *testing.T) {
		fields := env.submitFields(st)
		fields["id_planificacion"] = "9999"
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/planificaciones/entrega",
			env.token(t, env.docente), fields, pdf)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})
}

func TestPlanCommentsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	_, st := env.newPlan(t)

	body := marshallObj(t, plan.NewComment{
		StateID:    st.ID,
		Body:       "Falta la bibliografia",
		PlanTitle:  "Planificacion anual",
		PeriodName: "2025-2026",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/planificaciones/comentarios", env.token(t, env.director), body)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, "/v1/planificaciones/estado/"+itoa(st.ID)+"/comentarios",
		env.token(t, env.docente))
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var comments []plan.CommentInfo
	decodeBody(t, rec, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "Falta la bibliografia", comments[0].Body)
	assert.Equal(t, "Diego Director", comments[0].TeacherName)
}

func TestPlanSweepEndpoint(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.planSvc.Create(context.Background(), plan.NewPlan{
		Title:     "Planificacion vencida",
		DueAt:     time.Now().UTC().Add(-24 * time.Hour),
		TeacherID: env.docente.ID,
		SubjectID: env.subj.ID,
		PeriodID:  env.per.ID,
	})
	require.NoError(t, err)

	t.Run("docente forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/planificaciones/barrido", env.token(t, env.docente))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("rector sweeps", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/planificaciones/barrido", env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res map[string]int
		decodeBody(t, rec, &res)
		assert.Equal(t, 1, res["actualizadas"])
	})
}

func TestPlanQueryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.newPlan(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/planificaciones?profesor_id="+itoa(env.docente.ID),
		env.token(t, env.director))
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var infos []plan.Info
	decodeBody(t, rec, &infos)
	require.Len(t, infos, 1)
	assert.Equal(t, plan.StatusPending, infos[0].Status)
	assert.Equal(t, "Pablo Docente", infos[0].TeacherName)

	// reviewer inbox follows the area assignment
	req, rec = newAuthRequest(http.MethodGet, "/v1/planificaciones/revision", env.token(t, env.director))
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	decodeBody(t, rec, &infos)
	require.Len(t, infos, 1)
}
