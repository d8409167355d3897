package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/report"
)

func TestReportLifecycleEndpoints(t *testing.T) {
	env := newTestEnv(t)
	pdf := []byte("%PDF-1.4 informe")
	fields := map[string]string{"periodo_id": itoa(env.per.ID)}

	var created report.Report

	t.Run("docente delivers", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/informes",
			env.token(t, env.docente), fields, pdf)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		decodeBody(t, rec, &created)
		assert.Equal(t, plan.StatusDelivered, created.Status)
		assert.Equal(t, env.docente.ID, created.TeacherID)
		assert.True(t, env.store.Exists(created.FilePath.String))
	})

	t.Run("missing file", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPost, "/v1/informes",
			env.token(t, env.docente), fields, nil)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("rector approves on resubmit", func(t *testing.T) {
		req, rec := newUploadRequest(t, http.MethodPut, "/v1/informes/"+itoa(created.ID)+"/entrega",
			env.token(t, env.rector), nil, pdf)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var r report.Report
		decodeBody(t, rec, &r)
		assert.Equal(t, plan.StatusApproved, r.Status)
	})

	t.Run("query by period", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/informes?periodo_id="+itoa(env.per.ID),
			env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var infos []report.Info
		decodeBody(t, rec, &infos)
		require.Len(t, infos, 1)
		assert.Equal(t, "Pablo Docente", infos[0].TeacherName)
	})

	t.Run("count staff only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/informes/conteo?periodo_id="+itoa(env.per.ID),
			env.token(t, env.docente))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

		req, rec = newAuthRequest(http.MethodGet, "/v1/informes/conteo?periodo_id="+itoa(env.per.ID),
			env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res map[string]int
		decodeBody(t, rec, &res)
		assert.Equal(t, 1, res["total"])
	})

	t.Run("download", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/informes/"+itoa(created.ID)+"/archivo",
			env.token(t, env.docente))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, pdf, rec.Body.Bytes())
	})
}

func TestReportCommentsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	pdf := []byte("%PDF-1.4 informe")

	req, rec := newUploadRequest(t, http.MethodPost, "/v1/informes",
		env.token(t, env.docente), map[string]string{"periodo_id": itoa(env.per.ID)}, pdf)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created report.Report
	decodeBody(t, rec, &created)

	body := marshallObj(t, report.NewComment{ReportID: created.ID, Body: "Revisar conclusiones"})
	req, rec = newAuthRequest(http.MethodPost, "/v1/informes/comentarios", env.token(t, env.rector), body)
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req, rec = newAuthRequest(http.MethodGet, "/v1/informes/"+itoa(created.ID)+"/comentarios",
		env.token(t, env.docente))
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var comments []report.CommentInfo
	decodeBody(t, rec, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "Revisar conclusiones", comments[0].Body)
}
