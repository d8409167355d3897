package echoapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planacad/backend/core/dashboard"
	"github.com/planacad/backend/core/plan"
)

func TestDashboardEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.newPlan(t)

	t.Run("docente forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/totales", env.token(t, env.docente))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("totals", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/totales", env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var totals dashboard.Totals
		decodeBody(t, rec, &totals)
		assert.Equal(t, 3, totals.Teachers)
		assert.Equal(t, 1, totals.Plans)
	})

	t.Run("plans by status", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/planificaciones-por-estado", env.token(t, env.director))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var counts []dashboard.StatusCount
		decodeBody(t, rec, &counts)
		require.Len(t, counts, 1)
		assert.Equal(t, plan.StatusPending, counts[0].Status)
		assert.Equal(t, 1, counts[0].Count)
	})

	t.Run("teacher summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/resumen-profesor/"+itoa(env.docente.ID),
			env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var summary dashboard.TeacherSummary
		decodeBody(t, rec, &summary)
		assert.Equal(t, 1, summary.Pending)
	})

	t.Run("due soon", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/proximas", env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var infos []plan.Info
		decodeBody(t, rec, &infos)
		require.Len(t, infos, 1)
	})

	t.Run("delivered window rejects bad dates", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/dashboard/entregadas?desde=ayer", env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})
}
