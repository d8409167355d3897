package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planacad/backend/core/teacher"
)

func TestTeacherLogin(t *testing.T) {
	env := newTestEnv(t)

	inactive, err := env.teacherSvc.Create(context.Background(), teacher.NewTeacher{
		Name: "Ana Inactiva", Email: "inactiva@colegio.edu", Password: "Secret123",
	})
	require.NoError(t, err)
	f := false
	_, err = env.teacherSvc.Update(context.Background(), inactive.ID, teacher.UpdateTeacher{IsActive: &f})
	require.NoError(t, err)

	tests := []struct {
		name     string
		body     interface{}
		wantCode int
	}{
		{"ok", LoginRequest{Email: "docente@colegio.edu", Password: "Secret123"}, http.StatusOK},
		{"wrong password", LoginRequest{Email: "docente@colegio.edu", Password: "nope1234"}, http.StatusBadRequest},
		{"unknown email", LoginRequest{Email: "nadie@colegio.edu", Password: "Secret123"}, http.StatusBadRequest},
		{"deactivated", LoginRequest{Email: "inactiva@colegio.edu", Password: "Secret123"}, http.StatusForbidden},
		{"missing fields", LoginRequest{}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/profesores/login", "", marshallObj(t, tt.body))
			env.server.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			if tt.wantCode == http.StatusOK {
				var resp LoginResponse
				decodeBody(t, rec, &resp)
				assert.NotEmpty(t, resp.Token)
			}
		})
	}
}

func TestTeacherTokenRefresh(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, env.docente)

	req, rec := newAuthRequest(http.MethodPost, "/v1/profesores/token-refresh", token)
	env.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
}

func TestTeacherCreatePermissions(t *testing.T) {
	env := newTestEnv(t)
	body := marshallObj(t, teacher.NewTeacher{
		Name: "Nuevo Profe", Email: "nuevo@colegio.edu", Password: "Secret123",
	})

	t.Run("docente forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/profesores", env.token(t, env.docente), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("no token", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/profesores", "", body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	})

	t.Run("rector ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/profesores", env.token(t, env.rector), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created teacher.Teacher
		decodeBody(t, rec, &created)
		assert.Equal(t, "nuevo@colegio.edu", created.Email)
		assert.Equal(t, teacher.RoleDocente, created.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/profesores", env.token(t, env.rector), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})
}

func TestTeacherQueryOrdering(t *testing.T) {
	env := newTestEnv(t)

	req, rec := newAuthRequest(http.MethodGet, "/v1/profesores?ordering=-nombre", env.token(t, env.docente))
	env.server.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var teachers []teacher.Teacher
	decodeBody(t, rec, &teachers)
	require.Len(t, teachers, 3)
	assert.Equal(t, "Pablo Docente", teachers[0].Name)
	assert.Equal(t, "Diego Director", teachers[2].Name)
}

func TestTeacherDetailAccess(t *testing.T) {
	env := newTestEnv(t)

	t.Run("own record", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/profesores/"+itoa(env.docente.ID), env.token(t, env.docente))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("other record hidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/profesores/"+itoa(env.rector.ID), env.token(t, env.docente))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	})

	t.Run("rector sees any", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/profesores/"+itoa(env.docente.ID), env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("docente cannot change own role", func(t *testing.T) {
		body := marshallObj(t, teacher.UpdateTeacher{Role: teacher.RoleRector})
		req, rec := newAuthRequest(http.MethodPut, "/v1/profesores/"+itoa(env.docente.ID), env.token(t, env.docente), body)
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("docente updates own phone", func(t *testing.T) {
		body := marshallObj(t, teacher.UpdateTeacher{Phone: "0991234567"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/profesores/"+itoa(env.docente.ID), env.token(t, env.docente), body)
		env.server.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated teacher.Teacher
		decodeBody(t, rec, &updated)
		assert.Equal(t, "0991234567", updated.Phone.String)
	})

	t.Run("rector cannot delete themselves", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/profesores/"+itoa(env.rector.ID), env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("rector deletes teacher", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/profesores/"+itoa(env.docente.ID), env.token(t, env.rector))
		env.server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	})
}
