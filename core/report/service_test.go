package report_test

import (
	"context"
	"io/ioutil"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/period"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/report"
	"github.com/planacad/backend/core/teacher"
	dummymail "github.com/planacad/backend/services/email/dummy"
	logsvc "github.com/planacad/backend/services/logger"
	dummydb "github.com/planacad/backend/storage/database/dummy"
	"github.com/planacad/backend/storage/filestore"
)

type testEnv struct {
	svc     *report.Service
	repo    report.Repository
	store   *filestore.MemoryStore
	mailSvc *dummymail.Service
	rector  teacher.Teacher
	docente teacher.Teacher
	per     period.Period
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := dummydb.Open()
	require.NoError(t, err)

	conf := &core.Config{}
	mailSvc := dummymail.NewService()
	logger := logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))

	teacherSvc := teacher.NewService(dummydb.NewTeacherRepository(db), mailSvc, conf)
	periodSvc := period.NewService(dummydb.NewPeriodRepository(db))

	store := filestore.NewMemoryStore()
	repo := dummydb.NewReportRepository(db)
	svc := report.NewService(repo, teacherSvc, periodSvc, store, mailSvc, logger)

	env := &testEnv{svc: svc, repo: repo, store: store, mailSvc: mailSvc}

	env.rector, err = teacherSvc.Create(ctx, teacher.NewTeacher{
		Name: "Marta Rector", Email: "rector@colegio.edu", Password: "Secret123", Role: teacher.RoleRector,
	})
	require.NoError(t, err)
	env.docente, err = teacherSvc.Create(ctx, teacher.NewTeacher{
		Name: "Pablo Docente", Email: "docente@colegio.edu", Password: "Secret123",
	})
	require.NoError(t, err)

	env.per, err = periodSvc.Create(ctx, period.NewPeriod{
		Name:     "2025-2026",
		StartsAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	mailSvc.Clear()
	return env
}

func (env *testEnv) create(t *testing.T, content string) report.Report {
	t.Helper()
	r, err := env.svc.Create(context.Background(), report.NewReport{
		TeacherID: env.docente.ID,
		PeriodID:  env.per.ID,
	}, strings.NewReader(content))
	require.NoError(t, err)
	return r
}

func TestCreateDeliversAndNotifiesRector(t *testing.T) {
	env := newTestEnv(t)

	r := env.create(t, "informe v1")

	assert.Equal(t, plan.StatusDelivered, r.Status)
	require.True(t, r.FilePath.Valid)
	assert.True(t, strings.HasPrefix(r.FilePath.String, "uploads/informe/2025-2026/"))
	assert.True(t, env.store.Exists(r.FilePath.String))

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, env.rector.Email, sent[0].To[0].Address)
}

func TestResubmit(t *testing.T) {
	tests := []struct {
		name       string
		actor      func(env *testEnv) int
		wantStatus string
		wantNotice bool
	}{
		{"rector approves", func(env *testEnv) int { return env.rector.ID }, plan.StatusApproved, true},
		{"owner redelivers", func(env *testEnv) int { return env.docente.ID }, plan.StatusDelivered, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			r := env.create(t, "informe v1")
			oldPath := r.FilePath.String
			env.mailSvc.Clear()

			r, err := env.svc.Resubmit(context.Background(), r.ID, tc.actor(env), strings.NewReader("informe v2"))
			require.NoError(t, err)

			assert.Equal(t, tc.wantStatus, r.Status)
			require.True(t, r.FilePath.Valid)
			assert.Contains(t, r.FilePath.String, "_"+tc.wantStatus+"_")
			assert.True(t, env.store.Exists(r.FilePath.String))
			if r.FilePath.String != oldPath {
				assert.False(t, env.store.Exists(oldPath))
			}

			sent := env.mailSvc.SentMessages()
			if tc.wantNotice {
				require.Len(t, sent, 1)
				assert.Equal(t, env.docente.Email, sent[0].To[0].Address)
			} else {
				assert.Empty(t, sent)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := env.create(t, "contenido informe")

	data, name, err := env.svc.Download(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, "contenido informe", string(data))
	assert.Contains(t, r.FilePath.String, name)

	_, _, err = env.svc.Download(ctx, 404)
	assert.Equal(t, report.ErrNotFound, errors.Cause(err))
}

func TestDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := env.create(t, "informe v1")

	require.NoError(t, env.svc.Delete(ctx, r.ID))

	_, err := env.svc.GetByID(ctx, r.ID)
	assert.Equal(t, report.ErrNotFound, errors.Cause(err))
	assert.False(t, env.store.Exists(r.FilePath.String))
}

// Deleting a report whose archivo is null must not touch the file store.
func TestDeleteWithoutFileSkipsStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	r, err := env.repo.CreateReport(ctx, report.Report{
		TeacherID: env.docente.ID,
		PeriodID:  env.per.ID,
		Status:    plan.StatusDelivered,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	require.False(t, r.FilePath.Valid)

	env.store.DeleteErr = errors.New("530 not logged in")
	require.NoError(t, env.svc.Delete(ctx, r.ID))

	assert.Empty(t, env.store.DeleteCalls)
	_, err = env.svc.GetByID(ctx, r.ID)
	assert.Equal(t, report.ErrNotFound, errors.Cause(err))
}

func TestAddCommentNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	r := env.create(t, "informe v1")
	env.mailSvc.Clear()

	c, err := env.svc.AddComment(ctx, report.NewComment{
		TeacherID: env.rector.ID,
		ReportID:  r.ID,
		Body:      "Revisar las conclusiones",
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, env.docente.Email, sent[0].To[0].Address)

	comments, err := env.svc.Comments(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, env.rector.Name, comments[0].TeacherName)
}

func TestQueryAndCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.create(t, "informe v1")

	infos, err := env.svc.Query(ctx, report.QueryFilter{PeriodID: env.per.ID})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, env.docente.Name, infos[0].TeacherName)
	assert.Equal(t, "2025-2026", infos[0].PeriodName)

	n, err := env.svc.CountByPeriod(ctx, env.per.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = env.svc.CountByPeriod(ctx, 999)
	require.NoError(t, err)
	assert.Zero(t, n)
}
