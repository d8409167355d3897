package plan_test

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/area"
	"github.com/planacad/backend/core/period"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/subject"
	"github.com/planacad/backend/core/teacher"
	dummymail "github.com/planacad/backend/services/email/dummy"
	logsvc "github.com/planacad/backend/services/logger"
	dummydb "github.com/planacad/backend/storage/database/dummy"
	"github.com/planacad/backend/storage/filestore"
)

func TestMain(m *testing.M) {
	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)

	os.Exit(m.Run())
}

type testEnv struct {
	svc      *plan.Service
	repo     plan.Repository
	store    *filestore.MemoryStore
	mailSvc  *dummymail.Service
	rector   teacher.Teacher
	director teacher.Teacher
	docente  teacher.Teacher
	assign   area.Assignment
	subj     subject.Subject
	per      period.Period
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
	areaSvc := area.NewService(dummydb.NewAreaRepository(db), teacherSvc)
	subjectSvc := subject.NewService(dummydb.NewSubjectRepository(db), areaSvc)
	periodSvc := period.NewService(dummydb.NewPeriodRepository(db))

	store := filestore.NewMemoryStore()
	repo := dummydb.NewPlanRepository(db)
	svc := plan.NewService(repo, teacherSvc, areaSvc, subjectSvc, store, mailSvc, logger)

	env := &testEnv{svc: svc, repo: repo, store: store, mailSvc: mailSvc}

	env.rector, err = teacherSvc.Create(ctx, teacher.NewTeacher{
		Name: "Marta Rector", Email: "rector@colegio.edu", Password: "Secret123", Role: teacher.RoleRector,
	})
	require.NoError(t, err)
	env.director, err = teacherSvc.Create(ctx, teacher.NewTeacher{
		Name: "Diego Director", Email: "director@colegio.edu", Password: "Secret123", Role: teacher.RoleAreaDirector,
	})
	require.NoError(t, err)
	env.docente, err = teacherSvc.Create(ctx, teacher.NewTeacher{
		Name: "Pablo Docente", Email: "docente@colegio.edu", Password: "Secret123",
	})
	require.NoError(t, err)

	a, err := areaSvc.Create(ctx, area.NewArea{Name: "Matematicas", Code: "MAT"})
	require.NoError(t, err)
	env.assign, err = areaSvc.Assign(ctx, area.NewAssignment{TeacherID: env.director.ID, AreaID: a.ID})
	require.NoError(t, err)

	env.subj, err = subjectSvc.Create(ctx, subject.NewSubject{
		Code: "MAT-8A", Name: "Matematicas", Course: "Octavo A", AreaID: a.ID,
	})
	require.NoError(t, err)

	env.per, err = periodSvc.Create(ctx, period.NewPeriod{
		Name:     "2025-2026",
		StartsAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	mailSvc.Clear() // drop the welcome emails
	return env
}

func (env *testEnv) newPlan(t *testing.T, due time.Time) (plan.Plan, plan.State) {
	t.Helper()
	p, err := env.svc.Create(context.Background(), plan.NewPlan{
		Title:                "Planificacion anual",
		DueAt:                due,
		TeacherID:            env.docente.ID,
		SubjectID:            env.subj.ID,
		PeriodID:             env.per.ID,
		ReviewerAssignmentID: env.assign.ID,
	})
	require.NoError(t, err)

	st, err := env.repo.GetStateByPlanID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, plan.StatusPending, st.Status)
	require.False(t, st.FilePath.Valid)
	env.mailSvc.Clear()
	return p, st
}

func (env *testEnv) submitInput(st plan.State) plan.SubmitInput {
	return plan.SubmitInput{
		StateID:           st.ID,
		AssignedTeacherID: env.docente.ID,
		PeriodName:        "2025-2026",
		AreaCode:          "MAT",
		Course:            "Octavo A",
		SubjectName:       "Matematicas",
	}
}

func (env *testEnv) submit(t *testing.T, st plan.State, actorID int, content string) plan.SubmitResult {
	t.Helper()
	in := env.submitInput(st)
	in.ActorID = actorID
	res, err := env.svc.Submit(context.Background(), in, strings.NewReader(content))
	require.NoError(t, err)
	return res
}

func TestSubmitFirstUploadAlwaysDelivers(t *testing.T) {
	tests := []struct {
		name  string
		actor func(env *testEnv) int
	}{
		{"owner", func(env *testEnv) int { return env.docente.ID }},
		{"reviewer", func(env *testEnv) int { return env.director.ID }},
		{"approver", func(env *testEnv) int { return env.rector.ID }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, st := env.newPlan(t, time.Now().Add(24*time.Hour))

			res := env.submit(t, st, tc.actor(env), "v1")

			assert.Equal(t, plan.StatusDelivered, res.Status)
			assert.Equal(t, "uploads/2025-2026/MAT/Octavo A/Matematicas", res.Path[:strings.LastIndex(res.Path, "/")])
			assert.True(t, env.store.Exists(res.Path))

			// the approver is told about the first upload
			sent := env.mailSvc.SentMessages()
			require.Len(t, sent, 1)
			assert.Equal(t, env.rector.Email, sent[0].To[0].Address)
		})
	}
}

func TestSubmitStatusFollowsActor(t *testing.T) {
	tests := []struct {
		name       string
		actor      func(env *testEnv) int
		wantStatus string
		wantNotice bool
	}{
		{"reviewer marks reviewed", func(env *testEnv) int { return env.director.ID }, plan.StatusReviewed, true},
		{"approver marks approved", func(env *testEnv) int { return env.rector.ID }, plan.StatusApproved, true},
		{"owner redelivers", func(env *testEnv) int { return env.docente.ID }, plan.StatusDelivered, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			_, st := env.newPlan(t, time.Now().Add(24*time.Hour))
			first := env.submit(t, st, env.docente.ID, "v1")
			env.mailSvc.Clear()

			st, err := env.repo.GetStateByID(context.Background(), st.ID)
			require.NoError(t, err)

			res := env.submit(t, st, tc.actor(env), "v2")

			assert.Equal(t, tc.wantStatus, res.Status)
			assert.Contains(t, res.Path, "_"+tc.wantStatus+".pdf")
			assert.True(t, env.store.Exists(res.Path))
			if res.Path != first.Path {
				// the previous revision is gone
				assert.False(t, env.store.Exists(first.Path))
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

// When the same teacher is both the reviewer (via the area assignment) and
// the approver, the reviewer relationship wins.
func TestSubmitReviewerTakesPriorityOverApprover(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, st := env.newPlan(t, time.Now().Add(24*time.Hour))
	env.submit(t, st, env.docente.ID, "v1")

	st, err := env.repo.GetStateByID(ctx, st.ID)
	require.NoError(t, err)
	st.ApproverID.SetValid(env.director.ID)
	st, err = env.repo.UpdateState(ctx, st)
	require.NoError(t, err)

	res := env.submit(t, st, env.director.ID, "v2")
	assert.Equal(t, plan.StatusReviewed, res.Status)
}

// A dangling reviewer assignment must not grant reviewer status to anyone; it
// simply falls through to the other checks.
func TestSubmitDanglingAssignmentIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, st := env.newPlan(t, time.Now().Add(24*time.Hour))
	env.submit(t, st, env.docente.ID, "v1")

	st, err := env.repo.GetStateByID(ctx, st.ID)
	require.NoError(t, err)
	st.ReviewerAssignmentID.SetValid(9999)
	st, err = env.repo.UpdateState(ctx, st)
	require.NoError(t, err)

	res := env.submit(t, st, env.director.ID, "v2")
	assert.Equal(t, plan.StatusDelivered, res.Status)
}

func TestSubmitRejectsUnsafePathInput(t *testing.T) {
	env := newTestEnv(t)
	_, st := env.newPlan(t, time.Now().Add(24*time.Hour))

	in := env.submitInput(st)
	in.ActorID = env.docente.ID
	in.PeriodName = "../../etc"

	_, err := env.svc.Submit(context.Background(), in, strings.NewReader("v1"))
	require.Error(t, err)
	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.False(t, env.store.HasDir("uploads"))
}

func TestSubmitStoreFailureKeepsState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, st := env.newPlan(t, time.Now().Add(24*time.Hour))

	env.store.StoreErr = errors.New("connection reset")
	in := env.submitInput(st)
	in.ActorID = env.docente.ID
	_, err := env.svc.Submit(ctx, in, strings.NewReader("v1"))
	require.Error(t, err)

	st, err = env.repo.GetStateByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.StatusPending, st.Status)
	assert.False(t, st.FilePath.Valid)
	assert.Empty(t, env.mailSvc.SentMessages())
}

// Failing to delete the previous revision is logged and ignored; the new
// revision still lands.
func TestSubmitOldFileDeleteFailureIgnored(t *testing.T) {
	env := newTestEnv(t)
	_, st := env.newPlan(t, time.Now().Add(24*time.Hour))
	env.submit(t, st, env.docente.ID, "v1")

	st, err := env.repo.GetStateByID(context.Background(), st.ID)
	require.NoError(t, err)

	env.store.DeleteErr = errors.New("550 permission denied")
	res := env.submit(t, st, env.director.ID, "v2")

	assert.Equal(t, plan.StatusReviewed, res.Status)
	assert.True(t, env.store.Exists(res.Path))
}

func TestSubmitUnknownState(t *testing.T) {
	env := newTestEnv(t)

	in := env.submitInput(plan.State{ID: 404})
	in.ActorID = env.docente.ID
	_, err := env.svc.Submit(context.Background(), in, strings.NewReader("v1"))
	assert.Equal(t, plan.ErrStateNotFound, errors.Cause(err))
}

func TestDownload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, st := env.newPlan(t, time.Now().Add(24*time.Hour))

	_, _, err := env.svc.Download(ctx, st.ID)
	assert.Equal(t, plan.ErrNoFile, errors.Cause(err))

	res := env.submit(t, st, env.docente.ID, "contenido pdf")

	data, name, err := env.svc.Download(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "contenido pdf", string(data))
	assert.Contains(t, res.Path, name)
}

func TestSweepOverdue(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	now := time.Now()

	_, overdue := env.newPlan(t, now.Add(-48*time.Hour))
	_, upcoming := env.newPlan(t, now.Add(48*time.Hour))
	_, delivered := env.newPlan(t, now.Add(-48*time.Hour))
	env.submit(t, delivered, env.docente.ID, "v1")
	env.mailSvc.Clear()

	n, err := env.svc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	st, err := env.repo.GetStateByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.StatusNotDelivered, st.Status)

	// not yet due: untouched
	st, err = env.repo.GetStateByID(ctx, upcoming.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.StatusPending, st.Status)

	// already delivered: the sweep never downgrades
	st, err = env.repo.GetStateByID(ctx, delivered.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.StatusDelivered, st.Status)

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, env.docente.Email, sent[0].To[0].Address)

	// a second pass finds nothing left to flip
	n, err = env.svc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestUpdateDiscardsStoredFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, st := env.newPlan(t, time.Now().Add(24*time.Hour))
	res := env.submit(t, st, env.docente.ID, "v1")

	_, err := env.svc.Update(ctx, p.ID, plan.UpdatePlan{Title: "Planificacion trimestral"})
	require.NoError(t, err)

	st, err = env.repo.GetStateByID(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.StatusPending, st.Status)
	assert.False(t, st.FilePath.Valid)
	assert.False(t, env.store.Exists(res.Path))
}

func TestDeleteRemovesStoredFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, st := env.newPlan(t, time.Now().Add(24*time.Hour))
	res := env.submit(t, st, env.docente.ID, "v1")

	require.NoError(t, env.svc.Delete(ctx, p.ID))

	_, err := env.svc.GetByID(ctx, p.ID)
	assert.Equal(t, plan.ErrNotFound, errors.Cause(err))
	_, err = env.repo.GetStateByID(ctx, st.ID)
	assert.Equal(t, plan.ErrStateNotFound, errors.Cause(err))
	assert.False(t, env.store.Exists(res.Path))
}

// A plan that never received a file has a null archivo; deleting it must not
// touch the file store at all.
func TestDeleteWithoutFileSkipsStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, st := env.newPlan(t, time.Now().Add(24*time.Hour))

	env.store.DeleteErr = errors.New("530 not logged in")
	require.NoError(t, env.svc.Delete(ctx, p.ID))

	assert.Empty(t, env.store.DeleteCalls)
	_, err := env.svc.GetByID(ctx, p.ID)
	assert.Equal(t, plan.ErrNotFound, errors.Cause(err))
	_, err = env.repo.GetStateByID(ctx, st.ID)
	assert.Equal(t, plan.ErrStateNotFound, errors.Cause(err))
}

func TestAddCommentNotifiesOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, st := env.newPlan(t, time.Now().Add(24*time.Hour))

	c, err := env.svc.AddComment(ctx, plan.NewComment{
		TeacherID: env.director.ID,
		StateID:   st.ID,
		Body:      "Falta la seccion de evaluacion",
	})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)

	sent := env.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, env.docente.Email, sent[0].To[0].Address)

	comments, err := env.svc.Comments(ctx, st.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "Falta la seccion de evaluacion", comments[0].Body)
	assert.Equal(t, env.director.Name, comments[0].TeacherName)
}

func TestQueryForReviewer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.newPlan(t, time.Now().Add(24*time.Hour))

	infos, err := env.svc.QueryForReviewer(ctx, env.director.ID)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, env.docente.Name, infos[0].TeacherName)
	assert.Equal(t, "MAT", infos[0].AreaCode)

	infos, err = env.svc.QueryForReviewer(ctx, env.rector.ID)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
