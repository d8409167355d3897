package dashboard_test

import (
	"context"
	"io/ioutil"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/area"
	"github.com/planacad/backend/core/dashboard"
	"github.com/planacad/backend/core/period"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/subject"
	"github.com/planacad/backend/core/teacher"
	dummymail "github.com/planacad/backend/services/email/dummy"
	logsvc "github.com/planacad/backend/services/logger"
	dummydb "github.com/planacad/backend/storage/database/dummy"
	"github.com/planacad/backend/storage/filestore"
)

func TestDashboardAggregates(t *testing.T) {
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
	planSvc := plan.NewService(dummydb.NewPlanRepository(db), teacherSvc, areaSvc, subjectSvc,
		filestore.NewMemoryStore(), mailSvc, logger)
	svc := dashboard.NewService(dummydb.NewDashboardRepository(db))

	rector, err := teacherSvc.Create(ctx, teacher.NewTeacher{
		Name: "Marta Rector", Email: "rector@colegio.edu", Password: "Secret123", Role: teacher.RoleRector,
	})
	require.NoError(t, err)
	docente, err := teacherSvc.Create(ctx, teacher.NewTeacher{
		Name: "Pablo Docente", Email: "docente@colegio.edu", Password: "Secret123",
	})
	require.NoError(t, err)
	_ = rector

	a, err := areaSvc.Create(ctx, area.NewArea{Name: "Matematicas", Code: "MAT"})
	require.NoError(t, err)
	subj, err := subjectSvc.Create(ctx, subject.NewSubject{
		Code: "MAT-8A", Name: "Matematicas", Course: "Octavo A", AreaID: a.ID,
	})
	require.NoError(t, err)
	per, err := periodSvc.Create(ctx, period.NewPeriod{
		Name:     "2025-2026",
		StartsAt: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	now := time.Now()
	newPlan := func(due time.Time) plan.Plan {
		p, err := planSvc.Create(ctx, plan.NewPlan{
			Title: "Planificacion", DueAt: due,
			TeacherID: docente.ID, SubjectID: subj.ID, PeriodID: per.ID,
		})
		require.NoError(t, err)
		return p
	}
	overduePlan := newPlan(now.Add(-48 * time.Hour))
	newPlan(now.Add(72 * time.Hour)) // due soon
	deliveredPlan := newPlan(now.Add(-24 * time.Hour))

	// deliver one plan
	state, err := dummydb.NewPlanRepository(db).GetStateByPlanID(ctx, deliveredPlan.ID)
	require.NoError(t, err)
	_, err = planSvc.Submit(ctx, plan.SubmitInput{
		StateID: state.ID, ActorID: docente.ID, AssignedTeacherID: docente.ID,
		PeriodName: "2025-2026", AreaCode: "MAT", Course: "Octavo A", SubjectName: "Matematicas",
	}, strings.NewReader("v1"))
	require.NoError(t, err)

	// flip the overdue one
	n, err := planSvc.SweepOverdue(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	_ = overduePlan

	totals, err := svc.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, totals.Teachers)
	assert.Equal(t, 1, totals.Areas)
	assert.Equal(t, 3, totals.Plans)

	roles, err := svc.TeachersByRole(ctx)
	require.NoError(t, err)
	assert.Equal(t, []dashboard.RoleCount{
		{Role: teacher.RoleDocente, Count: 1},
		{Role: teacher.RoleRector, Count: 1},
	}, roles)

	statuses, err := svc.PlansByStatus(ctx, per.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []dashboard.StatusCount{
		{Status: plan.StatusPending, Count: 1},
		{Status: plan.StatusDelivered, Count: 1},
		{Status: plan.StatusNotDelivered, Count: 1},
	}, statuses)

	byArea, err := svc.PlansByArea(ctx, 0)
	require.NoError(t, err)
	require.Len(t, byArea, 1)
	assert.Equal(t, 3, byArea[0].Count)

	summary, err := svc.TeacherSummary(ctx, docente.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Plans)
	assert.Equal(t, 1, summary.Delivered)
	assert.Equal(t, 1, summary.NotDelivered)
	assert.Equal(t, 1, summary.Pending)

	overdue, err := svc.OverduePlans(ctx, per.ID)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, plan.StatusNotDelivered, overdue[0].Status)

	dueSoon, err := svc.DueSoon(ctx, now)
	require.NoError(t, err)
	require.Len(t, dueSoon, 1)
	assert.Equal(t, plan.StatusPending, dueSoon[0].Status)

	delivered, err := svc.DeliveredBetween(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, plan.StatusDelivered, delivered[0].Status)
}
