package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/planacad/backend/core/dashboard"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/teacher"
)

type dashboardRepository struct {
	db       *DB
	planRepo *planRepository
}

var _ dashboard.Repository = (*dashboardRepository)(nil)

func NewDashboardRepository(db *DB) *dashboardRepository {
	return &dashboardRepository{db: db, planRepo: NewPlanRepository(db)}
}

func (repo *dashboardRepository) QueryTotals(_ context.Context) (dashboard.Totals, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	return dashboard.Totals{
		Teachers: len(repo.db.teachers),
		Areas:    len(repo.db.areas),
		Subjects: len(repo.db.subjects),
		Plans:    len(repo.db.plans),
		Reports:  len(repo.db.reports),
	}, nil
}

func (repo *dashboardRepository) QueryTeachersByRole(_ context.Context) ([]dashboard.RoleCount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	byRole := make(map[string]int)
	for _, t := range repo.db.teachers {
		byRole[t.Role]++
	}
	counts := make([]dashboard.RoleCount, 0, len(byRole))
	for role, n := range byRole {
		counts = append(counts, dashboard.RoleCount{Role: role, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Role < counts[j].Role })
	return counts, nil
}

func (repo *dashboardRepository) QueryPlansByStatus(_ context.Context, periodID int) ([]dashboard.StatusCount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	byStatus := make(map[string]int)
	for _, st := range repo.db.states {
		p, ok := repo.db.plans[st.PlanID]
		if !ok || (periodID != 0 && p.PeriodID != periodID) {
			continue
		}
		byStatus[st.Status]++
	}
	counts := make([]dashboard.StatusCount, 0, len(byStatus))
	for status, n := range byStatus {
		counts = append(counts, dashboard.StatusCount{Status: status, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Status < counts[j].Status })
	return counts, nil
}

func (repo *dashboardRepository) QueryPlansByArea(_ context.Context, periodID int) ([]dashboard.AreaCount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	byArea := make(map[int]int)
	for _, p := range repo.db.plans {
		if periodID != 0 && p.PeriodID != periodID {
			continue
		}
		s, ok := repo.db.subjects[p.SubjectID]
		if !ok {
			continue
		}
		byArea[s.AreaID]++
	}
	counts := make([]dashboard.AreaCount, 0, len(byArea))
	for areaID, n := range byArea {
		count := dashboard.AreaCount{AreaID: areaID, Count: n}
		if a, ok := repo.db.areas[areaID]; ok {
			count.AreaName = a.Name
		}
		counts = append(counts, count)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].AreaName < counts[j].AreaName })
	return counts, nil
}

func (repo *dashboardRepository) QueryPlansByPeriod(_ context.Context) ([]dashboard.PeriodCount, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	byPeriod := make(map[int]int)
	for _, p := range repo.db.plans {
		byPeriod[p.PeriodID]++
	}
	counts := make([]dashboard.PeriodCount, 0, len(byPeriod))
	for periodID, n := range byPeriod {
		count := dashboard.PeriodCount{PeriodID: periodID, Count: n}
		if per, ok := repo.db.periods[periodID]; ok {
			count.PeriodName = per.Name
		}
		counts = append(counts, count)
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].PeriodID < counts[j].PeriodID })
	return counts, nil
}

func (repo *dashboardRepository) QueryTeacherSummary(_ context.Context, teacherID int) (dashboard.TeacherSummary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	t, ok := repo.db.teachers[teacherID]
	if !ok {
		return dashboard.TeacherSummary{}, teacher.ErrNotFound
	}

	s := dashboard.TeacherSummary{TeacherID: t.ID, TeacherName: t.Name}
	for _, st := range repo.db.states {
		p, ok := repo.db.plans[st.PlanID]
		if !ok || p.TeacherID != teacherID {
			continue
		}
		s.Plans++
		switch st.Status {
		case plan.StatusPending:
			s.Pending++
		case plan.StatusDelivered:
			s.Delivered++
		case plan.StatusReviewed:
			s.Reviewed++
		case plan.StatusApproved:
			s.Approved++
		case plan.StatusNotDelivered:
			s.NotDelivered++
		}
	}
	return s, nil
}

func (repo *dashboardRepository) QueryOverduePlans(_ context.Context, periodID int) ([]plan.Info, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	infos := make([]plan.Info, 0)
	for _, st := range repo.db.states {
		if st.Status != plan.StatusNotDelivered {
			continue
		}
		p, ok := repo.db.plans[st.PlanID]
		if !ok || (periodID != 0 && p.PeriodID != periodID) {
			continue
		}
		infos = append(infos, repo.planRepo.info(*p, *st))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].DueAt.After(infos[j].DueAt) })
	return infos, nil
}

func (repo *dashboardRepository) QueryPlansDueBetween(_ context.Context, from, to time.Time) ([]plan.Info, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	infos := make([]plan.Info, 0)
	for _, st := range repo.db.states {
		if st.Status != plan.StatusPending {
			continue
		}
		p, ok := repo.db.plans[st.PlanID]
		if !ok || p.DueAt.Before(from) || !p.DueAt.Before(to) {
			continue
		}
		infos = append(infos, repo.planRepo.info(*p, *st))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].DueAt.Before(infos[j].DueAt) })
	return infos, nil
}

func (repo *dashboardRepository) QueryPlansDeliveredBetween(_ context.Context, from, to time.Time) ([]plan.Info, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	infos := make([]plan.Info, 0)
	for _, st := range repo.db.states {
		switch st.Status {
		case plan.StatusDelivered, plan.StatusReviewed, plan.StatusApproved:
		default:
			continue
		}
		if !st.UpdatedAt.Valid || st.UpdatedAt.Time.Before(from) || !st.UpdatedAt.Time.Before(to) {
			continue
		}
		p, ok := repo.db.plans[st.PlanID]
		if !ok {
			continue
		}
		infos = append(infos, repo.planRepo.info(*p, *st))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].UpdatedAt.Time.After(infos[j].UpdatedAt.Time) })
	return infos, nil
}
