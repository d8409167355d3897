package dummydb

import (
	"context"
	"sort"

	"github.com/planacad/backend/core/plan"
)

type planRepository struct {
	db *DB
}

var _ plan.Repository = (*planRepository)(nil)

func NewPlanRepository(db *DB) *planRepository {
	return &planRepository{db: db}
}

func (repo *planRepository) CreatePlan(_ context.Context, p plan.Plan, st plan.State) (plan.Plan, plan.State, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = repo.db.nextPK()
	repo.db.plans[p.ID] = &p

	st.ID = repo.db.nextPK()
	st.PlanID = p.ID
	repo.db.states[st.ID] = &st
	return p, st, nil
}

func (repo *planRepository) GetPlanByID(_ context.Context, id int) (plan.Plan, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.plans[id]; ok {
		return *p, nil
	}
	return plan.Plan{}, plan.ErrNotFound
}

// info resolves every join by hand; missing references just leave the names
// blank, the same way LEFT JOINs would.
func (repo *planRepository) info(p plan.Plan, st plan.State) plan.Info {
	inf := plan.Info{
		Plan:                 p,
		StateID:              st.ID,
		ApproverID:           st.ApproverID,
		ReviewerAssignmentID: st.ReviewerAssignmentID,
		Status:               st.Status,
		FilePath:             st.FilePath,
		UpdatedAt:            st.UpdatedAt,
	}
	if t, ok := repo.db.teachers[p.TeacherID]; ok {
		inf.TeacherName = t.Name
	}
	if s, ok := repo.db.subjects[p.SubjectID]; ok {
		inf.SubjectName = s.Name
		inf.Course = s.Course
		if a, ok := repo.db.areas[s.AreaID]; ok {
			inf.AreaID = a.ID
			inf.AreaName = a.Name
			inf.AreaCode = a.Code
		}
	}
	if per, ok := repo.db.periods[p.PeriodID]; ok {
		inf.PeriodName = per.Name
	}
	if st.ApproverID.Valid {
		if t, ok := repo.db.teachers[st.ApproverID.Int]; ok {
			inf.ApproverName.SetValid(t.Name)
		}
	}
	if st.ReviewerAssignmentID.Valid {
		if as, ok := repo.db.assignments[st.ReviewerAssignmentID.Int]; ok {
			if t, ok := repo.db.teachers[as.TeacherID]; ok {
				inf.ReviewerName.SetValid(t.Name)
			}
		}
	}
	return inf
}

func (repo *planRepository) QueryPlans(_ context.Context, f plan.QueryFilter) ([]plan.Info, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	infos := make([]plan.Info, 0)
	for _, st := range repo.db.states {
		p, ok := repo.db.plans[st.PlanID]
		if !ok {
			continue
		}
		if f.PeriodID != 0 && p.PeriodID != f.PeriodID {
			continue
		}
		if f.Month != "" && p.DueAt.Format("01") != f.Month {
			continue
		}
		if f.Year != "" && p.DueAt.Format("2006") != f.Year {
			continue
		}
		if f.TeacherID != 0 && p.TeacherID != f.TeacherID {
			continue
		}
		if f.ReviewerTeacherID != 0 {
			if !st.ReviewerAssignmentID.Valid {
				continue
			}
			as, ok := repo.db.assignments[st.ReviewerAssignmentID.Int]
			if !ok || as.TeacherID != f.ReviewerTeacherID {
				continue
			}
		}
		infos = append(infos, repo.info(*p, *st))
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].DueAt.After(infos[j].DueAt) })
	return infos, nil
}

func (repo *planRepository) UpdatePlan(_ context.Context, p plan.Plan) (plan.Plan, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.plans[p.ID]
	if !ok {
		return plan.Plan{}, plan.ErrNotFound
	}
	*orig = p
	return *orig, nil
}

func (repo *planRepository) DeletePlan(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for sid, st := range repo.db.states {
		if st.PlanID == id {
			for cid, c := range repo.db.planComments {
				if c.StateID == sid {
					delete(repo.db.planComments, cid)
				}
			}
			delete(repo.db.states, sid)
		}
	}
	delete(repo.db.plans, id)
	return nil
}

func (repo *planRepository) GetStateByID(_ context.Context, id int) (plan.State, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.states[id]; ok {
		return *st, nil
	}
	return plan.State{}, plan.ErrStateNotFound
}

func (repo *planRepository) GetStateByPlanID(_ context.Context, planID int) (plan.State, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, st := range repo.db.states {
		if st.PlanID == planID {
			return *st, nil
		}
	}
	return plan.State{}, plan.ErrStateNotFound
}

func (repo *planRepository) UpdateState(_ context.Context, st plan.State) (plan.State, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.states[st.ID]
	if !ok {
		return plan.State{}, plan.ErrStateNotFound
	}
	*orig = st
	return *orig, nil
}

func (repo *planRepository) QueryPendingStates(_ context.Context) ([]plan.PendingState, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	states := make([]plan.PendingState, 0)
	for _, st := range repo.db.states {
		if st.Status != plan.StatusPending {
			continue
		}
		p, ok := repo.db.plans[st.PlanID]
		if !ok {
			continue
		}
		ps := plan.PendingState{
			State:     *st,
			PlanTitle: p.Title,
			DueAt:     p.DueAt,
			TeacherID: p.TeacherID,
		}
		if t, ok := repo.db.teachers[p.TeacherID]; ok {
			ps.TeacherName = t.Name
			ps.TeacherEmail = t.Email
		}
		states = append(states, ps)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].ID < states[j].ID })
	return states, nil
}

func (repo *planRepository) CreateComment(_ context.Context, c plan.Comment) (plan.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.planComments[c.ID] = &c
	return c, nil
}

func (repo *planRepository) QueryComments(_ context.Context, stateID int) ([]plan.CommentInfo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	comments := make([]plan.CommentInfo, 0)
	for _, c := range repo.db.planComments {
		if c.StateID != stateID {
			continue
		}
		info := plan.CommentInfo{Comment: *c}
		if t, ok := repo.db.teachers[c.TeacherID]; ok {
			info.TeacherName = t.Name
		}
		comments = append(comments, info)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].SentAt.Before(comments[j].SentAt) })
	return comments, nil
}
