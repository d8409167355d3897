package dummydb

import (
	"context"
	"sort"

	"github.com/planacad/backend/core/report"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) CreateReport(_ context.Context, r report.Report) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = repo.db.nextPK()
	repo.db.reports[r.ID] = &r
	return r, nil
}

func (repo *reportRepository) GetReportByID(_ context.Context, id int) (report.Report, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.reports[id]; ok {
		return *r, nil
	}
	return report.Report{}, report.ErrNotFound
}

func (repo *reportRepository) QueryReports(_ context.Context, f report.QueryFilter) ([]report.Info, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	infos := make([]report.Info, 0)
	for _, r := range repo.db.reports {
		if f.PeriodID != 0 && r.PeriodID != f.PeriodID {
			continue
		}
		if f.TeacherID != 0 && r.TeacherID != f.TeacherID {
			continue
		}
		info := report.Info{Report: *r}
		if t, ok := repo.db.teachers[r.TeacherID]; ok {
			info.TeacherName = t.Name
		}
		if p, ok := repo.db.periods[r.PeriodID]; ok {
			info.PeriodName = p.Name
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].CreatedAt.After(infos[j].CreatedAt) })
	return infos, nil
}

func (repo *reportRepository) UpdateReport(_ context.Context, r report.Report) (report.Report, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.reports[r.ID]
	if !ok {
		return report.Report{}, report.ErrNotFound
	}
	*orig = r
	return *orig, nil
}

func (repo *reportRepository) DeleteReport(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for cid, c := range repo.db.reportComments {
		if c.ReportID == id {
			delete(repo.db.reportComments, cid)
		}
	}
	delete(repo.db.reports, id)
	return nil
}

func (repo *reportRepository) CountReportsByPeriod(_ context.Context, periodID int) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, r := range repo.db.reports {
		if r.PeriodID == periodID {
			count++
		}
	}
	return count, nil
}

func (repo *reportRepository) CreateComment(_ context.Context, c report.Comment) (report.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	c.ID = repo.db.nextPK()
	repo.db.reportComments[c.ID] = &c
	return c, nil
}

func (repo *reportRepository) QueryComments(_ context.Context, reportID int) ([]report.CommentInfo, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	comments := make([]report.CommentInfo, 0)
	for _, c := range repo.db.reportComments {
		if c.ReportID != reportID {
			continue
		}
		info := report.CommentInfo{Comment: *c}
		if t, ok := repo.db.teachers[c.TeacherID]; ok {
			info.TeacherName = t.Name
		}
		comments = append(comments, info)
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].SentAt.Before(comments[j].SentAt) })
	return comments, nil
}
