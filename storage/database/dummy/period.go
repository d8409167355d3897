package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/planacad/backend/core/period"
)

type periodRepository struct {
	db *DB
}

var _ period.Repository = (*periodRepository)(nil)

func NewPeriodRepository(db *DB) *periodRepository {
	return &periodRepository{db: db}
}

func (repo *periodRepository) query() []period.Period {
	periods := make([]period.Period, 0, len(repo.db.periods))
	for _, p := range repo.db.periods {
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].StartsAt.After(periods[j].StartsAt) })
	return periods
}

func (repo *periodRepository) CreatePeriod(_ context.Context, p period.Period) (period.Period, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = repo.db.nextPK()
	repo.db.periods[p.ID] = &p
	return p, nil
}

func (repo *periodRepository) QueryAllPeriods(_ context.Context) ([]period.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *periodRepository) GetPeriodByID(_ context.Context, id int) (period.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.periods[id]; ok {
		return *p, nil
	}
	return period.Period{}, period.ErrNotFound
}

func (repo *periodRepository) GetLatestPeriod(_ context.Context) (period.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	periods := repo.query()
	if len(periods) == 0 {
		return period.Period{}, period.ErrNotFound
	}
	return periods[0], nil
}

func (repo *periodRepository) SearchPeriods(_ context.Context, query string) ([]period.Period, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	query = strings.ToLower(query)
	var periods []period.Period
	for _, p := range repo.query() {
		if strings.Contains(strings.ToLower(p.Name), query) {
			periods = append(periods, p)
		}
	}
	return periods, nil
}

func (repo *periodRepository) UpdatePeriod(_ context.Context, p period.Period) (period.Period, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.periods[p.ID]
	if !ok {
		return period.Period{}, period.ErrNotFound
	}
	orig.Name = p.Name
	orig.Description = p.Description
	orig.StartsAt = p.StartsAt
	orig.EndsAt = p.EndsAt
	return *orig, nil
}

func (repo *periodRepository) DeletePeriod(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.periods, id)
	return nil
}
