package period

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var ErrNotFound = errors.New("period not found")

type (
	Repository interface {
		CreatePeriod(ctx context.Context, p Period) (Period, error)
		QueryAllPeriods(ctx context.Context) ([]Period, error)
		GetPeriodByID(ctx context.Context, id int) (Period, error)
		// GetLatestPeriod returns the most recently created period.
		GetLatestPeriod(ctx context.Context) (Period, error)
		SearchPeriods(ctx context.Context, query string) ([]Period, error)
		UpdatePeriod(ctx context.Context, p Period) (Period, error)
		DeletePeriod(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewPeriod) (Period, error) {
	p := Period{
		Name:        np.Name,
		Description: null.NewString(np.Description, np.Description != ""),
		StartsAt:    np.StartsAt,
		EndsAt:      np.EndsAt,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreatePeriod(ctx, p)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Period, error) {
	return svc.repo.QueryAllPeriods(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Period, error) {
	return svc.repo.GetPeriodByID(ctx, id)
}

func (svc *Service) Latest(ctx context.Context) (Period, error) {
	return svc.repo.GetLatestPeriod(ctx)
}

func (svc *Service) Search(ctx context.Context, query string) ([]Period, error) {
	return svc.repo.SearchPeriods(ctx, query)
}

func (svc *Service) Update(ctx context.Context, id int, up UpdatePeriod) (Period, error) {
	p := Period{
		ID:          id,
		Name:        up.Name,
		Description: null.NewString(up.Description, up.Description != ""),
		StartsAt:    up.StartsAt,
		EndsAt:      up.EndsAt,
	}
	return svc.repo.UpdatePeriod(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeletePeriod(ctx, id)
}
