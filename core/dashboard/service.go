package dashboard

import (
	"context"
	"time"

	"github.com/planacad/backend/core/plan"
)

type (
	// Repository aggregates across teachers, plans and reports. periodID == 0
	// means "all periods" throughout.
	Repository interface {
		QueryTotals(ctx context.Context) (Totals, error)
		QueryTeachersByRole(ctx context.Context) ([]RoleCount, error)
		QueryPlansByStatus(ctx context.Context, periodID int) ([]StatusCount, error)
		QueryPlansByArea(ctx context.Context, periodID int) ([]AreaCount, error)
		QueryPlansByPeriod(ctx context.Context) ([]PeriodCount, error)
		QueryTeacherSummary(ctx context.Context, teacherID int) (TeacherSummary, error)
		// QueryOverduePlans lists no_entregado submissions.
		QueryOverduePlans(ctx context.Context, periodID int) ([]plan.Info, error)
		// QueryPlansDueBetween lists pendiente submissions whose due date
		// falls in [from, to).
		QueryPlansDueBetween(ctx context.Context, from, to time.Time) ([]plan.Info, error)
		// QueryPlansDeliveredBetween lists submissions delivered, reviewed or
		// approved in [from, to), going by their last update.
		QueryPlansDeliveredBetween(ctx context.Context, from, to time.Time) ([]plan.Info, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Totals(ctx context.Context) (Totals, error) {
	return svc.repo.QueryTotals(ctx)
}

func (svc *Service) TeachersByRole(ctx context.Context) ([]RoleCount, error) {
	return svc.repo.QueryTeachersByRole(ctx)
}

func (svc *Service) PlansByStatus(ctx context.Context, periodID int) ([]StatusCount, error) {
	return svc.repo.QueryPlansByStatus(ctx, periodID)
}

func (svc *Service) PlansByArea(ctx context.Context, periodID int) ([]AreaCount, error) {
	return svc.repo.QueryPlansByArea(ctx, periodID)
}

func (svc *Service) PlansByPeriod(ctx context.Context) ([]PeriodCount, error) {
	return svc.repo.QueryPlansByPeriod(ctx)
}

func (svc *Service) TeacherSummary(ctx context.Context, teacherID int) (TeacherSummary, error) {
	return svc.repo.QueryTeacherSummary(ctx, teacherID)
}

func (svc *Service) OverduePlans(ctx context.Context, periodID int) ([]plan.Info, error) {
	return svc.repo.QueryOverduePlans(ctx, periodID)
}

// DueSoon lists pendiente plans due in the next 7 days.
func (svc *Service) DueSoon(ctx context.Context, now time.Time) ([]plan.Info, error) {
	return svc.repo.QueryPlansDueBetween(ctx, now, now.AddDate(0, 0, 7))
}

func (svc *Service) DeliveredBetween(ctx context.Context, from, to time.Time) ([]plan.Info, error) {
	return svc.repo.QueryPlansDeliveredBetween(ctx, from, to)
}
