package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/area"
)

var (
	ErrNotFound   = errors.New("subject not found")
	ErrCodeExists = errors.New("a subject with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excluded ...Subject) error
		CreateSubject(ctx context.Context, s Subject) (Subject, error)
		QueryAllSubjects(ctx context.Context) ([]SubjectInfo, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		// SearchSubjects does a case-insensitive substring match on name or code.
		SearchSubjects(ctx context.Context, query string) ([]Subject, error)
		UpdateSubject(ctx context.Context, s Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id int) error
	}

	Service struct {
		repo    Repository
		areaSvc *area.Service
	}
)

func NewService(repo Repository, areaSvc *area.Service) *Service {
	return &Service{repo: repo, areaSvc: areaSvc}
}

func (svc *Service) checkUniqueness(code string, excl ...Subject) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, excl...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "codigo", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	if _, err := svc.areaSvc.GetByID(ctx, ns.AreaID); err != nil {
		return Subject{}, err
	}
	s := Subject{
		Code:        ns.Code,
		Name:        ns.Name,
		Description: null.NewString(ns.Description, ns.Description != ""),
		Course:      ns.Course,
		Group:       null.NewString(ns.Group, ns.Group != ""),
		AreaID:      ns.AreaID,
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateSubject(ctx, s)
}

func (svc *Service) QueryAll(ctx context.Context) ([]SubjectInfo, error) {
	return svc.repo.QueryAllSubjects(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) Search(ctx context.Context, query string) ([]Subject, error) {
	return svc.repo.SearchSubjects(ctx, core.CleanString(query))
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSubject) (Subject, error) {
	if _, err := svc.areaSvc.GetByID(ctx, us.AreaID); err != nil {
		return Subject{}, err
	}
	s := Subject{
		ID:          id,
		Code:        us.Code,
		Name:        us.Name,
		Description: null.NewString(us.Description, us.Description != ""),
		Course:      us.Course,
		Group:       null.NewString(us.Group, us.Group != ""),
		AreaID:      us.AreaID,
	}
	return svc.repo.UpdateSubject(ctx, s)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteSubject(ctx, id)
}
