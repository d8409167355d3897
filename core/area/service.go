package area

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/teacher"
)

var (
	ErrNotFound           = errors.New("area not found")
	ErrAssignmentNotFound = errors.New("area assignment not found")
	ErrCodeExists         = errors.New("an area with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excluded ...Area) error
		CreateArea(ctx context.Context, a Area) (Area, error)
		QueryAllAreas(ctx context.Context) ([]Area, error)
		GetAreaByID(ctx context.Context, id int) (Area, error)
		// SearchAreas does a case-insensitive substring match on name or code.
		SearchAreas(ctx context.Context, query string) ([]Area, error)
		UpdateArea(ctx context.Context, a Area) (Area, error)
		DeleteArea(ctx context.Context, id int) error

		CreateAssignment(ctx context.Context, as Assignment) (Assignment, error)
		GetAssignmentByID(ctx context.Context, id int) (Assignment, error)
		QueryAllAssignments(ctx context.Context) ([]AssignmentInfo, error)
		QueryTeacherAssignments(ctx context.Context, teacherID int) ([]AssignmentInfo, error)
		UpdateAssignment(ctx context.Context, as Assignment) (Assignment, error)
	}

	Service struct {
		repo       Repository
		teacherSvc *teacher.Service
	}
)

func NewService(repo Repository, teacherSvc *teacher.Service) *Service {
	return &Service{repo: repo, teacherSvc: teacherSvc}
}

func (svc *Service) checkUniqueness(code string, excl ...Area) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, excl...); err != nil {
		if err == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "codigo", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, na NewArea) (Area, error) {
	return svc.repo.CreateArea(ctx, Area{Name: na.Name, Code: na.Code})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Area, error) {
	return svc.repo.QueryAllAreas(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Area, error) {
	return svc.repo.GetAreaByID(ctx, id)
}

func (svc *Service) Search(ctx context.Context, query string) ([]Area, error) {
	return svc.repo.SearchAreas(ctx, core.CleanString(query))
}

func (svc *Service) Update(ctx context.Context, id int, ua UpdateArea) (Area, error) {
	return svc.repo.UpdateArea(ctx, Area{ID: id, Name: ua.Name, Code: ua.Code})
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteArea(ctx, id)
}

// Assign makes a teacher the reviewer for an area.
func (svc *Service) Assign(ctx context.Context, na NewAssignment) (Assignment, error) {
	if _, err := svc.teacherSvc.GetByID(ctx, na.TeacherID); err != nil {
		return Assignment{}, err
	}
	if _, err := svc.repo.GetAreaByID(ctx, na.AreaID); err != nil {
		return Assignment{}, err
	}
	as := Assignment{
		TeacherID: na.TeacherID,
		AreaID:    na.AreaID,
		JoinedAt:  time.Now().UTC(),
	}
	return svc.repo.CreateAssignment(ctx, as)
}

func (svc *Service) GetAssignment(ctx context.Context, id int) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *Service) QueryAssignments(ctx context.Context) ([]AssignmentInfo, error) {
	return svc.repo.QueryAllAssignments(ctx)
}

// TeacherAreas lists the areas a teacher reviews.
func (svc *Service) TeacherAreas(ctx context.Context, teacherID int) ([]AssignmentInfo, error) {
	return svc.repo.QueryTeacherAssignments(ctx, teacherID)
}

func (svc *Service) Reassign(ctx context.Context, id int, na NewAssignment) (Assignment, error) {
	as, err := svc.repo.GetAssignmentByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}
	as.TeacherID = na.TeacherID
	as.AreaID = na.AreaID
	return svc.repo.UpdateAssignment(ctx, as)
}
