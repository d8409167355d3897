package teacher

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/planacad/backend/core"
)

var (
	ErrNotFound    = errors.New("teacher not found")
	ErrEmailExists = errors.New("a teacher with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excluded ...Teacher) error
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		QueryAllTeachers(ctx context.Context, ordering ...core.DBOrdering) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		GetTeacherByEmail(ctx context.Context, email string) (Teacher, error)
		// GetTeacherByRole returns the first active teacher holding the role.
		GetTeacherByRole(ctx context.Context, role string) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher, isActive, isVerified *bool) (Teacher, error)
		DeleteTeacher(ctx context.Context, id int) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) checkUniqueness(email string, excl ...Teacher) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, excl...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	t := Teacher{
		Name:       nt.Name,
		Email:      nt.Email,
		NationalID: null.NewString(nt.NationalID, nt.NationalID != ""),
		Phone:      null.NewString(nt.Phone, nt.Phone != ""),
		Address:    null.NewString(nt.Address, nt.Address != ""),
		Role:       nt.Role,
		IsActive:   true,
		CreatedAt:  time.Now().UTC(),
	}
	if t.Role == "" {
		t.Role = RoleDocente
	}
	if err := t.SetPassword(nt.Password); err != nil {
		return Teacher{}, errors.Wrap(err, "hashing password")
	}

	t, err := svc.repo.CreateTeacher(ctx, t)
	if err != nil {
		return Teacher{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: t.Name, Address: t.Email}},
		Subject:      "Bienvenido a la plataforma",
		TemplateName: "welcome",
		TemplateData: struct{ Name string }{t.Name},
	})
	return t, nil
}

func (svc *Service) QueryAll(ctx context.Context, ordering ...core.DBOrdering) ([]Teacher, error) {
	return svc.repo.QueryAllTeachers(ctx, ordering...)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Teacher, error) {
	return svc.repo.GetTeacherByEmail(ctx, core.CleanString(email, true /* lower */))
}

// GetRector returns the school's approver.
func (svc *Service) GetRector(ctx context.Context) (Teacher, error) {
	return svc.repo.GetTeacherByRole(ctx, RoleRector)
}

func (svc *Service) Update(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	t := Teacher{
		ID:         id,
		Name:       ut.Name,
		Email:      ut.Email,
		NationalID: null.NewString(ut.NationalID, ut.NationalID != ""),
		Phone:      null.NewString(ut.Phone, ut.Phone != ""),
		Address:    null.NewString(ut.Address, ut.Address != ""),
		Role:       ut.Role,
	}
	if ut.Password != "" {
		if err := t.SetPassword(ut.Password); err != nil {
			return Teacher{}, errors.Wrap(err, "hashing password")
		}
	}
	return svc.repo.UpdateTeacher(ctx, t, ut.IsActive, ut.IsVerified)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteTeacher(ctx, id)
}
