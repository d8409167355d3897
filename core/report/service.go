package report

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/period"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/teacher"
)

var (
	ErrNotFound = errors.New("report not found")
	ErrNoFile   = errors.New("no file has been submitted for this report")
)

const uploadRoot = "uploads/informe"

type (
	Repository interface {
		CreateReport(ctx context.Context, r Report) (Report, error)
		GetReportByID(ctx context.Context, id int) (Report, error)
		QueryReports(ctx context.Context, f QueryFilter) ([]Info, error)
		UpdateReport(ctx context.Context, r Report) (Report, error)
		DeleteReport(ctx context.Context, id int) error
		CountReportsByPeriod(ctx context.Context, periodID int) (int, error)

		CreateComment(ctx context.Context, c Comment) (Comment, error)
		QueryComments(ctx context.Context, reportID int) ([]CommentInfo, error)
	}

	Service struct {
		repo       Repository
		teacherSvc *teacher.Service
		periodSvc  *period.Service
		fileStore  core.FileStore
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

func NewService(
	repo Repository,
	teacherSvc *teacher.Service,
	periodSvc *period.Service,
	fileStore core.FileStore,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		teacherSvc: teacherSvc,
		periodSvc:  periodSvc,
		fileStore:  fileStore,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

func sanitizeComponent(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || s == ".." ||
		strings.ContainsAny(s, "/\\\x00") || strings.Contains(s, "..") {
		return "", core.NewValidationError(errors.New("invalid path component"), core.FieldError{
			Field: field,
			Error: "valor no permitido en la ruta del archivo",
		})
	}
	return s, nil
}

// reportPath builds uploads/informe/{period}/{teacher}_{status}_{ts}.pdf. The
// timestamp keeps successive revisions of the same report from colliding.
func reportPath(periodName, teacherName, status string, now time.Time) (dir, name string, err error) {
	p, err := sanitizeComponent("periodo_nombre", periodName)
	if err != nil {
		return "", "", err
	}
	t, err := sanitizeComponent("profesor_nombre", teacherName)
	if err != nil {
		return "", "", err
	}
	dir = path.Join(uploadRoot, p)
	name = fmt.Sprintf("%s_%s_%s.pdf", t, status, now.Format("20060102150405"))
	return dir, name, nil
}

func (svc *Service) store(ctx context.Context, dir, name string, file io.Reader) (string, error) {
	parts := strings.Split(dir, "/")
	for i := range parts {
		if err := svc.fileStore.EnsureDir(ctx, path.Join(parts[:i+1]...)); err != nil {
			return "", errors.Wrapf(err, "ensuring directory %s", path.Join(parts[:i+1]...))
		}
	}
	full := path.Join(dir, name)
	if err := svc.fileStore.Store(ctx, full, file); err != nil {
		return "", errors.Wrapf(err, "storing %s", full)
	}
	return full, nil
}

// Create files a new report with its document and tells the Rector.
func (svc *Service) Create(ctx context.Context, nr NewReport, file io.Reader) (Report, error) {
	t, err := svc.teacherSvc.GetByID(ctx, nr.TeacherID)
	if err != nil {
		return Report{}, err
	}
	p, err := svc.periodSvc.GetByID(ctx, nr.PeriodID)
	if err != nil {
		return Report{}, err
	}

	now := time.Now().UTC()
	dir, name, err := reportPath(p.Name, t.Name, plan.StatusDelivered, now)
	if err != nil {
		return Report{}, err
	}
	full, err := svc.store(ctx, dir, name, file)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		TeacherID: nr.TeacherID,
		PeriodID:  nr.PeriodID,
		Status:    plan.StatusDelivered,
		FilePath:  null.StringFrom(full),
		CreatedAt: now,
	}
	r, err = svc.repo.CreateReport(ctx, r)
	if err != nil {
		return Report{}, err
	}

	if rector, err := svc.teacherSvc.GetRector(ctx); err == nil {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: rector.Name, Address: rector.Email}},
			Subject:      fmt.Sprintf("Informe entregado: %s (%s)", t.Name, p.Name),
			TemplateName: "report-delivered",
			TemplateData: struct {
				Name    string
				Teacher string
				Period  string
			}{rector.Name, t.Name, p.Name},
		})
	}
	return r, nil
}

// Resubmit replaces a report's document. When the Rector uploads, the report
// is thereby approved; anyone else just delivers a new revision.
func (svc *Service) Resubmit(ctx context.Context, id, actorID int, file io.Reader) (Report, error) {
	r, err := svc.repo.GetReportByID(ctx, id)
	if err != nil {
		return Report{}, err
	}
	t, err := svc.teacherSvc.GetByID(ctx, r.TeacherID)
	if err != nil {
		return Report{}, err
	}
	actor, err := svc.teacherSvc.GetByID(ctx, actorID)
	if err != nil {
		return Report{}, err
	}
	p, err := svc.periodSvc.GetByID(ctx, r.PeriodID)
	if err != nil {
		return Report{}, err
	}

	status := plan.StatusDelivered
	if actor.IsRector() {
		status = plan.StatusApproved
	}

	now := time.Now().UTC()
	dir, name, err := reportPath(p.Name, t.Name, status, now)
	if err != nil {
		return Report{}, err
	}
	if r.FilePath.Valid {
		if err := svc.fileStore.Delete(ctx, r.FilePath.String); err != nil {
			svc.logger.Warn(fmt.Sprintf("deleting previous file %s: %v", r.FilePath.String, err))
		}
	}
	full, err := svc.store(ctx, dir, name, file)
	if err != nil {
		return Report{}, err
	}

	r.Status = status
	r.FilePath = null.StringFrom(full)
	r.UpdatedAt = null.TimeFrom(now)
	r, err = svc.repo.UpdateReport(ctx, r)
	if err != nil {
		return Report{}, err
	}

	if status == plan.StatusApproved {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: t.Name, Address: t.Email}},
			Subject:      fmt.Sprintf("Informe aprobado (%s)", p.Name),
			TemplateName: "report-status",
			TemplateData: struct {
				Name   string
				Period string
				Status string
			}{t.Name, p.Name, status},
		})
	}
	return r, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Report, error) {
	return svc.repo.GetReportByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, f QueryFilter) ([]Info, error) {
	return svc.repo.QueryReports(ctx, f)
}

func (svc *Service) CountByPeriod(ctx context.Context, periodID int) (int, error) {
	return svc.repo.CountReportsByPeriod(ctx, periodID)
}

func (svc *Service) Download(ctx context.Context, id int) ([]byte, string, error) {
	r, err := svc.repo.GetReportByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !r.FilePath.Valid {
		return nil, "", ErrNoFile
	}
	if strings.ContainsRune(r.FilePath.String, '\x00') {
		return nil, "", core.NewValidationError(errors.New("corrupt file path"),
			core.FieldError{Field: "archivo", Error: "ruta de archivo inválida"})
	}
	data, err := svc.fileStore.Fetch(ctx, r.FilePath.String)
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetching %s", r.FilePath.String)
	}
	return data, path.Base(r.FilePath.String), nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	r, err := svc.repo.GetReportByID(ctx, id)
	if err != nil {
		return err
	}
	if r.FilePath.Valid {
		if err := svc.fileStore.Delete(ctx, r.FilePath.String); err != nil {
			svc.logger.Warn(fmt.Sprintf("deleting stored file %s: %v", r.FilePath.String, err))
		}
	}
	return svc.repo.DeleteReport(ctx, id)
}

// AddComment appends a comment and mails the report's author.
func (svc *Service) AddComment(ctx context.Context, nc NewComment) (Comment, error) {
	author, err := svc.teacherSvc.GetByID(ctx, nc.TeacherID)
	if err != nil {
		return Comment{}, err
	}
	r, err := svc.repo.GetReportByID(ctx, nc.ReportID)
	if err != nil {
		return Comment{}, err
	}

	c := Comment{
		TeacherID: nc.TeacherID,
		ReportID:  nc.ReportID,
		Body:      nc.Body,
		SentAt:    time.Now().UTC(),
	}
	c, err = svc.repo.CreateComment(ctx, c)
	if err != nil {
		return Comment{}, err
	}

	owner, err := svc.teacherSvc.GetByID(ctx, r.TeacherID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notifying comment %d: %v", c.ID, err))
		return c, nil
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: owner.Name, Address: owner.Email}},
		Subject:      "Nuevo comentario en su informe",
		TemplateName: "report-comment",
		TemplateData: struct {
			Name    string
			Author  string
			Comment string
		}{owner.Name, author.Name, nc.Body},
	})
	return c, nil
}

func (svc *Service) Comments(ctx context.Context, reportID int) ([]CommentInfo, error) {
	if _, err := svc.repo.GetReportByID(ctx, reportID); err != nil {
		return nil, err
	}
	return svc.repo.QueryComments(ctx, reportID)
}
