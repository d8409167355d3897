package plan

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
	"github.com/planacad/backend/core/area"
	"github.com/planacad/backend/core/subject"
	"github.com/planacad/backend/core/teacher"
)

var (
	ErrNotFound        = errors.New("plan not found")
	ErrStateNotFound   = errors.New("plan submission record not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNoFile          = errors.New("no file has been submitted for this plan")
)

type (
	Repository interface {
		CreatePlan(ctx context.Context, p Plan, st State) (Plan, State, error)
		GetPlanByID(ctx context.Context, id int) (Plan, error)
		QueryPlans(ctx context.Context, f QueryFilter) ([]Info, error)
		UpdatePlan(ctx context.Context, p Plan) (Plan, error)
		// DeletePlan removes the plan with its state and comments.
		DeletePlan(ctx context.Context, id int) error

		GetStateByID(ctx context.Context, id int) (State, error)
		GetStateByPlanID(ctx context.Context, planID int) (State, error)
		UpdateState(ctx context.Context, st State) (State, error)
		// QueryPendingStates returns every pendiente state joined with its
		// plan's due date and owning teacher.
		QueryPendingStates(ctx context.Context) ([]PendingState, error)

		CreateComment(ctx context.Context, c Comment) (Comment, error)
		QueryComments(ctx context.Context, stateID int) ([]CommentInfo, error)
	}

	// Service is the document lifecycle manager: it owns status resolution,
	// the remote file replacement protocol and the notifications that follow
	// every transition.
	Service struct {
		repo       Repository
		teacherSvc *teacher.Service
		areaSvc    *area.Service
		subjectSvc *subject.Service
		fileStore  core.FileStore
		mailSvc    core.EmailService
		logger     core.Logger
	}
)

func NewService(
	repo Repository,
	teacherSvc *teacher.Service,
	areaSvc *area.Service,
	subjectSvc *subject.Service,
	fileStore core.FileStore,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		repo:       repo,
		teacherSvc: teacherSvc,
		areaSvc:    areaSvc,
		subjectSvc: subjectSvc,
		fileStore:  fileStore,
		mailSvc:    mailSvc,
		logger:     logger,
	}
}

// Create registers a plan for a teacher and opens its submission record in
// pendiente. The school's Rector becomes the approver; a reviewer assignment
// may be attached up front or left unset.
func (svc *Service) Create(ctx context.Context, np NewPlan) (Plan, error) {
	t, err := svc.teacherSvc.GetByID(ctx, np.TeacherID)
	if err != nil {
		return Plan{}, err
	}
	if _, err = svc.subjectSvc.GetByID(ctx, np.SubjectID); err != nil {
		return Plan{}, err
	}

	st := State{Status: StatusPending}
	if np.ReviewerAssignmentID != 0 {
		if _, err = svc.areaSvc.GetAssignment(ctx, np.ReviewerAssignmentID); err != nil {
			return Plan{}, err
		}
		st.ReviewerAssignmentID = null.IntFrom(np.ReviewerAssignmentID)
	}
	if rector, err := svc.teacherSvc.GetRector(ctx); err == nil {
		st.ApproverID = null.IntFrom(rector.ID)
	}

	p := Plan{
		Title:       np.Title,
		Description: null.NewString(np.Description, np.Description != ""),
		DueAt:       np.DueAt,
		TeacherID:   np.TeacherID,
		SubjectID:   np.SubjectID,
		PeriodID:    np.PeriodID,
	}
	p, _, err = svc.repo.CreatePlan(ctx, p, st)
	if err != nil {
		return Plan{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: t.Name, Address: t.Email}},
		Subject:      "Nueva planificación asignada: " + p.Title,
		TemplateName: "plan-assigned",
		TemplateData: struct {
			Name  string
			Title string
			DueAt string
		}{t.Name, p.Title, p.DueAt.Format("2006-01-02")},
	})
	return p, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Plan, error) {
	return svc.repo.GetPlanByID(ctx, id)
}

func (svc *Service) GetState(ctx context.Context, stateID int) (State, error) {
	return svc.repo.GetStateByID(ctx, stateID)
}

func (svc *Service) Query(ctx context.Context, f QueryFilter) ([]Info, error) {
	return svc.repo.QueryPlans(ctx, f)
}

// QueryForReviewer lists plans whose reviewer assignment belongs to the given
// teacher.
func (svc *Service) QueryForReviewer(ctx context.Context, teacherID int) ([]Info, error) {
	return svc.repo.QueryPlans(ctx, QueryFilter{ReviewerTeacherID: teacherID})
}

// Update edits a plan's descriptive fields. Reassigning the document to a new
// teacher, subject or period invalidates the stored file, so any previous
// submission is discarded and the record returns to pendiente.
func (svc *Service) Update(ctx context.Context, id int, up UpdatePlan) (Plan, error) {
	p, err := svc.repo.GetPlanByID(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	if err = up.Validate(p); err != nil {
		return Plan{}, err
	}
	if _, err = svc.teacherSvc.GetByID(ctx, up.TeacherID); err != nil {
		return Plan{}, err
	}
	if _, err = svc.subjectSvc.GetByID(ctx, up.SubjectID); err != nil {
		return Plan{}, err
	}

	st, err := svc.repo.GetStateByPlanID(ctx, id)
	if err != nil {
		return Plan{}, err
	}
	if st.FilePath.Valid {
		if err := svc.fileStore.Delete(ctx, st.FilePath.String); err != nil {
			svc.logger.Warn(fmt.Sprintf("deleting stored file %s: %v", st.FilePath.String, err))
		}
		st.FilePath = null.String{}
		st.Status = StatusPending
		st.UpdatedAt = null.TimeFrom(time.Now().UTC())
		if _, err := svc.repo.UpdateState(ctx, st); err != nil {
			return Plan{}, err
		}
	}

	p.Title = up.Title
	p.Description = null.NewString(up.Description, up.Description != "")
	p.DueAt = up.DueAt
	p.TeacherID = up.TeacherID
	p.SubjectID = up.SubjectID
	p.PeriodID = up.PeriodID
	return svc.repo.UpdatePlan(ctx, p)
}

// Delete removes a plan and its submission record. The stored file, when one
// exists, is deleted best-effort: losing an orphan blob is preferable to a
// plan row that cannot be removed because the file server is down.
func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetPlanByID(ctx, id); err != nil {
		return err
	}
	st, err := svc.repo.GetStateByPlanID(ctx, id)
	if err == nil && st.FilePath.Valid {
		if err := svc.fileStore.Delete(ctx, st.FilePath.String); err != nil {
			svc.logger.Warn(fmt.Sprintf("deleting stored file %s: %v", st.FilePath.String, err))
		}
	} else if err != nil && errors.Cause(err) != ErrStateNotFound {
		return err
	}
	return svc.repo.DeletePlan(ctx, id)
}

// resolveStatus applies the actor rules. Reviewer identity is resolved
// through the areas_profesor assignment, never compared against the stored id
// directly; a dangling assignment simply fails the reviewer check.
func (svc *Service) resolveStatus(ctx context.Context, st State, actorID int) (string, error) {
	if st.ReviewerAssignmentID.Valid {
		as, err := svc.areaSvc.GetAssignment(ctx, st.ReviewerAssignmentID.Int)
		if err == nil && as.TeacherID == actorID {
			return StatusReviewed, nil
		}
		if err != nil && errors.Cause(err) != area.ErrAssignmentNotFound {
			return "", err
		}
	}
	if st.ApproverID.Valid && st.ApproverID.Int == actorID {
		return StatusApproved, nil
	}
	return StatusDelivered, nil
}

// Submit stores an uploaded document and moves the submission record to the
// status the acting teacher's relationship dictates. The remote side is
// touched before the database: ensure the directory chain, best-effort delete
// the previous revision, store the new file, then commit. A storage failure
// therefore leaves the database pointing at the old, still-existing file.
func (svc *Service) Submit(ctx context.Context, in SubmitInput, file io.Reader) (SubmitResult, error) {
	st, err := svc.repo.GetStateByID(ctx, in.StateID)
	if err != nil {
		return SubmitResult{}, err
	}
	assigned, err := svc.teacherSvc.GetByID(ctx, in.AssignedTeacherID)
	if err != nil {
		return SubmitResult{}, err
	}
	if _, err = svc.teacherSvc.GetByID(ctx, in.ActorID); err != nil {
		return SubmitResult{}, err
	}

	status, err := svc.resolveStatus(ctx, st, in.ActorID)
	if err != nil {
		return SubmitResult{}, err
	}
	// The very first upload is always a delivery, whoever performs it, and
	// the approver is told there is something to look at.
	firstSubmission := !st.FilePath.Valid
	if firstSubmission {
		status = StatusDelivered
	}

	dir, name, err := statePath(st.ID, in.AssignedTeacherID, in, status)
	if err != nil {
		return SubmitResult{}, err
	}
	for _, d := range dirChain(dir) {
		if err := svc.fileStore.EnsureDir(ctx, d); err != nil {
			return SubmitResult{}, errors.Wrapf(err, "ensuring directory %s", d)
		}
	}
	if st.FilePath.Valid {
		if err := svc.fileStore.Delete(ctx, st.FilePath.String); err != nil {
			svc.logger.Warn(fmt.Sprintf("deleting previous file %s: %v", st.FilePath.String, err))
		}
	}
	fullPath := path.Join(dir, name)
	if err := svc.fileStore.Store(ctx, fullPath, file); err != nil {
		return SubmitResult{}, errors.Wrapf(err, "storing %s", fullPath)
	}

	st.Status = status
	st.FilePath = null.StringFrom(fullPath)
	st.UpdatedAt = null.TimeFrom(time.Now().UTC())
	if _, err := svc.repo.UpdateState(ctx, st); err != nil {
		return SubmitResult{}, err
	}

	svc.notifySubmission(ctx, st, assigned, in, status, firstSubmission)
	return SubmitResult{Status: status, Path: fullPath}, nil
}

// notifySubmission is fire-and-forget: the submission already succeeded and a
// mail failure must not undo it.
func (svc *Service) notifySubmission(ctx context.Context, st State, assigned teacher.Teacher, in SubmitInput, status string, firstSubmission bool) {
	data := struct {
		Name    string
		Title   string
		Subject string
		Period  string
		Status  string
	}{assigned.Name, in.SubjectName, in.SubjectName, in.PeriodName, status}

	switch {
	case firstSubmission:
		if !st.ApproverID.Valid {
			return
		}
		approver, err := svc.teacherSvc.GetByID(ctx, st.ApproverID.Int)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("notifying approver for state %d: %v", st.ID, err))
			return
		}
		data.Name = approver.Name
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: approver.Name, Address: approver.Email}},
			Subject:      fmt.Sprintf("Planificación entregada: %s (%s)", in.SubjectName, in.PeriodName),
			TemplateName: "plan-delivered",
			TemplateData: data,
		})
	case status == StatusReviewed || status == StatusApproved:
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: assigned.Name, Address: assigned.Email}},
			Subject:      fmt.Sprintf("Planificación %s: %s (%s)", status, in.SubjectName, in.PeriodName),
			TemplateName: "plan-status",
			TemplateData: data,
		})
	}
}

// Download fetches the stored document for a submission record.
func (svc *Service) Download(ctx context.Context, stateID int) ([]byte, string, error) {
	st, err := svc.repo.GetStateByID(ctx, stateID)
	if err != nil {
		return nil, "", err
	}
	if !st.FilePath.Valid {
		return nil, "", ErrNoFile
	}
	if strings.ContainsRune(st.FilePath.String, '\x00') {
		return nil, "", core.NewValidationError(errors.New("corrupt file path"),
			core.FieldError{Field: "archivo", Error: "ruta de archivo inválida"})
	}
	data, err := svc.fileStore.Fetch(ctx, st.FilePath.String)
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetching %s", st.FilePath.String)
	}
	return data, path.Base(st.FilePath.String), nil
}

// SweepOverdue marks every pendiente submission whose plan's due date has
// passed as no_entregado and mails the owning teacher. Only pendiente records
// are eligible; anything already delivered keeps its status. Per-row failures
// are logged and the sweep moves on. Returns the number of records flipped.
func (svc *Service) SweepOverdue(ctx context.Context, now time.Time) (int, error) {
	pending, err := svc.repo.QueryPendingStates(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "querying pending states")
	}

	var n int
	for _, ps := range pending {
		if !ps.DueAt.Before(now) {
			continue
		}
		st := ps.State
		st.Status = StatusNotDelivered
		st.UpdatedAt = null.TimeFrom(now)
		if _, err := svc.repo.UpdateState(ctx, st); err != nil {
			svc.logger.Error(fmt.Sprintf("sweeping state %d: %v", st.ID, err))
			continue
		}
		n++

		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:           []mail.Address{{Name: ps.TeacherName, Address: ps.TeacherEmail}},
			Subject:      "Planificación no entregada: " + ps.PlanTitle,
			TemplateName: "plan-overdue",
			TemplateData: struct {
				Name  string
				Title string
				DueAt string
			}{ps.TeacherName, ps.PlanTitle, ps.DueAt.Format("2006-01-02")},
		})
	}
	return n, nil
}

// AddComment appends a comment to a submission record and mails the plan's
// owning teacher.
func (svc *Service) AddComment(ctx context.Context, nc NewComment) (Comment, error) {
	author, err := svc.teacherSvc.GetByID(ctx, nc.TeacherID)
	if err != nil {
		return Comment{}, err
	}
	st, err := svc.repo.GetStateByID(ctx, nc.StateID)
	if err != nil {
		return Comment{}, err
	}

	c := Comment{
		TeacherID: nc.TeacherID,
		StateID:   nc.StateID,
		Body:      nc.Body,
		SentAt:    time.Now().UTC(),
	}
	c, err = svc.repo.CreateComment(ctx, c)
	if err != nil {
		return Comment{}, err
	}

	p, err := svc.repo.GetPlanByID(ctx, st.PlanID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notifying comment %d: %v", c.ID, err))
		return c, nil
	}
	owner, err := svc.teacherSvc.GetByID(ctx, p.TeacherID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notifying comment %d: %v", c.ID, err))
		return c, nil
	}
	title := nc.PlanTitle
	if title == "" {
		title = p.Title
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: owner.Name, Address: owner.Email}},
		Subject:      fmt.Sprintf("Nuevo comentario en %s (%s)", title, nc.PeriodName),
		TemplateName: "plan-comment",
		TemplateData: struct {
			Name    string
			Author  string
			Title   string
			Comment string
		}{owner.Name, author.Name, title, nc.Body},
	})
	return c, nil
}

func (svc *Service) Comments(ctx context.Context, stateID int) ([]CommentInfo, error) {
	if _, err := svc.repo.GetStateByID(ctx, stateID); err != nil {
		return nil, err
	}
	return svc.repo.QueryComments(ctx, stateID)
}
