package plan

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/planacad/backend/core"
)

// Statuses. The status records who last touched the file, not a one-way
// workflow: a document may cycle entregado -> revisado -> aprobado ->
// entregado again on re-submission. atrasado/no_entregado are written only by
// the overdue sweep, never by a submission.
const (
	StatusPending      = "pendiente"
	StatusDelivered    = "entregado"
	StatusReviewed     = "revisado"
	StatusApproved     = "aprobado"
	StatusLate         = "atrasado"
	StatusNotDelivered = "no_entregado"
)

var Statuses = []string{
	StatusPending,
	StatusDelivered,
	StatusReviewed,
	StatusApproved,
	StatusLate,
	StatusNotDelivered,
}

func ValidStatus(s string) bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// Plan is a curriculum planning document assigned to a teacher for a subject
// and period (table planificaciones).
type Plan struct {
	ID          int         `json:"id" db:"id"`
	Title       string      `json:"titulo" db:"titulo"`
	Description null.String `json:"descripcion" db:"descripcion"`
	DueAt       time.Time   `json:"fecha_subida" db:"fecha_subida"`
	TeacherID   int         `json:"profesor_id" db:"profesor_id"`
	SubjectID   int         `json:"asignaturas_id" db:"asignaturas_id"`
	PeriodID    int         `json:"periodo_id" db:"periodo_id"`
}

// State is the mutable submission record of a Plan (table
// planificacion_profesor): current status plus the path of the stored file.
// ReviewerAssignmentID references areas_profesor, NOT the reviewing teacher
// directly; reviewer identity must always be resolved through the assignment.
type State struct {
	ID                   int         `json:"id" db:"id"`
	PlanID               int         `json:"planificacion_id" db:"planificacion_id"`
	ApproverID           null.Int    `json:"profesor_aprobador_id" db:"profesor_aprobador_id"`
	ReviewerAssignmentID null.Int    `json:"profesor_revisor_id" db:"profesor_revisor_id"`
	Status               string      `json:"estado" db:"estado"`
	FilePath             null.String `json:"archivo" db:"archivo"`
	UpdatedAt            null.Time   `json:"fecha_de_actualizacion" db:"fecha_de_actualizacion"`
}

// Comment on a submission record; append-only.
type Comment struct {
	ID        int       `json:"id" db:"id"`
	TeacherID int       `json:"id_profesor" db:"id_profesor"`
	StateID   int       `json:"planificacion_profesor_id" db:"planificacion_profesor_id"`
	Body      string    `json:"comentario" db:"comentario"`
	SentAt    time.Time `json:"fecha_enviado" db:"fecha_enviado"`
}

// CommentInfo is a Comment joined with its author's name.
type CommentInfo struct {
	Comment
	TeacherName string `json:"nombre_profesor" db:"nombre_profesor"`
}

// Info is a fully joined listing row: the plan, its state, and the
// surrounding names the dashboard and listings display.
type Info struct {
	Plan
	StateID              int         `json:"id_estado" db:"id_estado"`
	TeacherName          string      `json:"profesor_nombre" db:"profesor_nombre"`
	SubjectName          string      `json:"asignatura_nombre" db:"asignatura_nombre"`
	Course               string      `json:"curso_nombre" db:"curso_nombre"`
	PeriodName           string      `json:"periodo_nombre" db:"periodo_nombre"`
	AreaID               int         `json:"area_id" db:"area_id"`
	AreaName             string      `json:"area_nombre" db:"area_nombre"`
	AreaCode             string      `json:"area_codigo" db:"area_codigo"`
	ApproverID           null.Int    `json:"profesor_aprobador_id" db:"profesor_aprobador_id"`
	ApproverName         null.String `json:"profesor_aprobador_nombre" db:"profesor_aprobador_nombre"`
	ReviewerAssignmentID null.Int    `json:"profesor_revisor_id" db:"profesor_revisor_id"`
	ReviewerName         null.String `json:"profesor_revisor_nombre" db:"profesor_revisor_nombre"`
	Status               string      `json:"estado" db:"estado"`
	FilePath             null.String `json:"archivo" db:"archivo"`
	UpdatedAt            null.Time   `json:"fecha_de_actualizacion" db:"fecha_de_actualizacion"`
}

// PendingState backs the overdue sweep: a pendiente state joined with its
// plan's due date and owning teacher.
type PendingState struct {
	State
	PlanTitle    string    `db:"titulo"`
	DueAt        time.Time `db:"fecha_subida"`
	TeacherID    int       `db:"profesor_id"`
	TeacherName  string    `db:"profesor_nombre"`
	TeacherEmail string    `db:"profesor_email"`
}

// QueryFilter filters joined plan listings. Month/Year match on the plan's
// due date; zero values are ignored.
type QueryFilter struct {
	PeriodID          int    `query:"periodo_id"`
	Month             string `query:"mes"`
	Year              string `query:"anio"`
	TeacherID         int    `query:"profesor_id"`
	ReviewerTeacherID int    `query:"-"`
}

type NewPlan struct {
	Title                string    `json:"titulo" validate:"required,max=200"`
	Description          string    `json:"descripcion"`
	DueAt                time.Time `json:"fecha_subida" validate:"required"`
	TeacherID            int       `json:"profesor_id" validate:"required"`
	SubjectID            int       `json:"asignaturas_id" validate:"required"`
	PeriodID             int       `json:"periodo_id" validate:"required"`
	ReviewerAssignmentID int       `json:"profesor_revisor_id"`
}

func (np *NewPlan) Validate() error {
	np.Title = core.CleanString(np.Title)
	return core.Validate.Struct(np)
}

type UpdatePlan struct {
	Title       string    `json:"titulo"`
	Description string    `json:"descripcion"`
	DueAt       time.Time `json:"fecha_subida"`
	TeacherID   int       `json:"profesor_id"`
	SubjectID   int       `json:"asignaturas_id"`
	PeriodID    int       `json:"periodo_id"`
}

func (up *UpdatePlan) Validate(orig Plan) error {
	up.Title = core.CleanString(up.Title)
	if up.Title == "" {
		up.Title = orig.Title
	}
	if up.DueAt.IsZero() {
		up.DueAt = orig.DueAt
	}
	if up.TeacherID == 0 {
		up.TeacherID = orig.TeacherID
	}
	if up.SubjectID == 0 {
		up.SubjectID = orig.SubjectID
	}
	if up.PeriodID == 0 {
		up.PeriodID = orig.PeriodID
	}
	return core.Validate.Struct(up)
}

// SubmitInput is everything a file submission carries: the acting teacher,
// the target state, and the human-readable labels the storage path is built
// from. Labels are sanitized before any remote call.
type SubmitInput struct {
	StateID           int    `form:"id_planificacion" validate:"required"`
	ActorID           int    `form:"id_usuario" validate:"required"`
	AssignedTeacherID int    `form:"id_profesor_asignado" validate:"required"`
	PeriodName        string `form:"periodo_nombre" validate:"required"`
	AreaCode          string `form:"area_codigo" validate:"required"`
	Course            string `form:"curso_nombre" validate:"required"`
	SubjectName       string `form:"nombre_asignatura" validate:"required"`
}

func (si SubmitInput) Validate() error { return core.Validate.Struct(si) }

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	Status string `json:"estado"`
	Path   string `json:"ruta_archivo"`
}

type NewComment struct {
	TeacherID  int    `json:"profesor_id" validate:"required"`
	StateID    int    `json:"planificacion_profesor_id" validate:"required"`
	Body       string `json:"comentario" validate:"required,max=1000"`
	PlanTitle  string `json:"nombre_planificacion"`
	PeriodName string `json:"periodo_nombre"`
}

func (nc *NewComment) Validate() error {
	nc.Body = core.CleanString(nc.Body)
	return core.Validate.Struct(nc)
}
