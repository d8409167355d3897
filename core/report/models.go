package report

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/planacad/backend/core"
)

// Report is a period report (informe) a teacher files for the school's
// Rector. Unlike plans there is no per-area reviewer: the Rector is always
// the approver, so the status alphabet reduces to entregado/aprobado.
type Report struct {
	ID        int         `json:"id" db:"id"`
	TeacherID int         `json:"profesor_id" db:"profesor_id"`
	PeriodID  int         `json:"periodo_id" db:"periodo_id"`
	Status    string      `json:"estado" db:"estado"`
	FilePath  null.String `json:"archivo" db:"archivo"`
	CreatedAt time.Time   `json:"fecha_creacion" db:"fecha_creacion"`
	UpdatedAt null.Time   `json:"fecha_de_actualizacion" db:"fecha_de_actualizacion"`
}

// Info is a Report joined with the teacher's and period's names.
type Info struct {
	Report
	TeacherName string `json:"profesor_nombre" db:"profesor_nombre"`
	PeriodName  string `json:"periodo_nombre" db:"periodo_nombre"`
}

type Comment struct {
	ID        int       `json:"id" db:"id"`
	TeacherID int       `json:"id_profesor" db:"id_profesor"`
	ReportID  int       `json:"informe_id" db:"informe_id"`
	Body      string    `json:"comentario" db:"comentario"`
	SentAt    time.Time `json:"fecha_enviado" db:"fecha_enviado"`
}

type CommentInfo struct {
	Comment
	TeacherName string `json:"nombre_profesor" db:"nombre_profesor"`
}

type QueryFilter struct {
	PeriodID  int `query:"periodo_id"`
	TeacherID int `query:"profesor_id"`
}

type NewReport struct {
	TeacherID int `form:"profesor_id" validate:"required"`
	PeriodID  int `form:"periodo_id" validate:"required"`
}

func (nr NewReport) Validate() error { return core.Validate.Struct(nr) }

type NewComment struct {
	TeacherID int    `json:"profesor_id" validate:"required"`
	ReportID  int    `json:"informe_id" validate:"required"`
	Body      string `json:"comentario" validate:"required,max=1000"`
}

func (nc *NewComment) Validate() error {
	nc.Body = core.CleanString(nc.Body)
	return core.Validate.Struct(nc)
}
