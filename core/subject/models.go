package subject

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/planacad/backend/core"
)

type Subject struct {
	ID          int         `json:"id" db:"id"`
	Code        string      `json:"codigo" db:"codigo"`
	Name        string      `json:"nombre" db:"nombre"`
	Description null.String `json:"descripcion" db:"descripcion"`
	Course      string      `json:"curso" db:"curso"`
	Group       null.String `json:"paralelo" db:"paralelo"`
	AreaID      int         `json:"area_id" db:"area_id"`
	CreatedAt   time.Time   `json:"fecha_creacion" db:"fecha_creacion"` // UTC
}

// SubjectInfo is a Subject joined with its area.
type SubjectInfo struct {
	Subject
	AreaName string `json:"area_nombre" db:"area_nombre"`
	AreaCode string `json:"area_codigo" db:"area_codigo"`
}

type NewSubject struct {
	Code        string `json:"codigo" validate:"required,max=50,code"`
	Name        string `json:"nombre" validate:"required,max=100"`
	Description string `json:"descripcion"`
	Course      string `json:"curso" validate:"required,max=50"`
	Group       string `json:"paralelo"`
	AreaID      int    `json:"area_id" validate:"required"`
}

func (ns *NewSubject) Validate(svc *Service) error {
	ns.Code = core.CleanString(ns.Code)
	ns.Name = core.CleanString(ns.Name)
	ns.Course = core.CleanString(ns.Course)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ns.Code)
}

type UpdateSubject struct {
	Code        string `json:"codigo" validate:"omitempty,max=50,code"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
	Course      string `json:"curso"`
	Group       string `json:"paralelo"`
	AreaID      int    `json:"area_id"`
}

func (us *UpdateSubject) Validate(orig Subject, svc *Service) error {
	us.Code = core.CleanString(us.Code)
	if us.Code == "" {
		us.Code = orig.Code
	}
	us.Name = core.CleanString(us.Name)
	if us.Name == "" {
		us.Name = orig.Name
	}
	if us.Course == "" {
		us.Course = orig.Course
	}
	if us.AreaID == 0 {
		us.AreaID = orig.AreaID
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	return svc.checkUniqueness(us.Code, orig)
}
