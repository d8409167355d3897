package area

import (
	"time"

	"github.com/planacad/backend/core"
)

type Area struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"nombre" db:"nombre"`
	Code string `json:"codigo" db:"codigo"`
}

// Assignment links a reviewing teacher to an Area (table areas_profesor).
// Submission records reference the assignment row, never the teacher
// directly: "the reviewer" is whoever holds the assignment at lookup time.
type Assignment struct {
	ID        int       `json:"id" db:"id"`
	TeacherID int       `json:"profesor_id" db:"profesor_id"`
	AreaID    int       `json:"area_id" db:"area_id"`
	JoinedAt  time.Time `json:"fecha_de_ingreso" db:"fecha_de_ingreso"`
}

// AssignmentInfo is an Assignment joined with its teacher and area names.
type AssignmentInfo struct {
	Assignment
	TeacherName string `json:"profesor_nombre" db:"profesor_nombre"`
	AreaName    string `json:"area_nombre" db:"area_nombre"`
	AreaCode    string `json:"area_codigo" db:"area_codigo"`
}

type NewArea struct {
	Name string `json:"nombre" validate:"required,max=100"`
	Code string `json:"codigo" validate:"required,max=50,code"`
}

func (na *NewArea) Validate(svc *Service) error {
	na.Name = core.CleanString(na.Name)
	na.Code = core.CleanString(na.Code)

	if err := core.Validate.Struct(na); err != nil {
		return err
	}
	return svc.checkUniqueness(na.Code)
}

type UpdateArea struct {
	Name string `json:"nombre"`
	Code string `json:"codigo" validate:"omitempty,max=50,code"`
}

func (ua *UpdateArea) Validate(orig Area, svc *Service) error {
	ua.Name = core.CleanString(ua.Name)
	if ua.Name == "" {
		ua.Name = orig.Name
	}
	ua.Code = core.CleanString(ua.Code)
	if ua.Code == "" {
		ua.Code = orig.Code
	}

	if err := core.Validate.Struct(ua); err != nil {
		return err
	}
	return svc.checkUniqueness(ua.Code, orig)
}

type NewAssignment struct {
	TeacherID int `json:"profesor_id" validate:"required"`
	AreaID    int `json:"area_id" validate:"required"`
}

func (na NewAssignment) Validate() error { return core.Validate.Struct(na) }
