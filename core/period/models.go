package period

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/planacad/backend/core"
)

type Period struct {
	ID          int         `json:"id" db:"id"`
	Name        string      `json:"nombre" db:"nombre"`
	Description null.String `json:"descripcion" db:"descripcion"`
	StartsAt    time.Time   `json:"fecha_inicio" db:"fecha_inicio"`
	EndsAt      time.Time   `json:"fecha_fin" db:"fecha_fin"`
	CreatedAt   time.Time   `json:"fecha_creacion" db:"fecha_creacion"` // UTC
}

type NewPeriod struct {
	Name        string    `json:"nombre" validate:"required,max=100"`
	Description string    `json:"descripcion"`
	StartsAt    time.Time `json:"fecha_inicio" validate:"required"`
	EndsAt      time.Time `json:"fecha_fin" validate:"required,gtfield=StartsAt"`
}

func (np *NewPeriod) Validate() error {
	np.Name = core.CleanString(np.Name)
	return core.Validate.Struct(np)
}

type UpdatePeriod struct {
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	StartsAt    time.Time `json:"fecha_inicio"`
	EndsAt      time.Time `json:"fecha_fin"`
}

func (up *UpdatePeriod) Validate(orig Period) error {
	up.Name = core.CleanString(up.Name)
	if up.Name == "" {
		up.Name = orig.Name
	}
	if up.StartsAt.IsZero() {
		up.StartsAt = orig.StartsAt
	}
	if up.EndsAt.IsZero() {
		up.EndsAt = orig.EndsAt
	}
	return core.Validate.Struct(up)
}
