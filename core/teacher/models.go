package teacher

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/planacad/backend/core"
)

// Roles. A Rector approves documents school-wide; an Area Director reviews
// documents for the areas they are assigned to; a Docente only submits.
const (
	RoleRector       = "Rector"
	RoleAreaDirector = "Director de Area"
	RoleDocente      = "Docente"
)

var Roles = []string{RoleRector, RoleAreaDirector, RoleDocente}

func ValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type Teacher struct {
	ID           int         `json:"id" db:"id"`
	Name         string      `json:"nombre" db:"nombre"`
	Email        string      `json:"email" db:"email"`
	PasswordHash []byte      `json:"-" db:"password_hash"`
	NationalID   null.String `json:"cedula" db:"cedula"`
	Phone        null.String `json:"telefono" db:"telefono"`
	Address      null.String `json:"direccion" db:"direccion"`
	Role         string      `json:"rol" db:"rol"`
	IsActive     bool        `json:"estado" db:"estado"`
	IsVerified   bool        `json:"is_verified" db:"is_verified"`
	CreatedAt    time.Time   `json:"fecha_creacion" db:"fecha_creacion"` // UTC
}

func (t *Teacher) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	t.PasswordHash = hash
	return nil
}

func (t *Teacher) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(t.PasswordHash, []byte(pwd))
}

func (t *Teacher) IsRector() bool       { return t.Role == RoleRector }
func (t *Teacher) IsAreaDirector() bool { return t.Role == RoleAreaDirector }

// NewTeacher contains information needed to create a new Teacher.
type NewTeacher struct {
	Name       string `json:"nombre" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	NationalID string `json:"cedula" validate:"omitempty,numeric"`
	Phone      string `json:"telefono"`
	Address    string `json:"direccion"`
	Role       string `json:"rol" validate:"omitempty,role"`
}

func (nt *NewTeacher) Validate(svc *Service) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)

	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return svc.checkUniqueness(nt.Email)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
type UpdateTeacher struct {
	Name       string `json:"nombre"`
	Email      string `json:"email" validate:"omitempty,email"`
	Password   string `json:"password" validate:"omitempty,min=8"`
	NationalID string `json:"cedula" validate:"omitempty,numeric"`
	Phone      string `json:"telefono"`
	Address    string `json:"direccion"`
	Role       string `json:"rol" validate:"omitempty,role"`
	IsActive   *bool  `json:"estado"`
	IsVerified *bool  `json:"is_verified"`
}

func (ut *UpdateTeacher) Validate(orig Teacher, svc *Service) error {
	ut.Name = core.CleanString(ut.Name)
	if ut.Name == "" {
		ut.Name = orig.Name
	}
	ut.Email = core.CleanString(ut.Email, true /* lower */)
	if ut.Email == "" {
		ut.Email = orig.Email
	}
	if ut.Role == "" {
		ut.Role = orig.Role
	}

	if err := core.Validate.Struct(ut); err != nil {
		return err
	}
	return svc.checkUniqueness(ut.Email, orig)
}
