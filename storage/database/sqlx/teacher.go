// Package sqlxrepos implements the domain repositories on PostgreSQL.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/planacad/backend/core"
	"github.com/planacad/backend/core/teacher"
)

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CheckEmailUniqueness(ctx context.Context, email string, excluded ...teacher.Teacher) error {
	q := `SELECT COUNT(*) FROM profesor WHERE email = $1`
	args := []interface{}{email}
	if len(excluded) > 0 {
		q += ` AND id != $2`
		args = append(args, excluded[0].ID)
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return err
	}
	if count > 0 {
		return teacher.ErrEmailExists
	}
	return nil
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	const q = `
	INSERT INTO profesor (nombre, email, password_hash, cedula, telefono, direccion, rol, estado, is_verified, fecha_creacion)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id`

	err := repo.db.QueryRowContext(ctx, q,
		t.Name, t.Email, t.PasswordHash, t.NationalID, t.Phone, t.Address,
		t.Role, t.IsActive, t.IsVerified, t.CreatedAt,
	).Scan(&t.ID)
	return t, err
}

// teacherOrderables are the columns callers may order teacher listings by.
var teacherOrderables = map[string]bool{
	"id":             true,
	"nombre":         true,
	"email":          true,
	"rol":            true,
	"estado":         true,
	"fecha_creacion": true,
}

func (repo *teacherRepository) QueryAllTeachers(ctx context.Context, ordering ...core.DBOrdering) ([]teacher.Teacher, error) {
	q := `SELECT * FROM profesor`

	orderBys := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		if teacherOrderables[ord.Field] {
			orderBys = append(orderBys, ord.String())
		}
	}
	if len(orderBys) == 0 {
		orderBys = append(orderBys, "nombre ASC")
	}
	q += ` ORDER BY ` + strings.Join(orderBys, ", ")

	teachers := make([]teacher.Teacher, 0)
	err := repo.db.SelectContext(ctx, &teachers, q)
	return teachers, err
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id int) (teacher.Teacher, error) {
	const q = `SELECT * FROM profesor WHERE id = $1`

	var t teacher.Teacher
	if err := repo.db.GetContext(ctx, &t, q, id); err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, err
	}
	return t, nil
}

func (repo *teacherRepository) GetTeacherByEmail(ctx context.Context, email string) (teacher.Teacher, error) {
	const q = `SELECT * FROM profesor WHERE email = $1`

	var t teacher.Teacher
	if err := repo.db.GetContext(ctx, &t, q, email); err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, err
	}
	return t, nil
}

func (repo *teacherRepository) GetTeacherByRole(ctx context.Context, role string) (teacher.Teacher, error) {
	const q = `SELECT * FROM profesor WHERE rol = $1 AND estado ORDER BY id LIMIT 1`

	var t teacher.Teacher
	if err := repo.db.GetContext(ctx, &t, q, role); err != nil {
		if err == sql.ErrNoRows {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, err
	}
	return t, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher, isActive, isVerified *bool) (teacher.Teacher, error) {
	orig, err := repo.GetTeacherByID(ctx, t.ID)
	if err != nil {
		return teacher.Teacher{}, err
	}

	// only save set fields
	if t.PasswordHash == nil {
		t.PasswordHash = orig.PasswordHash
	}
	t.IsActive = orig.IsActive
	if isActive != nil {
		t.IsActive = *isActive
	}
	t.IsVerified = orig.IsVerified
	if isVerified != nil {
		t.IsVerified = *isVerified
	}
	t.CreatedAt = orig.CreatedAt

	const q = `
	UPDATE profesor
	SET nombre = $2, email = $3, password_hash = $4, cedula = $5, telefono = $6,
	    direccion = $7, rol = $8, estado = $9, is_verified = $10
	WHERE id = $1`

	_, err = repo.db.ExecContext(ctx, q,
		t.ID, t.Name, t.Email, t.PasswordHash, t.NationalID, t.Phone, t.Address,
		t.Role, t.IsActive, t.IsVerified,
	)
	return t, err
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM profesor WHERE id = $1`, id)
	return err
}
