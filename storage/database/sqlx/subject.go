package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/planacad/backend/core/subject"
)

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil)

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CheckCodeUniqueness(ctx context.Context, code string, excluded ...subject.Subject) error {
	q := `SELECT COUNT(*) FROM asignaturas WHERE codigo = $1`
	args := []interface{}{code}
	if len(excluded) > 0 {
		q += ` AND id != $2`
		args = append(args, excluded[0].ID)
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return err
	}
	if count > 0 {
		return subject.ErrCodeExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	const q = `
	INSERT INTO asignaturas (codigo, nombre, descripcion, curso, paralelo, area_id, fecha_creacion)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id`

	err := repo.db.QueryRowContext(ctx, q,
		s.Code, s.Name, s.Description, s.Course, s.Group, s.AreaID, s.CreatedAt,
	).Scan(&s.ID)
	return s, err
}

func (repo *subjectRepository) QueryAllSubjects(ctx context.Context) ([]subject.SubjectInfo, error) {
	const q = `
	SELECT s.*, a.nombre AS area_nombre, a.codigo AS area_codigo
	FROM asignaturas s
	JOIN areas a ON a.id = s.area_id
	ORDER BY s.nombre`

	infos := make([]subject.SubjectInfo, 0)
	err := repo.db.SelectContext(ctx, &infos, q)
	return infos, err
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id int) (subject.Subject, error) {
	var s subject.Subject
	if err := repo.db.GetContext(ctx, &s, `SELECT * FROM asignaturas WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return subject.Subject{}, subject.ErrNotFound
		}
		return subject.Subject{}, err
	}
	return s, nil
}

func (repo *subjectRepository) SearchSubjects(ctx context.Context, query string) ([]subject.Subject, error) {
	const q = `
	SELECT * FROM asignaturas
	WHERE nombre ILIKE $1 OR codigo ILIKE $1 OR curso ILIKE $1
	ORDER BY nombre`

	subjects := make([]subject.Subject, 0)
	err := repo.db.SelectContext(ctx, &subjects, q, "%"+query+"%")
	return subjects, err
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, s subject.Subject) (subject.Subject, error) {
	const q = `
	UPDATE asignaturas
	SET codigo = $2, nombre = $3, descripcion = $4, curso = $5, paralelo = $6, area_id = $7
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, s.ID, s.Code, s.Name, s.Description, s.Course, s.Group, s.AreaID)
	if err != nil {
		return subject.Subject{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return subject.Subject{}, subject.ErrNotFound
	}
	return s, nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM asignaturas WHERE id = $1`, id)
	return err
}
