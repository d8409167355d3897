package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/planacad/backend/core/area"
)

type areaRepository struct {
	db *sqlx.DB
}

var _ area.Repository = (*areaRepository)(nil)

func NewAreaRepository(db *sqlx.DB) *areaRepository {
	return &areaRepository{db: db}
}

func (repo *areaRepository) CheckCodeUniqueness(ctx context.Context, code string, excluded ...area.Area) error {
	q := `SELECT COUNT(*) FROM areas WHERE codigo = $1`
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
		return area.ErrCodeExists
	}
	return nil
}

func (repo *areaRepository) CreateArea(ctx context.Context, a area.Area) (area.Area, error) {
	const q = `INSERT INTO areas (nombre, codigo) VALUES ($1, $2) RETURNING id`

	err := repo.db.QueryRowContext(ctx, q, a.Name, a.Code).Scan(&a.ID)
	return a, err
}

func (repo *areaRepository) QueryAllAreas(ctx context.Context) ([]area.Area, error) {
	areas := make([]area.Area, 0)
	err := repo.db.SelectContext(ctx, &areas, `SELECT * FROM areas ORDER BY nombre`)
	return areas, err
}

func (repo *areaRepository) GetAreaByID(ctx context.Context, id int) (area.Area, error) {
	var a area.Area
	if err := repo.db.GetContext(ctx, &a, `SELECT * FROM areas WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return area.Area{}, area.ErrNotFound
		}
		return area.Area{}, err
	}
	return a, nil
}

func (repo *areaRepository) SearchAreas(ctx context.Context, query string) ([]area.Area, error) {
	const q = `SELECT * FROM areas WHERE nombre ILIKE $1 OR codigo ILIKE $1 ORDER BY nombre`

	areas := make([]area.Area, 0)
	err := repo.db.SelectContext(ctx, &areas, q, "%"+query+"%")
	return areas, err
}

func (repo *areaRepository) UpdateArea(ctx context.Context, a area.Area) (area.Area, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE areas SET nombre = $2, codigo = $3 WHERE id = $1`, a.ID, a.Name, a.Code)
	if err != nil {
		return area.Area{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return area.Area{}, area.ErrNotFound
	}
	return a, nil
}

func (repo *areaRepository) DeleteArea(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM areas WHERE id = $1`, id)
	return err
}

func (repo *areaRepository) CreateAssignment(ctx context.Context, as area.Assignment) (area.Assignment, error) {
	const q = `
	INSERT INTO areas_profesor (profesor_id, area_id, fecha_de_ingreso)
	VALUES ($1, $2, $3)
	RETURNING id`

	err := repo.db.QueryRowContext(ctx, q, as.TeacherID, as.AreaID, as.JoinedAt).Scan(&as.ID)
	return as, err
}

func (repo *areaRepository) GetAssignmentByID(ctx context.Context, id int) (area.Assignment, error) {
	var as area.Assignment
	if err := repo.db.GetContext(ctx, &as, `SELECT * FROM areas_profesor WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return area.Assignment{}, area.ErrAssignmentNotFound
		}
		return area.Assignment{}, err
	}
	return as, nil
}

const assignmentInfoQuery = `
SELECT ap.*, p.nombre AS profesor_nombre, a.nombre AS area_nombre, a.codigo AS area_codigo
FROM areas_profesor ap
JOIN profesor p ON p.id = ap.profesor_id
JOIN areas a ON a.id = ap.area_id`

func (repo *areaRepository) QueryAllAssignments(ctx context.Context) ([]area.AssignmentInfo, error) {
	infos := make([]area.AssignmentInfo, 0)
	err := repo.db.SelectContext(ctx, &infos, assignmentInfoQuery+` ORDER BY a.nombre`)
	return infos, err
}

func (repo *areaRepository) QueryTeacherAssignments(ctx context.Context, teacherID int) ([]area.AssignmentInfo, error) {
	infos := make([]area.AssignmentInfo, 0)
	err := repo.db.SelectContext(ctx, &infos, assignmentInfoQuery+` WHERE ap.profesor_id = $1 ORDER BY a.nombre`, teacherID)
	return infos, err
}

func (repo *areaRepository) UpdateAssignment(ctx context.Context, as area.Assignment) (area.Assignment, error) {
	const q = `UPDATE areas_profesor SET profesor_id = $2, area_id = $3 WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, as.ID, as.TeacherID, as.AreaID)
	if err != nil {
		return area.Assignment{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return area.Assignment{}, area.ErrAssignmentNotFound
	}
	return as, nil
}
