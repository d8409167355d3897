package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/planacad/backend/core/report"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil)

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

const reportInfoQuery = `
SELECT r.*, prof.nombre AS profesor_nombre, per.nombre AS periodo_nombre
FROM informes r
JOIN profesor prof ON prof.id = r.profesor_id
JOIN periodos per ON per.id = r.periodo_id`

func (repo *reportRepository) CreateReport(ctx context.Context, r report.Report) (report.Report, error) {
	const q = `
	INSERT INTO informes (profesor_id, periodo_id, estado, archivo, fecha_creacion, fecha_de_actualizacion)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id`

	err := repo.db.QueryRowContext(ctx, q,
		r.TeacherID, r.PeriodID, r.Status, r.FilePath, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
	return r, err
}

func (repo *reportRepository) GetReportByID(ctx context.Context, id int) (report.Report, error) {
	var r report.Report
	if err := repo.db.GetContext(ctx, &r, `SELECT * FROM informes WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return report.Report{}, report.ErrNotFound
		}
		return report.Report{}, err
	}
	return r, nil
}

func (repo *reportRepository) QueryReports(ctx context.Context, f report.QueryFilter) ([]report.Info, error) {
	q := reportInfoQuery
	var (
		clauses []string
		args    []interface{}
	)
	addClause := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.PeriodID != 0 {
		addClause("r.periodo_id = $%d", f.PeriodID)
	}
	if f.TeacherID != 0 {
		addClause("r.profesor_id = $%d", f.TeacherID)
	}

	for i, clause := range clauses {
		if i == 0 {
			q += "\nWHERE " + clause
		} else {
			q += " AND " + clause
		}
	}
	q += "\nORDER BY r.fecha_creacion DESC"

	infos := make([]report.Info, 0)
	err := repo.db.SelectContext(ctx, &infos, q, args...)
	return infos, err
}

func (repo *reportRepository) UpdateReport(ctx context.Context, r report.Report) (report.Report, error) {
	const q = `
	UPDATE informes
	SET estado = $2, archivo = $3, fecha_de_actualizacion = $4
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, r.ID, r.Status, r.FilePath, r.UpdatedAt)
	if err != nil {
		return report.Report{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return report.Report{}, report.ErrNotFound
	}
	return r, nil
}

func (repo *reportRepository) DeleteReport(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM informes WHERE id = $1`, id)
	return err
}

func (repo *reportRepository) CountReportsByPeriod(ctx context.Context, periodID int) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM informes WHERE periodo_id = $1`, periodID)
	return count, err
}

func (repo *reportRepository) CreateComment(ctx context.Context, c report.Comment) (report.Comment, error) {
	const q = `
	INSERT INTO informe_comentarios (id_profesor, informe_id, comentario, fecha_enviado)
	VALUES ($1, $2, $3, $4)
	RETURNING id`

	err := repo.db.QueryRowContext(ctx, q, c.TeacherID, c.ReportID, c.Body, c.SentAt).Scan(&c.ID)
	return c, err
}

func (repo *reportRepository) QueryComments(ctx context.Context, reportID int) ([]report.CommentInfo, error) {
	const q = `
	SELECT c.*, prof.nombre AS nombre_profesor
	FROM informe_comentarios c
	JOIN profesor prof ON prof.id = c.id_profesor
	WHERE c.informe_id = $1
	ORDER BY c.fecha_enviado`

	comments := make([]report.CommentInfo, 0)
	err := repo.db.SelectContext(ctx, &comments, q, reportID)
	return comments, err
}
