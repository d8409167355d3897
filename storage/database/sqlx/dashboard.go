package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/planacad/backend/core/dashboard"
	"github.com/planacad/backend/core/plan"
	"github.com/planacad/backend/core/teacher"
)

type dashboardRepository struct {
	db *sqlx.DB
}

var _ dashboard.Repository = (*dashboardRepository)(nil)

func NewDashboardRepository(db *sqlx.DB) *dashboardRepository {
	return &dashboardRepository{db: db}
}

func (repo *dashboardRepository) QueryTotals(ctx context.Context) (dashboard.Totals, error) {
	const q = `
	SELECT (SELECT COUNT(*) FROM profesor)        AS total_profesores,
	       (SELECT COUNT(*) FROM areas)           AS total_areas,
	       (SELECT COUNT(*) FROM asignaturas)     AS total_asignaturas,
	       (SELECT COUNT(*) FROM planificaciones) AS total_planificaciones,
	       (SELECT COUNT(*) FROM informes)        AS total_informes`

	var t dashboard.Totals
	err := repo.db.GetContext(ctx, &t, q)
	return t, err
}

func (repo *dashboardRepository) QueryTeachersByRole(ctx context.Context) ([]dashboard.RoleCount, error) {
	const q = `SELECT rol, COUNT(*) AS cantidad FROM profesor GROUP BY rol ORDER BY rol`

	counts := make([]dashboard.RoleCount, 0)
	err := repo.db.SelectContext(ctx, &counts, q)
	return counts, err
}

func (repo *dashboardRepository) QueryPlansByStatus(ctx context.Context, periodID int) ([]dashboard.StatusCount, error) {
	q := `
	SELECT pp.estado, COUNT(*) AS cantidad
	FROM planificacion_profesor pp
	JOIN planificaciones p ON p.id = pp.planificacion_id`
	var args []interface{}
	if periodID != 0 {
		q += `
	WHERE p.periodo_id = $1`
		args = append(args, periodID)
	}
	q += `
	GROUP BY pp.estado ORDER BY pp.estado`

	counts := make([]dashboard.StatusCount, 0)
	err := repo.db.SelectContext(ctx, &counts, q, args...)
	return counts, err
}

func (repo *dashboardRepository) QueryPlansByArea(ctx context.Context, periodID int) ([]dashboard.AreaCount, error) {
	q := `
	SELECT a.id AS area_id, a.nombre AS area_nombre, COUNT(*) AS cantidad
	FROM planificaciones p
	JOIN asignaturas s ON s.id = p.asignaturas_id
	JOIN areas a ON a.id = s.area_id`
	var args []interface{}
	if periodID != 0 {
		q += `
	WHERE p.periodo_id = $1`
		args = append(args, periodID)
	}
	q += `
	GROUP BY a.id, a.nombre ORDER BY a.nombre`

	counts := make([]dashboard.AreaCount, 0)
	err := repo.db.SelectContext(ctx, &counts, q, args...)
	return counts, err
}

func (repo *dashboardRepository) QueryPlansByPeriod(ctx context.Context) ([]dashboard.PeriodCount, error) {
	const q = `
	SELECT per.id AS periodo_id, per.nombre AS periodo_nombre, COUNT(*) AS cantidad
	FROM planificaciones p
	JOIN periodos per ON per.id = p.periodo_id
	GROUP BY per.id, per.nombre
	ORDER BY per.fecha_inicio DESC`

	counts := make([]dashboard.PeriodCount, 0)
	err := repo.db.SelectContext(ctx, &counts, q)
	return counts, err
}

func (repo *dashboardRepository) QueryTeacherSummary(ctx context.Context, teacherID int) (dashboard.TeacherSummary, error) {
	const q = `
	SELECT prof.id AS profesor_id, prof.nombre AS profesor_nombre,
	       COUNT(pp.id)                                              AS planificaciones,
	       COUNT(*) FILTER (WHERE pp.estado = 'pendiente')           AS pendientes,
	       COUNT(*) FILTER (WHERE pp.estado = 'entregado')           AS entregadas,
	       COUNT(*) FILTER (WHERE pp.estado = 'revisado')            AS revisadas,
	       COUNT(*) FILTER (WHERE pp.estado = 'aprobado')            AS aprobadas,
	       COUNT(*) FILTER (WHERE pp.estado = 'no_entregado')        AS no_entregadas
	FROM profesor prof
	LEFT JOIN planificaciones p ON p.profesor_id = prof.id
	LEFT JOIN planificacion_profesor pp ON pp.planificacion_id = p.id
	WHERE prof.id = $1
	GROUP BY prof.id, prof.nombre`

	var s dashboard.TeacherSummary
	if err := repo.db.GetContext(ctx, &s, q, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return dashboard.TeacherSummary{}, teacher.ErrNotFound
		}
		return dashboard.TeacherSummary{}, err
	}
	return s, nil
}

func (repo *dashboardRepository) QueryOverduePlans(ctx context.Context, periodID int) ([]plan.Info, error) {
	q := planInfoQuery + `
WHERE pp.estado = $1`
	args := []interface{}{plan.StatusNotDelivered}
	if periodID != 0 {
		q += ` AND p.periodo_id = $2`
		args = append(args, periodID)
	}
	q += `
ORDER BY p.fecha_subida DESC`

	infos := make([]plan.Info, 0)
	err := repo.db.SelectContext(ctx, &infos, q, args...)
	return infos, err
}

func (repo *dashboardRepository) QueryPlansDueBetween(ctx context.Context, from, to time.Time) ([]plan.Info, error) {
	q := planInfoQuery + `
WHERE pp.estado = $1 AND p.fecha_subida >= $2 AND p.fecha_subida < $3
ORDER BY p.fecha_subida`

	infos := make([]plan.Info, 0)
	err := repo.db.SelectContext(ctx, &infos, q, plan.StatusPending, from, to)
	return infos, err
}

func (repo *dashboardRepository) QueryPlansDeliveredBetween(ctx context.Context, from, to time.Time) ([]plan.Info, error) {
	q := planInfoQuery + `
WHERE pp.estado IN ($1, $2, $3) AND pp.fecha_de_actualizacion >= $4 AND pp.fecha_de_actualizacion < $5
ORDER BY pp.fecha_de_actualizacion DESC`

	infos := make([]plan.Info, 0)
	err := repo.db.SelectContext(ctx, &infos, q,
		plan.StatusDelivered, plan.StatusReviewed, plan.StatusApproved, from, to)
	return infos, err
}
