package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/planacad/backend/core/plan"
)

type planRepository struct {
	db *sqlx.DB
}

var _ plan.Repository = (*planRepository)(nil)

func NewPlanRepository(db *sqlx.DB) *planRepository {
	return &planRepository{db: db}
}

// planInfoQuery joins a plan with its state and every display name. The
// reviewer's name goes through areas_profesor: the state row stores the
// assignment id, not the teacher id.
const planInfoQuery = `
SELECT p.id, p.titulo, p.descripcion, p.fecha_subida, p.profesor_id, p.asignaturas_id, p.periodo_id,
       pp.id AS id_estado, prof.nombre AS profesor_nombre,
       s.nombre AS asignatura_nombre, s.curso AS curso_nombre, per.nombre AS periodo_nombre,
       a.id AS area_id, a.nombre AS area_nombre, a.codigo AS area_codigo,
       pp.profesor_aprobador_id, apr.nombre AS profesor_aprobador_nombre,
       pp.profesor_revisor_id, rev.nombre AS profesor_revisor_nombre,
       pp.estado, pp.archivo, pp.fecha_de_actualizacion
FROM planificaciones p
JOIN planificacion_profesor pp ON pp.planificacion_id = p.id
JOIN profesor prof ON prof.id = p.profesor_id
JOIN asignaturas s ON s.id = p.asignaturas_id
JOIN areas a ON a.id = s.area_id
JOIN periodos per ON per.id = p.periodo_id
LEFT JOIN profesor apr ON apr.id = pp.profesor_aprobador_id
LEFT JOIN areas_profesor ap ON ap.id = pp.profesor_revisor_id
LEFT JOIN profesor rev ON rev.id = ap.profesor_id`

func (repo *planRepository) CreatePlan(ctx context.Context, p plan.Plan, st plan.State) (plan.Plan, plan.State, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return plan.Plan{}, plan.State{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	const insertPlan = `
	INSERT INTO planificaciones (titulo, descripcion, fecha_subida, profesor_id, asignaturas_id, periodo_id)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id`

	err = tx.QueryRowContext(ctx, insertPlan,
		p.Title, p.Description, p.DueAt, p.TeacherID, p.SubjectID, p.PeriodID,
	).Scan(&p.ID)
	if err != nil {
		return plan.Plan{}, plan.State{}, err
	}

	const insertState = `
	INSERT INTO planificacion_profesor (planificacion_id, profesor_aprobador_id, profesor_revisor_id, estado, archivo, fecha_de_actualizacion)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING id`

	st.PlanID = p.ID
	err = tx.QueryRowContext(ctx, insertState,
		st.PlanID, st.ApproverID, st.ReviewerAssignmentID, st.Status, st.FilePath, st.UpdatedAt,
	).Scan(&st.ID)
	if err != nil {
		return plan.Plan{}, plan.State{}, err
	}

	if err = tx.Commit(); err != nil {
		return plan.Plan{}, plan.State{}, errors.Wrap(err, "committing transaction")
	}
	return p, st, nil
}

func (repo *planRepository) GetPlanByID(ctx context.Context, id int) (plan.Plan, error) {
	var p plan.Plan
	if err := repo.db.GetContext(ctx, &p, `SELECT * FROM planificaciones WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return plan.Plan{}, plan.ErrNotFound
		}
		return plan.Plan{}, err
	}
	return p, nil
}

func (repo *planRepository) QueryPlans(ctx context.Context, f plan.QueryFilter) ([]plan.Info, error) {
	q := planInfoQuery
	var (
		clauses []string
		args    []interface{}
	)
	addClause := func(clause string, arg interface{}) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.PeriodID != 0 {
		addClause("p.periodo_id = $%d", f.PeriodID)
	}
	if f.Month != "" {
		addClause("TO_CHAR(p.fecha_subida, 'MM') = $%d", f.Month)
	}
	if f.Year != "" {
		addClause("TO_CHAR(p.fecha_subida, 'YYYY') = $%d", f.Year)
	}
	if f.TeacherID != 0 {
		addClause("p.profesor_id = $%d", f.TeacherID)
	}
	if f.ReviewerTeacherID != 0 {
		addClause("ap.profesor_id = $%d", f.ReviewerTeacherID)
	}

	for i, clause := range clauses {
		if i == 0 {
			q += "\nWHERE " + clause
		} else {
			q += " AND " + clause
		}
	}
	q += "\nORDER BY p.fecha_subida DESC"

	infos := make([]plan.Info, 0)
	err := repo.db.SelectContext(ctx, &infos, q, args...)
	return infos, err
}

func (repo *planRepository) UpdatePlan(ctx context.Context, p plan.Plan) (plan.Plan, error) {
	const q = `
	UPDATE planificaciones
	SET titulo = $2, descripcion = $3, fecha_subida = $4, profesor_id = $5, asignaturas_id = $6, periodo_id = $7
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		p.ID, p.Title, p.Description, p.DueAt, p.TeacherID, p.SubjectID, p.PeriodID)
	if err != nil {
		return plan.Plan{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return plan.Plan{}, plan.ErrNotFound
	}
	return p, nil
}

func (repo *planRepository) DeletePlan(ctx context.Context, id int) error {
	// states and comments go with it via ON DELETE CASCADE
	_, err := repo.db.ExecContext(ctx, `DELETE FROM planificaciones WHERE id = $1`, id)
	return err
}

func (repo *planRepository) GetStateByID(ctx context.Context, id int) (plan.State, error) {
	var st plan.State
	if err := repo.db.GetContext(ctx, &st, `SELECT * FROM planificacion_profesor WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return plan.State{}, plan.ErrStateNotFound
		}
		return plan.State{}, err
	}
	return st, nil
}

func (repo *planRepository) GetStateByPlanID(ctx context.Context, planID int) (plan.State, error) {
	var st plan.State
	if err := repo.db.GetContext(ctx, &st, `SELECT * FROM planificacion_profesor WHERE planificacion_id = $1`, planID); err != nil {
		if err == sql.ErrNoRows {
			return plan.State{}, plan.ErrStateNotFound
		}
		return plan.State{}, err
	}
	return st, nil
}

func (repo *planRepository) UpdateState(ctx context.Context, st plan.State) (plan.State, error) {
	const q = `
	UPDATE planificacion_profesor
	SET profesor_aprobador_id = $2, profesor_revisor_id = $3, estado = $4, archivo = $5, fecha_de_actualizacion = $6
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q,
		st.ID, st.ApproverID, st.ReviewerAssignmentID, st.Status, st.FilePath, st.UpdatedAt)
	if err != nil {
		return plan.State{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return plan.State{}, plan.ErrStateNotFound
	}
	return st, nil
}

func (repo *planRepository) QueryPendingStates(ctx context.Context) ([]plan.PendingState, error) {
	const q = `
	SELECT pp.*, p.titulo, p.fecha_subida, p.profesor_id,
	       prof.nombre AS profesor_nombre, prof.email AS profesor_email
	FROM planificacion_profesor pp
	JOIN planificaciones p ON p.id = pp.planificacion_id
	JOIN profesor prof ON prof.id = p.profesor_id
	WHERE pp.estado = $1`

	states := make([]plan.PendingState, 0)
	err := repo.db.SelectContext(ctx, &states, q, plan.StatusPending)
	return states, err
}

func (repo *planRepository) CreateComment(ctx context.Context, c plan.Comment) (plan.Comment, error) {
	const q = `
	INSERT INTO comentarios (id_profesor, planificacion_profesor_id, comentario, fecha_enviado)
	VALUES ($1, $2, $3, $4)
	RETURNING id`

	err := repo.db.QueryRowContext(ctx, q, c.TeacherID, c.StateID, c.Body, c.SentAt).Scan(&c.ID)
	return c, err
}

func (repo *planRepository) QueryComments(ctx context.Context, stateID int) ([]plan.CommentInfo, error) {
	const q = `
	SELECT c.*, prof.nombre AS nombre_profesor
	FROM comentarios c
	JOIN profesor prof ON prof.id = c.id_profesor
	WHERE c.planificacion_profesor_id = $1
	ORDER BY c.fecha_enviado`

	comments := make([]plan.CommentInfo, 0)
	err := repo.db.SelectContext(ctx, &comments, q, stateID)
	return comments, err
}
