package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/planacad/backend/core/period"
)

type periodRepository struct {
	db *sqlx.DB
}

var _ period.Repository = (*periodRepository)(nil)

func NewPeriodRepository(db *sqlx.DB) *periodRepository {
	return &periodRepository{db: db}
}

func (repo *periodRepository) CreatePeriod(ctx context.Context, p period.Period) (period.Period, error) {
	const q = `
	INSERT INTO periodos (nombre, descripcion, fecha_inicio, fecha_fin, fecha_creacion)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

	err := repo.db.QueryRowContext(ctx, q, p.Name, p.Description, p.StartsAt, p.EndsAt, p.CreatedAt).Scan(&p.ID)
	return p, err
}

func (repo *periodRepository) QueryAllPeriods(ctx context.Context) ([]period.Period, error) {
	periods := make([]period.Period, 0)
	err := repo.db.SelectContext(ctx, &periods, `SELECT * FROM periodos ORDER BY fecha_inicio DESC`)
	return periods, err
}

func (repo *periodRepository) GetPeriodByID(ctx context.Context, id int) (period.Period, error) {
	var p period.Period
	if err := repo.db.GetContext(ctx, &p, `SELECT * FROM periodos WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return period.Period{}, period.ErrNotFound
		}
		return period.Period{}, err
	}
	return p, nil
}

func (repo *periodRepository) GetLatestPeriod(ctx context.Context) (period.Period, error) {
	var p period.Period
	if err := repo.db.GetContext(ctx, &p, `SELECT * FROM periodos ORDER BY fecha_inicio DESC LIMIT 1`); err != nil {
		if err == sql.ErrNoRows {
			return period.Period{}, period.ErrNotFound
		}
		return period.Period{}, err
	}
	return p, nil
}

func (repo *periodRepository) SearchPeriods(ctx context.Context, query string) ([]period.Period, error) {
	const q = `SELECT * FROM periodos WHERE nombre ILIKE $1 ORDER BY fecha_inicio DESC`

	periods := make([]period.Period, 0)
	err := repo.db.SelectContext(ctx, &periods, q, "%"+query+"%")
	return periods, err
}

func (repo *periodRepository) UpdatePeriod(ctx context.Context, p period.Period) (period.Period, error) {
	const q = `
	UPDATE periodos
	SET nombre = $2, descripcion = $3, fecha_inicio = $4, fecha_fin = $5
	WHERE id = $1`

	res, err := repo.db.ExecContext(ctx, q, p.ID, p.Name, p.Description, p.StartsAt, p.EndsAt)
	if err != nil {
		return period.Period{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return period.Period{}, period.ErrNotFound
	}
	return p, nil
}

func (repo *periodRepository) DeletePeriod(ctx context.Context, id int) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM periodos WHERE id = $1`, id)
	return err
}
