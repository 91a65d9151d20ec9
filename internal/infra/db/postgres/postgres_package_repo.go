package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/repository"
)

var _ repository.PackageRepository = (*packageRepo)(nil)

type packageRepo struct{ pool *pgxpool.Pool }

func NewPackageRepo(pool *pgxpool.Pool) *packageRepo {
	return &packageRepo{pool: pool}
}

func (r *packageRepo) Save(ctx context.Context, tx repository.Tx, p *model.Package) error {
	const q = `
INSERT INTO packages (id, name, duration_years, price, description, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=$2, duration_years=$3, price=$4, description=$5, updated_at=$7;`

	_, err := execSQL(ctx, r.pool, tx, q, p.ID, p.Name, p.DurationYears, p.Price, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *packageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	const q = `SELECT id, name, duration_years, price, description, created_at, updated_at FROM packages WHERE id=$1;`
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	p := &model.Package{}
	if err := row.Scan(&p.ID, &p.Name, &p.DurationYears, &p.Price, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return p, nil
}

func (r *packageRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	const q = `SELECT id, name, duration_years, price, description, created_at, updated_at FROM packages ORDER BY price ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Package
	for rows.Next() {
		p := &model.Package{}
		if err := rows.Scan(&p.ID, &p.Name, &p.DurationYears, &p.Price, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}

func (r *packageRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	const q = `DELETE FROM packages WHERE id=$1;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
