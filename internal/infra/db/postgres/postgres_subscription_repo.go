package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/repository"
)

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct{ pool *pgxpool.Pool }

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

const subColumns = `id, user_id, package_id, package_name, price, duration_years, payment_method, start_date, end_date, status, payment_status, last_reference_id, created_at, updated_at`

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (
  id, user_id, package_id, package_name, price, duration_years, payment_method, start_date, end_date, status, payment_status, last_reference_id, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (id) DO UPDATE SET
  package_name=$4, price=$5, duration_years=$6, payment_method=$7, start_date=$8, end_date=$9, status=$10, payment_status=$11, last_reference_id=$12, updated_at=$14;`

	_, err := execSQL(ctx, r.pool, tx, q, s.ID, s.UserID, s.PackageID, s.PackageName, s.Price, s.DurationYears, s.Method, s.StartDate, s.EndDate, s.Status, s.PaymentStatus, s.LastReferenceID, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

func (r *subscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	q := `SELECT ` + subColumns + ` FROM subscriptions WHERE id=$1`
	if _, ok := tx.(pgx.Tx); ok {
		q += " FOR UPDATE"
	}
	q += ";"
	return r.queryOne(ctx, tx, q, id)
}

func (r *subscriptionRepo) FindByReference(ctx context.Context, tx repository.Tx, referenceID string) (*model.Subscription, error) {
	if referenceID == "" {
		return nil, domain.ErrInvalidArgument
	}
	const q = `SELECT ` + subColumns + ` FROM subscriptions WHERE last_reference_id=$1;`
	return r.queryOne(ctx, tx, q, referenceID)
}

func (r *subscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	const q = `SELECT ` + subColumns + ` FROM subscriptions WHERE user_id=$1 ORDER BY created_at DESC;`
	return r.queryMany(ctx, tx, q, userID)
}

func (r *subscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, patch repository.StatusPatch) error {
	const q = `
UPDATE subscriptions
   SET status = COALESCE($2, status),
       payment_status = COALESCE($3, payment_status),
       last_reference_id = COALESCE($4, last_reference_id),
       updated_at = NOW()
 WHERE id = $1;`
	_, err := execSQL(ctx, r.pool, tx, q, id, patch.Status, patch.PaymentStatus, patch.LastReferenceID)
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return err
		}
		return domain.ErrOperationFailed
	}
	return nil
}

// UpdatePaymentStatusIf applies the transition only when the stored
// payment status still equals `expected`. RowsAffected tells the caller
// whether it won the race.
func (r *subscriptionRepo) UpdatePaymentStatusIf(ctx context.Context, tx repository.Tx, id string, expected, next model.PaymentStatus) (bool, error) {
	const q = `
UPDATE subscriptions
   SET payment_status = $3,
       updated_at = NOW()
 WHERE id = $1
   AND payment_status = $2;`
	cmd, err := execSQL(ctx, r.pool, tx, q, id, string(expected), string(next))
	if err != nil {
		if err == domain.ErrInvalidArgument || err == domain.ErrInvalidExecContext {
			return false, err
		}
		return false, domain.ErrOperationFailed
	}
	return cmd.RowsAffected() >= 1, nil
}

func (r *subscriptionRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	// updated_at, not created_at: a retry re-touches the record, which
	// restarts its payment window from the governor's point of view.
	const q = `SELECT ` + subColumns + ` FROM subscriptions WHERE payment_status='pending' AND updated_at < $1 ORDER BY updated_at ASC LIMIT $2;`
	return r.queryMany(ctx, tx, q, olderThan, limit)
}

func (r *subscriptionRepo) ListActiveEndedBefore(ctx context.Context, tx repository.Tx, endedBefore time.Time, limit int) ([]*model.Subscription, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `SELECT ` + subColumns + ` FROM subscriptions WHERE status='active' AND end_date < $1 ORDER BY end_date ASC LIMIT $2;`
	return r.queryMany(ctx, tx, q, endedBefore, limit)
}

func (r *subscriptionRepo) ListExpiringWithin(ctx context.Context, tx repository.Tx, within time.Duration) ([]*model.Subscription, error) {
	const q = `
SELECT ` + subColumns + `
  FROM subscriptions
 WHERE status='active' AND payment_status='paid'
   AND end_date > NOW()
   AND end_date <= NOW() + $1::interval
 ORDER BY end_date ASC;`
	return r.queryMany(ctx, tx, q, within)
}

func (r *subscriptionRepo) CountByPaymentStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int, error) {
	const q = `SELECT payment_status, COUNT(*) FROM subscriptions GROUP BY payment_status;`
	rows, err := queryRows(ctx, r.pool, tx, q)
	if err != nil {
		return nil, domain.ErrOperationFailed
	}
	defer rows.Close()

	counts := make(map[model.PaymentStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		counts[model.PaymentStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return counts, nil
}

func (r *subscriptionRepo) SumPaidByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	const q = `SELECT COALESCE(SUM(price),0) FROM subscriptions WHERE payment_status='paid' AND updated_at >= DATE_TRUNC($1, NOW());`
	row, err := pickRow(ctx, r.pool, tx, q, period)
	if err != nil {
		return 0, err
	}
	var sum int64
	if err := row.Scan(&sum); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return sum, nil
}

func (r *subscriptionRepo) queryOne(ctx context.Context, tx repository.Tx, sql string, args ...any) (*model.Subscription, error) {
	row, err := pickRow(ctx, r.pool, tx, sql, args...)
	if err != nil {
		return nil, err
	}
	s := &model.Subscription{}
	var status, payStatus, method string
	if err := row.Scan(&s.ID, &s.UserID, &s.PackageID, &s.PackageName, &s.Price, &s.DurationYears, &method, &s.StartDate, &s.EndDate, &status, &payStatus, &s.LastReferenceID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	s.Status = model.SubscriptionStatus(status)
	s.PaymentStatus = model.PaymentStatus(payStatus)
	s.Method = model.PaymentMethod(method)
	return s, nil
}

func (r *subscriptionRepo) queryMany(ctx context.Context, tx repository.Tx, sql string, args ...any) ([]*model.Subscription, error) {
	rows, err := queryRows(ctx, r.pool, tx, sql, args...)
	if err != nil {
		switch err {
		case domain.ErrInvalidArgument, domain.ErrInvalidExecContext:
			return nil, err
		default:
			return nil, domain.ErrOperationFailed
		}
	}
	defer rows.Close()

	var out []*model.Subscription
	for rows.Next() {
		s := &model.Subscription{}
		var status, payStatus, method string
		if err := rows.Scan(&s.ID, &s.UserID, &s.PackageID, &s.PackageName, &s.Price, &s.DurationYears, &method, &s.StartDate, &s.EndDate, &status, &payStatus, &s.LastReferenceID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, domain.ErrReadDatabaseRow
		}
		s.Status = model.SubscriptionStatus(status)
		s.PaymentStatus = model.PaymentStatus(payStatus)
		s.Method = model.PaymentMethod(method)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.ErrReadDatabaseRow
	}
	return out, nil
}
