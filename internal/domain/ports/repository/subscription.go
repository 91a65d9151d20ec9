package repository

import (
	"context"
	"time"

	"github.com/sellaris/payments/internal/domain/model"
)

// StatusPatch carries the optional fields of an UpdateStatus call.
// A nil field leaves the corresponding column untouched.
type StatusPatch struct {
	Status          *model.SubscriptionStatus
	PaymentStatus   *model.PaymentStatus
	LastReferenceID *string
}

// SubscriptionRepository is the port for subscription records.
//
// UpdatePaymentStatusIf is the single write primitive for terminal
// payment transitions: it applies `next` only when the stored payment
// status still equals `expected`, so whichever of the webhook receiver
// and the expiry governor lands first wins and the loser's write is a
// reported no-op rather than a lost update.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Subscription, error)
	// FindByReference resolves a QR reference to its record. It backs the
	// webhook for references whose attempt is no longer in the store.
	FindByReference(ctx context.Context, tx Tx, referenceID string) (*model.Subscription, error)
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)
	UpdateStatus(ctx context.Context, tx Tx, id string, patch StatusPatch) error
	UpdatePaymentStatusIf(ctx context.Context, tx Tx, id string, expected, next model.PaymentStatus) (bool, error)

	// ListPendingOlderThan feeds the payment expiry governor.
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Subscription, error)
	// ListActiveEndedBefore feeds the lifecycle expiry worker.
	ListActiveEndedBefore(ctx context.Context, tx Tx, endedBefore time.Time, limit int) ([]*model.Subscription, error)
	// ListExpiringWithin feeds the renewal reminder worker.
	ListExpiringWithin(ctx context.Context, tx Tx, within time.Duration) ([]*model.Subscription, error)

	// --- Statistics (admin back-office) ---
	CountByPaymentStatus(ctx context.Context, tx Tx) (map[model.PaymentStatus]int, error)
	SumPaidByPeriod(ctx context.Context, tx Tx, period string) (int64, error)
}
