package repository

import (
	"context"

	"github.com/sellaris/payments/internal/domain/model"
)

// AttemptStore holds ephemeral payment attempts for the lifetime of their
// payment window. Entries vanish on expiry; callers must tolerate a
// reference that is no longer resolvable (the provider may still deliver
// a late webhook for it).
type AttemptStore interface {
	Save(ctx context.Context, a *model.PaymentAttempt) error
	FindByReference(ctx context.Context, referenceID string) (*model.PaymentAttempt, error)
	Delete(ctx context.Context, referenceID string) error
}
