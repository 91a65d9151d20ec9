// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

type SubscriptionUseCase interface {
	FindByID(ctx context.Context, id string) (*model.Subscription, error)
	ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error)
	Cancel(ctx context.Context, id string) error

	// FinishExpired marks active records whose validity window has ended
	// as expired. Payment status is untouched; the two axes are independent.
	FinishExpired(ctx context.Context) (int, error)

	// ExpiringWithin lists paid, active records ending within the window,
	// for renewal reminders.
	ExpiringWithin(ctx context.Context, within time.Duration) ([]*model.Subscription, error)
}

type subscriptionUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
}

func NewSubscriptionUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *subscriptionUC {
	l := logger.With().Str("component", "SubscriptionUC").Logger()
	return &subscriptionUC{subs: subs, log: &l}
}

func (u *subscriptionUC) FindByID(ctx context.Context, id string) (*model.Subscription, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.subs.FindByID(ctx, repository.NoTX, id)
}

func (u *subscriptionUC) ListByUser(ctx context.Context, userID string) ([]*model.Subscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.subs.ListByUser(ctx, repository.NoTX, userID)
}

// Cancel closes the validity window. A canceled-but-paid record stays
// paid; records are never deleted, only superseded by renewals.
func (u *subscriptionUC) Cancel(ctx context.Context, id string) error {
	s, err := u.subs.FindByID(ctx, repository.NoTX, id)
	if err != nil {
		return err
	}
	if s.Status == model.SubscriptionStatusCanceled {
		return nil
	}
	canceled := model.SubscriptionStatusCanceled
	return u.subs.UpdateStatus(ctx, repository.NoTX, id, repository.StatusPatch{Status: &canceled})
}

func (u *subscriptionUC) FinishExpired(ctx context.Context) (int, error) {
	ended, err := u.subs.ListActiveEndedBefore(ctx, repository.NoTX, time.Now(), 200)
	if err != nil {
		if err == domain.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	expired := model.SubscriptionStatusExpired
	n := 0
	for _, s := range ended {
		if err := u.subs.UpdateStatus(ctx, repository.NoTX, s.ID, repository.StatusPatch{Status: &expired}); err != nil {
			u.log.Error().Err(err).Str("subscription_id", s.ID).Msg("mark expired failed")
			continue
		}
		n++
	}
	return n, nil
}

func (u *subscriptionUC) ExpiringWithin(ctx context.Context, within time.Duration) ([]*model.Subscription, error) {
	return u.subs.ListExpiringWithin(ctx, repository.NoTX, within)
}
