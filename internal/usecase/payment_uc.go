// File: internal/usecase/payment_uc.go
package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/adapter"
	"github.com/sellaris/payments/internal/domain/ports/repository"
	"github.com/sellaris/payments/internal/infra/metrics"
	"github.com/sellaris/payments/internal/infra/worker"
)

// Compile-time check
var _ PaymentUseCase = (*paymentUC)(nil)

// CallbackRequest is the provider webhook body.
type CallbackRequest struct {
	ReferenceID string
	Amount      int64
	Status      string // provider status: "success" or a failure code
	Signature   string
}

// CallbackOutcome tells the handler which envelope to return.
type CallbackOutcome string

const (
	CallbackApplied CallbackOutcome = "applied" // this delivery performed the transition
	CallbackReplay  CallbackOutcome = "replay"  // same terminal value already in place; no-op
	CallbackIgnored CallbackOutcome = "ignored" // the other writer won the race; record untouched
)

const providerStatusSuccess = "success"

type PaymentUseCase interface {
	// HandleCallback validates and applies one provider webhook delivery.
	// It is idempotent: replays return CallbackReplay without side effects.
	HandleCallback(ctx context.Context, req CallbackRequest) (CallbackOutcome, error)

	// Status serves the client polling loop.
	Status(ctx context.Context, subscriptionID string) (*model.Subscription, error)

	// ExpireStale is the expiry governor's write path: every pending
	// record whose window has elapsed is failed through the guarded
	// update, so a concurrently-arrived paid always survives.
	ExpireStale(ctx context.Context, window time.Duration) (int, error)
}

type paymentUC struct {
	subs     repository.SubscriptionRepository
	attempts repository.AttemptStore
	gateway  adapter.PaymentGateway
	jobs     worker.Submitter
	log      *zerolog.Logger
}

func NewPaymentUseCase(
	subs repository.SubscriptionRepository,
	attempts repository.AttemptStore,
	gateway adapter.PaymentGateway,
	jobs worker.Submitter,
	logger *zerolog.Logger,
) *paymentUC {
	l := logger.With().Str("component", "PaymentUC").Logger()
	return &paymentUC{subs: subs, attempts: attempts, gateway: gateway, jobs: jobs, log: &l}
}

func (u *paymentUC) HandleCallback(ctx context.Context, req CallbackRequest) (CallbackOutcome, error) {
	if req.ReferenceID == "" || req.Amount <= 0 || req.Status == "" {
		return "", domain.ErrInvalidArgument
	}
	if !u.gateway.VerifySignature(req.ReferenceID, req.Amount, req.Status, req.Signature) {
		return "", domain.ErrInvalidSignature
	}

	sub, err := u.resolveReference(ctx, req.ReferenceID)
	if err != nil {
		return "", err
	}
	if sub.Price != req.Amount {
		return "", domain.ErrAmountMismatch
	}

	target := model.PaymentStatusFailed
	if req.Status == providerStatusSuccess {
		target = model.PaymentStatusPaid
	}

	applied, err := u.subs.UpdatePaymentStatusIf(ctx, repository.NoTX, sub.ID, model.PaymentStatusPending, target)
	if err != nil {
		return "", err
	}
	if !applied {
		// Someone already wrote a terminal value. Same value => replay,
		// different => the first writer won; either way we acknowledge.
		current, err := u.subs.FindByID(ctx, repository.NoTX, sub.ID)
		if err != nil {
			return "", err
		}
		if current.PaymentStatus == target {
			return CallbackReplay, nil
		}
		return CallbackIgnored, nil
	}

	metrics.IncPayment(string(target))
	if target == model.PaymentStatusPaid {
		metrics.AddPaymentRevenue("idr", req.Amount)
	}
	_ = u.attempts.Delete(ctx, req.ReferenceID)

	// Receipt logging runs off the request path.
	if u.jobs != nil {
		subID, amount, ref := sub.ID, req.Amount, req.ReferenceID
		_ = u.jobs.Submit(func(ctx context.Context) error {
			u.log.Info().
				Str("subscription_id", subID).
				Str("reference_id", ref).
				Int64("amount", amount).
				Str("status", string(target)).
				Msg("payment receipt")
			return nil
		})
	}
	return CallbackApplied, nil
}

// resolveReference maps a provider reference to its subscription record:
// the live attempt first, then the reference persisted on the record. The
// second path keeps replays and late deliveries resolvable after the
// attempt has been evicted or deleted.
func (u *paymentUC) resolveReference(ctx context.Context, referenceID string) (*model.Subscription, error) {
	if attempt, err := u.attempts.FindByReference(ctx, referenceID); err == nil {
		return u.subs.FindByID(ctx, repository.NoTX, attempt.SubscriptionID)
	}
	return u.subs.FindByReference(ctx, repository.NoTX, referenceID)
}

func (u *paymentUC) Status(ctx context.Context, subscriptionID string) (*model.Subscription, error) {
	if subscriptionID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return u.subs.FindByID(ctx, repository.NoTX, subscriptionID)
}

func (u *paymentUC) ExpireStale(ctx context.Context, window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window)
	stale, err := u.subs.ListPendingOlderThan(ctx, repository.NoTX, cutoff, 200)
	if err != nil {
		if err == domain.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	n := 0
	for _, s := range stale {
		applied, err := u.subs.UpdatePaymentStatusIf(ctx, repository.NoTX, s.ID, model.PaymentStatusPending, model.PaymentStatusFailed)
		if err != nil {
			u.log.Error().Err(err).Str("subscription_id", s.ID).Msg("expire write failed")
			continue
		}
		if !applied {
			// A paid landed between the scan and this write. First wins.
			continue
		}
		metrics.IncPayment(string(model.PaymentStatusFailed))
		n++
	}
	if n > 0 {
		metrics.IncPaymentWindowsExpired(n)
	}
	return n, nil
}
