// File: internal/usecase/checkout_uc.go
package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/adapter"
	"github.com/sellaris/payments/internal/domain/ports/repository"
	"github.com/sellaris/payments/internal/infra/metrics"
)

// Compile-time check
var _ CheckoutUseCase = (*checkoutUC)(nil)

// TransferInstructions is what a bank-transfer checkout shows instead of
// a QR code; the back-office confirms these manually.
type TransferInstructions struct {
	BankName       string
	VirtualAccount string
	Amount         int64
}

// CheckoutSession is one rendered checkout screen. Exactly one of the
// method-specific branches is populated, matching the record's method.
type CheckoutSession struct {
	Subscription *model.Subscription

	// ewallet
	Attempt *model.PaymentAttempt
	QR      *adapter.QROrder

	// bank_transfer
	Instructions *TransferInstructions

	// credit_card
	RedirectURL string
}

type CheckoutUseCase interface {
	// Initiate creates a pending record for the chosen package and builds
	// the method-specific checkout session.
	Initiate(ctx context.Context, userID, packageID string, method model.PaymentMethod) (*CheckoutSession, error)
	// Retry re-enters checkout for an unpaid record: a brand-new attempt
	// with a fresh reference and a fresh window, same record.
	Retry(ctx context.Context, subscriptionID string) (*CheckoutSession, error)
}

type checkoutUC struct {
	subs     repository.SubscriptionRepository
	packages repository.PackageRepository
	attempts repository.AttemptStore
	gateway  adapter.PaymentGateway

	merchantID  string
	callbackURL string
	log         *zerolog.Logger
}

func NewCheckoutUseCase(
	subs repository.SubscriptionRepository,
	packages repository.PackageRepository,
	attempts repository.AttemptStore,
	gateway adapter.PaymentGateway,
	merchantID, callbackURL string,
	logger *zerolog.Logger,
) *checkoutUC {
	l := logger.With().Str("component", "CheckoutUC").Logger()
	return &checkoutUC{
		subs:        subs,
		packages:    packages,
		attempts:    attempts,
		gateway:     gateway,
		merchantID:  merchantID,
		callbackURL: callbackURL,
		log:         &l,
	}
}

func (u *checkoutUC) Initiate(ctx context.Context, userID, packageID string, method model.PaymentMethod) (*CheckoutSession, error) {
	pkg, err := u.packages.FindByID(ctx, repository.NoTX, packageID)
	if err != nil {
		return nil, err
	}

	sub, err := model.NewSubscription(uuid.NewString(), userID, pkg, method)
	if err != nil {
		return nil, err
	}
	if err := u.subs.Save(ctx, repository.NoTX, sub); err != nil {
		return nil, err
	}
	return u.buildSession(ctx, sub)
}

func (u *checkoutUC) Retry(ctx context.Context, subscriptionID string) (*CheckoutSession, error) {
	sub, err := u.subs.FindByID(ctx, repository.NoTX, subscriptionID)
	if err != nil {
		return nil, err
	}
	switch sub.PaymentStatus {
	case model.PaymentStatusPaid:
		return nil, domain.ErrNotPending
	case model.PaymentStatusFailed, model.PaymentStatusPending:
		// Re-arm the record. The unconditional touch also restarts the
		// governor's window, which is keyed on updated_at.
		pending := model.PaymentStatusPending
		if err := u.subs.UpdateStatus(ctx, repository.NoTX, sub.ID, repository.StatusPatch{PaymentStatus: &pending}); err != nil {
			return nil, err
		}
		sub.PaymentStatus = pending
	}
	return u.buildSession(ctx, sub)
}

func (u *checkoutUC) buildSession(ctx context.Context, sub *model.Subscription) (*CheckoutSession, error) {
	session := &CheckoutSession{Subscription: sub}

	switch sub.Method {
	case model.MethodEWallet:
		attempt, err := model.NewPaymentAttempt(ulid.Make().String(), sub, u.merchantID, u.callbackURL)
		if err != nil {
			return nil, err
		}
		order, err := u.gateway.RegisterOrder(ctx, attempt)
		if err != nil {
			return nil, err
		}
		if err := u.attempts.Save(ctx, attempt); err != nil {
			return nil, err
		}
		// Persist the reference on the record so the webhook can still
		// resolve it after the attempt leaves the store.
		ref := attempt.ReferenceID
		if err := u.subs.UpdateStatus(ctx, repository.NoTX, sub.ID, repository.StatusPatch{LastReferenceID: &ref}); err != nil {
			return nil, err
		}
		sub.LastReferenceID = ref
		metrics.IncQRAttempt()
		u.log.Info().
			Str("subscription_id", sub.ID).
			Str("reference_id", attempt.ReferenceID).
			Time("deadline", attempt.Deadline).
			Msg("qr attempt created")
		session.Attempt = attempt
		session.QR = order

	case model.MethodBankTransfer:
		session.Instructions = &TransferInstructions{
			BankName:       "BCA",
			VirtualAccount: virtualAccount(sub.UserID),
			Amount:         sub.Price,
		}

	case model.MethodCreditCard:
		session.RedirectURL = fmt.Sprintf("https://pay.sellaris.id/card/%s", sub.ID)

	default:
		return nil, domain.ErrUnsupportedMethod
	}
	return session, nil
}

// virtualAccount derives a stable VA number from the user id so repeat
// transfers land on the same account.
func virtualAccount(userID string) string {
	var sum uint64
	for _, c := range userID {
		sum = sum*31 + uint64(c)
	}
	return fmt.Sprintf("8808%010d", sum%10_000_000_000)
}
