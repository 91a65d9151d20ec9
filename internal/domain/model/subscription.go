package model

import (
	"time"

	"github.com/sellaris/payments/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending" // record created; awaiting provider confirmation
	PaymentStatusPaid    PaymentStatus = "paid"    // provider confirmed funds received
	PaymentStatusFailed  PaymentStatus = "failed"  // provider rejected or the payment window elapsed
)

// IsTerminal reports whether no further automatic transition may occur.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// Subscription is a user's purchased package together with its two
// independent lifecycle axes: Status tracks the validity window,
// PaymentStatus tracks whether money was confirmed. A canceled-but-paid
// record and an active-but-pending record are both representable.
type Subscription struct {
	ID            string // UUID
	UserID        string // UUID of the owner
	PackageID     string // UUID of the purchased package
	PackageName   string // denormalized snapshot at purchase time
	Price         int64  // smallest currency unit (IDR)
	DurationYears int
	Method        PaymentMethod
	StartDate     time.Time
	EndDate       time.Time // StartDate + DurationYears
	Status        SubscriptionStatus
	PaymentStatus PaymentStatus

	// LastReferenceID is the reference of the most recent QR attempt.
	// The webhook resolves a reference through the attempt store first;
	// this column answers for it once the attempt has aged out of Redis.
	LastReferenceID string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSubscription validates and constructs a pending subscription record.
// The price snapshot comes from the package at purchase time; renewals
// create new records rather than mutating old ones.
func NewSubscription(id, userID string, pkg *Package, method PaymentMethod) (*Subscription, error) {
	if id == "" || userID == "" || pkg.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	if !method.Valid() {
		return nil, domain.ErrUnsupportedMethod
	}
	now := time.Now()
	return &Subscription{
		ID:            id,
		UserID:        userID,
		PackageID:     pkg.ID,
		PackageName:   pkg.Name,
		Price:         pkg.Price,
		DurationYears: pkg.DurationYears,
		Method:        method,
		StartDate:     now,
		EndDate:       now.AddDate(pkg.DurationYears, 0, 0),
		Status:        SubscriptionStatusActive,
		PaymentStatus: PaymentStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// GrantsAccess reports whether the record currently entitles the user to
// the product: the validity window is open AND money has been confirmed.
func (s *Subscription) GrantsAccess() bool {
	return s.Status == SubscriptionStatusActive && s.PaymentStatus == PaymentStatusPaid
}
