package model

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/sellaris/payments/internal/domain"
)

// PaymentWindow is how long a QR attempt stays scannable before the
// governor declares it failed.
const PaymentWindow = 600 * time.Second

const referencePrefix = "SLRS-"

// QRPayload is the JSON object serialized into the scannable code.
type QRPayload struct {
	MerchantID  string `json:"merchantId"`
	ReferenceID string `json:"referenceId"`
	Amount      int64  `json:"amount"`
	CustomerID  string `json:"customerId"`
	ItemName    string `json:"itemName"`
	CallbackURL string `json:"callbackUrl"`
}

func (p QRPayload) Encode() (string, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PaymentAttempt is one ephemeral QR session tied to a subscription
// record. It is never persisted in Postgres; the only durable trace of an
// attempt is the record's payment status. Retries mint a whole new
// attempt: fresh reference, fresh deadline, same subscription.
type PaymentAttempt struct {
	ID             string // ULID
	SubscriptionID string
	ReferenceID    string
	Amount         int64
	Payload        QRPayload
	CreatedAt      time.Time
	Deadline       time.Time // CreatedAt + PaymentWindow
}

// NewReferenceID mints a provider-facing reference: a fixed prefix plus a
// 9-digit random integer. References are never reused across attempts.
func NewReferenceID() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000_000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return fmt.Sprintf("%s%09d", referencePrefix, n.Int64())
}

// NewPaymentAttempt builds an attempt for a pending record. A record with
// a zero amount must never produce a scannable code.
func NewPaymentAttempt(id string, sub *Subscription, merchantID, callbackURL string) (*PaymentAttempt, error) {
	if id == "" || sub == nil || sub.ID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if sub.Price <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	ref := NewReferenceID()
	return &PaymentAttempt{
		ID:             id,
		SubscriptionID: sub.ID,
		ReferenceID:    ref,
		Amount:         sub.Price,
		Payload: QRPayload{
			MerchantID:  merchantID,
			ReferenceID: ref,
			Amount:      sub.Price,
			CustomerID:  sub.UserID,
			ItemName:    sub.PackageName,
			CallbackURL: callbackURL,
		},
		CreatedAt: now,
		Deadline:  now.Add(PaymentWindow),
	}, nil
}

// Expired reports whether the attempt's window has elapsed at t.
func (a *PaymentAttempt) Expired(t time.Time) bool {
	return !t.Before(a.Deadline)
}

// FormatCountdown renders remaining whole seconds as MM:SS for the
// checkout page. Negative input clamps to "00:00".
func FormatCountdown(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
