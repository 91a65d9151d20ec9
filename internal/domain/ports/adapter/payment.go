package adapter

import (
	"context"

	"github.com/sellaris/payments/internal/domain/model"
)

// QROrder is the provider's answer to an order registration: the payload
// encoded into the code plus a rendered PNG for direct embedding.
type QROrder struct {
	ReferenceID string
	Payload     string // serialized QRPayload
	ImagePNG    []byte
}

// PaymentGateway is the hex port for QR e-wallet providers.
type PaymentGateway interface {
	Name() string

	// RegisterOrder announces the attempt to the provider and returns the
	// scannable order. The record stays pending; confirmation arrives
	// asynchronously via webhook.
	RegisterOrder(ctx context.Context, attempt *model.PaymentAttempt) (*QROrder, error)

	// Sign computes the provider signature over referenceID+amount+status.
	Sign(referenceID string, amount int64, status string) string
	// VerifySignature constant-time-compares a delivered signature.
	VerifySignature(referenceID string, amount int64, status, signature string) bool
}
