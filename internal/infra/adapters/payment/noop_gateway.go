package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopGateway)(nil)

// NoopGateway is a simple in-memory gateway to use in tests and dev mode.
// It accepts every order and signs with a fixed secret.
type NoopGateway struct {
	mu     sync.Mutex
	secret string
	orders map[string]int64 // referenceID -> amount
}

func NewNoopGateway(secret string) *NoopGateway {
	if secret == "" {
		secret = "noop-secret"
	}
	return &NoopGateway{secret: secret, orders: make(map[string]int64)}
}

func (g *NoopGateway) Name() string { return "noop" }

func (g *NoopGateway) RegisterOrder(ctx context.Context, attempt *model.PaymentAttempt) (*adapter.QROrder, error) {
	g.mu.Lock()
	g.orders[attempt.ReferenceID] = attempt.Amount
	g.mu.Unlock()

	payload, err := attempt.Payload.Encode()
	if err != nil {
		return nil, err
	}
	return &adapter.QROrder{ReferenceID: attempt.ReferenceID, Payload: payload}, nil
}

func (g *NoopGateway) Sign(referenceID string, amount int64, status string) string {
	mac := hmac.New(sha256.New, []byte(g.secret))
	fmt.Fprintf(mac, "%s%d%s", referenceID, amount, status)
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *NoopGateway) VerifySignature(referenceID string, amount int64, status, signature string) bool {
	return hmac.Equal([]byte(g.Sign(referenceID, amount, status)), []byte(signature))
}

// Registered reports whether an order was registered, for test assertions.
func (g *NoopGateway) Registered(referenceID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.orders[referenceID]
	return ok
}
