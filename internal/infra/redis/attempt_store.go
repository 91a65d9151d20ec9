package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/repository"
)

var _ repository.AttemptStore = (*AttemptStore)(nil)

// AttemptStore keeps payment attempts keyed by reference id. Each entry
// lives exactly as long as its payment window plus a grace period, so an
// abandoned attempt disappears without any cleanup pass. Late webhooks
// for an evicted reference fall back to the subscription record itself.
type AttemptStore struct {
	cli   RedisClient
	grace time.Duration
}

func NewAttemptStore(cli RedisClient) *AttemptStore {
	// Grace covers webhooks that arrive just after the window closes.
	return &AttemptStore{cli: cli, grace: 2 * time.Minute}
}

func key(referenceID string) string { return "attempt:" + referenceID }

type attemptRecord struct {
	ID             string          `json:"id"`
	SubscriptionID string          `json:"subscriptionId"`
	ReferenceID    string          `json:"referenceId"`
	Amount         int64           `json:"amount"`
	Payload        model.QRPayload `json:"payload"`
	CreatedAt      time.Time       `json:"createdAt"`
	Deadline       time.Time       `json:"deadline"`
}

func (s *AttemptStore) Save(ctx context.Context, a *model.PaymentAttempt) error {
	if a == nil || a.ReferenceID == "" {
		return domain.ErrInvalidArgument
	}
	ttl := time.Until(a.Deadline) + s.grace
	if ttl <= 0 {
		return domain.ErrAttemptExpired
	}
	b, err := json.Marshal(attemptRecord{
		ID:             a.ID,
		SubscriptionID: a.SubscriptionID,
		ReferenceID:    a.ReferenceID,
		Amount:         a.Amount,
		Payload:        a.Payload,
		CreatedAt:      a.CreatedAt,
		Deadline:       a.Deadline,
	})
	if err != nil {
		return err
	}
	return s.cli.Set(ctx, key(a.ReferenceID), string(b), ttl)
}

func (s *AttemptStore) FindByReference(ctx context.Context, referenceID string) (*model.PaymentAttempt, error) {
	raw, err := s.cli.Get(ctx, key(referenceID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var rec attemptRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &model.PaymentAttempt{
		ID:             rec.ID,
		SubscriptionID: rec.SubscriptionID,
		ReferenceID:    rec.ReferenceID,
		Amount:         rec.Amount,
		Payload:        rec.Payload,
		CreatedAt:      rec.CreatedAt,
		Deadline:       rec.Deadline,
	}, nil
}

func (s *AttemptStore) Delete(ctx context.Context, referenceID string) error {
	return s.cli.Del(ctx, key(referenceID))
}
