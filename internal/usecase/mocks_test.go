//go:build !integration

// File: internal/usecase/mocks_test.go
package usecase_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/adapter"
	"github.com/sellaris/payments/internal/domain/ports/repository"
	"github.com/sellaris/payments/internal/infra/worker"
)

// MockSubscriptionRepo is a small in-memory implementation used by unit
// tests. The conditional update carries the same semantics as the real
// Postgres repository: compare under the lock, write only on match.
type MockSubscriptionRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Subscription
	saveErr error // used by tests to simulate save failures

	UpdatePaymentStatusIfFunc func(ctx context.Context, tx repository.Tx, id string, expected, next model.PaymentStatus) (bool, error)
}

func NewMockSubscriptionRepo() *MockSubscriptionRepo {
	return &MockSubscriptionRepo{store: make(map[string]*model.Subscription)}
}

func (m *MockSubscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MockSubscriptionRepo) FindByReference(ctx context.Context, tx repository.Tx, referenceID string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.store {
		if referenceID != "" && s.LastReferenceID == referenceID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSubscriptionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, patch repository.StatusPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	if patch.Status != nil {
		s.Status = *patch.Status
	}
	if patch.PaymentStatus != nil {
		s.PaymentStatus = *patch.PaymentStatus
	}
	if patch.LastReferenceID != nil {
		s.LastReferenceID = *patch.LastReferenceID
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (m *MockSubscriptionRepo) UpdatePaymentStatusIf(ctx context.Context, tx repository.Tx, id string, expected, next model.PaymentStatus) (bool, error) {
	if m.UpdatePaymentStatusIfFunc != nil {
		return m.UpdatePaymentStatusIfFunc(ctx, tx, id, expected, next)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return false, nil
	}
	if s.PaymentStatus != expected {
		return false, nil
	}
	s.PaymentStatus = next
	s.UpdatedAt = time.Now()
	return true, nil
}

func (m *MockSubscriptionRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.PaymentStatus == model.PaymentStatusPending && s.UpdatedAt.Before(olderThan) {
			cp := *s
			out = append(out, &cp)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (m *MockSubscriptionRepo) ListActiveEndedBefore(ctx context.Context, tx repository.Tx, endedBefore time.Time, limit int) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusActive && s.EndDate.Before(endedBefore) {
			cp := *s
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (m *MockSubscriptionRepo) ListExpiringWithin(ctx context.Context, tx repository.Tx, within time.Duration) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	deadline := time.Now().Add(within)
	var out []*model.Subscription
	for _, s := range m.store {
		if s.Status == model.SubscriptionStatusActive &&
			s.PaymentStatus == model.PaymentStatusPaid &&
			s.EndDate.Before(deadline) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepo) CountByPaymentStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.PaymentStatus]int)
	for _, s := range m.store {
		out[s.PaymentStatus]++
	}
	return out, nil
}

func (m *MockSubscriptionRepo) SumPaidByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum int64
	for _, s := range m.store {
		if s.PaymentStatus == model.PaymentStatusPaid {
			sum += s.Price
		}
	}
	return sum, nil
}

// MockPackageRepo mirrors the Postgres package repository in memory.
type MockPackageRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Package
}

func NewMockPackageRepo() *MockPackageRepo {
	return &MockPackageRepo{store: make(map[string]*model.Package)}
}

func (m *MockPackageRepo) Save(ctx context.Context, tx repository.Tx, p *model.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *MockPackageRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockPackageRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Package
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockPackageRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// MockAttemptStore keeps attempts in a plain map; eviction is simulated
// by tests deleting entries directly.
type MockAttemptStore struct {
	mu    sync.RWMutex
	store map[string]*model.PaymentAttempt

	SaveFunc func(ctx context.Context, a *model.PaymentAttempt) error
}

func NewMockAttemptStore() *MockAttemptStore {
	return &MockAttemptStore{store: make(map[string]*model.PaymentAttempt)}
}

func (m *MockAttemptStore) Save(ctx context.Context, a *model.PaymentAttempt) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, a)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ReferenceID] = &cp
	return nil
}

func (m *MockAttemptStore) FindByReference(ctx context.Context, referenceID string) (*model.PaymentAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[referenceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *MockAttemptStore) Delete(ctx context.Context, referenceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, referenceID)
	return nil
}

func (m *MockAttemptStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store)
}

// MockGateway signs deterministically so tests can forge both valid and
// invalid callbacks without real crypto.
type MockGateway struct {
	mu         sync.Mutex
	registered []string

	RegisterOrderFunc func(ctx context.Context, attempt *model.PaymentAttempt) (*adapter.QROrder, error)
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) RegisterOrder(ctx context.Context, attempt *model.PaymentAttempt) (*adapter.QROrder, error) {
	if g.RegisterOrderFunc != nil {
		return g.RegisterOrderFunc(ctx, attempt)
	}
	g.mu.Lock()
	g.registered = append(g.registered, attempt.ReferenceID)
	g.mu.Unlock()
	payload, err := attempt.Payload.Encode()
	if err != nil {
		return nil, err
	}
	return &adapter.QROrder{
		ReferenceID: attempt.ReferenceID,
		Payload:     payload,
		ImagePNG:    []byte("png"),
	}, nil
}

func (g *MockGateway) Sign(referenceID string, amount int64, status string) string {
	return fmt.Sprintf("sig:%s:%d:%s", referenceID, amount, status)
}

func (g *MockGateway) VerifySignature(referenceID string, amount int64, status, signature string) bool {
	return signature == g.Sign(referenceID, amount, status)
}

func (g *MockGateway) Registered() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.registered...)
}

// inlineSubmitter runs submitted tasks synchronously so tests observe
// their effects without a pool.
type inlineSubmitter struct{}

func (inlineSubmitter) Submit(task worker.Task) error {
	return task(context.Background())
}

var _ worker.Submitter = inlineSubmitter{}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
