//go:build !integration

// File: internal/infra/web/mock_test.go
package web

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/repository"
	"github.com/sellaris/payments/internal/infra/adapters/payment"
	"github.com/sellaris/payments/internal/usecase"
)

// --- Mock Repositories (Ports) ---

type memSubRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Subscription
}

func newMemSubRepo() *memSubRepo {
	return &memSubRepo{store: make(map[string]*model.Subscription)}
}

func (m *memSubRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ID] = &cp
	return nil
}

func (m *memSubRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSubRepo) FindByReference(ctx context.Context, tx repository.Tx, referenceID string) (*model.Subscription, error) {
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

func (m *memSubRepo) ListByUser(ctx context.Context, tx repository.Tx, userID string) ([]*model.Subscription, error) {
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

func (m *memSubRepo) UpdateStatus(ctx context.Context, tx repository.Tx, id string, patch repository.StatusPatch) error {
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

func (m *memSubRepo) UpdatePaymentStatusIf(ctx context.Context, tx repository.Tx, id string, expected, next model.PaymentStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok || s.PaymentStatus != expected {
		return false, nil
	}
	s.PaymentStatus = next
	s.UpdatedAt = time.Now()
	return true, nil
}

func (m *memSubRepo) ListPendingOlderThan(ctx context.Context, tx repository.Tx, olderThan time.Time, limit int) ([]*model.Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Subscription
	for _, s := range m.store {
		if s.PaymentStatus == model.PaymentStatusPending && s.UpdatedAt.Before(olderThan) {
			cp := *s
			out = append(out, &cp)
		}
	}
	if len(out) == 0 {
		return nil, domain.ErrNotFound
	}
	return out, nil
}

func (m *memSubRepo) ListActiveEndedBefore(ctx context.Context, tx repository.Tx, endedBefore time.Time, limit int) ([]*model.Subscription, error) {
	return nil, domain.ErrNotFound
}

func (m *memSubRepo) ListExpiringWithin(ctx context.Context, tx repository.Tx, within time.Duration) ([]*model.Subscription, error) {
	return nil, nil
}

func (m *memSubRepo) CountByPaymentStatus(ctx context.Context, tx repository.Tx) (map[model.PaymentStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[model.PaymentStatus]int)
	for _, s := range m.store {
		out[s.PaymentStatus]++
	}
	return out, nil
}

func (m *memSubRepo) SumPaidByPeriod(ctx context.Context, tx repository.Tx, period string) (int64, error) {
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

type memPkgRepo struct {
	mu    sync.RWMutex
	store map[string]*model.Package
}

func newMemPkgRepo() *memPkgRepo {
	return &memPkgRepo{store: make(map[string]*model.Package)}
}

func (m *memPkgRepo) Save(ctx context.Context, tx repository.Tx, p *model.Package) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.store[p.ID] = &cp
	return nil
}

func (m *memPkgRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPkgRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Package, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Package
	for _, p := range m.store {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPkgRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

type memAttempts struct {
	mu    sync.RWMutex
	store map[string]*model.PaymentAttempt
}

func newMemAttempts() *memAttempts {
	return &memAttempts{store: make(map[string]*model.PaymentAttempt)}
}

func (m *memAttempts) Save(ctx context.Context, a *model.PaymentAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.store[a.ReferenceID] = &cp
	return nil
}

func (m *memAttempts) FindByReference(ctx context.Context, referenceID string) (*model.PaymentAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.store[referenceID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAttempts) Delete(ctx context.Context, referenceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, referenceID)
	return nil
}

// --- Harness ---

const testJWTSecret = "test-admin-secret"

// testEnv wires the real use cases over in-memory ports, so handler
// tests exercise the same code paths as production minus the stores.
type testEnv struct {
	subs     *memSubRepo
	packages *memPkgRepo
	attempts *memAttempts
	gateway  *payment.NoopGateway
	server   *Server
}

func newTestEnv() *testEnv {
	logger := zerolog.New(io.Discard)
	gw := payment.NewNoopGateway("")

	subs := newMemSubRepo()
	pkgs := newMemPkgRepo()
	attempts := newMemAttempts()

	checkoutUC := usecase.NewCheckoutUseCase(subs, pkgs, attempts, gw, "M-TEST", "https://cb", &logger)
	payUC := usecase.NewPaymentUseCase(subs, attempts, gw, nil, &logger)
	subUC := usecase.NewSubscriptionUseCase(subs, &logger)
	pkgUC := usecase.NewPackageUseCase(pkgs)
	statsUC := usecase.NewStatsUseCase(subs, &logger)

	srv := NewServer(checkoutUC, payUC, subUC, pkgUC, statsUC, testJWTSecret, &logger)
	return &testEnv{subs: subs, packages: pkgs, attempts: attempts, gateway: gw, server: srv}
}

func (e *testEnv) seedPackage(id string, price int64) {
	p, _ := model.NewPackage(id, "Business", 1, price, "")
	_ = e.packages.Save(context.Background(), nil, p)
}

func testWebLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func adminToken(secret string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, _ := token.SignedString([]byte(secret))
	return signed
}
