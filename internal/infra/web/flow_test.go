//go:build !integration

// File: internal/infra/web/flow_test.go
package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sellaris/payments/internal/client"
	"github.com/sellaris/payments/internal/domain/model"
)

// These tests walk the whole confirmation flow end to end over a live
// listener: checkout, the polling client, the provider webhook, the
// expiry governor and re-entry, with the real use cases behind the
// router. Timings are scaled down from production values.

func TestFlow_WebhookConfirmsWhilePolling(t *testing.T) {
	env := newTestEnv()
	env.seedPackage("pkg-1", 150000)
	srv := httptest.NewServer(env.server.Router())
	defer srv.Close()

	co := decodeBody[checkoutResponse](t, doJSON(t, env.server.Router(), http.MethodPost, "/api/v1/checkout", map[string]any{
		"userId": "user-1", "packageId": "pkg-1", "method": "ewallet",
	}))

	var paid, redirected int32
	var confirmed client.StatusResponse
	p := client.NewPoller(srv.URL, co.Subscription.ID, testWebLogger())
	p.SetInterval(10 * time.Millisecond)
	p.SetRedirectDelay(30 * time.Millisecond)
	p.OnPaid = func(s client.StatusResponse) {
		confirmed = s
		atomic.AddInt32(&paid, 1)
	}
	p.OnRedirect = func() { atomic.AddInt32(&redirected, 1) }

	// The provider confirms a few poll cycles in.
	go func() {
		time.Sleep(40 * time.Millisecond)
		ref := co.QR.ReferenceID
		body := map[string]any{
			"referenceId": ref,
			"amount":      int64(150000),
			"status":      "success",
			"signature":   env.gateway.Sign(ref, 150000, "success"),
		}
		rec := doJSON(t, env.server.Router(), http.MethodPost, "/api/v1/payments/callback", body)
		if rec.Code != http.StatusOK {
			t.Errorf("callback: expected 200, got %d", rec.Code)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("poller: %v", err)
	}

	if atomic.LoadInt32(&paid) != 1 {
		t.Fatalf("OnPaid fired %d times", paid)
	}
	if confirmed.Price != 150000 || confirmed.PaymentStatus != "paid" {
		t.Errorf("unexpected confirmation payload: %+v", confirmed)
	}

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&redirected) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt32(&redirected) != 1 {
		t.Error("redirect did not follow the confirmation")
	}
}

func TestFlow_ExpiryAndRetry(t *testing.T) {
	env := newTestEnv()
	env.seedPackage("pkg-1", 150000)
	srv := httptest.NewServer(env.server.Router())
	defer srv.Close()

	ctx := context.Background()
	co := decodeBody[checkoutResponse](t, doJSON(t, env.server.Router(), http.MethodPost, "/api/v1/checkout", map[string]any{
		"userId": "user-1", "packageId": "pkg-1", "method": "ewallet",
	}))
	subID := co.Subscription.ID

	// Age the record past its window, then run the governor's sweep the
	// way the scheduler does.
	env.subs.mu.Lock()
	env.subs.store[subID].UpdatedAt = time.Now().Add(-11 * time.Minute)
	env.subs.mu.Unlock()

	n, err := env.server.payUC.ExpireStale(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("governor sweep: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expiry, got %d", n)
	}

	// The polling client sees the failure exactly once.
	var failed int32
	p := client.NewPoller(srv.URL, subID, testWebLogger())
	p.SetInterval(10 * time.Millisecond)
	p.OnFailed = func(client.StatusResponse) { atomic.AddInt32(&failed, 1) }

	runCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	if err := p.Run(runCtx); err != nil {
		t.Fatalf("poller: %v", err)
	}
	if atomic.LoadInt32(&failed) != 1 {
		t.Fatalf("OnFailed fired %d times", failed)
	}

	// Retry re-arms the same record with a fresh reference and window.
	rec := doJSON(t, env.server.Router(), http.MethodPost, "/api/v1/checkout/"+subID+"/retry", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("retry: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	retried := decodeBody[checkoutResponse](t, rec)
	if retried.QR.ReferenceID == co.QR.ReferenceID {
		t.Error("retry must mint a fresh reference")
	}
	if retried.QR.ExpiresInSeconds <= 0 {
		t.Error("retry must open a fresh window")
	}

	// The fresh window keeps the record out of the governor's next sweep.
	if n, _ := env.server.payUC.ExpireStale(ctx, 10*time.Minute); n != 0 {
		t.Errorf("retried record expired immediately: %d", n)
	}

	// And the second attempt can still be paid.
	ref := retried.QR.ReferenceID
	body := map[string]any{
		"referenceId": ref,
		"amount":      int64(150000),
		"status":      "success",
		"signature":   env.gateway.Sign(ref, 150000, "success"),
	}
	if rec := doJSON(t, env.server.Router(), http.MethodPost, "/api/v1/payments/callback", body); rec.Code != http.StatusOK {
		t.Fatalf("callback after retry: %d", rec.Code)
	}
	sub, _ := env.subs.FindByID(ctx, nil, subID)
	if sub.PaymentStatus != model.PaymentStatusPaid {
		t.Errorf("expected paid after retry, got %s", sub.PaymentStatus)
	}
}
