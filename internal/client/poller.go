// File: internal/client/poller.go
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/domain/model"
)

// StatusResponse is the subset of the status endpoint's body the poller
// cares about.
type StatusResponse struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	Price         int64  `json:"price"`
	PackageName   string `json:"packageName"`
}

// Poller drives the checkout page's payment-status loop: one request per
// interval until the record leaves pending. The terminal transition
// fires exactly once; a transient network miss is logged and retried on
// the next tick, never surfaced as a failure.
type Poller struct {
	baseURL        string
	subscriptionID string
	interval       time.Duration
	redirectDelay  time.Duration
	client         *http.Client
	log            *zerolog.Logger

	once sync.Once

	// OnPaid fires when the store first reports paid; OnRedirect fires
	// redirectDelay later (unless the context is canceled in between).
	// OnFailed fires on an explicit failed status; the caller's retry
	// action re-enters checkout with a fresh attempt.
	OnPaid     func(StatusResponse)
	OnFailed   func(StatusResponse)
	OnRedirect func()
}

func NewPoller(baseURL, subscriptionID string, logger *zerolog.Logger) *Poller {
	l := logger.With().Str("component", "StatusPoller").Str("subscription_id", subscriptionID).Logger()
	return &Poller{
		baseURL:        baseURL,
		subscriptionID: subscriptionID,
		interval:       5 * time.Second,
		redirectDelay:  3 * time.Second,
		client:         &http.Client{Timeout: 10 * time.Second},
		log:            &l,
	}
}

// SetInterval overrides the default 5s tick (tests use milliseconds).
func (p *Poller) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

func (p *Poller) SetRedirectDelay(d time.Duration) {
	if d >= 0 {
		p.redirectDelay = d
	}
}

// Run polls until a terminal state or cancellation. The first check goes
// out immediately; canceling the context releases every timer.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if done := p.tick(ctx); done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// tick performs one status check and reports whether polling is over.
func (p *Poller) tick(ctx context.Context) bool {
	status, err := p.fetch(ctx)
	if err != nil {
		// Transient: a single failed check is never a payment failure.
		p.log.Warn().Err(err).Msg("status check failed; retrying next tick")
		return false
	}

	switch model.PaymentStatus(status.PaymentStatus) {
	case model.PaymentStatusPaid:
		p.once.Do(func() {
			p.log.Info().Msg("payment confirmed")
			if p.OnPaid != nil {
				p.OnPaid(status)
			}
			p.scheduleRedirect(ctx)
		})
		return true
	case model.PaymentStatusFailed:
		p.once.Do(func() {
			p.log.Info().Msg("payment failed")
			if p.OnFailed != nil {
				p.OnFailed(status)
			}
		})
		return true
	default:
		return false
	}
}

func (p *Poller) fetch(ctx context.Context) (StatusResponse, error) {
	url := fmt.Sprintf("%s/api/v1/subscriptions/%s/status", p.baseURL, p.subscriptionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return StatusResponse{}, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return StatusResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return StatusResponse{}, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	var out StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return StatusResponse{}, err
	}
	return out, nil
}

func (p *Poller) scheduleRedirect(ctx context.Context) {
	if p.OnRedirect == nil {
		return
	}
	timer := time.NewTimer(p.redirectDelay)
	go func() {
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
			p.OnRedirect()
		}
	}()
}
