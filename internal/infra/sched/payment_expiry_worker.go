package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/usecase"
)

// PaymentExpiryWorker is the server-side expiry governor: it scans for
// pending records whose payment window has elapsed and fails them through
// the guarded write. A webhook that lands first always wins; this
// worker's write is then a reported no-op.
type PaymentExpiryWorker struct {
	interval time.Duration
	window   time.Duration
	payUC    usecase.PaymentUseCase
	log      *zerolog.Logger
}

func NewPaymentExpiryWorker(interval, window time.Duration, payUC usecase.PaymentUseCase, logger *zerolog.Logger) *PaymentExpiryWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	l := logger.With().Str("component", "PaymentExpiryWorker").Logger()
	return &PaymentExpiryWorker{interval: interval, window: window, payUC: payUC, log: &l}
}

func (w *PaymentExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Dur("window", w.window).Msg("starting payment expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping payment expiry worker")
			return ctx.Err()
		case <-ticker.C:
			n, err := w.payUC.ExpireStale(ctx, w.window)
			if err != nil {
				w.log.Error().Err(err).Msg("payment expiry scan error")
			}
			if n > 0 {
				w.log.Info().Int("count", n).Msg("stale payment attempts failed")
			}
		}
	}
}
