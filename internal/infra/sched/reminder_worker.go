package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/infra/metrics"
	"github.com/sellaris/payments/internal/usecase"
)

// ReminderWorker surfaces paid subscriptions approaching their end date.
// Delivery is someone else's job; this just logs and gauges what is due
// so the back-office can act on it.
type ReminderWorker struct {
	interval time.Duration
	window   time.Duration
	subUC    usecase.SubscriptionUseCase
	log      *zerolog.Logger
}

func NewReminderWorker(interval time.Duration, windowDays int, subUC usecase.SubscriptionUseCase, logger *zerolog.Logger) *ReminderWorker {
	if windowDays <= 0 {
		windowDays = 7
	}
	l := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		interval: interval,
		window:   time.Duration(windowDays) * 24 * time.Hour,
		subUC:    subUC,
		log:      &l,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("window", w.window).Msg("starting reminder worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			subs, err := w.subUC.ExpiringWithin(ctx, w.window)
			if err != nil {
				w.log.Error().Err(err).Msg("reminder scan error")
				continue
			}
			metrics.SetRenewalRemindersDue(len(subs))
			for _, s := range subs {
				w.log.Info().
					Str("subscription_id", s.ID).
					Str("user_id", s.UserID).
					Time("end_date", s.EndDate).
					Msg("subscription expiring soon")
			}
		}
	}
}
