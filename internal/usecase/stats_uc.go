package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Totals(ctx context.Context) (map[model.PaymentStatus]int, error)
	Revenue(ctx context.Context) (week int64, month int64, year int64, err error)
}

type statsUC struct {
	subs repository.SubscriptionRepository
	log  *zerolog.Logger
}

func NewStatsUseCase(subs repository.SubscriptionRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{subs: subs, log: logger}
}

func (s *statsUC) Totals(ctx context.Context) (map[model.PaymentStatus]int, error) {
	return s.subs.CountByPaymentStatus(ctx, repository.NoTX)
}

func (s *statsUC) Revenue(ctx context.Context) (int64, int64, int64, error) {
	w, err := s.subs.SumPaidByPeriod(ctx, repository.NoTX, "week")
	if err != nil {
		return 0, 0, 0, err
	}
	m, err := s.subs.SumPaidByPeriod(ctx, repository.NoTX, "month")
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := s.subs.SumPaidByPeriod(ctx, repository.NoTX, "year")
	if err != nil {
		return 0, 0, 0, err
	}
	return w, m, y, nil
}
