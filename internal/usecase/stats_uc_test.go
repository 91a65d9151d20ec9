//go:build !integration

package usecase_test

import (
	"context"
	"testing"

	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/usecase"
)

func TestStatsUseCase(t *testing.T) {
	ctx := context.Background()
	subs := NewMockSubscriptionRepo()
	uc := usecase.NewStatsUseCase(subs, newTestLogger())

	paid := seedSub(t, subs, "sub-1", "user-1")
	subs.store[paid.ID].PaymentStatus = model.PaymentStatusPaid
	seedSub(t, subs, "sub-2", "user-2")
	failed := seedSub(t, subs, "sub-3", "user-3")
	subs.store[failed.ID].PaymentStatus = model.PaymentStatusFailed

	t.Run("totals count each payment status", func(t *testing.T) {
		totals, err := uc.Totals(ctx)
		if err != nil {
			t.Fatalf("totals: %v", err)
		}
		if totals[model.PaymentStatusPaid] != 1 || totals[model.PaymentStatusPending] != 1 || totals[model.PaymentStatusFailed] != 1 {
			t.Errorf("unexpected totals: %v", totals)
		}
	})

	t.Run("revenue only counts paid records", func(t *testing.T) {
		week, month, year, err := uc.Revenue(ctx)
		if err != nil {
			t.Fatalf("revenue: %v", err)
		}
		if week != 150000 || month != 150000 || year != 150000 {
			t.Errorf("unexpected revenue: week=%d month=%d year=%d", week, month, year)
		}
	})
}
