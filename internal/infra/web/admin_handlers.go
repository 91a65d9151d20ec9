package web

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/usecase"
)

// A struct to define the expected JSON request body for creating a package.
type packageUpsertRequest struct {
	Name          string `json:"name"`
	DurationYears int    `json:"durationYears"`
	Price         int64  `json:"price"`
	Description   string `json:"description"`
}

func packagesCreateHandler(pkgUC usecase.PackageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req packageUpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		pkg, err := pkgUC.Create(ctx, req.Name, req.DurationYears, req.Price, req.Description)
		if err != nil {
			if err == domain.ErrInvalidArgument {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to create package", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, pkg)
	}
}

func packagesUpdateHandler(pkgUC usecase.PackageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		var req packageUpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		pkg, err := pkgUC.Update(ctx, id, req.Name, req.DurationYears, req.Price, req.Description)
		if err != nil {
			switch err {
			case domain.ErrNotFound:
				http.NotFound(w, r)
			case domain.ErrInvalidArgument:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "Failed to update package", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, pkg)
	}
}

func packagesDeleteHandler(pkgUC usecase.PackageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if err := pkgUC.Delete(ctx, id); err != nil {
			switch err {
			case domain.ErrNotFound:
				http.NotFound(w, r)
			case domain.ErrInvalidArgument:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "Failed to delete package", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// statsHandler serves transaction statistics for the back-office.
func statsHandler(statsUC usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		totals, err := statsUC.Totals(ctx)
		if err != nil {
			http.Error(w, "Failed to get totals", http.StatusInternalServerError)
			return
		}
		week, month, year, err := statsUC.Revenue(ctx)
		if err != nil {
			http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
			return
		}

		response := struct {
			ByPaymentStatus map[model.PaymentStatus]int `json:"by_payment_status"`
			Revenue         struct {
				Week  int64 `json:"week"`
				Month int64 `json:"month"`
				Year  int64 `json:"year"`
			} `json:"revenue_idr"`
		}{
			ByPaymentStatus: totals,
		}
		response.Revenue.Week = week
		response.Revenue.Month = month
		response.Revenue.Year = year

		writeJSON(w, http.StatusOK, response)
	}
}

// userSubscriptionsHandler lists a user's full subscription history.
func userSubscriptionsHandler(subUC usecase.SubscriptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := chi.URLParam(r, "userID")
		subs, err := subUC.ListByUser(ctx, userID)
		if err != nil {
			if err == domain.ErrInvalidArgument {
				http.Error(w, "User ID is required", http.StatusBadRequest)
				return
			}
			http.Error(w, "Failed to list subscriptions", http.StatusInternalServerError)
			return
		}

		out := make([]*subscriptionResponse, 0, len(subs))
		for _, s := range subs {
			out = append(out, toSubscriptionResponse(s))
		}
		writeJSON(w, http.StatusOK, struct {
			Data []*subscriptionResponse `json:"data"`
		}{Data: out})
	}
}

// subscriptionCancelHandler closes a record's validity window. Payment
// status is untouched; a canceled-but-paid record is valid state.
func subscriptionCancelHandler(subUC usecase.SubscriptionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if err := subUC.Cancel(ctx, id); err != nil {
			if err == domain.ErrNotFound {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to cancel subscription", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
