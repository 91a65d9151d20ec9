package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sellaris/payments/internal/domain"
	"github.com/sellaris/payments/internal/domain/model"
	"github.com/sellaris/payments/internal/infra/metrics"
	"github.com/sellaris/payments/internal/usecase"
)

// ---- checkout ----

type checkoutRequest struct {
	UserID    string `json:"userId"`
	PackageID string `json:"packageId"`
	Method    string `json:"method"`
}

type qrResponse struct {
	ReferenceID      string `json:"referenceId"`
	Payload          string `json:"payload"`
	ImagePNG         string `json:"imagePng,omitempty"` // base64
	Deadline         string `json:"deadline"`
	ExpiresInSeconds int    `json:"expiresInSeconds"`
}

type checkoutResponse struct {
	Subscription *subscriptionResponse         `json:"subscription"`
	QR           *qrResponse                   `json:"qr,omitempty"`
	Instructions *usecase.TransferInstructions `json:"instructions,omitempty"`
	RedirectURL  string                        `json:"redirectUrl,omitempty"`
}

func checkoutHandler(checkoutUC usecase.CheckoutUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req checkoutRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.UserID == "" || req.PackageID == "" {
			http.Error(w, "userId and packageId are required", http.StatusBadRequest)
			return
		}

		session, err := checkoutUC.Initiate(ctx, req.UserID, req.PackageID, model.PaymentMethod(req.Method))
		if err != nil {
			writeCheckoutError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCheckoutResponse(session))
	}
}

func retryHandler(checkoutUC usecase.CheckoutUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Subscription ID is required", http.StatusBadRequest)
			return
		}
		session, err := checkoutUC.Retry(ctx, id)
		if err != nil {
			writeCheckoutError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCheckoutResponse(session))
	}
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch err {
	case domain.ErrNotFound:
		http.Error(w, "Not found", http.StatusNotFound)
	case domain.ErrInvalidArgument, domain.ErrUnsupportedMethod:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case domain.ErrNotPending:
		http.Error(w, "Subscription is already paid", http.StatusConflict)
	default:
		http.Error(w, "Checkout failed", http.StatusInternalServerError)
	}
}

func toCheckoutResponse(s *usecase.CheckoutSession) checkoutResponse {
	resp := checkoutResponse{
		Subscription: toSubscriptionResponse(s.Subscription),
		Instructions: s.Instructions,
		RedirectURL:  s.RedirectURL,
	}
	if s.Attempt != nil {
		qr := &qrResponse{
			ReferenceID:      s.Attempt.ReferenceID,
			Deadline:         s.Attempt.Deadline.Format(time.RFC3339),
			ExpiresInSeconds: int(time.Until(s.Attempt.Deadline).Seconds()),
		}
		if s.QR != nil {
			qr.Payload = s.QR.Payload
			if len(s.QR.ImagePNG) > 0 {
				qr.ImagePNG = base64.StdEncoding.EncodeToString(s.QR.ImagePNG)
			}
		}
		resp.QR = qr
	}
	return resp
}

// ---- status polling ----

type subscriptionResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"userId"`
	PackageID     string `json:"packageId"`
	PackageName   string `json:"packageName"`
	Price         int64  `json:"price"`
	Duration      int    `json:"duration"`
	PaymentMethod string `json:"paymentMethod"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

func toSubscriptionResponse(s *model.Subscription) *subscriptionResponse {
	return &subscriptionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		PackageID:     s.PackageID,
		PackageName:   s.PackageName,
		Price:         s.Price,
		Duration:      s.DurationYears,
		PaymentMethod: string(s.Method),
		StartDate:     s.StartDate.Format(time.RFC3339),
		EndDate:       s.EndDate.Format(time.RFC3339),
		Status:        string(s.Status),
		PaymentStatus: string(s.PaymentStatus),
		CreatedAt:     s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     s.UpdatedAt.Format(time.RFC3339),
	}
}

func statusHandler(payUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		id := chi.URLParam(r, "id")
		if id == "" {
			http.Error(w, "Subscription ID is required", http.StatusBadRequest)
			return
		}
		sub, err := payUC.Status(ctx, id)
		if err != nil {
			if err == domain.ErrNotFound {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "Failed to get status", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toSubscriptionResponse(sub))
	}
}

// ---- provider webhook ----

type callbackRequest struct {
	ReferenceID string `json:"referenceId"`
	Amount      int64  `json:"amount"`
	Status      string `json:"status"`
	Signature   string `json:"signature"`
}

func callbackHandler(payUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req callbackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metrics.IncWebhook("error")
			writeEnvelope(w, http.StatusBadRequest, envBadRequest)
			return
		}

		outcome, err := payUC.HandleCallback(ctx, usecase.CallbackRequest{
			ReferenceID: req.ReferenceID,
			Amount:      req.Amount,
			Status:      req.Status,
			Signature:   req.Signature,
		})
		if err != nil {
			switch err {
			case domain.ErrInvalidArgument:
				metrics.IncWebhook("error")
				writeEnvelope(w, http.StatusBadRequest, envBadRequest)
			case domain.ErrInvalidSignature:
				metrics.IncWebhook("invalid_signature")
				writeEnvelope(w, http.StatusUnauthorized, envInvalidSignature)
			case domain.ErrAmountMismatch:
				metrics.IncWebhook("error")
				writeEnvelope(w, http.StatusBadRequest, envAmountMismatch)
			case domain.ErrNotFound:
				metrics.IncWebhook("not_found")
				writeEnvelope(w, http.StatusNotFound, envRefNotFound)
			default:
				metrics.IncWebhook("error")
				writeEnvelope(w, http.StatusInternalServerError, envInternalError)
			}
			return
		}

		switch outcome {
		case usecase.CallbackReplay:
			metrics.IncWebhook("replay")
		default:
			metrics.IncWebhook("success")
		}
		writeEnvelope(w, http.StatusOK, envSuccess)
	}
}

// ---- packages (public) ----

func packagesListHandler(pkgUC usecase.PackageUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		packages, err := pkgUC.List(ctx)
		if err != nil {
			http.Error(w, "Failed to list packages", http.StatusInternalServerError)
			return
		}
		// Consistent with other list endpoints, wrap the data.
		writeJSON(w, http.StatusOK, struct {
			Data []*model.Package `json:"data"`
		}{Data: packages})
	}
}
