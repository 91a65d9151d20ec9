package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sellaris/payments/internal/usecase"
)

type Server struct {
	checkoutUC usecase.CheckoutUseCase
	payUC      usecase.PaymentUseCase
	subUC      usecase.SubscriptionUseCase
	pkgUC      usecase.PackageUseCase
	statsUC    usecase.StatsUseCase
	jwtSecret  string
	log        *zerolog.Logger
}

func NewServer(
	checkoutUC usecase.CheckoutUseCase,
	payUC usecase.PaymentUseCase,
	subUC usecase.SubscriptionUseCase,
	pkgUC usecase.PackageUseCase,
	statsUC usecase.StatsUseCase,
	jwtSecret string,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		checkoutUC: checkoutUC,
		payUC:      payUC,
		subUC:      subUC,
		pkgUC:      pkgUC,
		statsUC:    statsUC,
		jwtSecret:  jwtSecret,
		log:        logger,
	}
}

// Router builds the full route tree: public checkout surface, the
// provider webhook, and the JWT-guarded back-office.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(Recover(s.log))
	r.Use(RequestLog(s.log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/packages", packagesListHandler(s.pkgUC))

		r.Post("/checkout", checkoutHandler(s.checkoutUC))
		r.Post("/checkout/{id}/retry", retryHandler(s.checkoutUC))
		r.Get("/subscriptions/{id}/status", statusHandler(s.payUC))

		r.Post("/payments/callback", callbackHandler(s.payUC))

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminAuth(s.jwtSecret, s.log))

			r.Get("/stats", statsHandler(s.statsUC))
			r.Get("/packages", packagesListHandler(s.pkgUC))
			r.Post("/packages", packagesCreateHandler(s.pkgUC))
			r.Put("/packages/{id}", packagesUpdateHandler(s.pkgUC))
			r.Delete("/packages/{id}", packagesDeleteHandler(s.pkgUC))
			r.Get("/users/{userID}/subscriptions", userSubscriptionsHandler(s.subUC))
			r.Post("/subscriptions/{id}/cancel", subscriptionCancelHandler(s.subUC))
		})
	})
	return r
}
