package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"revenue-split-engine/internal/api/handlers"
	custommiddleware "revenue-split-engine/internal/api/middleware"
	"revenue-split-engine/internal/config"
	"revenue-split-engine/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System    *service.SystemService
	Engine    *service.EngineService
	Registry  *service.RegistryService
	Waterfall *service.WaterfallService
	Ledger    *service.LedgerService
	Account   *service.AccountService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	identity := custommiddleware.Identity(svc.Account)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/engine", func(r chi.Router) {
			engineHandler := handlers.NewEngineHandler(svc.Engine)
			recipientHandler := handlers.NewRecipientHandler(svc.Registry)
			distributionHandler := handlers.NewDistributionHandler(svc.Waterfall, svc.Ledger)
			roleHandler := handlers.NewRoleHandler(svc.Engine)

			r.Get("/", engineHandler.Engines)
			r.With(identity).Post("/", engineHandler.CreateEngine)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)

				r.Get("/", engineHandler.GetEngine)
				r.Get("/events", engineHandler.Events)
				r.Get("/recipients", recipientHandler.Recipients)
				r.Get("/distributors", roleHandler.Distributors)

				// Mutating routes carry caller identity.
				r.Group(func(r chi.Router) {
					r.Use(identity)

					r.Put("/recipients", recipientHandler.SetRecipients)
					r.Post("/distribute", distributionHandler.DistributeNative)
					r.Post("/distribute/{asset}", distributionHandler.DistributeAsset)
					r.Post("/deposit", distributionHandler.Deposit)
					r.Put("/distributor", roleHandler.SetDistributor)
					r.Put("/controller", roleHandler.SetController)
					r.Put("/pricefeed", roleHandler.SetPriceFeed)
					r.Put("/fee", roleHandler.SetFeePolicy)
				})
			})
		})

		r.Route("/account", func(r chi.Router) {
			accountHandler := handlers.NewAccountHandler(svc.Account, svc.Ledger)

			r.Post("/", accountHandler.CreateAccount)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)

				r.Get("/", accountHandler.GetAccount)
				r.Get("/balances", accountHandler.Balances)
			})
		})
	})

	return r
}
