package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iho/golend/internal/adapter/http/handler"
	"github.com/iho/golend/internal/adapter/http/middleware"
	"github.com/iho/golend/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler   *handler.AccountHandler
	LoanHandler      *handler.LoanHandler
	AdminHandler     *handler.AdminHandler
	HealthHandler    *handler.HealthHandler
	IdempotencyStore usecase.IdempotencyStore
	RateLimiter      *middleware.RateLimiter
	RequestLogger    *middleware.LoggingMiddleware

	// AdminToken guards /admin routes. Empty disables them entirely.
	AdminToken string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Metrics)
	if cfg.RequestLogger != nil {
		r.Use(cfg.RequestLogger.Wrap)
	} else {
		r.Use(chimiddleware.Logger)
	}
	r.Use(middleware.Recovery)

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Post("/{id}/deposits", cfg.AccountHandler.Deposit)
		})

		// Loans
		r.Route("/loans", func(r chi.Router) {
			r.Post("/collateral", cfg.LoanHandler.DepositCollateral)
			r.Post("/collateral/add", cfg.LoanHandler.AddCollateral)
			r.Post("/borrow", cfg.LoanHandler.Borrow)
			r.Post("/repay", cfg.LoanHandler.Repay)
			r.Get("/status/{ownerID}", cfg.LoanHandler.Status)
			r.Get("/history/{ownerID}", cfg.LoanHandler.History)
		})
	})

	// Operator endpoints
	if cfg.AdminToken != "" {
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.AdminToken))

			r.Get("/loans/at-risk", cfg.AdminHandler.ListAtRisk)
			r.Post("/loans/{id}/liquidate", cfg.AdminHandler.ForceLiquidate)
			r.Post("/accrual/run", cfg.AdminHandler.RunAccrual)
			r.Get("/reconciliation", cfg.AdminHandler.Reconciliation)
		})
	}

	return r
}
