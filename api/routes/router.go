package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/danielsaucedo/partstracker-backend/api/controllers"
	"github.com/danielsaucedo/partstracker-backend/api/middleware"
	attsvc "github.com/danielsaucedo/partstracker-backend/internal/attachments"
	authsvc "github.com/danielsaucedo/partstracker-backend/internal/auth"
	"github.com/danielsaucedo/partstracker-backend/internal/ledger"
	partsvc "github.com/danielsaucedo/partstracker-backend/internal/parts"
	posvc "github.com/danielsaucedo/partstracker-backend/internal/purchaseorders"
	reportsvc "github.com/danielsaucedo/partstracker-backend/internal/reports"
	ressvc "github.com/danielsaucedo/partstracker-backend/internal/reservations"
	suppliersvc "github.com/danielsaucedo/partstracker-backend/internal/suppliers"
	"github.com/danielsaucedo/partstracker-backend/pkg/config"
	"github.com/danielsaucedo/partstracker-backend/pkg/logger"
	"github.com/danielsaucedo/partstracker-backend/pkg/metrics"
)

// RateLimitStore counts login attempts per key. *redis.Client satisfies it;
// nil disables throttling.
type RateLimitStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	httpMetrics *metrics.HTTPMetrics,
	rateStore RateLimitStore,
	authService authsvc.Service,
	ledgerService ledger.Service,
	partService partsvc.Service,
	supplierService suppliersvc.Service,
	orderService posvc.Service,
	reservationService ressvc.Service,
	attachmentService attsvc.Service,
	reportService reportsvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware())
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)

	resolver := controllers.TokenResolver{Svc: authService}
	authed := middleware.Auth(resolver, logg)
	adminOnly := middleware.RequireRole("admin", logg)

	r.Get("/health", controllers.Health(cfg))
	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).
			Post("/login", controllers.AuthLogin(authService, logg))
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/logout", controllers.AuthLogout(authService, logg))
			r.Get("/me", controllers.AuthMe(logg))
		})
	})

	r.Route("/parts", func(r chi.Router) {
		r.Get("/", controllers.ListParts(partService, logg))
		r.Get("/{id}", controllers.GetPart(partService, logg))
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/", controllers.CreatePart(partService, logg))
			r.Put("/{id}", controllers.UpdatePart(partService, logg))
			r.With(adminOnly).Delete("/{id}", controllers.DeletePart(partService, logg))
		})
	})

	r.Route("/stock", func(r chi.Router) {
		r.Get("/movements", controllers.ListStockMovements(ledgerService, logg))
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/in", controllers.StockIn(ledgerService, logg))
			r.Post("/out", controllers.StockOut(ledgerService, logg))
		})
	})

	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", controllers.ListSuppliers(supplierService, logg))
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/", controllers.CreateSupplier(supplierService, logg))
			r.Put("/{id}", controllers.UpdateSupplier(supplierService, logg))
			r.With(adminOnly).Delete("/{id}", controllers.DeleteSupplier(supplierService, logg))
		})
	})

	r.Route("/purchase-orders", func(r chi.Router) {
		r.Get("/", controllers.ListPurchaseOrders(orderService, logg))
		r.Get("/{id}", controllers.GetPurchaseOrder(orderService, logg))
		r.Group(func(r chi.Router) {
			r.Use(authed)
			r.Post("/", controllers.CreatePurchaseOrder(orderService, logg))
			r.Put("/{id}", controllers.UpdatePurchaseOrder(orderService, logg))
			r.Put("/{id}/receive", controllers.ReceivePurchaseOrder(ledgerService, logg))
		})
	})

	r.Route("/reservations", func(r chi.Router) {
		r.Use(authed)
		r.Get("/", controllers.ListReservations(reservationService, logg))
		r.Post("/", controllers.CreateReservation(reservationService, logg))
		r.Put("/{id}/status", controllers.TransitionReservation(ledgerService, logg))
	})

	r.Get("/alerts/low", controllers.LowStockAlerts(reportService, logg))

	r.Route("/reports", func(r chi.Router) {
		r.Use(authed)
		r.Get("/summary", controllers.InventorySummary(reportService, logg))
		r.Get("/slow-movers", controllers.SlowMovers(reportService, logg))
	})

	r.Route("/attachments", func(r chi.Router) {
		r.Use(authed)
		r.Get("/{entity}/{id}", controllers.ListAttachments(attachmentService, logg))
		r.Post("/", controllers.CreateAttachment(attachmentService, logg))
	})

	return r
}
