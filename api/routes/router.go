package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rahulmenon/billstack-backend/api/controllers"
	"github.com/rahulmenon/billstack-backend/api/middleware"
	"github.com/rahulmenon/billstack-backend/internal/analytics"
	"github.com/rahulmenon/billstack-backend/internal/customers"
	"github.com/rahulmenon/billstack-backend/internal/inventory"
	"github.com/rahulmenon/billstack-backend/internal/invoices"
	"github.com/rahulmenon/billstack-backend/internal/offline"
	"github.com/rahulmenon/billstack-backend/internal/profiles"
	"github.com/rahulmenon/billstack-backend/internal/stocklog"
	"github.com/rahulmenon/billstack-backend/pkg/config"
	"github.com/rahulmenon/billstack-backend/pkg/db"
	"github.com/rahulmenon/billstack-backend/pkg/logger"
	"github.com/rahulmenon/billstack-backend/pkg/redis"
)

// Services bundles everything the router exposes over HTTP.
type Services struct {
	Inventory inventory.Service
	Invoices  invoices.Service
	StockLog  stocklog.Service
	Analytics analytics.Service
	Customers customers.Service
	Profiles  profiles.Service

	Queue   *offline.Queue
	Syncer  *offline.Syncer
	Monitor *offline.Monitor
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	registry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(svcs.Inventory, logg))
			r.Get("/", controllers.ListProducts(svcs.Inventory, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Inventory, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(svcs.Inventory, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(svcs.Inventory, logg))
			r.Get("/{productId}/stock-log", controllers.ProductStockHistory(svcs.StockLog, logg))
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Route("/pending", func(r chi.Router) {
				r.Get("/", controllers.ListPendingInvoices(svcs.Queue, logg))
				r.Delete("/{localId}", controllers.DeletePendingInvoice(svcs.Queue, logg))
			})
			r.Post("/", controllers.CreateInvoice(svcs.Invoices, svcs.Queue, logg))
			r.Get("/", controllers.ListInvoices(svcs.Invoices, logg))
			r.Get("/{invoiceId}", controllers.GetInvoice(svcs.Invoices, logg))
			r.Patch("/{invoiceId}", controllers.UpdateInvoice(svcs.Invoices, logg))
			r.Delete("/{invoiceId}", controllers.DeleteInvoice(svcs.Invoices, logg))
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/", controllers.SyncNow(svcs.Syncer, logg))
			r.Get("/status", controllers.ConnectivityStatus(svcs.Monitor, logg))
		})

		r.Get("/stock-log", controllers.StockHistory(svcs.StockLog, logg))

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/stock-flow", controllers.StockFlow(svcs.Analytics, logg))
			r.Get("/stock-flow/daily", controllers.DailyStockFlow(svcs.Analytics, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CreateCustomer(svcs.Customers, logg))
			r.Get("/", controllers.ListCustomers(svcs.Customers, logg))
			r.Get("/{customerId}", controllers.GetCustomer(svcs.Customers, logg))
			r.Put("/{customerId}", controllers.UpdateCustomer(svcs.Customers, logg))
			r.Delete("/{customerId}", controllers.DeleteCustomer(svcs.Customers, logg))
		})

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(svcs.Profiles, logg))
			r.Put("/", controllers.SaveProfile(svcs.Profiles, logg))
		})
	})

	return r
}
