package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"stocktally-backend/api/controllers"
	"stocktally-backend/api/middleware"
	"stocktally-backend/internal/auth"
	"stocktally-backend/internal/history"
	"stocktally-backend/internal/items"
	"stocktally-backend/internal/sales"
	"stocktally-backend/pkg/auth/session"
	"stocktally-backend/pkg/config"
	"stocktally-backend/pkg/db"
	"stocktally-backend/pkg/logger"
	"stocktally-backend/pkg/redis"
)

// NewRouter assembles the HTTP surface of the API service.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	registerService auth.RegisterService,
	itemService items.Service,
	saleService sales.Service,
	historyService history.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, logg))
		r.Get("/verify-email", controllers.AuthVerifyEmail(registerService, logg))
		r.Post("/forgot-password", controllers.AuthForgotPassword(registerService, logg))
		r.Post("/reset-password", controllers.AuthResetPassword(registerService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/me", controllers.AuthMe(authService, logg))

		r.Route("/items", func(r chi.Router) {
			r.Get("/", controllers.ItemList(itemService, logg))
			r.Post("/", controllers.ItemCreate(itemService, logg))
			r.Get("/search", controllers.ItemSearch(itemService, logg))
			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", controllers.ItemDetail(itemService, logg))
				r.Patch("/", controllers.ItemUpdate(itemService, logg))
				r.Delete("/", controllers.ItemDelete(itemService, logg))
				r.Post("/move", controllers.ItemMove(itemService, logg))
				r.Get("/history", controllers.ItemHistory(historyService, logg))
				r.Get("/snapshots", controllers.ItemSnapshots(historyService, logg))
			})
		})

		r.Route("/item-names", func(r chi.Router) {
			r.Get("/", controllers.ItemNameList(itemService, logg))
			r.Patch("/{nameId}", controllers.ItemNameRename(itemService, logg))
			r.Delete("/{nameId}", controllers.ItemNameDelete(itemService, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Post("/", controllers.SaleCreate(saleService, logg))
			r.Post("/multi", controllers.MultiSaleCreate(saleService, logg))
			r.Get("/", controllers.SalesByDate(saleService, logg))
			r.Get("/range", controllers.SalesByRange(saleService, logg))
			r.Get("/statistics", controllers.SalesStatistics(saleService, logg))
			r.Route("/{saleId}", func(r chi.Router) {
				r.Patch("/", controllers.SaleUpdate(saleService, logg))
				r.Post("/return", controllers.SaleReturn(saleService, logg))
				r.Delete("/", controllers.SaleDelete(saleService, logg))
			})
		})

		r.Route("/snapshots", func(r chi.Router) {
			r.Post("/", controllers.SnapshotCreate(historyService, logg))
			r.Get("/", controllers.SnapshotsByDate(historyService, logg))
			r.Get("/today", controllers.SnapshotToday(historyService, logg))
		})
	})

	return r
}
