package router

import (
	"net/http"

	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/billing"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/config"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/database"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/enum"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/events"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/handler"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/logger"
	mw "github.com/computingshadrack/v0-restaurant-hotel-system/internal/middleware"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/service"
	"github.com/computingshadrack/v0-restaurant-hotel-system/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the long-lived collaborators the routes share.
type Deps struct {
	Queries *database.Queries
	Pool    *pgxpool.Pool
	Hub     *ws.Hub

	// Events receives every domain event. Usually a Fanout of the hub and
	// the configured broker.
	Events events.Publisher

	// Idempotency is optional; nil disables Idempotency-Key handling.
	Idempotency handler.IdempotencyGuard

	Log *logger.Logger
}

// loginBurst is how many sign-in attempts a client may make back to back.
const loginBurst = 5

// New creates a Chi router with all application routes wired up.
// Applies authentication, portal and role-based middleware as needed.
func New(cfg *config.Config, d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.RequestLogger(d.Log))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Idempotent-Replayed"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	pub := d.Events
	if pub == nil {
		pub = d.Hub
	}
	notify := service.Notifier{Publisher: pub, Log: d.Log}
	rates := billing.Rates{
		ServiceCharge: cfg.Billing.ServiceChargeRate,
		VAT:           cfg.Billing.VATRate,
	}
	hotel := billing.Hotel{
		Name:    cfg.Hotel.Name,
		Address: cfg.Hotel.Address,
		Phone:   cfg.Hotel.Phone,
		VATReg:  cfg.Hotel.VATReg,
	}

	// Services, each opening its own transaction per operation.
	customerService := service.NewCustomerService(d.Pool, func(db database.DBTX) service.CustomerStore {
		return database.New(db)
	})
	orderService := service.NewOrderService(d.Pool, func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}, rates, notify)
	settlementService := service.NewSettlementService(d.Pool, func(db database.DBTX) service.SettlementStore {
		return database.New(db)
	}, rates, hotel, notify)
	reservationService := service.NewReservationService(d.Pool, func(db database.DBTX) service.ReservationStore {
		return database.New(db)
	}, cfg.Billing.TableReservationFee, notify)
	housekeepingService := service.NewHousekeepingService(d.Pool, func(db database.DBTX) service.HousekeepingStore {
		return database.New(db)
	}, notify)
	ratingService := service.NewRatingService(d.Pool, func(db database.DBTX) service.RatingStore {
		return database.New(db)
	})

	// Auth routes (public, rate limited per client)
	authHandler := handler.NewAuthHandler(d.Queries, customerService, cfg.JWTSecret, d.Log)
	limiter := mw.NewRateLimiter(cfg.LoginRateLimit, loginBurst, d.Log)
	r.Group(func(r chi.Router) {
		r.Use(limiter.Handler)
		authHandler.RegisterRoutes(r)
	})

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/{topic}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(d.Hub, cfg.JWTSecret, d.Log, w, r)
	})

	staffPortals := mw.RequirePortal(enum.PortalStaff, enum.PortalManagement)

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		// Menu: everyone reads, management edits, the kitchen toggles availability.
		menuHandler := handler.NewMenuHandler(d.Queries, d.Log)
		r.Route("/menu-items", func(r chi.Router) {
			menuHandler.RegisterRoutes(r,
				mw.RequireRole(enum.ManagementRoles...),
				mw.RequireRole(enum.RoleAdmin, enum.RoleManager, enum.RoleKitchen),
			)
		})

		// Orders and payments. Role and ownership checks live in the services.
		orderHandler := handler.NewOrderHandler(orderService, d.Idempotency, d.Log)
		paymentHandler := handler.NewPaymentHandler(settlementService, d.Log)
		r.Route("/orders", func(r chi.Router) {
			orderHandler.RegisterRoutes(r)
			paymentHandler.RegisterRoutes(r)
		})

		reservationHandler := handler.NewReservationHandler(reservationService, d.Log)
		r.Route("/reservations", reservationHandler.RegisterRoutes)

		// Room and table boards
		roomHandler := handler.NewRoomHandler(d.Queries, housekeepingService, d.Log)
		roomHandler.RegisterRoutes(r)

		// Customers rate their server; staff read the feedback feed.
		ratingHandler := handler.NewRatingHandler(ratingService, d.Log)
		r.Route("/ratings", func(r chi.Router) {
			ratingHandler.RegisterRoutes(r, staffPortals)
		})

		// Staff-only operations
		r.Group(func(r chi.Router) {
			r.Use(staffPortals)

			roomHandler.RegisterHousekeepingRoutes(r)

			deliveryHandler := handler.NewDeliveryHandler(housekeepingService, d.Log)
			r.Route("/deliveries", deliveryHandler.RegisterRoutes)

			customerHandler := handler.NewCustomerHandler(d.Queries, d.Log)
			r.Route("/customers", customerHandler.RegisterRoutes)
		})

		// Management portal
		r.Group(func(r chi.Router) {
			r.Use(mw.RequirePortal(enum.PortalManagement))
			reportsHandler := handler.NewReportsHandler(d.Queries, d.Log)
			r.Route("/reports", reportsHandler.RegisterRoutes)
		})

		// Admin only
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))
			staffHandler := handler.NewStaffHandler(d.Queries, d.Log)
			r.Route("/staff", staffHandler.RegisterRoutes)
		})
	})

	d.Log.LogProcess("ROUTER", "initialized with all handlers")
	return r
}
