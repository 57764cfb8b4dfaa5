package routes

import (
	"database/sql"
	"net/http"

	"github.com/aquasync/backend/app"
	"github.com/aquasync/backend/handlers"
	"github.com/aquasync/backend/middleware"
	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/utils"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func perm(resource models.Resource, action models.Action) models.Permission {
	return models.NewPermission(resource, action)
}

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	cfg := deps.Config
	logger := deps.Logger
	auth := deps.AuthMiddleware

	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	}
	r.Use(deps.Metrics.Middleware)

	// CORS middleware. Credentials are allowed so the session cookie travels.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.SecureHeaders(cfg.IsProduction(), logger))

	// Request gate for everything under the protected prefix
	r.Use(auth.Gate)

	// Health check endpoints
	health := handlers.NewHealthHandler(dbOrNil(deps), deps.Redis, logger)
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)
	r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())

	authHandler := handlers.NewAuthHandler(deps.AuthService, handlers.CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
	}, cfg.Email.AppURL, logger)
	users := handlers.NewUserHandler(deps.AuthService, logger)
	buildings := handlers.NewBuildingHandler(deps.BuildingService, logger)
	apartments := handlers.NewApartmentHandler(deps.ApartmentService, logger)
	readings := handlers.NewReadingHandler(deps.ReadingService, logger)
	paymentLists := handlers.NewPaymentListHandler(deps.PaymentListService, logger)
	email := handlers.NewEmailHandler(deps.EmailService, logger)

	r.Route("/api", func(r chi.Router) {
		// Public auth endpoints, excluded from the gate
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimitByIP(cfg.RateLimit.AuthRequests, cfg.RateLimit.AuthWindow))
				r.Post("/register", authHandler.HandleRegister)
				r.Post("/login", authHandler.HandleLogin)
			})
			r.Get("/verify", authHandler.HandleVerify)
			r.Post("/logout", authHandler.HandleLogout)
			r.Get("/session", authHandler.HandleSession)
		})

		r.Get("/users/me", users.HandleMe)

		r.Route("/buildings", func(r chi.Router) {
			r.With(auth.RequirePermission(perm(models.ResourceBuildings, models.ActionRead))).Get("/", buildings.HandleList)
			r.With(auth.RequirePermission(perm(models.ResourceBuildings, models.ActionCreate))).Post("/", buildings.HandleCreate)

			r.Route("/{buildingID}", func(r chi.Router) {
				r.With(auth.RequirePermission(perm(models.ResourceBuildings, models.ActionRead))).Get("/", buildings.HandleGet)
				r.With(auth.RequirePermission(perm(models.ResourceBuildings, models.ActionUpdate))).Put("/", buildings.HandleUpdate)
				r.With(auth.RequirePermission(perm(models.ResourceBuildings, models.ActionDelete))).Delete("/", buildings.HandleDelete)

				r.With(auth.RequirePermission(perm(models.ResourceApartments, models.ActionRead))).Get("/apartments", apartments.HandleListByBuilding)
				r.With(auth.RequirePermission(perm(models.ResourceApartments, models.ActionCreate))).Post("/apartments", apartments.HandleCreate)
			})
		})

		r.Route("/apartments/{apartmentID}", func(r chi.Router) {
			r.With(auth.RequirePermission(perm(models.ResourceApartments, models.ActionRead))).Get("/", apartments.HandleGet)
			r.With(auth.RequirePermission(perm(models.ResourceApartments, models.ActionUpdate))).Put("/", apartments.HandleUpdate)
			r.With(auth.RequirePermission(perm(models.ResourceApartments, models.ActionDelete))).Delete("/", apartments.HandleDelete)
			r.With(auth.RequirePermission(perm(models.ResourceOwners, models.ActionAssign))).Put("/owner", apartments.HandleAssignOwner)
		})

		r.Route("/readings", func(r chi.Router) {
			r.With(auth.RequirePermission(perm(models.ResourceWaterReadings, models.ActionRead))).Get("/", readings.HandleList)
			r.With(auth.RequirePermission(perm(models.ResourceWaterReadings, models.ActionCreate))).Post("/", readings.HandleSubmit)
			r.With(auth.RequireAnyPermission(
				perm(models.ResourceWaterReadings, models.ActionApprove),
				perm(models.ResourceWaterReadings, models.ActionReject),
			)).Get("/pending", readings.HandlePending)
			r.With(auth.RequirePermission(perm(models.ResourceWaterReadings, models.ActionApprove))).Post("/{readingID}/approve", readings.HandleApprove)
			r.With(auth.RequirePermission(perm(models.ResourceWaterReadings, models.ActionReject))).Post("/{readingID}/reject", readings.HandleReject)
		})

		r.Route("/payment-lists", func(r chi.Router) {
			r.With(auth.RequirePermission(perm(models.ResourcePaymentLists, models.ActionRead))).Get("/", paymentLists.HandleList)
			r.With(auth.RequirePermission(perm(models.ResourcePaymentLists, models.ActionCreate))).Post("/", paymentLists.HandleCreate)
			r.With(auth.RequirePermission(perm(models.ResourcePaymentLists, models.ActionRead))).Get("/{listID}", paymentLists.HandleGet)
			r.With(auth.RequirePermission(perm(models.ResourcePaymentLists, models.ActionApprove))).Post("/{listID}/approve", paymentLists.HandleApprove)
			r.With(auth.RequirePermission(perm(models.ResourcePaymentLists, models.ActionExport))).Get("/{listID}/export", paymentLists.HandleExport)
		})

		r.With(auth.RequirePermission(perm(models.ResourceNotifications, models.ActionCreate))).Post("/email", email.HandleSend)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})

	return r
}

func dbOrNil(deps *app.Dependencies) *sql.DB {
	if deps.DB == nil {
		return nil
	}
	return deps.DB.DB
}
