package main

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ms-cinema/internal/auth"
	"ms-cinema/internal/event/event_api"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/metrics"
	"ms-cinema/internal/models"
	"ms-cinema/internal/purchase/purchase_api"
	"ms-cinema/internal/show/show_api"
	"ms-cinema/internal/tickets/ticket_api"
	"ms-cinema/internal/user/user_api"
	"ms-cinema/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type routerDeps struct {
	Logger         *logger.Logger
	Verifiers      []auth.TokenVerifier
	AllowedOrigins []string
	Ping           func(ctx context.Context) error

	Users     *user_api.Handler
	Purchases *purchase_api.Handler
	Tickets   *ticket_api.Handler
	Shows     *show_api.Handler
	Events    *event_api.Handler
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(observe(d.Logger))

	// --- Public Routes ---
	r.Get("/health", health(d.Ping))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(httprate.LimitByIP(20, time.Minute))
		r.Post("/register", d.Users.Register)
		r.Post("/login", d.Users.Login)
	})

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(d.Logger, d.Verifiers...))

		r.Route("/api/purchases", func(r chi.Router) {
			r.Post("/", d.Purchases.CreatePurchase)
			r.With(auth.RequireRole(models.RoleAdmin)).Post("/sweep", d.Purchases.Sweep)
			r.Get("/user/{userId}", d.Purchases.ListPurchasesByUser)
			r.Get("/{purchaseId}", d.Purchases.GetPurchase)
			r.Post("/{purchaseId}/cancel", d.Purchases.CancelPurchase)
		})

		r.Route("/api/qr", func(r chi.Router) {
			r.Post("/", d.Tickets.IssueQR)
			r.With(
				auth.RequireRole(models.RoleAdmin, models.RoleEmployee),
				httprate.LimitByIP(120, time.Minute),
			).Post("/validate", d.Tickets.ValidateQR)
		})

		r.Get("/api/shows/{showId}", d.Shows.GetShow)
		r.Get("/api/events/{eventId}", d.Events.GetEvent)
		r.With(auth.RequireRole(models.RoleAdmin, models.RoleEmployee)).
			Get("/api/shows/{showId}/occupancy", d.Tickets.GetShowOccupancy)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(models.RoleAdmin))

			r.Post("/api/shows", d.Shows.CreateShow)
			r.Put("/api/shows/{showId}", d.Shows.UpdateShow)
			r.Post("/api/seats/{seatId}/release", d.Shows.ReleaseSeat)

			r.Post("/api/events", d.Events.CreateEvent)
			r.Put("/api/events/{eventId}", d.Events.UpdateEvent)

			r.Post("/api/users", d.Users.CreateUser)
			r.Delete("/api/users/{userId}", d.Users.DeleteUser)
		})
	})

	return r
}

// observe logs every request and records its duration under the matched
// route pattern, so ids in the path do not explode label cardinality.
func observe(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			elapsed := time.Since(start)
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
			log.LogAPI(r.Method, r.URL.Path, status, elapsed)
		})
	}
}

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				utils.WriteErrorStatus(w, http.StatusServiceUnavailable, "Database unavailable", err)
				return
			}
		}
		utils.WriteSuccess(w, http.StatusOK, "ok", nil)
	}
}
