package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/diagnosis/luxstay-hotel/internal/http/handlers"
	"github.com/diagnosis/luxstay-hotel/internal/http/middleware"
	"github.com/diagnosis/luxstay-hotel/internal/platform/ratelimit"
	"github.com/diagnosis/luxstay-hotel/internal/repo/postgres"
	syncer "github.com/diagnosis/luxstay-hotel/internal/sync"
	"github.com/diagnosis/luxstay-hotel/pkg/config"
	"github.com/diagnosis/luxstay-hotel/pkg/events"
	mw "github.com/diagnosis/luxstay-hotel/pkg/middleware"
)

// Deps collects everything the router needs. Handlers receive repo
// interfaces, so tests can mount the same routes over mocks.
type Deps struct {
	Cfg *config.Config

	Rooms        postgres.RoomsRepo
	Credentials  postgres.CredentialsRepo
	Sessions     postgres.SessionsRepo
	Stays        postgres.StaysRepo
	Menu         postgres.MenuRepo
	Orders       postgres.OrdersRepo
	Housekeeping postgres.HousekeepingRepo
	Events       postgres.EventsRepo
	Admins       postgres.AdminsRepo

	Bus        events.Publisher
	Limiter    *ratelimit.Limiter
	Reconciler *syncer.Reconciler
}

func NewRouter(d Deps) http.Handler {
	guestAuth := handlers.NewGuestAuthHandler(d.Rooms, d.Credentials, d.Sessions, d.Cfg.Sync.SessionTTL)
	rooms := handlers.NewRoomsHandler(d.Rooms, d.Credentials)
	stays := handlers.NewStaysHandler(d.Stays, d.Rooms, d.Credentials, d.Sessions, d.Bus)
	menu := handlers.NewMenuHandler(d.Menu)
	orders := handlers.NewOrdersHandler(d.Orders, d.Menu, d.Bus)
	housekeeping := handlers.NewHousekeepingHandler(d.Housekeeping, d.Bus)
	eventsBoard := handlers.NewEventsHandler(d.Events)
	admins := handlers.NewAdminsHandler(d.Admins, d.Cfg.Auth.JWTSecret, int64(d.Cfg.Auth.AdminTokenTTL/time.Second))
	reports := handlers.NewReportsHandler(d.Rooms, d.Stays, d.Orders, d.Housekeeping)
	syncAPI := handlers.NewSyncHandler(d.Reconciler)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireSession := middleware.RequireGuestSession(d.Sessions)

	r.Route("/guest", func(r chi.Router) {
		// Login endpoints sit behind the per-IP limiter; everything else
		// behind the session middleware.
		r.With(middleware.LoginRateLimit(d.Limiter)).Mount("/auth", guestAuth.Routes())

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Mount("/menu", menu.GuestRoutes())
			r.Mount("/orders", orders.GuestRoutes())
			r.Mount("/housekeeping", housekeeping.GuestRoutes())
			r.Mount("/events", eventsBoard.GuestRoutes())
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(d.Limiter)).Mount("/auth", admins.LoginRoutes())

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireJWT(d.Cfg.Auth.JWTSecret))

			r.Mount("/rooms", rooms.Routes())
			r.Mount("/stays", stays.Routes())
			r.Mount("/menu", menu.StaffRoutes())
			r.Mount("/orders", orders.StaffRoutes())
			r.Mount("/housekeeping", housekeeping.StaffRoutes())
			r.Mount("/events", eventsBoard.StaffRoutes())
			r.Mount("/reports", reports.Routes())

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole("admin"))
				r.Mount("/accounts", admins.Routes())
				r.Mount("/sync", syncAPI.Routes())
			})
		})
	})

	return r
}
