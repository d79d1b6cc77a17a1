package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glacierhockey/rinkreg-backend/api/controllers"
	"github.com/glacierhockey/rinkreg-backend/api/middleware"
	"github.com/glacierhockey/rinkreg-backend/internal/discounts"
	"github.com/glacierhockey/rinkreg-backend/internal/payments"
	"github.com/glacierhockey/rinkreg-backend/internal/programs"
	"github.com/glacierhockey/rinkreg-backend/internal/registrations"
	"github.com/glacierhockey/rinkreg-backend/internal/waitlists"
	"github.com/glacierhockey/rinkreg-backend/pkg/config"
	"github.com/glacierhockey/rinkreg-backend/pkg/db"
	"github.com/glacierhockey/rinkreg-backend/pkg/logger"
	"github.com/glacierhockey/rinkreg-backend/pkg/redis"
)

// Deps bundles everything the router wires into handlers.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         redis.Pinger
	Idempotency   redis.IdempotencyStore
	Programs      programs.Service
	Discounts     discounts.Service
	Registrations registrations.Service
	Waitlists     waitlists.Service
	Payments      payments.Repository
	DLQ           controllers.DLQLister
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/registrations", func(r chi.Router) {
			r.Post("/quote", controllers.RegistrationQuote(deps.Registrations, logg))
			r.Post("/", controllers.RegistrationCreate(deps.Registrations, logg))
			r.Get("/", controllers.RegistrationList(deps.Registrations, logg))
			r.Get("/{registrationId}", controllers.RegistrationGet(deps.Registrations, logg))
			r.Post("/{registrationId}/confirm", controllers.RegistrationConfirm(deps.Registrations, logg))
			r.Post("/{registrationId}/cancel", controllers.RegistrationCancel(deps.Registrations, logg))
			r.Get("/{registrationId}/payment", controllers.PaymentByRegistration(deps.Payments, logg))
		})

		r.Route("/programs", func(r chi.Router) {
			r.Get("/", controllers.ProgramList(deps.Programs, logg))
			r.Get("/{programId}", controllers.ProgramGet(deps.Programs, logg))
			r.Post("/{programId}/waitlist", controllers.WaitlistJoin(deps.Waitlists, logg))
			r.Get("/{programId}/waitlist", controllers.WaitlistList(deps.Waitlists, logg))
		})

		r.Delete("/waitlist-entries/{entryId}", controllers.WaitlistRemove(deps.Waitlists, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Route("/seasons", func(r chi.Router) {
				r.Post("/", controllers.SeasonCreate(deps.Programs, logg))
				r.Get("/", controllers.SeasonList(deps.Programs, logg))
				r.Post("/{seasonId}/activate", controllers.SeasonActivate(deps.Programs, logg))
			})

			r.Route("/programs", func(r chi.Router) {
				r.Post("/", controllers.ProgramCreate(deps.Programs, logg))
				r.Post("/{programId}/deactivate", controllers.ProgramDeactivate(deps.Programs, logg))
				r.Post("/{programId}/waitlist/select-next", controllers.WaitlistSelectNext(deps.Waitlists, logg))
			})

			r.Route("/discount-categories", func(r chi.Router) {
				r.Post("/", controllers.DiscountCategoryCreate(deps.Discounts, logg))
				r.Get("/", controllers.DiscountCategoryList(deps.Discounts, logg))
			})

			r.Route("/discount-codes", func(r chi.Router) {
				r.Post("/", controllers.DiscountCodeCreate(deps.Discounts, logg))
				r.Get("/", controllers.DiscountCodeList(deps.Discounts, logg))
				r.Post("/{codeId}/deactivate", controllers.DiscountCodeDeactivate(deps.Discounts, logg))
			})

			r.Get("/outbox/dlq", controllers.OutboxDLQList(deps.DLQ, logg))
		})
	})

	return r
}
