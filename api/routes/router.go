package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/quotedesk-backend/api/controllers"
	"github.com/angelmondragon/quotedesk-backend/api/middleware"
	"github.com/angelmondragon/quotedesk-backend/internal/auth"
	"github.com/angelmondragon/quotedesk-backend/internal/clients"
	"github.com/angelmondragon/quotedesk-backend/internal/quotes"
	"github.com/angelmondragon/quotedesk-backend/pkg/config"
	"github.com/angelmondragon/quotedesk-backend/pkg/logger"
	"github.com/angelmondragon/quotedesk-backend/pkg/metrics"
)

// Dependencies is everything the HTTP surface needs. Health holds the
// readiness checks; a nil entry is reported as disabled.
type Dependencies struct {
	Sessions    middleware.SessionResolver
	Auth        auth.Service
	Clients     clients.Service
	Quotes      quotes.Service
	Exporter    quotes.Exporter
	Health      map[string]controllers.Pinger
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Health))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", controllers.AuthRegister(deps.Auth, logg))
		r.Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Sessions, logg))

			r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))
			r.Get("/me", controllers.Me(logg))

			r.Route("/clients", func(r chi.Router) {
				r.Post("/", controllers.ClientsCreate(deps.Clients, logg))
				r.Get("/", controllers.ClientsList(deps.Clients, logg))
				r.Get("/{clientId}", controllers.ClientsGet(deps.Clients, logg))
				r.Put("/{clientId}", controllers.ClientsUpdate(deps.Clients, logg))
				r.Delete("/{clientId}", controllers.ClientsDelete(deps.Clients, logg))
			})

			r.Route("/quotes", func(r chi.Router) {
				r.Post("/", controllers.QuotesCreate(deps.Quotes, logg))
				r.Get("/", controllers.QuotesList(deps.Quotes, logg))
				r.Get("/{quoteId}", controllers.QuotesGet(deps.Quotes, logg))
				r.Put("/{quoteId}", controllers.QuotesUpdate(deps.Quotes, logg))
				r.Delete("/{quoteId}", controllers.QuotesDelete(deps.Quotes, logg))
				r.Post("/{quoteId}/generate-pdf", controllers.QuotesGeneratePDF(deps.Exporter, logg))
				r.Get("/{quoteId}/pdf", controllers.QuotesPreviewPDF(deps.Exporter, logg))
			})
		})
	})

	return r
}
