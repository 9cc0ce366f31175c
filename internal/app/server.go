package app

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"go.uber.org/zap"

	"github.com/xenking/drinks-api/internal/domain/drink"
	"github.com/xenking/drinks-api/internal/handler"
	"github.com/xenking/drinks-api/pkg/health"
	"github.com/xenking/drinks-api/pkg/httpmiddleware"
)

const serviceName = "drinks-api"

// Deps are the collaborators the HTTP server is assembled from.
type Deps struct {
	Logger     *zap.Logger
	Telemetry  httpmiddleware.Telemetry
	Drinks     drink.Repository
	Authorizer handler.Authorizer
	Health     *health.Health
}

// NewHTTPHandler builds the root router: middleware chain, probes and the
// drink API.
func NewHTTPHandler(cfg *Config, deps Deps) (http.Handler, error) {
	h, err := handler.NewHandler(
		drink.NewService(deps.Drinks),
		deps.Authorizer,
		deps.Telemetry.MeterProvider().Meter(serviceName),
	)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	r.Use(
		httpmiddleware.InjectLogger(deps.Logger),
		httpmiddleware.Recovery(http.HandlerFunc(internalError)),
		cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.Origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
	)
	if cfg.RateLimit.Max > 0 {
		r.Use(httprate.Limit(cfg.RateLimit.Max, cfg.RateLimit.Window,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(tooManyRequests),
		))
	}
	r.Use(
		httpmiddleware.RequestID(),
		httpmiddleware.Instrument(serviceName, deps.Telemetry),
		httpmiddleware.LogRequests(),
	)

	deps.Health.Routes(r)
	h.Routes(r)

	return r, nil
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              addr,
		Handler:           h,
	}
}

func internalError(w http.ResponseWriter, _ *http.Request) {
	handler.WriteError(w, http.StatusInternalServerError, "internal server error")
}

func tooManyRequests(w http.ResponseWriter, _ *http.Request) {
	handler.WriteError(w, http.StatusTooManyRequests, "too many requests")
}
