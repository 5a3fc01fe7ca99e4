package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sellerdesk/api/internal/platform/config"
	"github.com/sellerdesk/api/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	basePath    string
	middlewares []func(http.Handler) http.Handler
	rateLimits  *config.RateLimitConfig
	health      *HealthHandlers
	graphql     http.Handler

	wizard    RouteRegistrar
	orders    RouteRegistrar
	customers RouteRegistrar
	marketing RouteRegistrar
	media     RouteRegistrar

	graphqlMiddlewares []func(http.Handler) http.Handler
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix  = "/api/v1"
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// NewRouter constructs the chi router with shared middleware and route groups.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath: defaultAPIPrefix,
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	r := chi.NewRouter()

	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	if cfg.health != nil {
		r.Get("/healthz", cfg.health.Healthz)
		r.Get("/readyz", cfg.health.Readyz)
	}

	var throttle func(http.Handler) http.Handler
	if cfg.rateLimits != nil {
		throttle = RateLimitMiddleware(*cfg.rateLimits)
	}

	if cfg.graphql != nil {
		r.Group(func(group chi.Router) {
			if throttle != nil {
				group.Use(throttle)
			}
			for _, mw := range cfg.graphqlMiddlewares {
				if mw != nil {
					group.Use(mw)
				}
			}
			group.Handle("/graphql", cfg.graphql)
		})
	}

	r.Route(cfg.basePath, func(api chi.Router) {
		if throttle != nil {
			api.Use(throttle)
		}
		mount := func(path string, registrar RouteRegistrar, name string) {
			api.Route(path, func(group chi.Router) {
				if registrar != nil {
					registrar(group)
					return
				}
				registerNotImplemented(group, name)
			})
		}

		mount("/wizard", cfg.wizard, "wizard")
		mount("/orders", cfg.orders, "orders")
		mount("/customers", cfg.customers, "customers")
		mount("/marketing", cfg.marketing, "marketing")
		mount("/media", cfg.media, "media")
	})

	return r
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithRateLimits throttles the API and GraphQL route groups. Health probes
// stay unthrottled.
func WithRateLimits(limits config.RateLimitConfig) Option {
	return func(cfg *routerConfig) {
		cfg.rateLimits = &limits
	}
}

// WithHealthHandlers configures the handlers for /healthz and /readyz.
func WithHealthHandlers(h *HealthHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// WithGraphQLHandler mounts the GraphQL endpoint at /graphql.
func WithGraphQLHandler(h http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.graphql = h
	}
}

// WithGraphQLMiddlewares configures middlewares applied to the /graphql route.
func WithGraphQLMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.graphqlMiddlewares = append(cfg.graphqlMiddlewares, mw...)
	}
}

// WithWizardRoutes configures the registrar for the wizard session endpoints.
func WithWizardRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.wizard = reg
	}
}

// WithOrderRoutes configures the registrar for order endpoints.
func WithOrderRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.orders = reg
	}
}

// WithCustomerRoutes configures the registrar for customer endpoints.
func WithCustomerRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.customers = reg
	}
}

// WithMarketingRoutes configures the registrar for marketing endpoints.
func WithMarketingRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.marketing = reg
	}
}

// WithMediaRoutes configures the registrar for media endpoints.
func WithMediaRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.media = reg
	}
}

func registerNotImplemented(r chi.Router, name string) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes not implemented", name), http.StatusNotImplemented))
	}
	r.HandleFunc("/*", handler)
	r.HandleFunc("/", handler)
	r.NotFound(handler)
	r.MethodNotAllowed(handler)
}
