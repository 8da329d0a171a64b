// Package kernel assembles the storefront's HTTP handler: global middleware,
// operational endpoints and the application routes.
package kernel

import (
	"net/http"

	"github.com/shashiranjanraj/storefront/app/routes"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/metrics"
	"github.com/shashiranjanraj/storefront/pkg/middleware"
	"github.com/shashiranjanraj/storefront/pkg/reqid"
	"github.com/shashiranjanraj/storefront/pkg/response"
	"github.com/shashiranjanraj/storefront/pkg/router"
	"github.com/shashiranjanraj/storefront/pkg/session"
	"github.com/shashiranjanraj/storefront/pkg/storage"
)

// HTTPKernel owns the router the server listens with.
type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router. Global middleware runs outermost first:
// metrics, request id, access log, panic recovery, CORS.
func NewHTTPKernel(svc routes.Services) *HTTPKernel {
	r := router.New()

	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(middleware.CORSOptionsFor(config.Get("CORS_ORIGINS", ""))))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w)
	})

	r.HandleFunc("/metrics", metrics.Handler())
	r.Get("/health", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Success(w, map[string]string{"status": "ok"})
	})
	if local := storage.Local(); local != nil {
		r.Mount("/storage", http.StripPrefix("/storage", http.FileServer(http.Dir(local.Root()))))
	}

	routes.Register(r, svc, config.Admin(), session.OptionsFromConfig())

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Router exposes the route table for route:list.
func (k *HTTPKernel) Router() *router.Router { return k.router }
