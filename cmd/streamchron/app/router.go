package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cmaflive/streamchron/pkg/logging"
)

// setupRouter mirrors cmd/livesim2/app/start.go's router shape: RequestID
// then SlogMiddleWare carry request_id/latency/status through slog, then
// Recoverer, the prometheus middleware, and CORS headers, a /metrics
// endpoint, and the domain-specific PUT route bound to ing.
func setupRouter(ing *Ingest) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(logging.SlogMiddleWare(slog.Default()))
	router.Use(middleware.Recoverer)
	router.Use(NewPrometheusMiddleware())
	router.Use(addCorsHeaders)

	for _, route := range logging.LogRoutes {
		router.MethodFunc(route.Method, route.Path, route.Handler)
	}
	router.Mount("/metrics", promhttp.Handler())
	router.Put("/*", ing.PutHandlerFunc)

	// §6.1 calls for 404 on "any other method, path, or extension" with no
	// carve-out for a 405; pin both chi defaults down explicitly rather than
	// rely on its built-in method-not-allowed behavior.
	router.NotFound(notFoundHandler)
	router.MethodNotAllowed(notFoundHandler)

	return router
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not found", http.StatusNotFound)
}

func addCorsHeaders(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Access-Control-Allow-Origin", "*")
		w.Header().Add("Access-Control-Allow-Methods", "PUT, OPTIONS")
		w.Header().Add("Access-Control-Allow-Headers", "Content-Type, Accept")
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
