// Package router assembles the HTTP handler: routes, docs and the middleware chain.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/ficmart-escrow/internal/api"
	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest/middleware"
)

type RouteRegistrar interface {
	RegisterRoutes(mux *http.ServeMux)
}

// New wraps the routes as Recovery → Logging → Timeout → OpenAPI validation.
func New(routes RouteRegistrar, requestTimeout time.Duration, logger *slog.Logger) (http.Handler, error) {
	mux := http.NewServeMux()
	api.RegisterDocsRoutes(mux)
	routes.RegisterRoutes(mux)

	doc, err := api.GetSwagger()
	if err != nil {
		return nil, err
	}
	validate, err := middleware.OpenAPIValidator(doc, logger)
	if err != nil {
		return nil, err
	}

	handler := validate(mux)
	handler = middleware.Timeout(requestTimeout)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	return handler, nil
}
