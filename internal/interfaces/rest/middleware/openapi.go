package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/DanielPopoola/ficmart-escrow/internal/interfaces/rest"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// Operations marked with this extension receive their body unvalidated.
const rawBodyExtension = "x-raw-body"

// OpenAPIValidator rejects requests that do not match the document before
// they reach a handler. Paths the document does not describe pass through.
func OpenAPIValidator(doc *openapi3.T, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	// Host matching is left to the listener.
	routable := *doc
	routable.Servers = nil

	router, err := gorillamux.NewRouter(&routable)
	if err != nil {
		return nil, err
	}

	options := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}
	rawBody := *options
	rawBody.ExcludeRequestBody = true

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				if errors.Is(err, routers.ErrPathNotFound) || errors.Is(err, routers.ErrMethodNotAllowed) {
					next.ServeHTTP(w, r)
					return
				}
				rest.WriteError(w, application.NewInvalidInputError(err), logger)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if _, ok := route.Operation.Extensions[rawBodyExtension]; ok {
				input.Options = &rawBody
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger.Debug("request rejected by schema", "path", r.URL.Path, "error", err)
				rest.WriteError(w, application.NewInvalidInputError(requestError(err)), logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// requestError drops the schema dump kin-openapi appends to body errors.
func requestError(err error) error {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			return errors.New("parameter " + reqErr.Parameter.Name + ": " + reqErr.Reason)
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			return errors.New(schemaErr.Reason)
		}
		if reqErr.Reason != "" {
			return errors.New(reqErr.Reason)
		}
	}
	return err
}
