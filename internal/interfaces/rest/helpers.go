package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/DanielPopoola/ficmart-escrow/internal/application"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const maxBodyBytes = 1 << 20

// DecodeJSON reads a JSON request body into dst. An empty body leaves dst
// untouched when optional is set.
func DecodeJSON(r *http.Request, dst any, optional bool) error {
	body, err := ReadBody(r)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		if optional {
			return nil
		}
		return application.NewInvalidInputError(errors.New("request body is required"))
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return application.NewInvalidInputError(fmt.Errorf("malformed JSON: %w", err))
	}
	return nil
}

// ReadBody returns the raw request body, capped at 1 MiB.
func ReadBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, application.NewInvalidInputError(fmt.Errorf("read body: %w", err))
	}
	if len(body) > maxBodyBytes {
		return nil, application.NewInvalidInputError(errors.New("request body too large"))
	}
	return body, nil
}

// PathUUID binds a {name} path segment that must hold a UUID.
func PathUUID(r *http.Request, name string) (string, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, r.PathValue(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", application.NewInvalidInputError(fmt.Errorf("invalid format for parameter %s: %w", name, err))
	}
	return id.String(), nil
}
