// Package handler exposes the drink service over HTTP.
package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/drinks-api/internal/auth"
	"github.com/xenking/drinks-api/internal/domain/drink"
)

// Authorizer authenticates a request and checks it grants permission.
// *auth.Authenticator implements it.
type Authorizer interface {
	Authorize(r *http.Request, permission string) (*auth.Claims, error)
}

// Handler serves the drink routes, delegating to the drink Service.
type Handler struct {
	drinks    *drink.Service
	auth      Authorizer
	mutations metric.Int64Counter
}

// NewHandler constructs a Handler. meter records drink mutations.
func NewHandler(drinks *drink.Service, authz Authorizer, meter metric.Meter) (*Handler, error) {
	mutations, err := meter.Int64Counter("drinks.mutations",
		metric.WithDescription("Number of successful drink create, update and delete operations"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create mutations counter")
	}
	return &Handler{
		drinks:    drinks,
		auth:      authz,
		mutations: mutations,
	}, nil
}
