package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/drinks-api/internal/auth"
)

// Routes mounts the drink API on r.
//
// The id segment only matches digits, so a non-numeric id is a 404 before
// any authorization happens.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/drinks", h.ListDrinks)

	r.With(h.RequirePermission(auth.PermissionGetDrinksDetail)).
		Get("/drinks-detail", h.ListDrinksDetail)
	r.With(h.RequirePermission(auth.PermissionPostDrinks)).
		Post("/drinks", h.CreateDrink)
	r.With(h.RequirePermission(auth.PermissionPatchDrinks)).
		Patch("/drinks/{id:[0-9]+}", h.UpdateDrink)
	r.With(h.RequirePermission(auth.PermissionDeleteDrinks)).
		Delete("/drinks/{id:[0-9]+}", h.DeleteDrink)
}

// NewRouter returns a chi router serving the drink API with JSON 404 and
// 405 responses.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	h.Routes(r)
	return r
}

// NotFound writes the 404 envelope.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusNotFound, msgNotFound)
}

// MethodNotAllowed writes the 405 envelope.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
}
