package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/drinks-api/internal/domain/drink"
)

const maxBodyBytes = 1 << 20

// ListDrinks handles GET /drinks. It is public and returns the short form.
func (h *Handler) ListDrinks(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.drinks.List(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeDrinks(w, drinks, false)
}

// ListDrinksDetail handles GET /drinks-detail and returns the long form.
func (h *Handler) ListDrinksDetail(w http.ResponseWriter, r *http.Request) {
	drinks, err := h.drinks.List(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	writeDrinks(w, drinks, true)
}

// CreateDrink handles POST /drinks.
func (h *Handler) CreateDrink(w http.ResponseWriter, r *http.Request) {
	in, err := decodeInput(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	d, err := h.drinks.Create(r.Context(), in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.countMutation(r, "create")
	writeDrinks(w, []drink.Drink{*d}, true)
}

// UpdateDrink handles PATCH /drinks/{id}. Fields missing from the body keep
// their stored values.
func (h *Handler) UpdateDrink(w http.ResponseWriter, r *http.Request) {
	id, ok := drinkID(r)
	if !ok {
		NotFound(w, r)
		return
	}
	in, err := decodeInput(w, r)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	d, err := h.drinks.Update(r.Context(), id, in)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.countMutation(r, "update")
	writeDrinks(w, []drink.Drink{*d}, true)
}

// DeleteDrink handles DELETE /drinks/{id} and returns the deleted id.
func (h *Handler) DeleteDrink(w http.ResponseWriter, r *http.Request) {
	id, ok := drinkID(r)
	if !ok {
		NotFound(w, r)
		return
	}

	if err := h.drinks.Delete(r.Context(), id); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.countMutation(r, "delete")
	writeSuccess(w, "delete", func(e *jx.Encoder) {
		e.Int64(id)
	})
}

func (h *Handler) countMutation(r *http.Request, op string) {
	h.mutations.Add(r.Context(), 1, metric.WithAttributes(attribute.String("op", op)))
}

// drinkID parses the {id} URL parameter. Values that overflow int64 are
// treated as unknown ids.
func drinkID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (drink.Input, error) {
	var in drink.Input

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		return in, &requestError{status: status, err: errors.Wrap(err, "read body")}
	}
	if err := in.Decode(jx.DecodeBytes(body)); err != nil {
		var validErr *drink.ValidationError
		if errors.As(err, &validErr) {
			return in, validErr
		}
		return in, &requestError{status: http.StatusBadRequest, err: errors.Wrap(err, "decode body")}
	}
	return in, nil
}
