package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/drinks-api/internal/auth"
	"github.com/xenking/drinks-api/internal/domain/drink"
)

const (
	msgBadRequest       = "bad request"
	msgNotFound         = "resource not found"
	msgMethodNotAllowed = "method not allowed"
	msgUnprocessable    = "unprocessable"
	msgTooLarge         = "request entity too large"
	msgInternal         = "internal server error"
)

// requestError marks a body that could not be read or parsed.
type requestError struct {
	status int
	err    error
}

func (e *requestError) Error() string { return "bad request: " + e.err.Error() }

func (e *requestError) Unwrap() error { return e.err }

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeSuccess writes {"success":true,"<field>":...} with 200 OK.
func writeSuccess(w http.ResponseWriter, field string, value func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("success")
	e.Bool(true)
	e.FieldStart(field)
	value(e)
	e.ObjEnd()

	writeJSON(w, http.StatusOK, e)
}

func writeDrinks(w http.ResponseWriter, drinks []drink.Drink, long bool) {
	writeSuccess(w, "drinks", func(e *jx.Encoder) {
		e.ArrStart()
		for _, d := range drinks {
			if long {
				d.EncodeLong(e)
			} else {
				d.EncodeShort(e)
			}
		}
		e.ArrEnd()
	})
}

// WriteError writes the failure envelope
// {"success":false,"error":<status>,"message":<message>}.
func WriteError(w http.ResponseWriter, status int, message string) {
	writeFailure(w, status, message, "")
}

func writeFailure(w http.ResponseWriter, status int, message, code string) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	e.ObjStart()
	e.FieldStart("success")
	e.Bool(false)
	e.FieldStart("error")
	e.Int(status)
	e.FieldStart("message")
	e.Str(message)
	if code != "" {
		e.FieldStart("code")
		e.Str(code)
	}
	e.ObjEnd()

	writeJSON(w, status, e)
}

// handleError maps err to a status code and writes the failure envelope.
// Unrecognized errors are logged and reported as 500.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		authErr  *auth.Error
		validErr *drink.ValidationError
		reqErr   *requestError
	)
	switch {
	case errors.As(err, &authErr):
		w.Header().Set("WWW-Authenticate", `Bearer error="`+authErr.Code+`"`)
		writeFailure(w, http.StatusUnauthorized, authErr.Description, authErr.Code)
	case errors.As(err, &validErr):
		WriteError(w, http.StatusUnprocessableEntity, msgUnprocessable+": "+validErr.Error())
	case errors.Is(err, drink.ErrDuplicateTitle):
		WriteError(w, http.StatusUnprocessableEntity, msgUnprocessable+": "+drink.ErrDuplicateTitle.Error())
	case errors.Is(err, drink.ErrNotFound):
		WriteError(w, http.StatusNotFound, msgNotFound)
	case errors.As(err, &reqErr) && reqErr.status == http.StatusRequestEntityTooLarge:
		WriteError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
	case errors.As(err, &reqErr):
		WriteError(w, http.StatusBadRequest, msgBadRequest)
	default:
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		WriteError(w, http.StatusInternalServerError, msgInternal)
	}
}
