package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hotel_api/internal/domain"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeError maps domain errors to status codes. Anything unrecognised is
// logged and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		nf   *domain.NotFoundError
		lim  *domain.UploadLimitError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, verr)
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Hotel not found"})
	case errors.As(err, &lim):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: lim.Error()})
	default:
		log.Error().Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "An unexpected error occurred"})
	}
}

var errInvalidBody = &domain.ValidationError{Message: "Invalid request body"}

// decodeBody reads one JSON value into dst. A value of the wrong type for a
// known field is reported as an invalid field.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return &domain.ValidationError{Message: "Invalid fields", InvalidFields: []string{typeErr.Field}}
		}
		return errInvalidBody
	}
	return nil
}
