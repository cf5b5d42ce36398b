package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tonypoem-foundation/site-backend/errs"
)

const maxResponseBytes = 10 << 20

var encodeFailure = []byte(`{"error":"Internal Server Error","status":"error"}`)

// Responder writes JSON bodies and ApiErr responses, logging through the
// owning handler's logger.
type Responder struct {
	logger zerolog.Logger
}

func NewResponder(logger zerolog.Logger) Responder {
	return Responder{logger}
}

func (r Responder) WriteJSON(w http.ResponseWriter, data any) {
	r.write(w, http.StatusOK, data)
}

// WriteCreated writes data with 201 Created.
func (r Responder) WriteCreated(w http.ResponseWriter, data any) {
	r.write(w, http.StatusCreated, data)
}

// WriteError answers err. An *errs.ApiErr keeps its status, field and
// redirect; anything else becomes a generic 500.
func (r Responder) WriteError(w http.ResponseWriter, err error) {
	var apiErr *errs.ApiErr
	if !errors.As(err, &apiErr) {
		r.logger.Error().Err(err).Msg("Unexpected error")
		r.write(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Internal Server Error",
			Status:  "error",
			Details: "An unexpected error occurred",
		})
		return
	}

	event := r.logger.Warn()
	if apiErr.StatusCode >= http.StatusInternalServerError {
		event = r.logger.Error()
	}
	event.Int("status", apiErr.StatusCode).Str("field", apiErr.Field).Msg(apiErr.GetFullError())

	response := ErrorResponse{
		Error:    apiErr.Error(),
		Status:   "error",
		Field:    apiErr.Field,
		Details:  apiErr.Details,
		Redirect: apiErr.Redirect,
	}
	if apiErr.Cause != nil {
		response.Cause = apiErr.GetFullError()
	}
	r.write(w, apiErr.StatusCode, response)
}

func (r Responder) WriteValidationError(w http.ResponseWriter, field string, message string) {
	r.WriteError(w, errs.NewInvalidFieldError(field, message))
}

func (r Responder) write(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err == nil && len(body) > maxResponseBytes {
		err = fmt.Errorf("response of %d bytes exceeds %d", len(body), maxResponseBytes)
	}
	if err != nil {
		r.logger.Error().Err(err).Int("status", status).Msg("Failed to encode response")
		status, body = http.StatusInternalServerError, encodeFailure
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		r.logger.Debug().Err(err).Msg("Client went away before the response was written")
	}
}
