package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/s0up4200/bdshelf/catalog"
	"github.com/s0up4200/bdshelf/filter"
	"github.com/s0up4200/bdshelf/googlebooks"
	"github.com/s0up4200/bdshelf/governor"
)

// maxBodySize caps request bodies
const maxBodySize = 1 << 20

// statusClientClosedRequest is reported when the client went away before the
// reply was ready.
const statusClientClosedRequest = 499

// Error codes
const (
	CodeBadRequest  = "BAD_REQUEST"
	CodeValidation  = "VALIDATION_ERROR"
	CodeNotFound    = "NOT_FOUND"
	CodeConflict    = "CONFLICT"
	CodeProvider    = "PROVIDER_ERROR"
	CodeUnavailable = "PROVIDER_UNAVAILABLE"
	CodeTimeout     = "TIMEOUT"
	CodeCanceled    = "CLIENT_CLOSED_REQUEST"
	CodeInternal    = "INTERNAL_ERROR"
)

// response is the envelope of every API reply
type response struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, logger zerolog.Logger, status int, data any) {
	writeEnvelope(w, logger, status, response{Status: "success", Data: data})
}

func respondError(w http.ResponseWriter, logger zerolog.Logger, status int, code, message string) {
	writeEnvelope(w, logger, status, response{
		Status: "error",
		Error:  &apiError{Code: code, Message: message},
	})
}

func writeEnvelope(w http.ResponseWriter, logger zerolog.Logger, status int, body response) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondErr maps a domain error onto a status code and error code.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	switch {
	case status == statusClientClosedRequest:
		s.logger.Debug().Str("path", r.URL.Path).Msg("Client closed request")
	case status >= http.StatusInternalServerError:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Str("code", code).Msg("API error")
	}
	respondError(w, s.logger, status, code, err.Error())
}

func classify(err error) (int, string) {
	var (
		providerErr   *googlebooks.ProviderError
		validationErr *catalog.ValidationError
	)

	switch {
	case errors.As(err, &providerErr):
		return http.StatusBadGateway, CodeProvider
	case governor.IsRetryExhausted(err), errors.Is(err, governor.ErrClosed):
		return http.StatusServiceUnavailable, CodeUnavailable
	case errors.As(err, &validationErr), filter.IsCompilationError(err):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, catalog.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, catalog.ErrDuplicate):
		return http.StatusConflict, CodeConflict
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
