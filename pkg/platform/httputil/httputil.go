// Package httputil writes JSON replies and maps domain errors onto HTTP.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "certifier/pkg/domain-errors"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

type httpMapping struct {
	status int
	code   string
}

var internalMapping = httpMapping{http.StatusInternalServerError, "internal_error"}

var mappings = map[dErrors.Code]httpMapping{
	dErrors.CodeNotFound:           {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:         {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:       {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:         {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvariantViolation: {http.StatusBadRequest, "validation_error"},
	dErrors.CodeConflict:           {http.StatusConflict, "conflict"},
	dErrors.CodeUnauthorized:       {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeTimeout:            {http.StatusGatewayTimeout, "upstream_timeout"},
	dErrors.CodeUnavailable:        {http.StatusBadGateway, "upstream_unavailable"},
	dErrors.CodeInternal:           internalMapping,
}

func mappingFor(code dErrors.Code) httpMapping {
	if m, ok := mappings[code]; ok {
		return m
	}
	return internalMapping
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; an encoding failure cannot change the status.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteError renders err. Domain errors keep their message except internal
// ones, whose messages can carry dependency details and stay in the logs.
func WriteError(w http.ResponseWriter, err error) {
	var domainErr *dErrors.Error
	if !errors.As(err, &domainErr) {
		WriteJSON(w, internalMapping.status, ErrorResponse{Error: internalMapping.code})
		return
	}

	m := mappingFor(domainErr.Code)
	resp := ErrorResponse{Error: m.code}
	if m != internalMapping {
		resp.Description = domainErr.Message
	}
	WriteJSON(w, m.status, resp)
}
