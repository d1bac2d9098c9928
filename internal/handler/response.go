package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"cinelight-api/internal/pagination"
	"cinelight-api/internal/service"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type apiResponse struct {
	Status    bool             `json:"status"`
	Message   string           `json:"message"`
	Data      any              `json:"data,omitempty"`
	Meta      *pagination.Meta `json:"meta,omitempty"`
	ErrorCode int              `json:"errorCode,omitempty"`
	Errors    []fieldError     `json:"errors,omitempty"`
}

const (
	msgInvalidCredentials = "Invalid credentials"
	msgAccountDisabled    = "Your account has been deactivated. Please contact administrator."
	msgInternal           = "Internal server error"
)

func writeRawJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	writeRawJSON(w, status, apiResponse{Status: true, Message: message, Data: data})
}

func writePage(w http.ResponseWriter, message string, data any, meta pagination.Meta) {
	writeRawJSON(w, http.StatusOK, apiResponse{Status: true, Message: message, Data: data, Meta: &meta})
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeRawJSON(w, status, apiResponse{Status: false, Message: message, ErrorCode: status})
}

func writeValidation(w http.ResponseWriter, fields []fieldError) {
	writeRawJSON(w, http.StatusBadRequest, apiResponse{
		Status:    false,
		Message:   "Validation failed",
		ErrorCode: http.StatusBadRequest,
		Errors:    fields,
	})
}

// Errors translates service errors into responses. The zero value logs nothing
// and exposes internal error messages.
type Errors struct {
	Logger *slog.Logger
	// HideInternal replaces the message of unexpected failures with a generic one.
	HideInternal bool
}

// Write maps err to a response. A NotFoundError for primary (the resource the
// route addresses by id) is a 404; any other missing reference is a 400.
func (e Errors) Write(w http.ResponseWriter, r *http.Request, err error, primary string) {
	var (
		verr service.ValidationError
		nf   service.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		fields := make([]fieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, fieldError{Field: f.Field, Message: f.Message})
		}
		writeValidation(w, fields)
	case errors.As(err, &nf):
		status := http.StatusBadRequest
		if primary != "" && nf.Resource == primary {
			status = http.StatusNotFound
		}
		writeError(w, status, nf.Error())
	case errors.Is(err, service.ErrInUse):
		writeError(w, http.StatusBadRequest, "Resource is still in use and cannot be deleted")
	case errors.Is(err, service.ErrDuplicate):
		writeError(w, http.StatusBadRequest, "Resource already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
	case errors.Is(err, service.ErrAccountDisabled):
		writeError(w, http.StatusUnauthorized, msgAccountDisabled)
	default:
		if e.Logger != nil {
			e.Logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		}
		msg := err.Error()
		if e.HideInternal {
			msg = msgInternal
		}
		writeError(w, http.StatusInternalServerError, msg)
	}
}
