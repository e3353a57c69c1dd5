package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/volley-sync/internal/usecase"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	apiVersion  = "2.0"
	errorDomain = "volley-sync"
)

// envelope follows the Google JSON style guide: data on success, error otherwise.
type envelope struct {
	APIVersion string     `json:"apiVersion"`
	Data       any        `json:"data,omitempty"`
	Error      *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Status  string      `json:"status"`
	Errors  []errorItem `json:"errors,omitempty"`
}

type errorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type errorClass struct {
	code   int
	reason string
	status string
}

var internalClass = errorClass{code: http.StatusInternalServerError, reason: "internalError", status: "INTERNAL"}

// errorClasses is checked in order; the first sentinel that matches wins.
var errorClasses = []struct {
	targets []error
	class   errorClass
}{
	{[]error{usecase.ErrInvalidInput, usecase.ErrValidation}, errorClass{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{[]error{usecase.ErrNotFound}, errorClass{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{[]error{usecase.ErrUnauthorized}, errorClass{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{[]error{usecase.ErrRunInProgress, usecase.ErrConflict}, errorClass{http.StatusConflict, "conflict", "ABORTED"}},
	{[]error{usecase.ErrDependencyUnavailable, usecase.ErrTransport}, errorClass{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"}},
}

func classify(err error) errorClass {
	for _, entry := range errorClasses {
		for _, target := range entry.targets {
			if errors.Is(err, target) {
				return entry.class
			}
		}
	}
	return internalClass
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{APIVersion: apiVersion, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	class := classify(err)
	msg := err.Error()
	if class == internalClass {
		// Store and driver errors stay in the logs.
		msg = "internal server error"
		span := trace.SpanFromContext(ctx)
		span.RecordError(err)
		span.SetStatus(codes.Error, class.reason)
	}
	writeClass(w, class, msg)
}

func writeClass(w http.ResponseWriter, class errorClass, msg string) {
	writeJSON(w, class.code, envelope{
		APIVersion: apiVersion,
		Error: &errorBody{
			Code:    class.code,
			Message: msg,
			Status:  class.status,
			Errors:  []errorItem{{Domain: errorDomain, Reason: class.reason, Message: msg}},
		},
	})
}
