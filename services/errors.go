package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced in the "error" field of the chat contract.
const (
	CodeRateLimitExceeded     = "RateLimitExceeded"
	CodeMalformedPayload      = "MalformedPayload"
	CodeInvalidRequest        = "InvalidRequest"
	CodeMissingCredential     = "MissingCredential"
	CodeUpstreamAuthError     = "UpstreamAuthError"
	CodeUpstreamQuotaExceeded = "UpstreamQuotaExceeded"
	CodeUpstreamUnavailable   = "UpstreamUnavailable"
	CodeEmptyGeneration       = "EmptyGeneration"
	CodeInternalError         = "InternalError"
)

// PipelineError is a classified failure raised explicitly by a pipeline stage. It
// carries everything the transport needs: an HTTP status, a machine-readable code,
// and an in-character reply that is safe to show the visitor.
type PipelineError struct {
	Code   string
	Status int
	Reply  string
	Reason string
	Err    error
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Reason)
	}
	return e.Code
}

func (e *PipelineError) Unwrap() error { return e.Err }

// Detail is the value written to the wire contract's "error" field.
func (e *PipelineError) Detail() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Reason)
	}
	return e.Code
}

// RateLimited is the rejection produced when a client exceeds its window quota.
func RateLimited() *PipelineError {
	return &PipelineError{
		Code:   CodeRateLimitExceeded,
		Status: http.StatusTooManyRequests,
		Reply:  "You're asking questions quite quickly! Please wait a moment before trying again.",
	}
}

func malformedPayload(err error) *PipelineError {
	return &PipelineError{
		Code:   CodeMalformedPayload,
		Status: http.StatusBadRequest,
		Reply:  "I couldn't understand your message. Please try again.",
		Err:    err,
	}
}

func invalidRequest(reason string) *PipelineError {
	return &PipelineError{
		Code:   CodeInvalidRequest,
		Status: http.StatusBadRequest,
		Reply:  "Please provide a valid message to continue our conversation.",
		Reason: reason,
	}
}

var errMissingCredential = &PipelineError{
	Code:   CodeMissingCredential,
	Status: http.StatusInternalServerError,
	Reply:  "I'm experiencing a configuration issue. Please try again later.",
}

func upstreamAuthError(err error) *PipelineError {
	return &PipelineError{
		Code:   CodeUpstreamAuthError,
		Status: http.StatusInternalServerError,
		Reply:  "I'm having trouble with my configuration. Please try again in a moment.",
		Err:    err,
	}
}

func upstreamQuotaExceeded(err error) *PipelineError {
	return &PipelineError{
		Code:   CodeUpstreamQuotaExceeded,
		Status: http.StatusServiceUnavailable,
		Reply:  "I'm getting a lot of questions right now! Please try again in a few moments.",
		Err:    err,
	}
}

func upstreamUnavailable(err error) *PipelineError {
	return &PipelineError{
		Code:   CodeUpstreamUnavailable,
		Status: http.StatusServiceUnavailable,
		Reply:  "I'm having trouble connecting right now. Please try again!",
		Err:    err,
	}
}

var errEmptyGeneration = &PipelineError{
	Code:   CodeEmptyGeneration,
	Status: http.StatusInternalServerError,
	Reply:  "I'm experiencing some technical difficulties. Please try asking your question again!",
}

func internalError(err error) *PipelineError {
	return &PipelineError{
		Code:   CodeInternalError,
		Status: http.StatusInternalServerError,
		Reply:  "I'm experiencing some technical difficulties. Please try asking your question again!",
		Err:    err,
	}
}

// classifyUpstreamStatus maps a non-200 provider status onto the error taxonomy.
func classifyUpstreamStatus(status int, err error) *PipelineError {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return upstreamAuthError(err)
	case status == http.StatusTooManyRequests:
		return upstreamQuotaExceeded(err)
	case status >= http.StatusInternalServerError:
		return upstreamUnavailable(err)
	default:
		return internalError(err)
	}
}

// Classify maps any pipeline failure to its (status, code, reply) tuple. Errors that
// were not raised as a PipelineError come back as InternalError, except upstream
// deadline expiry, which counts as the upstream being unavailable.
func Classify(err error) *PipelineError {
	var perr *PipelineError
	if errors.As(err, &perr) {
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return upstreamUnavailable(err)
	}
	return internalError(err)
}
