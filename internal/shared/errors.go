package shared

import (
	"errors"
	"fmt"
)

// RequestError is used when we want a specific error message and StatusCode.
// Routers return the message inside Err to the user verbatim, so anything that
// should stay server side belongs in a wrapped error that only reaches the logs.
type RequestError struct {
	StatusCode int
	Err        error
}

func (r *RequestError) Error() string {
	return fmt.Sprintf("status %d: err %v", r.StatusCode, r.Err)
}

func (r *RequestError) Unwrap() error {
	return r.Err
}

var (
	ErrMissingAuth   = &RequestError{Err: errors.New("missing authorization header"), StatusCode: 401}
	ErrInvalidFormat = &RequestError{Err: errors.New("invalid authentication format"), StatusCode: 401}
	ErrInvalidKeyLen = &RequestError{Err: errors.New("invalid API key length"), StatusCode: 401}

	ErrInternalServerError = &RequestError{Err: errors.New("internal server error"), StatusCode: 500}

	ErrColdStart              = &MetricsError{Msg: "model cold start", Code: "model_cold_start"}
	ErrFailedModelReq         = &MetricsError{Msg: "failed to send http request to model", Code: "model_http_err"}
	ErrFailedModelReqFromCode = &MetricsError{Msg: "model responded with non-200", Code: "model_http_status_err"}
	ErrFailedReadingResponse  = &MetricsError{Msg: "failed to read model response", Code: "model_response_err"}
	ErrEmptyModelOutput       = &MetricsError{Msg: "model returned no generated text", Code: "model_empty_output"}
	ErrModelContext           = &MetricsError{Msg: "model context canceled", Code: "model_context_err"}
	ErrModelPanic             = &MetricsError{Msg: "model invocation panicked", Code: "model_panic"}
	ErrModelUnknown           = &MetricsError{Msg: "unknown model failure", Code: "model_unknown_err"}
	ErrModelNotLoaded         = &MetricsError{Msg: "model not loaded", Code: "model_not_loaded"}
	ErrSlotTimeout            = &MetricsError{Msg: "timed out waiting for a generation slot", Code: "slot_timeout"}
)

type MetricsError struct {
	Msg  string
	Code string
}

func (m *MetricsError) Error() string {
	return m.String()
}

func (m *MetricsError) String() string {
	return m.Msg
}
