// Package apperr defines the error taxonomy of the query pipeline.
// Errors caused by a model mistake (malformed response, failing generated
// query) are retryable inside the translation loop; infrastructure and
// caller errors are not and propagate to the API boundary unchanged.
package apperr

import "errors"

// ConnectionError means the target database is unreachable. Fatal for the turn.
type ConnectionError struct {
	Message string
}

func (e *ConnectionError) Error() string { return e.Message }

// IntrospectionError means the schema metadata queries failed. Fatal.
type IntrospectionError struct {
	Message string
}

func (e *IntrospectionError) Error() string { return e.Message }

// ProviderCallError is a network/auth/rate-limit failure when calling the LLM.
// Surfaced to the caller, never retried by the loop.
type ProviderCallError struct {
	Message string
}

func (e *ProviderCallError) Error() string { return e.Message }

// MalformedResponseError means the model response could not be parsed. Retried.
type MalformedResponseError struct {
	Message string
}

func (e *MalformedResponseError) Error() string { return e.Message }

// DatabaseExecutionError carries the driver's error text verbatim so it can be
// fed back to the model as corrective context. Retried.
type DatabaseExecutionError struct {
	Message string
}

func (e *DatabaseExecutionError) Error() string { return e.Message }

// PlotScriptExecutionError carries the captured interpreter output verbatim.
// Single attempt, surfaced independently of the query result.
type PlotScriptExecutionError struct {
	Message string
	Output  string
}

func (e *PlotScriptExecutionError) Error() string {
	if e.Output != "" {
		return e.Message + ": " + e.Output
	}
	return e.Message
}

// BadRequest is invalid caller input (pagination bounds). Never retried and
// never fed back to the model.
type BadRequest struct {
	Message string
}

func (e *BadRequest) Error() string { return e.Message }

// Retryable reports whether the translation loop may resubmit after this error.
func Retryable(err error) bool {
	var malformed *MalformedResponseError
	var execution *DatabaseExecutionError
	return errors.As(err, &malformed) || errors.As(err, &execution)
}
