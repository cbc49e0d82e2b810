// Package facade adapts the manage_task/manage_subtask/manage_project/
// manage_agent/manage_context RPC surfaces (spec §6) onto the three
// engines (internal/kernel, internal/tasks, internal/context). Per spec
// §2 ("Application facades... are thin — business logic lives in the
// three engines"), every method here does argument shaping and response
// formatting only: validation, state machines, scoring, and caching all
// live upstream.
package facade

import "github.com/devmesh-org/taskmesh/internal/apperrors"

// Response is the structured envelope spec §6 requires every operation to
// return: a success flag, a payload, or a structured error — never both a
// payload and an error.
type Response struct {
	Success bool          `json:"success"`
	Data    interface{}   `json:"data,omitempty"`
	Error   *ErrorPayload `json:"error,omitempty"`
}

// ErrorPayload is the wire shape of an apperrors.Error (spec §6's
// structured error code list, §7).
type ErrorPayload struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	Field       string `json:"field,omitempty"`
	Entity      string `json:"entity,omitempty"`
	Recoverable bool   `json:"recoverable,omitempty"`
}

// ok wraps a successful payload.
func ok(data interface{}) *Response {
	return &Response{Success: true, Data: data}
}

// fail translates any error into the structured envelope. Errors not
// already typed as *apperrors.Error are programming errors or
// infrastructure failures that escaped the engines uncategorised; they
// surface as INTERNAL_ERROR per spec §7 rather than leaking a bare Go
// error string as if it were a designed response.
func fail(err error) *Response {
	ae, ok := err.(*apperrors.Error)
	if !ok {
		ae = apperrors.Internal(false, err, "%v", err)
	}
	return &Response{
		Success: false,
		Error: &ErrorPayload{
			Code:        string(ae.Code),
			Message:     ae.Message,
			Field:       ae.Field,
			Entity:      ae.Entity,
			Recoverable: ae.Recoverable,
		},
	}
}
