package dto

import "time"

// ErrorResponse is the JSON body every HTTP error returns.
//
// Fields:
//   - Message: human readable summary.
//   - ErrorDetails: the underlying error text, when there is one.
//   - Timestamp: when the error was produced.
type ErrorResponse struct {
	Message      string    `json:"message" example:"failed to list trades"`
	ErrorDetails string    `json:"error,omitempty" example:"connection refused"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewErrorResponse builds an ErrorResponse stamped with the current time.
// err may be nil.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{Message: message, Timestamp: time.Now()}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}

// Error makes ErrorResponse usable as an error value.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}
