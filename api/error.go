// Package api holds the wire types shared by the HTTP server and its clients.
package api

import (
	"fmt"
	"strings"
)

// ReasonInvalidRequest marks a request body that failed validation.
const ReasonInvalidRequest = "invalid_request"

// Error represents a universal error type between the services.
type Error struct {
	Reason  string        `json:"reason"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details"`
}

type ErrorDetail struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

func (e Error) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("%s: %s", e.Reason, e.Message)
	}

	msgs := make([]string, len(e.Details))
	for i, d := range e.Details {
		msgs[i] = d.Error
	}
	return fmt.Sprintf("%s: %s: %s", e.Reason, e.Message, strings.Join(msgs, ", "))
}

// Invalid returns the error for a request with the given problems, or nil
// when there are none.
func Invalid(details []ErrorDetail) error {
	if len(details) == 0 {
		return nil
	}

	return Error{
		Reason:  ReasonInvalidRequest,
		Message: "request was invalid",
		Details: details,
	}
}
