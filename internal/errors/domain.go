package errors

import (
	stderrors "errors"
	"strings"
)

var (
	ErrNotFound           = stderrors.New("not found")
	ErrInvalidStatus      = stderrors.New("invalid status")
	ErrInvalidTransition  = stderrors.New("status transition not allowed")
	ErrAlreadyBooked      = stderrors.New("Une réservation par séjour maximum")
	ErrInvalidCredentials = stderrors.New("invalid credentials")
)

// ValidationError is returned when a reservation request fails one or more
// eligibility rules. Message is the composed, user facing explanation.
type ValidationError struct {
	Message string
	Rules   []string
}

func (e *ValidationError) Error() string {
	if len(e.Rules) == 0 {
		return e.Message
	}
	return e.Message + " (" + strings.Join(e.Rules, ",") + ")"
}
