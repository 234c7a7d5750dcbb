package newsletter

import "errors"

var (
	// ErrSubmitInFlight is returned when a submit arrives while another is still running.
	ErrSubmitInFlight = errors.New("subscription already in progress")
	// ErrAlreadySubscribed is returned once the flow has succeeded.
	ErrAlreadySubscribed = errors.New("already subscribed")
	// ErrSubscribeFailed wraps the subscriber's error once the call has failed.
	ErrSubscribeFailed = errors.New("subscription failed")
)

// ValidationError is returned when the email fails the format check. It is
// meant to be shown to the shopper next to the form.
type ValidationError struct {
	Email   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
