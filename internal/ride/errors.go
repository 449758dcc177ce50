package ride

import (
	"errors"
	"fmt"

	"rideshare-backend/internal/model"
)

var (
	ErrNotFound     = errors.New("ride not found")
	ErrInvalidState = errors.New("invalid ride state")
	ErrForbidden    = errors.New("operation not permitted for this user")
	ErrConflict     = errors.New("ride changed concurrently")
	ErrStoreFailure = errors.New("store failure")
	ErrInvalidInput = errors.New("invalid ride details")
)

// TransitionError reports why a lifecycle operation on a ride failed.
// It matches its sentinel and, when present, the underlying cause with errors.Is.
type TransitionError struct {
	Op     Operation
	RideID string
	// Status is the ride status observed when the operation failed, if any.
	Status model.RideStatus
	Err    error

	cause error
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s ride: %v", e.Op, e.Err)
	if e.RideID != "" {
		msg = fmt.Sprintf("%s ride %s: %v", e.Op, e.RideID, e.Err)
	}
	if e.Status != "" {
		msg += fmt.Sprintf(" (status %s)", e.Status)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *TransitionError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.cause}
}

func newError(op Operation, ride *model.Ride, rideID string, sentinel, cause error) *TransitionError {
	e := &TransitionError{Op: op, RideID: rideID, Err: sentinel, cause: cause}
	if ride != nil {
		e.Status = ride.Status
	}
	return e
}
