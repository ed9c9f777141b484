package health

import (
	"errors"
	"strings"
)

// ErrUnready indicates that the service should not receive traffic.
var ErrUnready = errors.New("service unready")

// UnreadyError lists why the readiness probe failed.
type UnreadyError struct {
	// Failed holds the names of the failed critical checks.
	Failed []string

	// Draining is set while the service shuts down.
	Draining bool
}

// Error implements the error interface.
func (e *UnreadyError) Error() string {
	if e.Draining {
		return "service unready: draining"
	}
	return "service unready: failed checks: " + strings.Join(e.Failed, ", ")
}

// Is checks if the error matches the target.
func (e *UnreadyError) Is(target error) bool {
	if target == ErrUnready {
		return true
	}
	_, ok := target.(*UnreadyError)
	return ok
}
