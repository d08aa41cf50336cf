package exam

import "errors"

// Domain errors. All are recoverable conditions signaled back to the caller;
// nothing in this package panics on user input.
var (
	// ErrSessionClosed is returned when an answer is recorded after submission.
	ErrSessionClosed = errors.New("exam session already submitted")
	// ErrInvalidOption is returned when the option key is not part of the
	// question's option set.
	ErrInvalidOption = errors.New("option key not in question options")
	// ErrUnknownQuestion is returned when the question does not belong to
	// this session's pool.
	ErrUnknownQuestion = errors.New("question not part of this exam")
)
