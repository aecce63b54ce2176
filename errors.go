package maelstrom

import (
	"errors"
)

var (
	// ErrMalformed is wrapped by every input decoding error.
	ErrMalformed = errors.New("malformed input")

	// ErrUnassigned is returned when the node id is read before "init".
	ErrUnassigned = errors.New("node id is not assigned")

	// ErrAlreadyAssigned is returned when the node id is assigned twice.
	ErrAlreadyAssigned = errors.New("node id is already assigned")
)

// fatalError marks an error that must stop the event loop.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal marks err as fatal. Run returns fatal errors instead of logging them.
// Returns nil if err is nil.
func Fatal(err error) error {
	if err == nil || IsFatal(err) {
		return err
	}
	return &fatalError{err: err}
}

// IsFatal reports whether any error in err's chain was marked with Fatal.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}
