package remote

import "errors"

var (
	// ErrAccessDenied is returned when the TV rejects or cancels the
	// pairing handshake. Re-pairing requires the user to accept the
	// prompt on the TV screen.
	ErrAccessDenied = errors.New("remote: access denied by TV")

	// ErrShutdownTimeout is returned by Close when the receive loop
	// does not terminate within the join timeout.
	ErrShutdownTimeout = errors.New("remote: receive loop did not stop in time")

	// ErrNotRunning is returned by operations that need an established
	// session when the supervisor has not been started.
	ErrNotRunning = errors.New("remote: not running")
)

// fatalError marks an open/authenticate failure that must abort the
// session instead of entering the retry loop, such as a denied pairing.
type fatalError struct {
	err error
}

func (e fatalError) Error() string { return e.err.Error() }
func (e fatalError) Unwrap() error { return e.err }

func markFatal(err error) error {
	if err == nil {
		return nil
	}
	return fatalError{err: err}
}

func isFatal(err error) bool {
	var fe fatalError
	return errors.As(err, &fe)
}
