package recognize

import (
	"github.com/pkg/errors"

	"github.com/ddvk/inkcalc/hwr"
	"github.com/ddvk/inkcalc/vision"
)

var (
	// ErrConfigurationMissing means a backend has no credentials.
	ErrConfigurationMissing = errors.New("recognize: backend not configured")
	// ErrUnauthorized means a backend rejected its credentials. It is
	// sticky for the rest of the session.
	ErrUnauthorized = errors.New("recognize: unauthorized")
	// ErrTransient is a failed call worth retrying on the next cluster.
	ErrTransient = errors.New("recognize: transient failure")
	// ErrUnrecognizable means the backend answered without a usable value.
	ErrUnrecognizable = errors.New("recognize: nothing recognizable")
)

// backendError tags a client error with its taxonomy kind while keeping the
// original cause reachable.
type backendError struct {
	kind error
	err  error
}

func (e *backendError) Error() string { return e.kind.Error() + ": " + e.err.Error() }
func (e *backendError) Unwrap() error { return e.err }
func (e *backendError) Is(target error) bool {
	return target == e.kind
}

// classify maps client errors onto the recognize taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var kind error
	switch {
	case errors.Is(err, ErrConfigurationMissing), errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrTransient), errors.Is(err, ErrUnrecognizable):
		return err
	case errors.Is(err, hwr.ErrNotConfigured), errors.Is(err, vision.ErrNotConfigured):
		kind = ErrConfigurationMissing
	case errors.Is(err, hwr.ErrUnauthorized), errors.Is(err, vision.ErrUnauthorized):
		kind = ErrUnauthorized
	case errors.Is(err, hwr.NoContent):
		kind = ErrUnrecognizable
	default:
		kind = ErrTransient
	}
	return &backendError{kind: kind, err: err}
}
