package remote

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped when the remote does not know the requested id.
var ErrNotFound = errors.New("todo not found on remote")

type remoteError struct {
	Op         string
	ID         string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *remoteError) Error() string {
	msg := "remote " + e.Op
	if e.ID != "" {
		msg += " " + e.ID
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *remoteError) Unwrap() error { return e.Err }

// FetchError is returned when listing todos fails.
type FetchError struct{ remoteError }

// CreateError is returned when creating a todo fails.
type CreateError struct{ remoteError }

// UpdateError is returned when updating a todo fails, including unknown ids.
type UpdateError struct{ remoteError }

// DeleteError is returned when deleting a todo fails.
type DeleteError struct{ remoteError }

// IsRemoteError reports whether err carries any of the adapter error kinds.
func IsRemoteError(err error) bool {
	var (
		fe *FetchError
		ce *CreateError
		ue *UpdateError
		de *DeleteError
	)
	return errors.As(err, &fe) || errors.As(err, &ce) || errors.As(err, &ue) || errors.As(err, &de)
}
