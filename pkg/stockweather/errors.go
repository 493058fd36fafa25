package stockweather

import (
	"errors"
	"fmt"
)

// Failure classes reported by the client. Wrap checks go through errors.Is.
var (
	ErrUnreachable = errors.New("server unreachable")
	ErrNotFound    = errors.New("not found")
	ErrServer      = errors.New("server error")
)

// Error is a classified failure from the stockweather API.
type Error struct {
	Kind   error  // one of ErrUnreachable, ErrNotFound, ErrServer
	Status int    // HTTP status, 0 for transport failures
	Detail string // server-provided message when available
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return "stockweather: " + e.Kind.Error()
	}
	return fmt.Sprintf("stockweather: %s: %s", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error { return e.Kind }

// Message returns a short user-facing description suitable for an error
// banner.
func (e *Error) Message() string {
	switch e.Kind {
	case ErrUnreachable:
		return "Cannot reach the forecast server"
	case ErrNotFound:
		if e.Detail != "" {
			return e.Detail
		}
		return "Not found"
	case ErrServer:
		return "The forecast server hit an internal error"
	default:
		return e.Error()
	}
}

func unreachable(err error) *Error {
	return &Error{Kind: ErrUnreachable, Detail: err.Error()}
}

func fromStatus(status int, body []byte) *Error {
	e := &Error{Kind: ErrServer, Status: status, Detail: errorDetail(body)}
	if status == 404 {
		e.Kind = ErrNotFound
	}
	return e
}
