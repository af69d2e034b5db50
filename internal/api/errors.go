package api

import (
	"errors"
	"fmt"
)

// Kind classifies every failure the client can return. The set is closed:
// callers switching on Kind should handle all five values.
type Kind int

const (
	// KindInvalidRequest means the request could not be built (bad endpoint,
	// unencodable body).
	KindInvalidRequest Kind = iota + 1
	// KindInvalidResponse means the round trip did not produce a usable HTTP
	// response: connection refused, timeouts, dropped connections, unreadable
	// bodies and cancelled contexts all land here.
	KindInvalidResponse
	// KindUnauthorized means local credentials are missing or the server
	// answered 401. The only recovery is logging in again.
	KindUnauthorized
	// KindServer means the server answered with a non-200 status other than 401.
	KindServer
	// KindDecoding means a 200 response did not match the expected payload shape.
	KindDecoding
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindInvalidResponse:
		return "invalid response"
	case KindUnauthorized:
		return "unauthorized"
	case KindServer:
		return "server error"
	case KindDecoding:
		return "decoding error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrInvalidRequest  = &Error{Kind: KindInvalidRequest}
	ErrInvalidResponse = &Error{Kind: KindInvalidResponse}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrServer          = &Error{Kind: KindServer}
	ErrDecoding        = &Error{Kind: KindDecoding}
)

// ErrSessionNotSaved is returned by Login when the server accepted the
// credentials but the credential store could not hold the new session. It is
// not an *Error: the exchange itself succeeded. The store is left as it was
// before the call.
var ErrSessionNotSaved = errors.New("session not saved")

// Error is the single error type returned by Client operations.
type Error struct {
	Kind Kind
	// Op names the operation that failed ("login", "shelves", "shelf", "book").
	Op string
	// StatusCode is set for KindServer and for a server-side KindUnauthorized.
	StatusCode int
	// Err is the underlying cause, when there is one.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Kind == KindServer && e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind. A target with a
// non-zero StatusCode also has to match the code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// KindOf extracts the Kind from err. ok is false when err did not come from
// this package.
func KindOf(err error) (kind Kind, ok bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
