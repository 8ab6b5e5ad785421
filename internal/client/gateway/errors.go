package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNetwork Kind = "network"
	KindTimeout Kind = "timeout"
	KindHTTP    Kind = "http"
	KindAuth    Kind = "auth"
	KindDecode  Kind = "decode"
)

const (
	msgNetwork = "Network error. Please check your connection."
	msgTimeout = "Request timed out. Please try again."
	msgDecode  = "Unexpected response from server"
)

// Error describes why a call did not succeed. Status is set for KindHTTP and
// KindAuth.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s error (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Transient reports whether retrying the same request may succeed.
func (e *Error) Transient() bool {
	return e != nil && (e.Kind == KindNetwork || e.Kind == KindTimeout)
}

// IsKind reports whether err is a gateway *Error of kind k.
func IsKind(err error, k Kind) bool {
	var gerr *Error
	return errors.As(err, &gerr) && gerr.Kind == k
}

func statusKind(status int) Kind {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return KindAuth
	}
	return KindHTTP
}
