package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/gateway"
	"github.com/dmitrijs2005/holyculture/internal/client/models"
)

// ErrorKind classifies a failed AuthResult.
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindRateLimit  ErrorKind = "rate_limit"
	KindNetwork    ErrorKind = "network"
	KindTimeout    ErrorKind = "timeout"
	KindAuth       ErrorKind = "auth"
	KindServer     ErrorKind = "server"
	KindStorage    ErrorKind = "storage"
	KindBiometric  ErrorKind = "biometric"
)

var (
	ErrRefreshFailed    = errors.New("token refresh failed")
	ErrSessionReplaced  = errors.New("session changed during refresh")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError is a local, field-scoped input error. It never reaches the
// network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RateLimitError reports a locally throttled request.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string { return e.Message }

// StorageError wraps a credential store failure.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// AuthResult is the outcome of a user-facing operation. Failures are data:
// Error holds the message to show, Kind the category and Err the typed cause.
// Notice carries extra information on success, such as a pending email
// confirmation.
type AuthResult struct {
	Success bool
	User    *models.User
	Error   string
	Notice  string
	Kind    ErrorKind
	Err     error
}

func succeeded(u *models.User) AuthResult {
	return AuthResult{Success: true, User: u}
}

func failed(kind ErrorKind, err error, msg string) AuthResult {
	return AuthResult{Kind: kind, Err: err, Error: msg}
}

func invalid(field, msg string) AuthResult {
	return failed(KindValidation, &ValidationError{Field: field, Message: msg}, msg)
}

func fromGateway(e *gateway.Error) AuthResult {
	if e == nil {
		return failed(KindServer, nil, "An error occurred")
	}
	kind := KindServer
	switch e.Kind {
	case gateway.KindNetwork:
		kind = KindNetwork
	case gateway.KindTimeout:
		kind = KindTimeout
	case gateway.KindAuth:
		kind = KindAuth
	}
	return failed(kind, e, e.Message)
}
