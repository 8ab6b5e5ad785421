// Package biometric abstracts the device's user-presence check. The
// credential store consults an Authenticator before releasing a gated secret,
// and the session manager uses it to decide whether biometric sign-in can be
// offered at all.
package biometric

import (
	"context"
	"errors"
)

// Type names the kind of check the device performs.
type Type string

const (
	TypeFaceID      Type = "FaceID"
	TypeTouchID     Type = "TouchID"
	TypeFingerprint Type = "Fingerprint"
	TypePasscode    Type = "Passcode"
	TypeNone        Type = "None"
)

var (
	ErrUnavailable = errors.New("biometric authentication unavailable")
	ErrCancelled   = errors.New("biometric authentication cancelled")
)

// Prompt is what the user sees while the check runs.
type Prompt struct {
	Message       string
	CancelLabel   string
	FallbackLabel string
	// DisableDeviceFallback forbids falling back to the device passcode.
	DisableDeviceFallback bool
}

// Authenticator performs user-presence checks.
//
// EnrollmentID identifies the current biometric enrollment. It must change
// whenever the set of enrolled biometrics changes, which lets callers
// invalidate secrets stored under an older enrollment.
type Authenticator interface {
	Type(ctx context.Context) (Type, error)
	Authenticate(ctx context.Context, prompt Prompt) error
	EnrollmentID(ctx context.Context) (string, error)
}

// Available reports whether a has any usable check.
func Available(ctx context.Context, a Authenticator) bool {
	if a == nil {
		return false
	}
	t, err := a.Type(ctx)
	return err == nil && t != TypeNone
}

// Unsupported is the Authenticator for devices without any check.
type Unsupported struct{}

func (Unsupported) Type(context.Context) (Type, error) { return TypeNone, nil }

func (Unsupported) Authenticate(context.Context, Prompt) error { return ErrUnavailable }

func (Unsupported) EnrollmentID(context.Context) (string, error) { return "", ErrUnavailable }
