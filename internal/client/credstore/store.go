package credstore

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/biometric"
	"github.com/dmitrijs2005/holyculture/internal/common"
)

// Accessibility controls when a stored secret may be read.
type Accessibility string

const (
	// WhenUnlockedThisDeviceOnly allows reads whenever the vault is unlocked.
	WhenUnlockedThisDeviceOnly Accessibility = "when_unlocked_this_device_only"
	// WhenPasscodeSetThisDeviceOnly additionally requires a device check to
	// exist. Secrets saved this way are dropped if the check disappears.
	WhenPasscodeSetThisDeviceOnly Accessibility = "when_passcode_set_this_device_only"
)

var (
	ErrNotFound             = common.ErrorNotFound
	ErrLocked               = errors.New("credential store is locked")
	ErrWrongDeviceKey       = errors.New("device key does not match vault")
	ErrBiometricUnavailable = errors.New("no device check available for gated credential")
	ErrBiometricInvalidated = errors.New("biometric enrollment changed, credential removed")
	ErrAuthenticationFailed = errors.New("biometric authentication failed")
)

type SaveOptions struct {
	Accessibility Accessibility
	// BiometricGate requires a successful biometric check on every read.
	BiometricGate bool
}

type GetOptions struct {
	// Prompt is shown when the credential is biometric-gated.
	Prompt biometric.Prompt
}

type Credential struct {
	Service   string
	Account   string
	Secret    []byte
	UpdatedAt time.Time
}

// Store is a secure key/value store keyed by service name.
//
// Get returns ErrNotFound when nothing is stored under service. Clear is
// idempotent and does not require an unlocked store.
type Store interface {
	Save(ctx context.Context, service, account string, secret []byte, opts SaveOptions) error
	Get(ctx context.Context, service string, opts GetOptions) (*Credential, error)
	Clear(ctx context.Context, service string) error
}
