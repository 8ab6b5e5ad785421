package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/holyculture/internal/client/biometric"
	"github.com/dmitrijs2005/holyculture/internal/client/credstore"
	"github.com/dmitrijs2005/holyculture/internal/common"
)

const biometricPrompt = "Sign in to Holy Culture Radio"

func (a *authService) IsBiometricAvailable(ctx context.Context) bool {
	return biometric.Available(ctx, a.bio)
}

func (a *authService) BiometryType(ctx context.Context) biometric.Type {
	t, err := a.bio.Type(ctx)
	if err != nil {
		return biometric.TypeNone
	}
	return t
}

// EnableBiometricAuth stores the credentials behind a biometric gate so a
// later AuthenticateWithBiometrics can replay them. It reports false when the
// device cannot gate the secret or the save fails.
func (a *authService) EnableBiometricAuth(ctx context.Context, email, password string) bool {
	if !a.IsBiometricAvailable(ctx) {
		return false
	}
	if normalizeEmail(email) == "" || password == "" {
		return false
	}

	err := a.store.Save(ctx, common.BiometricService, normalizeEmail(email), []byte(password), credstore.SaveOptions{
		Accessibility: credstore.WhenPasscodeSetThisDeviceOnly,
		BiometricGate: true,
	})
	if err != nil {
		a.log.Warn(ctx, "enable biometric login failed", "error", err)
		return false
	}
	a.log.Info(ctx, "biometric login enabled", "type", a.BiometryType(ctx))
	return true
}

func (a *authService) DisableBiometricAuth(ctx context.Context) {
	if err := a.store.Clear(ctx, common.BiometricService); err != nil {
		a.log.Warn(ctx, "disable biometric login failed", "error", err)
	}
}

// AuthenticateWithBiometrics unlocks the stored credentials with a biometric
// check and signs in with them through Login, so rate limiting applies.
func (a *authService) AuthenticateWithBiometrics(ctx context.Context) AuthResult {
	if !a.IsBiometricAvailable(ctx) {
		return failed(KindBiometric, credstore.ErrBiometricUnavailable,
			"Biometric authentication is not available on this device")
	}

	cred, err := a.store.Get(ctx, common.BiometricService, credstore.GetOptions{
		Prompt: biometric.Prompt{
			Message:     biometricPrompt,
			CancelLabel: "Cancel",
		},
	})
	switch {
	case err == nil:
	case errors.Is(err, credstore.ErrNotFound):
		return failed(KindBiometric, err, "Biometric login not set up. Please sign in with your password first.")
	case errors.Is(err, credstore.ErrBiometricInvalidated):
		return failed(KindBiometric, err, "Biometric settings changed. Please sign in with your password and enable biometric login again.")
	case errors.Is(err, credstore.ErrLocked):
		return failed(KindStorage, &StorageError{Op: "read biometric credential", Err: err}, "Credential store is locked")
	default:
		a.log.Info(ctx, "biometric check failed", "error", err)
		return failed(KindBiometric, err, "Biometric authentication failed")
	}

	password := string(cred.Secret)
	common.WipeByteArray(cred.Secret)
	return a.Login(ctx, cred.Account, password)
}
