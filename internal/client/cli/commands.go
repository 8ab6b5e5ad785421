package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/models"
	"github.com/dmitrijs2005/holyculture/internal/client/services"
	"github.com/dmitrijs2005/holyculture/internal/common"
	"github.com/dmitrijs2005/holyculture/internal/jwtx"
	"github.com/dmitrijs2005/holyculture/internal/validation"
)

// getSimpleText, getOptionalText and getPassword are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var (
	getSimpleText   = GetSimpleText
	getOptionalText = GetOptionalText
	getPassword     = GetPassword
)

var errPasswordMismatch = errors.New("passwords do not match")

func (a *App) isLoggedIn() bool {
	return a.auth.IsAuthenticated()
}

func (a *App) touch() {
	a.auth.Touch()
}

// report prints the outcome of a service call. A failed result is printed,
// not returned: it is an expected, user-facing outcome.
func report(res services.AuthResult, success string) {
	if !res.Success {
		printlnFn(res.Error)
		return
	}
	if success != "" {
		printlnFn(success)
	}
	if res.Notice != "" {
		printlnFn(res.Notice)
	}
}

// readNewPassword asks for a password twice and checks both entries match.
func (a *App) readNewPassword(prompt string) (string, error) {
	pw, err := getPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)

	confirm, err := getPassword("Confirm password", a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(confirm)

	if r := validation.PasswordMatch(string(pw), string(confirm)); !r.Valid {
		printlnFn(r.Error)
		return "", errPasswordMismatch
	}
	return string(pw), nil
}

// Register prompts for a username, email and password and creates an
// account. It does not sign the user in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := a.readNewPassword("Choose password")
	if err != nil {
		return err
	}

	report(a.auth.Register(ctx, username, email, password), "Account created!")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Enter password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.auth.Login(ctx, email, string(password))
	if res.Success && res.User != nil {
		report(res, fmt.Sprintf("Welcome, %s!", res.User.Username))
		return nil
	}
	report(res, "")
	return nil
}

// BiometricLogin signs in with credentials saved by bio-enable.
func (a *App) BiometricLogin(ctx context.Context) error {
	res := a.auth.AuthenticateWithBiometrics(ctx)
	if res.Success && res.User != nil {
		report(res, fmt.Sprintf("Welcome back, %s!", res.User.Username))
		return nil
	}
	report(res, "")
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.auth.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	u := a.auth.CurrentUser()
	if u == nil {
		printlnFn("Not logged in")
		return nil
	}
	printlnFn(formatUser(u))
	return nil
}

func formatUser(u *models.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Username: %s\n", u.Username)
	fmt.Fprintf(&b, "Email:    %s\n", u.Email)
	if u.Role != "" {
		fmt.Fprintf(&b, "Role:     %s\n", u.Role)
	}
	if u.Bio != "" {
		fmt.Fprintf(&b, "Bio:      %s\n", validation.SanitizeForDisplay(u.Bio))
	}
	if u.AvatarURL != "" {
		fmt.Fprintf(&b, "Avatar:   %s\n", u.AvatarURL)
	}
	if u.IsVerified {
		b.WriteString("Verified: yes\n")
	}
	if !u.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Joined:   %s", u.CreatedAt.Format("2006-01-02"))
	}
	return strings.TrimRight(b.String(), "\n")
}

// ForgotPassword requests a reset link. The reply is the same whether or not
// the account exists.
func (a *App) ForgotPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	report(a.auth.RequestPasswordReset(ctx, email),
		"If an account exists for that email, a reset link has been sent.")
	return nil
}

// ResetPassword completes a reset with the token from the emailed link.
func (a *App) ResetPassword(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter reset token", a.out)
	if err != nil {
		return err
	}
	password, err := a.readNewPassword("New password")
	if err != nil {
		return err
	}
	report(a.auth.ResetPassword(ctx, token, password), "Password updated. You can now log in.")
	return nil
}

func (a *App) ChangePassword(ctx context.Context) error {
	password, err := a.readNewPassword("New password")
	if err != nil {
		return err
	}
	report(a.auth.UpdatePassword(ctx, password), "Password changed")
	return nil
}

// EditProfile asks for each editable field; empty answers keep the current
// value.
func (a *App) EditProfile(ctx context.Context) error {
	var upd models.ProfileUpdate
	var err error

	if upd.Username, err = getOptionalText(a.reader, "Username", a.out); err != nil {
		return err
	}
	if upd.Bio, err = getOptionalText(a.reader, "Bio", a.out); err != nil {
		return err
	}
	if upd.AvatarURL, err = getOptionalText(a.reader, "Avatar URL", a.out); err != nil {
		return err
	}
	if upd.Bio != nil {
		bio := validation.SanitizeInput(*upd.Bio)
		upd.Bio = &bio
	}
	if upd.Empty() {
		printlnFn("Nothing to update")
		return nil
	}

	report(a.auth.UpdateProfile(ctx, upd), "Profile updated")
	return nil
}

// Strength rates a password locally. Nothing is sent to the server.
func (a *App) Strength(context.Context) error {
	pw, err := getPassword("Password to rate", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	s := validation.Strength(string(pw))
	printlnFn(fmt.Sprintf("Strength: %s (%d/4)", s.Level, s.Score))
	for _, f := range s.Feedback {
		printlnFn(" -", f)
	}
	return nil
}

// Token prints a masked access token and its expiry, refreshing it first if
// it is about to expire.
func (a *App) Token(ctx context.Context) error {
	tok, err := a.auth.GetAccessToken(ctx)
	if err != nil {
		return err
	}
	printlnFn("Access token:", maskToken(tok))
	if exp, ok := jwtx.ExpiresAt(tok); ok {
		printlnFn("Expires in:", time.Until(exp).Round(time.Second))
	}
	return nil
}

func maskToken(tok string) string {
	if len(tok) <= 12 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:6] + "..." + tok[len(tok)-6:]
}

// EnableBiometrics re-asks for the password and saves the credentials behind
// a device check.
func (a *App) EnableBiometrics(ctx context.Context) error {
	u := a.auth.CurrentUser()
	if u == nil {
		return services.ErrNotAuthenticated
	}
	if !a.auth.IsBiometricAvailable(ctx) {
		printlnFn("Biometric authentication is not available on this device")
		return nil
	}

	password, err := getPassword("Confirm your password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if !a.auth.EnableBiometricAuth(ctx, u.Email, string(password)) {
		printlnFn("Could not enable biometric login")
		return nil
	}
	printlnFn(fmt.Sprintf("Biometric login enabled (%s)", a.auth.BiometryType(ctx)))
	return nil
}

func (a *App) DisableBiometrics(ctx context.Context) error {
	a.auth.DisableBiometricAuth(ctx)
	printlnFn("Biometric login disabled")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	mode := a.Mode()
	if mode == "" {
		mode = "unknown"
	}
	printlnFn("Connection:", mode)
	printlnFn("Session:   ", a.auth.State())
	printlnFn("Biometrics:", a.auth.BiometryType(ctx))
	return nil
}
