// Package services contains the application services of the Holy Culture
// client. This file defines the session manager: sign-in, registration,
// password recovery, token lifecycle and auth-state notifications.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/biometric"
	"github.com/dmitrijs2005/holyculture/internal/client/credstore"
	"github.com/dmitrijs2005/holyculture/internal/client/gateway"
	"github.com/dmitrijs2005/holyculture/internal/client/models"
	"github.com/dmitrijs2005/holyculture/internal/logging"
	"github.com/dmitrijs2005/holyculture/internal/ratelimit"
	"github.com/dmitrijs2005/holyculture/internal/timex"
	"github.com/dmitrijs2005/holyculture/internal/validation"
	"github.com/robfig/cron/v3"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// AuthAPI is the subset of the remote gateway used by the session manager.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) gateway.Result[gateway.LoginResponse]
	Register(ctx context.Context, username, email, password string) gateway.Result[gateway.RegisterResponse]
	Logout(ctx context.Context) gateway.Result[gateway.Empty]
	Refresh(ctx context.Context, refreshToken string) gateway.Result[gateway.RefreshResponse]
	ForgotPassword(ctx context.Context, email string) gateway.Result[gateway.Empty]
	ResetPassword(ctx context.Context, token, password string) gateway.Result[gateway.Empty]
	UpdatePassword(ctx context.Context, password string) gateway.Result[gateway.Empty]
	GetProfile(ctx context.Context) gateway.Result[models.User]
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) gateway.Result[models.User]
	Health(ctx context.Context) error
	SetAuthToken(token string)
	ClearAuthToken()
}

// Listener observes auth-state changes. user is nil when signed out.
type Listener func(authenticated bool, user *models.User)

// AuthService is the session manager used by the terminal client.
//
// Contract:
//   - Operations that can fail for user-visible reasons return an
//     AuthResult instead of an error.
//   - Login and RequestPasswordReset are rate limited locally; limited calls
//     never reach the network.
//   - RequestPasswordReset reports success whether or not the account exists.
//   - A rejected token refresh ends the session.
//   - Listeners run synchronously, in registration order, on the goroutine
//     that changed the state.
type AuthService interface {
	Initialize(ctx context.Context)
	Register(ctx context.Context, username, email, password string) AuthResult
	Login(ctx context.Context, email, password string) AuthResult
	Logout(ctx context.Context)
	RequestPasswordReset(ctx context.Context, email string) AuthResult
	ResetPassword(ctx context.Context, token, password string) AuthResult
	UpdatePassword(ctx context.Context, password string) AuthResult
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) AuthResult

	GetAccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	TokenSource(ctx context.Context) oauth2.TokenSource

	AuthenticateWithBiometrics(ctx context.Context) AuthResult
	EnableBiometricAuth(ctx context.Context, email, password string) bool
	DisableBiometricAuth(ctx context.Context)
	IsBiometricAvailable(ctx context.Context) bool
	BiometryType(ctx context.Context) biometric.Type

	CurrentUser() *models.User
	IsAuthenticated() bool
	State() State
	Subscribe(fn Listener) (unsubscribe func())
	Touch()

	Ping(ctx context.Context) error
	Close() error
}

// Options wires an AuthService. API and Store are required; everything else
// has a default.
type Options struct {
	API        AuthAPI
	Store      credstore.Store
	Biometrics biometric.Authenticator
	Logger     logging.Logger
	Clock      timex.Clock

	LoginLimiter *ratelimit.Limiter
	ResetLimiter *ratelimit.Limiter

	// RefreshBuffer is how long before expiry the access token is refreshed.
	RefreshBuffer time.Duration
	// SessionTimeout signs the user out after this much inactivity; 0
	// disables the check.
	SessionTimeout time.Duration
	// RefreshRetries bounds retries of a refresh that failed in transport.
	// Server rejections are never retried.
	RefreshRetries int
	RetryBackoff   time.Duration
	// RequestTimeout is the per-request timeout of the API client, used to
	// size the default RefreshTimeout.
	RequestTimeout time.Duration
	// RefreshTimeout bounds one refresh including all retries. Zero means
	// RefreshBudget(RequestTimeout, RefreshRetries, RetryBackoff).
	RefreshTimeout time.Duration
}

const (
	tokensAccount    = "auth_tokens"
	userAccount      = "user_data"
	defaultBuffer    = 5 * time.Minute
	defaultBackoff   = 500 * time.Millisecond
	defaultRequestTO = 30 * time.Second
)

type authService struct {
	api     AuthAPI
	store   credstore.Store
	bio     biometric.Authenticator
	log     logging.Logger
	clock   timex.Clock
	loginRL *ratelimit.Limiter
	resetRL *ratelimit.Limiter

	buffer         time.Duration
	sessionTimeout time.Duration
	refreshRetries int
	retryBackoff   time.Duration
	refreshTimeout time.Duration

	initOnce sync.Once
	refresh  singleflight.Group
	cron     *cron.Cron

	// mu guards the session: tokens, user, timer, state and activity.
	mu           sync.Mutex
	tokens       *models.Tokens
	user         *models.User
	timer        timex.Timer
	state        State
	gen          uint64
	lastActivity time.Time

	lmu       sync.Mutex
	listeners []listenerEntry
	nextID    uint64
}

// NewAuthService constructs an AuthService from opts.
func NewAuthService(opts Options) AuthService {
	return newAuthService(opts)
}

func newAuthService(opts Options) *authService {
	a := &authService{
		api:            opts.API,
		store:          opts.Store,
		bio:            opts.Biometrics,
		log:            opts.Logger,
		clock:          opts.Clock,
		loginRL:        opts.LoginLimiter,
		resetRL:        opts.ResetLimiter,
		buffer:         opts.RefreshBuffer,
		sessionTimeout: opts.SessionTimeout,
		refreshRetries: max(0, opts.RefreshRetries),
		retryBackoff:   opts.RetryBackoff,
		refreshTimeout: opts.RefreshTimeout,
	}
	if a.bio == nil {
		a.bio = biometric.Unsupported{}
	}
	if a.log == nil {
		a.log = logging.Nop()
	}
	if a.clock == nil {
		a.clock = timex.SystemClock{}
	}
	if a.loginRL == nil {
		a.loginRL = ratelimit.New(ratelimit.LoginPolicy, ratelimit.WithClock(a.clock))
	}
	if a.resetRL == nil {
		a.resetRL = ratelimit.New(ratelimit.PasswordResetPolicy, ratelimit.WithClock(a.clock))
	}
	if a.buffer <= 0 {
		a.buffer = defaultBuffer
	}
	if a.retryBackoff <= 0 {
		a.retryBackoff = defaultBackoff
	}
	if a.refreshTimeout <= 0 {
		reqTO := opts.RequestTimeout
		if reqTO <= 0 {
			reqTO = defaultRequestTO
		}
		a.refreshTimeout = RefreshBudget(reqTO, a.refreshRetries, a.retryBackoff)
	}
	return a
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Initialize restores a persisted session once. Expired tokens get a single
// refresh attempt; anything unreadable or rejected leaves the user signed
// out. Listeners are notified with the resulting state.
func (a *authService) Initialize(ctx context.Context) {
	a.initOnce.Do(func() {
		a.restore(ctx)
		a.startIdleWatcher()

		authenticated, user := a.snapshot()
		a.log.Info(ctx, "session initialized", "authenticated", authenticated)
		a.notify(authenticated, user)
	})
}

func (a *authService) restore(ctx context.Context) {
	tokens, err := a.loadTokens(ctx)
	if err != nil {
		if !errors.Is(err, credstore.ErrNotFound) {
			a.log.Warn(ctx, "restore tokens failed, starting signed out", "error", err)
			a.wipeStore(ctx)
		}
		return
	}

	user, err := a.loadUser(ctx)
	if err != nil && !errors.Is(err, credstore.ErrNotFound) {
		a.log.Warn(ctx, "restore user failed, starting signed out", "error", err)
		a.wipeStore(ctx)
		return
	}

	a.mu.Lock()
	a.gen++
	a.tokens = tokens
	a.user = user
	a.state = StateAuthenticated
	a.lastActivity = a.clock.Now()
	a.api.SetAuthToken(tokens.AccessToken)
	a.mu.Unlock()

	if tokens.Expired(a.clock.Now()) {
		a.log.Info(ctx, "restored access token expired, refreshing")
		if err := a.refreshToken(ctx, false); err != nil {
			if ctx.Err() != nil {
				// Start-up was interrupted, not rejected. Keep the session
				// and let the timer try again.
				a.mu.Lock()
				if a.tokens != nil {
					a.scheduleRefreshLocked()
				}
				a.mu.Unlock()
			}
			return
		}
	}

	if user == nil {
		// Tokens without a cached profile: fetch it before trusting the session.
		res := a.api.GetProfile(ctx)
		if !res.Success {
			a.log.Warn(ctx, "fetch profile during restore failed", "error", res.Err)
			a.clearSession(ctx)
			return
		}
		u := res.Data
		a.mu.Lock()
		a.user = &u
		a.persistUserLocked(ctx, &u)
		a.mu.Unlock()
	}

	a.mu.Lock()
	a.scheduleRefreshLocked()
	a.mu.Unlock()
}

// Register creates an account. It never changes the local session: the
// server may require email confirmation before a session exists.
func (a *authService) Register(ctx context.Context, username, email, password string) AuthResult {
	if r := validation.Username(username); !r.Valid {
		return invalid("username", r.Error)
	}
	if r := validation.Email(email); !r.Valid {
		return invalid("email", r.Error)
	}
	if r := validation.Password(password); !r.Valid {
		return invalid("password", r.Error)
	}

	res := a.api.Register(ctx, strings.TrimSpace(username), normalizeEmail(email), password)
	if !res.Success {
		a.log.Info(ctx, "registration rejected", "kind", res.Err.Kind)
		return fromGateway(res.Err)
	}

	out := succeeded(res.Data.User)
	if res.Data.HasSession() {
		out.Notice = "Account created. Please sign in."
	} else {
		out.Notice = "Please check your email to confirm your account"
	}
	return out
}

// Login signs in with email and password. A rate-limited call fails without
// contacting the server; otherwise the attempt is counted before the call
// and the counter is reset only on success.
func (a *authService) Login(ctx context.Context, email, password string) AuthResult {
	if strings.TrimSpace(email) == "" {
		return invalid("email", "Email is required")
	}
	if password == "" {
		return invalid("password", "Password is required")
	}

	key := normalizeEmail(email)
	if a.loginRL.IsLimited(key) {
		wait := a.loginRL.RetryAfter(key)
		msg := fmt.Sprintf("Too many login attempts. Please try again in %d minutes.", ratelimit.Minutes(wait))
		a.log.Warn(ctx, "login rate limited", "retry_after", wait)
		return failed(KindRateLimit, &RateLimitError{RetryAfter: wait, Message: msg}, msg)
	}
	a.loginRL.RecordAttempt(key)

	a.mu.Lock()
	prev := a.state
	if !prev.hasSession() {
		a.state = StateAuthenticating
	}
	a.mu.Unlock()

	res := a.api.Login(ctx, key, password)
	if !res.Success {
		a.mu.Lock()
		if a.state == StateAuthenticating {
			a.state = prev
		}
		a.mu.Unlock()
		a.log.Info(ctx, "login failed", "kind", res.Err.Kind)
		return fromGateway(res.Err)
	}

	user := res.Data.User
	tokens := &models.Tokens{
		AccessToken:  res.Data.AccessToken,
		RefreshToken: res.Data.RefreshToken,
		ExpiresAt:    a.clock.Now().Add(time.Duration(res.Data.ExpiresIn) * time.Second),
	}
	if err := a.establish(ctx, tokens, &user); err != nil {
		a.log.Error(ctx, "persist session failed", "error", err)
		a.clearSession(ctx)
		return failed(KindStorage, err, "Could not save your session. Please try again.")
	}

	a.loginRL.Reset(key)
	a.log.Info(ctx, "login succeeded", "user_id", user.ID)
	a.notify(true, cloneUser(&user))
	return succeeded(cloneUser(&user))
}

// establish replaces the session with tokens and user, persists both and
// arms the refresh timer.
func (a *authService) establish(ctx context.Context, tokens *models.Tokens, user *models.User) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.persistTokensLocked(ctx, tokens); err != nil {
		return err
	}
	if err := a.persistUserLocked(ctx, user); err != nil {
		return err
	}

	a.gen++
	a.tokens = tokens
	a.user = user
	a.state = StateAuthenticated
	a.lastActivity = a.clock.Now()
	a.api.SetAuthToken(tokens.AccessToken)
	a.scheduleRefreshLocked()
	return nil
}

// Logout invalidates the session on the server (best effort) and always
// clears it locally.
func (a *authService) Logout(ctx context.Context) {
	a.mu.Lock()
	hadTokens := a.tokens != nil
	a.mu.Unlock()

	if hadTokens {
		if res := a.api.Logout(ctx); !res.Success {
			a.log.Warn(ctx, "server logout failed", "error", res.Err)
		}
	}

	a.clearSession(ctx)
	a.log.Info(ctx, "logged out")
	a.notify(false, nil)
}

// clearSession drops the in-memory session, cancels the refresh timer and
// wipes the persisted tokens and user. It does not notify listeners.
func (a *authService) clearSession(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.gen++
	a.stopTimerLocked()
	a.tokens = nil
	a.user = nil
	a.state = StateUnauthenticated
	a.api.ClearAuthToken()
	a.wipeStore(ctx)
}

// wipeStore ignores cancellation of ctx: a session dropped in memory must not
// come back from disk on the next start.
func (a *authService) wipeStore(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	for _, svc := range []string{tokensService, userService} {
		if err := a.store.Clear(ctx, svc); err != nil {
			a.log.Warn(ctx, "clear credential failed", "service", svc, "error", err)
		}
	}
}

// RequestPasswordReset asks the server to send a reset link. The result is
// success whether or not the account exists; only local validation, rate
// limiting and transport failures are reported.
func (a *authService) RequestPasswordReset(ctx context.Context, email string) AuthResult {
	if r := validation.Email(email); !r.Valid {
		return invalid("email", r.Error)
	}

	key := normalizeEmail(email)
	if a.resetRL.IsLimited(key) {
		msg := "Too many reset attempts. Please try again later."
		return failed(KindRateLimit, &RateLimitError{RetryAfter: a.resetRL.RetryAfter(key), Message: msg}, msg)
	}
	a.resetRL.RecordAttempt(key)

	res := a.api.ForgotPassword(ctx, key)
	if !res.Success {
		if res.Err.Transient() {
			a.log.Warn(ctx, "password reset request failed", "error", res.Err)
			return failed(kindOf(res.Err), res.Err, "Network error. Please try again.")
		}
		a.log.Info(ctx, "password reset request rejected by server", "status", res.Err.Status)
	}
	return succeeded(nil)
}

func kindOf(e *gateway.Error) ErrorKind {
	return fromGateway(e).Kind
}

// ResetPassword completes a reset with the token from the reset link.
func (a *authService) ResetPassword(ctx context.Context, token, password string) AuthResult {
	if strings.TrimSpace(token) == "" {
		return invalid("token", "Reset token is required")
	}
	if r := validation.Password(password); !r.Valid {
		return invalid("password", r.Error)
	}

	res := a.api.ResetPassword(ctx, strings.TrimSpace(token), password)
	if !res.Success {
		return fromGateway(res.Err)
	}
	return succeeded(nil)
}

// UpdatePassword changes the password of the signed-in user.
func (a *authService) UpdatePassword(ctx context.Context, password string) AuthResult {
	if !a.IsAuthenticated() {
		return failed(KindAuth, ErrNotAuthenticated, "Not authenticated")
	}
	if r := validation.Password(password); !r.Valid {
		return invalid("password", r.Error)
	}
	a.Touch()

	res := a.api.UpdatePassword(ctx, password)
	if !res.Success {
		return fromGateway(res.Err)
	}
	return succeeded(a.CurrentUser())
}

// UpdateProfile edits the signed-in user's profile and replaces the cached
// user with the server's copy.
func (a *authService) UpdateProfile(ctx context.Context, update models.ProfileUpdate) AuthResult {
	a.mu.Lock()
	current := a.user
	gen := a.gen
	a.mu.Unlock()
	if current == nil {
		return failed(KindAuth, ErrNotAuthenticated, "Not authenticated")
	}
	if update.Empty() {
		return succeeded(cloneUser(current))
	}

	if update.Username != nil {
		if r := validation.Username(*update.Username); !r.Valid {
			return invalid("username", r.Error)
		}
	}
	if update.AvatarURL != nil && *update.AvatarURL != "" {
		if r := validation.URL(*update.AvatarURL); !r.Valid {
			return invalid("avatarUrl", r.Error)
		}
	}
	if update.Bio != nil && validation.ContainsXSS(*update.Bio) {
		return invalid("bio", "Bio contains unsupported content")
	}
	a.Touch()

	res := a.api.UpdateProfile(ctx, update)
	if !res.Success {
		return fromGateway(res.Err)
	}

	user := res.Data
	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return failed(KindAuth, ErrSessionReplaced, "Session changed. Please try again.")
	}
	a.user = &user
	if err := a.persistUserLocked(ctx, &user); err != nil {
		a.log.Warn(ctx, "persist updated profile failed", "error", err)
	}
	a.mu.Unlock()

	a.notify(true, cloneUser(&user))
	return succeeded(cloneUser(&user))
}

func (a *authService) CurrentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneUser(a.user)
}

// IsAuthenticated reports whether both a user and tokens are held.
func (a *authService) IsAuthenticated() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user != nil && a.tokens != nil
}

func (a *authService) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *authService) snapshot() (bool, *models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.user == nil || a.tokens == nil {
		return false, nil
	}
	return true, cloneUser(a.user)
}

// Ping probes the API health endpoint.
func (a *authService) Ping(ctx context.Context) error {
	return a.api.Health(ctx)
}

// Close stops background work. The persisted session is kept.
func (a *authService) Close() error {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	a.mu.Lock()
	a.stopTimerLocked()
	a.mu.Unlock()
	return nil
}

func cloneUser(u *models.User) *models.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
