package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/biometric"
	"github.com/dmitrijs2005/holyculture/internal/client/credstore"
	"github.com/dmitrijs2005/holyculture/internal/client/gateway"
	"github.com/dmitrijs2005/holyculture/internal/client/migrations"
	"github.com/dmitrijs2005/holyculture/internal/client/models"
	"github.com/dmitrijs2005/holyculture/internal/dbx"
	"github.com/dmitrijs2005/holyculture/internal/timex"
	"github.com/stretchr/testify/require"
)

// ---- fake API ----

type fakeAPI struct {
	mu sync.Mutex

	loginFn   func(email, password string) gateway.Result[gateway.LoginResponse]
	refreshFn func(n int, refreshToken string) gateway.Result[gateway.RefreshResponse]
	forgotFn  func(email string) gateway.Result[gateway.Empty]
	logoutErr *gateway.Error
	profile   gateway.Result[models.User]
	healthErr error

	loginCalls   int
	refreshCalls int
	forgotCalls  int
	logoutCalls  int
	profileCalls int
	lastEmail    string
	lastPassword string
	authToken    string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		loginFn: func(email, _ string) gateway.Result[gateway.LoginResponse] {
			return gateway.Result[gateway.LoginResponse]{Success: true, Data: loginResponse(email, 3600)}
		},
		refreshFn: func(n int, _ string) gateway.Result[gateway.RefreshResponse] {
			return gateway.Result[gateway.RefreshResponse]{Success: true, Data: gateway.RefreshResponse{
				AccessToken: "access-refreshed", RefreshToken: "refresh-rotated", ExpiresIn: 3600,
			}}
		},
		forgotFn: func(string) gateway.Result[gateway.Empty] {
			return gateway.Result[gateway.Empty]{Success: true}
		},
		profile: gateway.Result[models.User]{Success: true, Data: testUser("listener@example.com")},
	}
}

func testUser(email string) models.User {
	return models.User{
		ID:        "u-1",
		Username:  "psalmist",
		Email:     email,
		Role:      models.RoleMember,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func loginResponse(email string, expiresIn int64) gateway.LoginResponse {
	return gateway.LoginResponse{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		ExpiresIn:    expiresIn,
		User:         testUser(email),
	}
}

func httpErr(status int, msg string) *gateway.Error {
	kind := gateway.KindHTTP
	if status == 401 || status == 403 {
		kind = gateway.KindAuth
	}
	return &gateway.Error{Kind: kind, Status: status, Message: msg}
}

func netErr() *gateway.Error {
	return &gateway.Error{Kind: gateway.KindNetwork, Message: "Network error. Please check your connection."}
}

func (f *fakeAPI) Login(_ context.Context, email, password string) gateway.Result[gateway.LoginResponse] {
	f.mu.Lock()
	f.loginCalls++
	f.lastEmail, f.lastPassword = email, password
	fn := f.loginFn
	f.mu.Unlock()
	return fn(email, password)
}

func (f *fakeAPI) Register(_ context.Context, _, email, _ string) gateway.Result[gateway.RegisterResponse] {
	u := testUser(email)
	return gateway.Result[gateway.RegisterResponse]{Success: true, Data: gateway.RegisterResponse{User: &u}}
}

func (f *fakeAPI) Logout(context.Context) gateway.Result[gateway.Empty] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	if f.logoutErr != nil {
		return gateway.Result[gateway.Empty]{Err: f.logoutErr}
	}
	return gateway.Result[gateway.Empty]{Success: true}
}

func (f *fakeAPI) Refresh(_ context.Context, refreshToken string) gateway.Result[gateway.RefreshResponse] {
	f.mu.Lock()
	f.refreshCalls++
	n := f.refreshCalls
	fn := f.refreshFn
	f.mu.Unlock()
	return fn(n, refreshToken)
}

func (f *fakeAPI) ForgotPassword(_ context.Context, email string) gateway.Result[gateway.Empty] {
	f.mu.Lock()
	f.forgotCalls++
	fn := f.forgotFn
	f.mu.Unlock()
	return fn(email)
}

func (f *fakeAPI) ResetPassword(context.Context, string, string) gateway.Result[gateway.Empty] {
	return gateway.Result[gateway.Empty]{Success: true}
}

func (f *fakeAPI) UpdatePassword(context.Context, string) gateway.Result[gateway.Empty] {
	return gateway.Result[gateway.Empty]{Success: true}
}

func (f *fakeAPI) GetProfile(context.Context) gateway.Result[models.User] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	return f.profile
}

func (f *fakeAPI) UpdateProfile(_ context.Context, update models.ProfileUpdate) gateway.Result[models.User] {
	u := testUser("listener@example.com")
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Bio != nil {
		u.Bio = *update.Bio
	}
	return gateway.Result[models.User]{Success: true, Data: u}
}

func (f *fakeAPI) Health(context.Context) error { return f.healthErr }

func (f *fakeAPI) SetAuthToken(token string) {
	f.mu.Lock()
	f.authToken = token
	f.mu.Unlock()
}

func (f *fakeAPI) ClearAuthToken() { f.SetAuthToken("") }

func (f *fakeAPI) calls() (login, refresh, forgot, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loginCalls, f.refreshCalls, f.forgotCalls, f.logoutCalls
}

func (f *fakeAPI) token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authToken
}

// ---- fake biometrics ----

type fakeBio struct {
	typ        biometric.Type
	enrollment string
	authErr    error
}

func (b *fakeBio) Type(context.Context) (biometric.Type, error) { return b.typ, nil }

func (b *fakeBio) Authenticate(context.Context, biometric.Prompt) error { return b.authErr }

func (b *fakeBio) EnrollmentID(context.Context) (string, error) {
	if b.typ == biometric.TypeNone {
		return "", biometric.ErrUnavailable
	}
	return b.enrollment, nil
}

// ---- harness ----

type harness struct {
	svc   *authService
	api   *fakeAPI
	store *credstore.SQLiteStore
	clock *timex.FakeClock
	bio   *fakeBio
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newStore(t *testing.T, bio biometric.Authenticator, clock timex.Clock) *credstore.SQLiteStore {
	t.Helper()
	db, err := dbx.OpenSQLite(context.Background(), ":memory:", migrations.Migrations)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := credstore.NewSQLiteStore(db, bio, credstore.WithClock(clock))
	require.NoError(t, s.Unlock(context.Background(), []byte("0123456789abcdef0123456789abcdef")))
	return s
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	h := &harness{
		api:   newFakeAPI(),
		clock: timex.NewFakeClock(epoch),
		bio:   &fakeBio{typ: biometric.TypeTouchID, enrollment: "enrolled-1"},
	}
	h.store = newStore(t, h.bio, h.clock)

	opts := Options{
		API:            h.api,
		Store:          h.store,
		Biometrics:     h.bio,
		Clock:          h.clock,
		RefreshBuffer:  5 * time.Minute,
		RefreshRetries: 2,
		RetryBackoff:   time.Millisecond,
	}
	for _, m := range mutate {
		m(&opts)
	}
	h.svc = newAuthService(opts)
	t.Cleanup(func() { _ = h.svc.Close() })
	return h
}

// reopen builds a second service over the same store, as after a restart.
func (h *harness) reopen(t *testing.T) *authService {
	t.Helper()
	svc := newAuthService(Options{
		API:            h.api,
		Store:          h.store,
		Biometrics:     h.bio,
		Clock:          h.clock,
		RefreshBuffer:  5 * time.Minute,
		RefreshRetries: 2,
		RetryBackoff:   time.Millisecond,
	})
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

type event struct {
	authenticated bool
	user          *models.User
}

func record(svc AuthService) *[]event {
	var mu sync.Mutex
	events := []event{}
	svc.Subscribe(func(ok bool, u *models.User) {
		mu.Lock()
		events = append(events, event{ok, u})
		mu.Unlock()
	})
	return &events
}
