package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/holyculture/internal/client/credstore"
	"github.com/dmitrijs2005/holyculture/internal/client/gateway"
	"github.com/dmitrijs2005/holyculture/internal/client/models"
	"github.com/dmitrijs2005/holyculture/internal/common"
	"github.com/dmitrijs2005/holyculture/internal/jwtx"
	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"
)

const (
	tokensService = common.TokensService
	userService   = common.UserService
)

var plainSave = credstore.SaveOptions{Accessibility: credstore.WhenUnlockedThisDeviceOnly}

func (a *authService) persistTokensLocked(ctx context.Context, t *models.Tokens) error {
	b, err := json.Marshal(t)
	if err != nil {
		return &StorageError{Op: "encode tokens", Err: err}
	}
	if err := a.store.Save(ctx, tokensService, tokensAccount, b, plainSave); err != nil {
		return &StorageError{Op: "save tokens", Err: err}
	}
	return nil
}

func (a *authService) persistUserLocked(ctx context.Context, u *models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return &StorageError{Op: "encode user", Err: err}
	}
	if err := a.store.Save(ctx, userService, userAccount, b, plainSave); err != nil {
		return &StorageError{Op: "save user", Err: err}
	}
	return nil
}

func (a *authService) loadTokens(ctx context.Context) (*models.Tokens, error) {
	c, err := a.store.Get(ctx, tokensService, credstore.GetOptions{})
	if err != nil {
		return nil, err
	}
	var t models.Tokens
	if err := json.Unmarshal(c.Secret, &t); err != nil {
		return nil, fmt.Errorf("decode tokens: %w", err)
	}
	if t.AccessToken == "" || t.RefreshToken == "" {
		return nil, fmt.Errorf("decode tokens: %w", common.ErrInvalidToken)
	}
	return &t, nil
}

func (a *authService) loadUser(ctx context.Context) (*models.User, error) {
	c, err := a.store.Get(ctx, userService, credstore.GetOptions{})
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(c.Secret, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// GetAccessToken returns a usable access token, refreshing first when the
// current one expires within the refresh buffer.
func (a *authService) GetAccessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	t := a.tokens
	a.mu.Unlock()
	if t == nil {
		return "", common.ErrNoSession
	}
	a.Touch()

	if t.ExpiresWithin(a.clock.Now(), a.buffer) {
		if err := a.RefreshToken(ctx); err != nil {
			return "", err
		}
		a.mu.Lock()
		t = a.tokens
		a.mu.Unlock()
		if t == nil {
			return "", common.ErrNoSession
		}
	}
	return t.AccessToken, nil
}

// RefreshToken exchanges the refresh token for a new access token. Concurrent
// callers share one request. If the server rejects the refresh, or transport
// retries are exhausted, the session ends and listeners are told.
//
// The shared request runs detached from the caller under its own deadline.
// A caller whose ctx ends first gets ctx.Err() and the session is left alone.
func (a *authService) RefreshToken(ctx context.Context) error {
	return a.refreshToken(ctx, true)
}

func (a *authService) refreshToken(ctx context.Context, notify bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ch := a.refresh.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.refreshTimeout)
		defer cancel()
		return nil, a.doRefresh(rctx, notify)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (a *authService) doRefresh(ctx context.Context, notify bool) error {
	a.mu.Lock()
	t := a.tokens
	gen := a.gen
	if t == nil {
		a.mu.Unlock()
		return common.ErrNoSession
	}
	a.state = StateRefreshPending
	a.mu.Unlock()

	if jwtx.Expired(t.RefreshToken, a.clock.Now()) {
		a.log.Info(ctx, "refresh token expired, ending session")
		return a.endSession(ctx, gen, notify, common.ErrInvalidToken)
	}

	var resp gateway.RefreshResponse
	backoff := retry.WithMaxRetries(uint64(a.refreshRetries), retry.NewExponential(a.retryBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		res := a.api.Refresh(ctx, t.RefreshToken)
		if res.Success {
			resp = res.Data
			return nil
		}
		if res.Err.Transient() {
			a.log.Debug(ctx, "refresh failed, retrying", "error", res.Err)
			return retry.RetryableError(res.Err)
		}
		return res.Err
	})
	if err != nil {
		a.log.Warn(ctx, "token refresh failed", "error", err)
		return a.endSession(ctx, gen, notify, err)
	}

	next := &models.Tokens{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    a.clock.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	}
	if next.RefreshToken == "" {
		next.RefreshToken = t.RefreshToken
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.gen != gen {
		// Logged out or signed in again while the request was in flight.
		return ErrSessionReplaced
	}
	if err := a.persistTokensLocked(ctx, next); err != nil {
		a.log.Warn(ctx, "persist refreshed tokens failed", "error", err)
	}
	a.tokens = next
	a.state = StateAuthenticated
	a.api.SetAuthToken(next.AccessToken)
	a.scheduleRefreshLocked()
	a.log.Debug(ctx, "token refreshed", "expires_at", next.ExpiresAt)
	return nil
}

// endSession performs a full logout after a failed refresh, unless another
// login or logout already replaced the session.
func (a *authService) endSession(ctx context.Context, gen uint64, notify bool, cause error) error {
	a.mu.Lock()
	current := a.gen == gen
	a.mu.Unlock()
	if !current {
		return ErrSessionReplaced
	}

	if res := a.api.Logout(ctx); !res.Success {
		a.log.Debug(ctx, "server logout after failed refresh", "error", res.Err)
	}
	a.clearSession(ctx)
	if notify {
		a.notify(false, nil)
	}
	return errors.Join(ErrRefreshFailed, cause)
}

// RefreshBudget is the time a refresh needs to run every attempt to its
// request timeout: retries+1 requests plus the exponential backoff between
// them.
func RefreshBudget(requestTimeout time.Duration, retries int, backoff time.Duration) time.Duration {
	retries = max(retries, 0)
	sleeps := backoff * time.Duration(1<<retries-1)
	return time.Duration(retries+1)*requestTimeout + sleeps
}

// scheduleRefreshLocked arms a single timer at ExpiresAt minus the refresh
// buffer, replacing any earlier one. A deadline already in the past fires
// immediately.
func (a *authService) scheduleRefreshLocked() {
	a.stopTimerLocked()
	if a.tokens == nil {
		return
	}

	delay := max(a.tokens.ExpiresAt.Sub(a.clock.Now())-a.buffer, 0)
	gen := a.gen
	a.timer = a.clock.AfterFunc(delay, func() { a.onRefreshTimer(gen) })
}

func (a *authService) stopTimerLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

func (a *authService) onRefreshTimer(gen uint64) {
	a.mu.Lock()
	stale := a.gen != gen || a.tokens == nil
	a.timer = nil
	a.mu.Unlock()
	if stale {
		return
	}

	ctx := context.Background()
	if err := a.RefreshToken(ctx); err != nil {
		a.log.Info(ctx, "scheduled refresh did not renew session", "error", err)
	}
}

// TokenSource adapts the session to oauth2 so HTTP clients can attach a
// fresh bearer token to every request.
func (a *authService) TokenSource(ctx context.Context) oauth2.TokenSource {
	return oauth2.ReuseTokenSourceWithExpiry(nil, &sessionTokenSource{ctx: ctx, a: a}, a.buffer)
}

type sessionTokenSource struct {
	ctx context.Context
	a   *authService
}

func (s *sessionTokenSource) Token() (*oauth2.Token, error) {
	access, err := s.a.GetAccessToken(s.ctx)
	if err != nil {
		return nil, err
	}

	s.a.mu.Lock()
	defer s.a.mu.Unlock()
	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	if s.a.tokens != nil && s.a.tokens.AccessToken == access {
		tok.Expiry = s.a.tokens.ExpiresAt
	}
	return tok, nil
}
