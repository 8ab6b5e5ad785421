package gateway

import (
	"context"

	"github.com/dmitrijs2005/holyculture/internal/client/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string      `json:"accessToken" validate:"required"`
	RefreshToken string      `json:"refreshToken" validate:"required"`
	ExpiresIn    int64       `json:"expiresIn" validate:"gt=0"`
	User         models.User `json:"user" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse omits the token fields when the account still needs email
// confirmation.
type RegisterResponse struct {
	User         *models.User `json:"user" validate:"required"`
	AccessToken  string       `json:"accessToken,omitempty"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	ExpiresIn    int64        `json:"expiresIn,omitempty" validate:"gte=0"`
}

// HasSession reports whether the server opened a session right away.
func (r RegisterResponse) HasSession() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && r.ExpiresIn > 0
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse may omit RefreshToken, in which case the old one stays
// valid.
type RefreshResponse struct {
	AccessToken  string `json:"accessToken" validate:"required"`
	RefreshToken string `json:"refreshToken,omitempty"`
	ExpiresIn    int64  `json:"expiresIn" validate:"gt=0"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type UpdatePasswordRequest struct {
	Password string `json:"password"`
}

// AuthAPI is the typed view of the authentication and profile endpoints.
type AuthAPI struct {
	c *Client
}

func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{c: c}
}

func (a *AuthAPI) SetAuthToken(token string) { a.c.SetAuthToken(token) }

func (a *AuthAPI) ClearAuthToken() { a.c.ClearAuthToken() }

func (a *AuthAPI) Health(ctx context.Context) error { return a.c.Health(ctx) }

func (a *AuthAPI) Login(ctx context.Context, email, password string) Result[LoginResponse] {
	return Post[LoginResponse](ctx, a.c, "/auth/login", LoginRequest{Email: email, Password: password})
}

func (a *AuthAPI) Register(ctx context.Context, username, email, password string) Result[RegisterResponse] {
	return Post[RegisterResponse](ctx, a.c, "/auth/register", RegisterRequest{Username: username, Email: email, Password: password})
}

func (a *AuthAPI) Logout(ctx context.Context) Result[Empty] {
	return Post[Empty](ctx, a.c, "/auth/logout", nil)
}

func (a *AuthAPI) Refresh(ctx context.Context, refreshToken string) Result[RefreshResponse] {
	return Post[RefreshResponse](ctx, a.c, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken})
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) Result[Empty] {
	return Post[Empty](ctx, a.c, "/auth/forgot-password", ForgotPasswordRequest{Email: email})
}

func (a *AuthAPI) ResetPassword(ctx context.Context, token, password string) Result[Empty] {
	return Post[Empty](ctx, a.c, "/auth/reset-password", ResetPasswordRequest{Token: token, Password: password})
}

func (a *AuthAPI) UpdatePassword(ctx context.Context, password string) Result[Empty] {
	return Post[Empty](ctx, a.c, "/auth/update-password", UpdatePasswordRequest{Password: password})
}

func (a *AuthAPI) GetProfile(ctx context.Context) Result[models.User] {
	return Get[models.User](ctx, a.c, "/users/me")
}

func (a *AuthAPI) UpdateProfile(ctx context.Context, update models.ProfileUpdate) Result[models.User] {
	return Patch[models.User](ctx, a.c, "/users/me", update)
}
