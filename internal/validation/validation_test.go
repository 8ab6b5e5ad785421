package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Result
	}{
		{name: "valid", in: "alice@example.com", want: Result{Valid: true}},
		{name: "valid with spaces and caps", in: "  Alice@Example.COM ", want: Result{Valid: true}},
		{name: "empty", in: "", want: Result{Error: "Email is required"}},
		{name: "blank", in: "   ", want: Result{Error: "Email is required"}},
		{name: "no at sign", in: "not-an-email", want: Result{Error: "Please enter a valid email address"}},
		{name: "too long", in: strings.Repeat("a", 250) + "@x.com", want: Result{Error: "Email is too long"}},
		{name: "sql keyword", in: "select@example.com", want: Result{Error: "Invalid email format"}},
		{name: "comment marker", in: "a--b@example.com", want: Result{Error: "Invalid email format"}},
		{name: "hash marker", in: "a#b@example.com", want: Result{Error: "Invalid email format"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Email(tt.in))
		})
	}
}

func TestPassword(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "valid", in: "Abcdef1!", want: ""},
		{name: "empty", in: "", want: "Password is required"},
		{name: "short", in: "Ab1!", want: "Password must be at least 8 characters"},
		{name: "long", in: "Aa1!" + strings.Repeat("x", 125), want: "Password is too long"},
		{name: "no upper", in: "abcdef1!", want: "Password must contain at least one uppercase letter"},
		{name: "no lower", in: "ABCDEF1!", want: "Password must contain at least one lowercase letter"},
		{name: "no digit", in: "Abcdefg!", want: "Password must contain at least one number"},
		{name: "no symbol", in: "Abcdefg1", want: "Password must contain at least one special character"},
		// Several classes missing: only the first in upper, lower, digit, symbol order is reported.
		{name: "only lowercase", in: "abcdefgh", want: "Password must contain at least one uppercase letter"},
		{name: "only upper", in: "ABCDEFGH", want: "Password must contain at least one lowercase letter"},
		{name: "letters only", in: "Abcdefgh", want: "Password must contain at least one number"},
		{name: "backtick is not a symbol", in: "Abcdefg1`", want: "Password must contain at least one special character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Password(tt.in)
			assert.Equal(t, tt.want == "", got.Valid)
			assert.Equal(t, tt.want, got.Error)
		})
	}
}

func TestUsername(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "john_doe1", want: ""},
		{in: "  spaced  ", want: ""},
		{in: "", want: "Username is required"},
		{in: "ab", want: "Username must be at least 3 characters"},
		{in: strings.Repeat("a", 31), want: "Username must be less than 30 characters"},
		{in: "bad-name", want: "Username can only contain letters, numbers, and underscores"},
		{in: "ADMIN", want: "This username is not available"},
		{in: "Radio", want: "This username is not available"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Username(tt.in)
			assert.Equal(t, tt.want == "", got.Valid)
			assert.Equal(t, tt.want, got.Error)
		})
	}
}

func TestPasswordMatch(t *testing.T) {
	assert.Equal(t, Result{Valid: true}, PasswordMatch("Secret1!", "Secret1!"))
	assert.Equal(t, Result{Error: "Please confirm your password"}, PasswordMatch("Secret1!", ""))
	assert.Equal(t, Result{Error: "Passwords do not match"}, PasswordMatch("Secret1!", "Secret1?"))
}

func TestURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://holycultureradio.com/live", want: ""},
		{in: "http://localhost:8080", want: ""},
		{in: "", want: "URL is required"},
		{in: "ftp://files.example.com", want: "URL must use HTTP or HTTPS"},
		{in: "mailto:someone@example.com", want: "URL must use HTTP or HTTPS"},
		{in: "/relative/path", want: "Please enter a valid URL"},
		{in: "http://", want: "Please enter a valid URL"},
		{in: "://broken", want: "Please enter a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, URL(tt.in).Error)
		})
	}
}

func TestPhone(t *testing.T) {
	assert.True(t, Phone("+1 (555) 123-4567").Valid)
	assert.True(t, Phone("5551234567").Valid)
	assert.Equal(t, "Phone number is required", Phone(" ").Error)
	assert.Equal(t, "Please enter a valid phone number", Phone("555-1234").Error)
	assert.Equal(t, "Please enter a valid phone number", Phone("+1 555 abc 4567").Error)
}
