package validation

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Result is the outcome of a field validator.
type Result struct {
	Valid bool
	Error string
}

func ok() Result { return Result{Valid: true} }

func fail(msg string) Result { return Result{Error: msg} }

const (
	maxEmailLength    = 254
	minPasswordLength = 8
	maxPasswordLength = 128
	minUsernameLength = 3
	maxUsernameLength = 30
)

var (
	emailRegex    = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{10,15}$`)
	phoneStrip    = regexp.MustCompile(`[\s\-()]`)

	upperRegex  = regexp.MustCompile(`[A-Z]`)
	lowerRegex  = regexp.MustCompile(`[a-z]`)
	digitRegex  = regexp.MustCompile(`[0-9]`)
	symbolRegex = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)

	reservedUsernames = map[string]struct{}{
		"admin":     {},
		"root":      {},
		"system":    {},
		"moderator": {},
		"holy":      {},
		"culture":   {},
		"radio":     {},
	}
)

// Email checks presence, length, format and rejects injection-looking input
// with the same generic message as a format error would not reveal.
func Email(email string) Result {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return fail("Email is required")
	}
	if utf8.RuneCountInString(trimmed) > maxEmailLength {
		return fail("Email is too long")
	}
	if !emailRegex.MatchString(trimmed) {
		return fail("Please enter a valid email address")
	}
	if ContainsSQLInjection(trimmed) {
		return fail("Invalid email format")
	}
	return ok()
}

// Password enforces length bounds and the four character classes. Only the
// first missing class is reported, in the order upper, lower, digit, symbol.
func Password(password string) Result {
	if password == "" {
		return fail("Password is required")
	}
	n := utf8.RuneCountInString(password)
	if n < minPasswordLength {
		return fail("Password must be at least 8 characters")
	}
	if n > maxPasswordLength {
		return fail("Password is too long")
	}
	if !upperRegex.MatchString(password) {
		return fail("Password must contain at least one uppercase letter")
	}
	if !lowerRegex.MatchString(password) {
		return fail("Password must contain at least one lowercase letter")
	}
	if !digitRegex.MatchString(password) {
		return fail("Password must contain at least one number")
	}
	if !symbolRegex.MatchString(password) {
		return fail("Password must contain at least one special character")
	}
	return ok()
}

func Username(username string) Result {
	trimmed := strings.TrimSpace(username)
	if trimmed == "" {
		return fail("Username is required")
	}
	n := utf8.RuneCountInString(trimmed)
	if n < minUsernameLength {
		return fail("Username must be at least 3 characters")
	}
	if n > maxUsernameLength {
		return fail("Username must be less than 30 characters")
	}
	if !usernameRegex.MatchString(trimmed) {
		return fail("Username can only contain letters, numbers, and underscores")
	}
	if _, reserved := reservedUsernames[strings.ToLower(trimmed)]; reserved {
		return fail("This username is not available")
	}
	return ok()
}

func PasswordMatch(password, confirm string) Result {
	if confirm == "" {
		return fail("Please confirm your password")
	}
	if password != confirm {
		return fail("Passwords do not match")
	}
	return ok()
}

// URL accepts absolute http and https URLs only.
func URL(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return fail("URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return fail("Please enter a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fail("URL must use HTTP or HTTPS")
	}
	if u.Host == "" {
		return fail("Please enter a valid URL")
	}
	return ok()
}

// Phone accepts 10 to 15 digits with an optional leading '+', ignoring
// spaces, dashes and parentheses.
func Phone(phone string) Result {
	if strings.TrimSpace(phone) == "" {
		return fail("Phone number is required")
	}
	if !phoneRegex.MatchString(phoneStrip.ReplaceAllString(phone, "")) {
		return fail("Please enter a valid phone number")
	}
	return ok()
}
