package validation

import (
	"regexp"
	"strings"
)

var (
	htmlEncoder = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"`", "&#x60;",
	)
	htmlDecoder = strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#x27;", "'",
		"&#x60;", "`",
	)

	sqlInjectionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(SELECT|INSERT|UPDATE|DELETE|DROP|CREATE|ALTER|TRUNCATE|EXEC|UNION|FETCH|DECLARE|CAST)\b`),
		regexp.MustCompile(`(--|#|/\*|\*/)`),
		regexp.MustCompile(`(?i)(\bOR\b|\bAND\b).*[=<>]`),
	}

	xssPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<\s*script\b`),
		regexp.MustCompile(`(?i)javascript\s*:`),
		regexp.MustCompile(`(?i)\bon\w+\s*=`),
		regexp.MustCompile(`(?i)<\s*(iframe|object|embed)\b`),
	}
)

// SanitizeInput trims s, drops NUL bytes and entity-encodes the characters
// & < > " ' and backtick. The replacement is single-pass, so an ampersand is
// never encoded twice.
func SanitizeInput(s string) string {
	if s == "" {
		return ""
	}
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\x00", "")
	return htmlEncoder.Replace(s)
}

// SanitizeForDisplay decodes the entities produced by SanitizeInput.
func SanitizeForDisplay(s string) string {
	if s == "" {
		return ""
	}
	return htmlDecoder.Replace(s)
}

// ContainsSQLInjection reports whether s contains SQL keywords, comment
// markers or a boolean comparison pattern.
func ContainsSQLInjection(s string) bool {
	for _, re := range sqlInjectionPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// ContainsXSS reports whether s looks like it carries markup or script.
func ContainsXSS(s string) bool {
	for _, re := range xssPatterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
