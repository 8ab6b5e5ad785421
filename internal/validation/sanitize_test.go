package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "  plain text  ", want: "plain text"},
		{in: "a\x00b", want: "ab"},
		{in: `<script>alert("x")</script>`, want: "&lt;script&gt;alert(&quot;x&quot;)&lt;/script&gt;"},
		{in: "Tom & Jerry's `show`", want: "Tom &amp; Jerry&#x27;s &#x60;show&#x60;"},
		{in: "&lt;", want: "&amp;lt;"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeInput(tt.in))
		})
	}
}

func TestSanitizeForDisplay_RoundTrip(t *testing.T) {
	inputs := []string{
		"hello world",
		"Psalm 23:1",
		"unicode ✝ text",
		`quotes " and ' and <tags> & more`,
		"&lt; already encoded",
	}
	for _, s := range inputs {
		assert.Equal(t, s, SanitizeForDisplay(SanitizeInput(s)), "round trip of %q", s)
	}
	assert.Equal(t, "", SanitizeForDisplay(""))
}

func TestContainsSQLInjection(t *testing.T) {
	positives := []string{
		"SELECT * FROM users",
		"1; drop table profiles",
		"admin'--",
		"x /* comment */",
		"' or 1=1",
		"name AND a>b",
	}
	for _, s := range positives {
		assert.True(t, ContainsSQLInjection(s), s)
	}

	negatives := []string{"alice@example.com", "selection", "orchestra = great"}
	for _, s := range negatives {
		assert.False(t, ContainsSQLInjection(s), s)
	}
}

func TestContainsXSS(t *testing.T) {
	assert.True(t, ContainsXSS("<script>alert(1)</script>"))
	assert.True(t, ContainsXSS(`<img src=x onerror="alert(1)">`))
	assert.True(t, ContainsXSS("JavaScript:alert(1)"))
	assert.False(t, ContainsXSS("Sunday service at 10am"))
}
