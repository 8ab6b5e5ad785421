package validation

import (
	"math"
	"regexp"
	"strings"
)

type StrengthLevel string

const (
	LevelWeak   StrengthLevel = "weak"
	LevelFair   StrengthLevel = "fair"
	LevelGood   StrengthLevel = "good"
	LevelStrong StrengthLevel = "strong"
)

// PasswordStrength is a 0..4 score with a level and one feedback line per
// rule that fired.
type PasswordStrength struct {
	Score    int
	Level    StrengthLevel
	Feedback []string
}

var (
	lettersOnly = regexp.MustCompile(`^[a-zA-Z]+$`)
	digitsOnly  = regexp.MustCompile(`^[0-9]+$`)

	commonPasswords = []string{"password", "12345678", "qwerty", "admin", "letmein", "welcome"}
)

// Strength scores a password: one point each for 8+ and 12+ characters, half
// a point per character class, minus one for a run of three identical
// characters, minus half for a letters-only or digits-only password, and
// minus two (floored at zero) when a common password is embedded.
func Strength(password string) PasswordStrength {
	if password == "" {
		return PasswordStrength{Score: 0, Level: LevelWeak, Feedback: []string{"Enter a password"}}
	}

	var (
		score    float64
		feedback = []string{}
		n        = len([]rune(password))
	)

	if n >= 8 {
		score++
	} else {
		feedback = append(feedback, "Use at least 8 characters")
	}

	if n >= 12 {
		score++
	} else if n >= 8 {
		feedback = append(feedback, "Consider using 12+ characters")
	}

	classes := []struct {
		re  *regexp.Regexp
		msg string
	}{
		{upperRegex, "Add uppercase letters"},
		{lowerRegex, "Add lowercase letters"},
		{digitRegex, "Add numbers"},
		{symbolRegex, "Add special characters"},
	}
	for _, c := range classes {
		if c.re.MatchString(password) {
			score += 0.5
		} else {
			feedback = append(feedback, c.msg)
		}
	}

	if hasRepeatedRun(password, 3) {
		score--
		feedback = append(feedback, "Avoid repeated characters")
	}

	if lettersOnly.MatchString(password) || digitsOnly.MatchString(password) {
		score -= 0.5
		feedback = append(feedback, "Mix different character types")
	}

	lower := strings.ToLower(password)
	for _, common := range commonPasswords {
		if strings.Contains(lower, common) {
			score = math.Max(0, score-2)
			feedback = append(feedback, "Avoid common words")
			break
		}
	}

	// Half-up rounding, then clamp.
	final := int(math.Max(0, math.Min(4, math.Floor(score+0.5))))

	return PasswordStrength{Score: final, Level: levelFor(final), Feedback: feedback}
}

func levelFor(score int) StrengthLevel {
	switch score {
	case 2:
		return LevelFair
	case 3:
		return LevelGood
	case 4:
		return LevelStrong
	default:
		return LevelWeak
	}
}

func hasRepeatedRun(s string, run int) bool {
	var prev rune
	count := 0
	for i, r := range s {
		if i > 0 && r == prev {
			count++
		} else {
			count = 1
		}
		if count >= run {
			return true
		}
		prev = r
	}
	return false
}
