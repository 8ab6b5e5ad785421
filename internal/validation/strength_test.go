package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrength(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want PasswordStrength
	}{
		{
			name: "empty",
			in:   "",
			want: PasswordStrength{Score: 0, Level: LevelWeak, Feedback: []string{"Enter a password"}},
		},
		{
			name: "eight chars all classes",
			in:   "Abcdef1!",
			want: PasswordStrength{Score: 3, Level: LevelGood, Feedback: []string{"Consider using 12+ characters"}},
		},
		{
			name: "long all classes",
			in:   "Tr0ub4dor&3xyz",
			want: PasswordStrength{Score: 4, Level: LevelStrong, Feedback: []string{}},
		},
		{
			name: "short lowercase",
			in:   "abc",
			want: PasswordStrength{
				Score: 0,
				Level: LevelWeak,
				Feedback: []string{
					"Use at least 8 characters",
					"Add uppercase letters",
					"Add numbers",
					"Add special characters",
					"Mix different character types",
				},
			},
		},
		{
			name: "repeated and common",
			in:   "Passwordddd1!",
			want: PasswordStrength{
				Score:    1,
				Level:    LevelWeak,
				Feedback: []string{"Avoid repeated characters", "Avoid common words"},
			},
		},
		{
			name: "digits only common",
			in:   "12345678",
			want: PasswordStrength{
				Score: 0,
				Level: LevelWeak,
				Feedback: []string{
					"Consider using 12+ characters",
					"Add uppercase letters",
					"Add lowercase letters",
					"Add special characters",
					"Mix different character types",
					"Avoid common words",
				},
			},
		},
		{
			name: "half point rounds up",
			in:   "abcdefgh1!",
			want: PasswordStrength{
				Score:    3,
				Level:    LevelGood,
				Feedback: []string{"Consider using 12+ characters", "Add uppercase letters"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strength(tt.in))
		})
	}
}

func TestHasRepeatedRun(t *testing.T) {
	assert.True(t, hasRepeatedRun("aaa", 3))
	assert.True(t, hasRepeatedRun("xyzzzz", 3))
	assert.False(t, hasRepeatedRun("aabbaa", 3))
	assert.False(t, hasRepeatedRun("", 3))
}
