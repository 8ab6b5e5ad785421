package models

import "time"

// Tokens is the persisted token bundle. ExpiresAt refers to the access token.
type Tokens struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ExpiresWithin reports whether the access token expires no later than
// now+d.
func (t Tokens) ExpiresWithin(now time.Time, d time.Duration) bool {
	return !now.Add(d).Before(t.ExpiresAt)
}

func (t Tokens) Expired(now time.Time) bool {
	return t.ExpiresWithin(now, 0)
}
