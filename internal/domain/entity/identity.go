package entity

import "time"

// IdentityUser is the provider-side user record as seen through the
// identity gateway.
type IdentityUser struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	Disabled      bool
	EmailVerified bool
	CreatedAt     time.Time
}

// TokenClaims are the verified claims of a bearer token.
type TokenClaims struct {
	UID      string
	Email    string
	AuthTime time.Time
	Expires  time.Time
	Claims   map[string]any
}

// FreshWithin reports whether the token's auth_time is recent enough for a
// security-sensitive mutation.
func (t *TokenClaims) FreshWithin(now time.Time, window time.Duration) bool {
	return now.Sub(t.AuthTime) <= window
}

// Credentials is the result of a successful password grant.
type Credentials struct {
	UID          string
	Email        string
	IDToken      string
	RefreshToken string
	ExpiresIn    int64
}
