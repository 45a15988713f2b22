package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// refreshMargin is how long before expiry a refresh must run.
const refreshMargin = 300 * time.Second

// Token is one issued credential set. It is replaced wholesale on every
// refresh cycle, never mutated.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	IssuedAt     time.Time
}

// ExpiresAt returns the expiry instant. When the token response carried
// no expires_in, the access token's own exp claim is used as a
// fallback; the claim is read without signature verification since the
// client only schedules from it, it never trusts it for authorization.
func (t Token) ExpiresAt() time.Time {
	if t.ExpiresIn > 0 {
		return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	if exp, ok := accessTokenExpiry(t.AccessToken); ok {
		return exp
	}
	return t.IssuedAt
}

// RefreshAt returns the instant the refresh job should fire: a fixed
// margin strictly before expiry.
func (t Token) RefreshAt() time.Time {
	return t.ExpiresAt().Add(-refreshMargin)
}

// Valid reports whether the token still has its refresh margin left.
func (t Token) Valid(now time.Time) bool {
	return t.AccessToken != "" && now.Before(t.RefreshAt())
}

func accessTokenExpiry(accessToken string) (time.Time, bool) {
	if accessToken == "" {
		return time.Time{}, false
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
