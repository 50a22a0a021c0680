package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValid reports whether raw is a well-formed JWT whose exp claim is
// after now. Only the payload segment is decoded; the signature is NOT
// verified. This layer trusts the issuing API and checks expiry locally
// so an expired session is detected without a server round trip.
// A malformed token, or one without an exp claim, is invalid.
func TokenValid(raw string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(now)
}
