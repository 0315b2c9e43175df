package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token verification failures are collapsed into three cases so that the
// authenticator can reject deterministically without leaking which check
// failed to the client.
var (
	ErrTokenMalformed = errors.New("token malformed")
	ErrTokenSignature = errors.New("token signature invalid")
	ErrTokenExpired   = errors.New("token expired")
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the serialized JWT string; Exp stores the UTC
// expiration time.  Access tokens are self-contained: once issued they
// are never renewed, the client logs in again after expiry.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// TokenClaims is what a verified token asserts about its bearer: the
// numeric user id and the login it was issued for.  The login is kept in
// the token for display and audit only; authorization always re-reads
// the user row by id.
type TokenClaims struct {
	UserID uint64
	Login  string
}

// accessClaims is the wire shape of the JWT payload.  The user id rides
// in the registered subject claim as a decimal string, the login in a
// private claim.
type accessClaims struct {
	jwt.RegisteredClaims
	Login string `json:"login"`
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID, the user's login, and a TTL in minutes.
// The JWT carries sub, login, exp and iat.  Issuing is a pure function of
// its inputs plus the clock; nothing is stored server-side.
func NewAccessToken(secret string, userID uint64, login string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Login: login,
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies a serialized token against the secret and
// returns its claims.  Any failure maps onto one of the three sentinel
// errors above: structure problems to ErrTokenMalformed, wrong key or
// tampering to ErrTokenSignature, and a past exp to ErrTokenExpired.
// Expiry uses the wall clock at call time, so the same token fails the
// same way at every instant after its expiry.
func ParseAccessToken(secret, raw string) (TokenClaims, error) {
	var claims accessClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		// Only HS256 tokens are ever issued; reject anything else so a
		// crafted token cannot downgrade the check.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignature
		}
		return []byte(secret), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return TokenClaims{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return TokenClaims{}, ErrTokenSignature
		default:
			return TokenClaims{}, ErrTokenMalformed
		}
	}
	if !tok.Valid {
		return TokenClaims{}, ErrTokenSignature
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || uid == 0 {
		return TokenClaims{}, ErrTokenMalformed
	}
	return TokenClaims{UserID: uid, Login: claims.Login}, nil
}
