package utils

import (
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

// passwordPattern restricts passwords to 1-8 characters from a fixed
// charset.  The bound is historical API contract; clients depend on the
// 400 it produces.
var passwordPattern = regexp.MustCompile(`^[a-zA-Z0-9!@#$%^&*]{1,8}$`)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidPassword reports whether a candidate password matches the allowed
// pattern.  Empty strings are rejected here; "field not provided" is
// expressed with a nil pointer at the DTO layer, not an empty string.
func ValidPassword(plain string) bool {
	return passwordPattern.MatchString(plain)
}
