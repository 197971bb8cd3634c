package domain

import (
	"crypto/subtle"
	"errors"
	"strings"
)

const bearerPrefix = "Bearer "

// ErrMissingSecret is returned when no bearer secret is configured. It is a
// deployment defect, not an authentication failure.
var ErrMissingSecret = errors.New("bearer secret not configured")

// VerifyBearer checks an Authorization header of the form "Bearer <token>"
// against expected. The byte comparison runs in constant time; a length
// mismatch returns false before comparing.
func VerifyBearer(header, expected string) (bool, error) {
	if expected == "" {
		return false, ErrMissingSecret
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return false, nil
	}
	provided := header[len(bearerPrefix):]
	if len(provided) != len(expected) {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1, nil
}
