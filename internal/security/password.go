package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrHashFormat reports a stored digest bcrypt cannot parse. A merely wrong
// password is not an error.
var ErrHashFormat = errors.New("malformed password digest")

const bcryptCost = 10

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// CheckPasswordStrict separates a non-matching password (false, nil) from a
// digest that is not valid bcrypt output (false, ErrHashFormat).
func CheckPasswordStrict(hash, pw string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, ErrHashFormat
	}
}
