package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	typAccess  = "access"
	typRefresh = "refresh"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("invalid token")
)

type Claims struct {
	UID string `json:"uid"`
	Typ string `json:"typ"`
	jwt.RegisteredClaims
}

func MakeAccess(secret, uid string, ttl time.Duration) (string, error) {
	return sign(secret, uid, typAccess, ttl)
}

func MakeRefresh(secret, uid string, ttl time.Duration) (string, error) {
	return sign(secret, uid, typRefresh, ttl)
}

func sign(secret, uid, typ string, ttl time.Duration) (string, error) {
	c := Claims{
		UID: uid, Typ: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			Subject:   uid,
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return t.SignedString([]byte(secret))
}

// ParseAccess verifies signature, expiry and token class and returns the uid.
func ParseAccess(secret, token string) (string, error) {
	return parse(secret, token, typAccess)
}

func ParseRefresh(secret, token string) (string, error) {
	return parse(secret, token, typRefresh)
}

func parse(secret, token, typ string) (string, error) {
	t, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	c, ok := t.Claims.(*Claims)
	if !ok || !t.Valid || c.Typ != typ || c.UID == "" {
		return "", ErrTokenInvalid
	}
	return c.UID, nil
}
