package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Account is what the console knows about whoever holds the stored token.
type Account struct {
	Email     string
	Name      string
	Subject   string
	ExpiresAt time.Time
}

// DisplayName is the name shown in the page header.
func (a Account) DisplayName() string {
	switch {
	case a.Name != "":
		return a.Name
	case a.Email != "":
		return a.Email
	}
	return a.Subject
}

// Expired reports whether the token carried an expiry that has passed.
func (a Account) Expired(now time.Time) bool {
	return !a.ExpiresAt.IsZero() && now.After(a.ExpiresAt)
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

var ErrOpaqueToken = errors.New("token is not a JWT")

// AccountFromToken reads the claims of a JWT bearer token. The signature is
// not checked: the API does that on every call, and the console only shows
// who it is acting as.
func AccountFromToken(token string) (Account, error) {
	var c claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &c); err != nil {
		return Account{}, fmt.Errorf("%w: %w", ErrOpaqueToken, err)
	}

	a := Account{Email: c.Email, Name: c.Name, Subject: c.Subject}
	if c.ExpiresAt != nil {
		a.ExpiresAt = c.ExpiresAt.Time
	}
	return a, nil
}
