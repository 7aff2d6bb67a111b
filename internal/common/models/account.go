package models

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Account adalah akun login yang dikonfigurasi lewat environment.
type Account struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// Authenticate returns the account when username and password match it.
// An account without a username never matches.
func (a Account) Authenticate(username, password string) (*Account, error) {
	if a.Username == "" || a.PasswordHash == "" || username != a.Username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	out := a
	return &out, nil
}
