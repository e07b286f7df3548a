package auth

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password schemes.
const (
	// SchemePlain stores and compares passwords as given. It keeps the
	// persisted user shape of the browser build and is not production grade.
	SchemePlain = "plain"
	// SchemeBcrypt stores bcrypt hashes.
	SchemeBcrypt = "bcrypt"
)

// PasswordScheme encodes passwords for storage and checks login attempts.
type PasswordScheme interface {
	Encode(password string) (string, error)
	Matches(password, stored string) bool
}

// NewPasswordScheme returns the scheme with the given name.
func NewPasswordScheme(name string) (PasswordScheme, error) {
	switch name {
	case "", SchemePlain:
		return plainScheme{}, nil
	case SchemeBcrypt:
		return bcryptScheme{cost: bcrypt.DefaultCost}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme: %s", name)
	}
}

type plainScheme struct{}

func (plainScheme) Encode(password string) (string, error) { return password, nil }

func (plainScheme) Matches(password, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}

type bcryptScheme struct {
	cost int
}

func (s bcryptScheme) Encode(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (bcryptScheme) Matches(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
