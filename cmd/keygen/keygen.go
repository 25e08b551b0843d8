package keygen

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hash produces the bcrypt hash to put in ADMIN_KEY_HASH for a chosen admin
// key.
func Hash(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
