package admin

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
)

// Config carries the HTTP-facing admin credentials.
type Config struct {
	// AdminKeyHash is a bcrypt hash of the shared admin key presented in
	// the X-Admin-Key header.
	AdminKeyHash string `envconfig:"ADMIN_KEY_HASH"`
	AdminAddress string `envconfig:"ADMIN_ADDRESS" default:"0x0000000000000000000000000000000000000Ad1"`
	Treasury     string `envconfig:"TREASURY_ADDRESS" default:"0x000000000000000000000000000000000000fee5"`
	// Custody is the account orders escrow into.
	Custody string `envconfig:"CUSTODY_ADDRESS" default:"0x000000000000000000000000000000000000c057"`
}

// GetConfig loads admin config from the environment.
func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// VerifyKey checks a presented admin key against the configured bcrypt hash.
func VerifyKey(hash, presented string) bool {
	if hash == "" || presented == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(presented)) == nil
}
