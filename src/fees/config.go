package fees

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the starting fee parameters. Both are mutable at runtime
// through the admin surface, subject to the hard ceilings.
type Config struct {
	ProtocolFeeBps       int64 `envconfig:"PROTOCOL_FEE_BPS" default:"30"`
	SlippageToleranceBps int64 `envconfig:"SLIPPAGE_TOLERANCE_BPS" default:"50"`
}

// GetConfig loads fee config from the environment.
func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}
