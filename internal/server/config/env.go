package config

import (
	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "FALCONTRADE_"

// parseEnv overlays FALCONTRADE_* environment variables. Unset variables
// leave the current value untouched.
func parseEnv(config *Config) {
	if err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
