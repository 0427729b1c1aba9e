// Package config loads landgiver process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv fills target's env-tagged fields from the process environment,
// applying envDefault values for unset variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
