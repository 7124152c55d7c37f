package config

import "fmt"

// ValidateServe reports settings the HTTP API cannot start without.
func (c Config) ValidateServe() error {
	if len(c.JWTSecret) == 0 {
		return fmt.Errorf("missing required env JWT_SECRET")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid SERVER_PORT %d", c.ServerPort)
	}
	return nil
}
