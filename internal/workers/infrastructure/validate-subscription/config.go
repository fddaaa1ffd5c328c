// internal/workers/infrastructure/validate-subscription/config.go
package validatesubscription

import "time"

type Config struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	// ExpiryGrace keeps a subscription usable for a short window past valid_until
	// so in-flight registrations are not cut off mid-process.
	ExpiryGrace time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		CacheTTL:    5 * time.Minute,
		ExpiryGrace: 24 * time.Hour,
	}
}
