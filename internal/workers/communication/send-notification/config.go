// internal/workers/communication/send-notification/config.go
package sendnotification

import "time"

type Config struct {
	Timeout     time.Duration
	FromAddress string
	Enabled     bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		FromAddress: "notifications@carbon-platform.io",
		Enabled:     true,
	}
}
