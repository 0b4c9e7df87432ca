package common

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries the application credentials issued on the LinkedIn
// developer portal plus the helper's tunables. Populate it directly or
// via LoadConfig from the environment.
type Config struct {
	ClientID     string `env:"LINKEDIN_CLIENT_ID"`
	ClientSecret string `env:"LINKEDIN_CLIENT_SECRET"`
	RedirectURL  string `env:"LINKEDIN_REDIRECT_URL"`

	// Permissions overrides the default OAuth scope set when non-empty.
	Permissions string `env:"LINKEDIN_PERMISSIONS"`

	UserAgent      string        `env:"LINKEDIN_USER_AGENT" envDefault:"linkedinapi"`
	RequestTimeout time.Duration `env:"LINKEDIN_REQUEST_TIMEOUT" envDefault:"10s"`
	// LoginTimeout bounds the whole present-to-redirect wait.
	LoginTimeout time.Duration `env:"LINKEDIN_LOGIN_TIMEOUT" envDefault:"60s"`
}

// LoadConfig reads the LINKEDIN_* environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
