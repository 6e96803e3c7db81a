package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AuthConfig points at the tenant's token endpoint. The client secret is
// never stored in the file; SecretEnv names the environment variable that
// carries it (a .env file is loaded before this is read).
type AuthConfig struct {
	TokenURL  string `yaml:"token_url"`
	ClientID  string `yaml:"client_id"`
	SecretEnv string `yaml:"secret_env"`
}

// Config is the verkeep.yaml file.
type Config struct {
	Tenant   string     `yaml:"tenant"`
	AdminURL string     `yaml:"admin_url"`
	Auth     AuthConfig `yaml:"auth"`
	Sites    string     `yaml:"sites"`    // default static site-list path
	LogFile  string     `yaml:"log_file"` // structured log destination, empty = stderr only
}

// Load reads and validates the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Tenant == "" {
		return fmt.Errorf("tenant is required")
	}
	if c.AdminURL == "" {
		return fmt.Errorf("admin_url is required")
	}
	if c.Auth.TokenURL == "" {
		return fmt.Errorf("auth.token_url is required")
	}
	if c.Auth.ClientID == "" {
		return fmt.Errorf("auth.client_id is required")
	}
	return nil
}

// ClientSecret resolves the secret from the environment. Empty means the
// interactive authenticator will prompt for it.
func (c *Config) ClientSecret() string {
	if c.Auth.SecretEnv == "" {
		return os.Getenv("VERKEEP_CLIENT_SECRET")
	}
	return os.Getenv(c.Auth.SecretEnv)
}
