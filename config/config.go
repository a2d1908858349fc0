// Package config loads runtime configuration from environment variables.
package config

import "github.com/caarlos0/env/v10"

// Config holds the settings shared by the chatter binaries. The client only
// reads ServerURL; the server needs the OpenAI settings.
type Config struct {
	ServerURL    string `env:"CHATTER_SERVER_URL" envDefault:"http://localhost:3000"`
	Port         string `env:"PORT" envDefault:"3000"`
	OpenAIKey    string `env:"OPENAI_API_KEY"`
	OpenAIModel  string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	SessionsPath string `env:"CHATTER_SESSIONS"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
