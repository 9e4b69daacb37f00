package gemini

import (
	"context"
	"net/http"
	"os"
	"strings"

	"google.golang.org/genai"
)

type Config struct {
	url string

	token string
	model string

	client *http.Client
}

type Option func(*Config)

func WithClient(client *http.Client) Option {
	return func(c *Config) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Config) {
		c.token = token
	}
}

func (cfg *Config) newClient(ctx context.Context) (*genai.Client, error) {
	token := cfg.token

	if token == "" {
		token = os.Getenv("GEMINI_API_KEY")
	}

	config := &genai.ClientConfig{
		APIKey:  token,
		Backend: genai.BackendGeminiAPI,
	}

	if cfg.url != "" {
		config.HTTPOptions = genai.HTTPOptions{
			BaseURL: strings.TrimRight(cfg.url, "/") + "/",
		}
	}

	if cfg.client != nil {
		config.HTTPClient = cfg.client
	}

	return genai.NewClient(ctx, config)
}
