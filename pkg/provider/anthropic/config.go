package anthropic

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go/bedrock"
	"github.com/anthropics/anthropic-sdk-go/option"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

type Config struct {
	url string

	token string
	model string

	bedrock bool
	region  string

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

// WithBedrock routes requests through AWS Bedrock. With a token (or
// AWS_BEARER_TOKEN_BEDROCK) requests carry a Bedrock API key, otherwise the
// default AWS credential chain signs them. An empty region falls back to the
// AWS configuration.
func WithBedrock(region string) Option {
	return func(c *Config) {
		c.bedrock = true
		c.region = region
	}
}

func (cfg *Config) Options() []option.RequestOption {
	var options []option.RequestOption

	if cfg.client != nil {
		options = append(options, option.WithHTTPClient(cfg.client))
	}

	if cfg.bedrock {
		token := cfg.token

		if token == "" {
			token = os.Getenv("AWS_BEARER_TOKEN_BEDROCK")
		}

		if token != "" {
			url := cfg.url

			if url == "" {
				url = bedrockEndpoint(cfg.region)
			}

			return append(options,
				option.WithBaseURL(strings.TrimRight(url, "/")+"/"),
				option.WithMiddleware(bearerMiddleware(token)),
			)
		}

		var loaders []func(*awsconfig.LoadOptions) error

		if cfg.region != "" {
			loaders = append(loaders, awsconfig.WithRegion(cfg.region))
		}

		return append(options, bedrock.WithLoadDefaultConfig(context.Background(), loaders...))
	}

	url := cfg.url

	if url == "" {
		url = "https://api.anthropic.com/"
	}

	url = strings.TrimRight(url, "/") + "/"

	options = append(options, option.WithBaseURL(url))

	if cfg.token != "" {
		options = append(options, option.WithAPIKey(cfg.token))
	}

	return options
}
