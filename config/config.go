package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/paperscan/paperscan/pkg/auth"
	"github.com/paperscan/paperscan/pkg/auth/oidc"
	"github.com/paperscan/paperscan/pkg/auth/static"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/pipeline"
	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/paperscan/paperscan/pkg/store"
	"github.com/paperscan/paperscan/pkg/store/fs"
	"github.com/paperscan/paperscan/pkg/store/postgres"
	"github.com/paperscan/paperscan/pkg/store/sqlite"

	"gopkg.in/yaml.v3"
)

var (
	ErrNoCompleter = errors.New("no completer configured")
)

// Config is the resolved runtime configuration.
type Config struct {
	Address string

	// Authorizer guards the HTTP API. Nil disables authentication.
	Authorizer auth.Provider

	// Model is the completer id the pipeline uses.
	Model string

	Pipeline pipeline.Options
	Parallel bool

	Pricing ledger.Pricing

	Output string
	Store  StoreConfig

	completers map[string]provider.Completer
	order      []string
}

type StoreConfig struct {
	Type string `yaml:"type"`

	Path string `yaml:"path"`
	URL  string `yaml:"url"`
}

type configFile struct {
	Server serverConfig `yaml:"server"`

	Providers []providerConfig `yaml:"providers"`
	Routers   yaml.Node        `yaml:"routers"`

	Pipeline pipelineConfig `yaml:"pipeline"`
	Store    StoreConfig    `yaml:"store"`

	Pricing map[string]priceConfig `yaml:"pricing"`
}

type serverConfig struct {
	Address string   `yaml:"address"`
	Tokens  []string `yaml:"tokens"`

	OIDC *oidcConfig `yaml:"oidc"`
}

type oidcConfig struct {
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

type pipelineConfig struct {
	Model string `yaml:"model"`

	Diagrams *bool `yaml:"diagrams"`
	Answers  *bool `yaml:"answers"`

	Concurrency int  `yaml:"concurrency"`
	Parallel    bool `yaml:"parallel"`
}

type priceConfig struct {
	Input  float64 `yaml:"input"`
	Output float64 `yaml:"output"`
}

// Load reads a YAML config file. ${VAR} references are expanded from the
// environment before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var file configFile

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &file); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := newConfig()

	if err := cfg.apply(&file); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default builds a config for a single gemini model without a file.
func Default(token, model string) (*Config, error) {
	if model == "" {
		model = ledger.DefaultModel
	}

	return Parse(fmt.Appendf(nil, `
providers:
  - type: gemini
    token: %q
    models:
      - %s
`, token, model))
}

func newConfig() *Config {
	return &Config{
		Address: ":8080",

		Pipeline: pipeline.DefaultOptions(),
		Pricing:  ledger.DefaultPricing(),

		Output: "output",

		completers: map[string]provider.Completer{},
	}
}

func (cfg *Config) apply(f *configFile) error {
	if f.Server.Address != "" {
		cfg.Address = f.Server.Address
	}

	if err := cfg.registerAuthorizers(f); err != nil {
		return err
	}

	if err := cfg.registerProviders(f); err != nil {
		return err
	}

	if err := cfg.registerRouters(f); err != nil {
		return err
	}

	cfg.Model = f.Pipeline.Model

	if cfg.Model == "" && len(cfg.order) > 0 {
		cfg.Model = cfg.order[0]
	}

	if cfg.Model != "" {
		if _, err := cfg.Completer(cfg.Model); err != nil {
			return err
		}

		cfg.Pipeline.Model = cfg.Model
	}

	if f.Pipeline.Diagrams != nil {
		cfg.Pipeline.ExtractDiagrams = *f.Pipeline.Diagrams
	}

	if f.Pipeline.Answers != nil {
		cfg.Pipeline.ExtractAnswers = *f.Pipeline.Answers
	}

	if f.Pipeline.Concurrency > 0 {
		cfg.Pipeline.PageConcurrency = f.Pipeline.Concurrency
	}

	cfg.Parallel = f.Pipeline.Parallel

	if len(f.Pricing) > 0 {
		pricing := ledger.Pricing{}

		for model, p := range f.Pricing {
			pricing[model] = ledger.Price{Input: p.Input, Output: p.Output}
		}

		cfg.Pricing = cfg.Pricing.Merge(pricing)
	}

	cfg.Store = f.Store

	if cfg.Store.Type == "" {
		cfg.Store.Type = "fs"
	}

	if cfg.Store.Type == "fs" && cfg.Store.Path != "" {
		cfg.Output = cfg.Store.Path
	}

	return nil
}

func (cfg *Config) registerAuthorizers(f *configFile) error {
	var providers []auth.Provider

	if tokens := slices.DeleteFunc(slices.Clone(f.Server.Tokens), func(t string) bool { return strings.TrimSpace(t) == "" }); len(tokens) > 0 {
		providers = append(providers, static.New(tokens))
	}

	if o := f.Server.OIDC; o != nil && o.Issuer != "" {
		p, err := oidc.New(context.Background(), o.Issuer, o.Audience)

		if err != nil {
			return fmt.Errorf("failed to set up oidc: %w", err)
		}

		providers = append(providers, p)
	}

	switch len(providers) {
	case 0:
		cfg.Authorizer = nil

	case 1:
		cfg.Authorizer = providers[0]

	default:
		cfg.Authorizer = auth.Any(providers...)
	}

	return nil
}

func (cfg *Config) RegisterCompleter(id string, c provider.Completer) {
	if _, ok := cfg.completers[id]; !ok {
		cfg.order = append(cfg.order, id)
	}

	cfg.completers[id] = c
}

func (cfg *Config) Completer(id string) (provider.Completer, error) {
	if id == "" {
		id = cfg.Model
	}

	if c, ok := cfg.completers[id]; ok {
		return c, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrNoCompleter, id)
}

// Completers returns the registered completer ids in declaration order.
func (cfg *Config) Completers() []string {
	return append([]string{}, cfg.order...)
}

// OpenStore creates the configured result sink. The returned close function
// releases its resources.
func (cfg *Config) OpenStore(ctx context.Context) (store.Store, func() error, error) {
	noop := func() error { return nil }

	switch strings.ToLower(cfg.Store.Type) {
	case "", "fs", "file":
		s, err := fs.New(cfg.Output)
		return s, noop, err

	case "memory":
		return store.NewMemory(), noop, nil

	case "sqlite":
		path := cfg.Store.Path

		if path == "" {
			path = "paperscan.db"
		}

		s, err := sqlite.New(ctx, path)

		if err != nil {
			return nil, nil, err
		}

		return s, s.Close, nil

	case "postgres":
		s, err := postgres.New(ctx, cfg.Store.URL)

		if err != nil {
			return nil, nil, err
		}

		return s, func() error { s.Close(); return nil }, nil

	default:
		return nil, nil, errors.New("invalid store type: " + cfg.Store.Type)
	}
}
