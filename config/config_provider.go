package config

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/paperscan/paperscan/pkg/otel"
	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/paperscan/paperscan/pkg/provider/anthropic"
	"github.com/paperscan/paperscan/pkg/provider/gemini"
	"github.com/paperscan/paperscan/pkg/provider/limiter"
	"github.com/paperscan/paperscan/pkg/provider/ollama"
	"github.com/paperscan/paperscan/pkg/provider/openai"

	"gopkg.in/yaml.v3"
)

type providerConfig struct {
	Type string `yaml:"type"`

	URL   string `yaml:"url"`
	Token string `yaml:"token"`

	// Region selects the AWS region of the bedrock provider.
	Region string `yaml:"region"`

	// Limit is the number of requests per minute shared by all models of the
	// provider.
	Limit int `yaml:"limit"`

	Models modelsConfig `yaml:"models"`
}

type modelConfig struct {
	ID string `yaml:"id"`
}

type modelsConfig map[string]modelConfig

// UnmarshalYAML accepts models as a list of names or as a map of ids to
// model settings.
func (m *modelsConfig) UnmarshalYAML(value *yaml.Node) error {
	result := modelsConfig{}

	switch value.Kind {
	case yaml.SequenceNode:
		var names []string

		if err := value.Decode(&names); err != nil {
			return err
		}

		for _, name := range names {
			result[name] = modelConfig{ID: name}
		}

	case yaml.MappingNode:
		var models map[string]modelConfig

		if err := value.Decode(&models); err != nil {
			return err
		}

		for id, model := range models {
			if model.ID == "" {
				model.ID = id
			}

			result[id] = model
		}

	default:
		return errors.New("invalid models config")
	}

	*m = result

	return nil
}

func (cfg *Config) registerProviders(f *configFile) error {
	for _, p := range f.Providers {
		for _, id := range slices.Sorted(maps.Keys(p.Models)) {
			model := p.Models[id]

			completer, err := createCompleter(p, model)

			if err != nil {
				return err
			}

			if p.Limit > 0 {
				completer = limiter.NewCompleter(completer, p.Limit, 1)
			}

			cfg.RegisterCompleter(id, otel.NewCompleter(p.Type, model.ID, completer))
		}
	}

	return nil
}

func createCompleter(cfg providerConfig, model modelConfig) (provider.Completer, error) {
	switch strings.ToLower(cfg.Type) {
	case "gemini", "google":
		var options []gemini.Option

		if cfg.Token != "" {
			options = append(options, gemini.WithToken(cfg.Token))
		}

		return gemini.NewCompleter(cfg.URL, model.ID, options...)

	case "openai":
		var options []openai.Option

		if cfg.Token != "" {
			options = append(options, openai.WithToken(cfg.Token))
		}

		return openai.NewCompleter(cfg.URL, model.ID, options...)

	case "anthropic":
		var options []anthropic.Option

		if cfg.Token != "" {
			options = append(options, anthropic.WithToken(cfg.Token))
		}

		return anthropic.NewCompleter(cfg.URL, model.ID, options...)

	case "bedrock":
		options := []anthropic.Option{
			anthropic.WithBedrock(cfg.Region),
		}

		if cfg.Token != "" {
			options = append(options, anthropic.WithToken(cfg.Token))
		}

		return anthropic.NewCompleter(cfg.URL, model.ID, options...)

	case "ollama":
		return ollama.NewCompleter(cfg.URL, model.ID)

	default:
		return nil, errors.New("invalid provider type: " + cfg.Type)
	}
}
