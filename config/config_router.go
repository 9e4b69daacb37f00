package config

import (
	"errors"
	"strings"

	"github.com/paperscan/paperscan/pkg/otel"
	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/paperscan/paperscan/pkg/router"
	"github.com/paperscan/paperscan/pkg/router/roundrobin"
)

type routerConfig struct {
	Type string `yaml:"type"`

	Routes []routeConfig `yaml:"routes"`
}

type routeConfig struct {
	Name  string `yaml:"name"`
	Model string `yaml:"model"`
}

func (cfg *Config) registerRouters(f *configFile) error {
	if f.Routers.IsZero() {
		return nil
	}

	var configs map[string]routerConfig

	if err := f.Routers.Decode(&configs); err != nil {
		return err
	}

	// mapping nodes alternate keys and values
	for i := 0; i+1 < len(f.Routers.Content); i += 2 {
		id := f.Routers.Content[i].Value

		config, ok := configs[id]

		if !ok {
			continue
		}

		var routes []router.Route

		for _, r := range config.Routes {
			completer, err := cfg.Completer(r.Model)

			if err != nil {
				return err
			}

			name := r.Name

			if name == "" {
				name = r.Model
			}

			routes = append(routes, router.Route{
				Name:      name,
				Completer: completer,
			})
		}

		completer, err := createRouter(config, routes)

		if err != nil {
			return err
		}

		if _, ok := completer.(otel.Completer); !ok {
			completer = otel.NewCompleter(config.Type, id, completer)
		}

		cfg.RegisterCompleter(id, completer)
	}

	return nil
}

func createRouter(cfg routerConfig, routes []router.Route) (provider.Completer, error) {
	switch strings.ToLower(cfg.Type) {
	case "roundrobin", "round-robin":
		return roundrobin.NewCompleter(routes...)

	default:
		return nil, errors.New("invalid router type: " + cfg.Type)
	}
}
