package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/paperscan/paperscan/pkg/provider"

	"github.com/ollama/ollama/api"
	"github.com/ollama/ollama/envconfig"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	model string

	http   *http.Client
	client *api.Client
}

type Option func(*Completer)

func WithClient(client *http.Client) Option {
	return func(c *Completer) {
		c.http = client
	}
}

// NewCompleter talks to the Ollama server at url, or OLLAMA_HOST if url is empty.
func NewCompleter(rawURL, model string, options ...Option) (*Completer, error) {
	host := envconfig.Host()

	if rawURL != "" {
		u, err := url.Parse(strings.TrimRight(rawURL, "/"))

		if err != nil {
			return nil, err
		}

		host = u
	}

	c := &Completer{
		model: model,

		http: http.DefaultClient,
	}

	for _, option := range options {
		option(c)
	}

	c.client = api.NewClient(host, c.http)

	return c, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	req, err := c.convertGenerateRequest(messages, options)

	if err != nil {
		return nil, err
	}

	var text strings.Builder

	result := &provider.Completion{
		Model: c.model,

		Reason: provider.CompletionReasonStop,

		Message: &provider.Message{
			Role: provider.MessageRoleAssistant,
		},
	}

	err = c.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		text.WriteString(resp.Response)

		if resp.Done {
			result.Usage = &provider.Usage{
				InputTokens:  resp.PromptEvalCount,
				OutputTokens: resp.EvalCount,
			}

			if resp.DoneReason == "length" {
				result.Reason = provider.CompletionReasonLength
			}
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if text.Len() > 0 {
		result.Message.Content = append(result.Message.Content, provider.TextContent(text.String()))
	}

	return result, nil
}

func (c *Completer) convertGenerateRequest(messages []provider.Message, options *provider.CompleteOptions) (*api.GenerateRequest, error) {
	var system []string
	var prompt []string
	var images []api.ImageData

	for _, m := range messages {
		switch m.Role {
		case provider.MessageRoleSystem:
			system = append(system, m.Content.String())

		case provider.MessageRoleUser, provider.MessageRoleAssistant:
			prompt = append(prompt, m.Content.String())

			for _, f := range m.Content.Files() {
				if !strings.HasPrefix(f.ContentType, "image/") {
					return nil, errors.New("unsupported content type")
				}

				images = append(images, api.ImageData(f.Content))
			}
		}
	}

	stream := false

	req := &api.GenerateRequest{
		Model: c.model,

		System: strings.Join(system, "\n\n"),
		Prompt: strings.Join(prompt, "\n\n"),

		Images: images,
		Stream: &stream,

		Options: map[string]any{},
	}

	if options.Temperature != nil {
		req.Options["temperature"] = *options.Temperature
	}

	if options.MaxTokens != nil {
		req.Options["num_predict"] = *options.MaxTokens
	}

	if len(options.Stop) > 0 {
		req.Options["stop"] = options.Stop
	}

	if options.Format == provider.CompletionFormatJSON {
		req.Format = json.RawMessage(`"json"`)
	}

	if options.Schema != nil {
		data, err := json.Marshal(options.Schema.Schema)

		if err != nil {
			return nil, err
		}

		req.Format = data
	}

	return req, nil
}
