package gemini

import (
	"context"
	"errors"

	"github.com/paperscan/paperscan/pkg/provider"

	"google.golang.org/genai"
)

var _ provider.Completer = (*Completer)(nil)

type Completer struct {
	*Config
	client *genai.Client
}

func NewCompleter(url, model string, options ...Option) (*Completer, error) {
	cfg := &Config{
		url:   url,
		model: model,
	}

	for _, option := range options {
		option(cfg)
	}

	client, err := cfg.newClient(context.Background())

	if err != nil {
		return nil, err
	}

	return &Completer{
		Config: cfg,
		client: client,
	}, nil
}

func (c *Completer) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	if options == nil {
		options = new(provider.CompleteOptions)
	}

	contents, err := convertContents(messages)

	if err != nil {
		return nil, err
	}

	config := convertConfig(messages, options)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)

	if err != nil {
		return nil, err
	}

	result := &provider.Completion{
		ID:    resp.ResponseID,
		Model: c.model,

		Reason: provider.CompletionReasonStop,

		Message: &provider.Message{
			Role: provider.MessageRoleAssistant,
		},
	}

	if resp.ModelVersion != "" {
		result.Model = resp.ModelVersion
	}

	if len(resp.Candidates) > 0 {
		result.Reason = toCompletionReason(resp.Candidates[0].FinishReason)
	}

	if text := resp.Text(); text != "" {
		result.Message.Content = append(result.Message.Content, provider.TextContent(text))
	}

	if resp.UsageMetadata != nil {
		result.Usage = &provider.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	return result, nil
}

func convertConfig(messages []provider.Message, options *provider.CompleteOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		StopSequences: options.Stop,
	}

	if options.Temperature != nil {
		config.Temperature = genai.Ptr(*options.Temperature)
	}

	if options.MaxTokens != nil {
		config.MaxOutputTokens = int32(*options.MaxTokens)
	}

	if options.Format == provider.CompletionFormatJSON || options.Schema != nil {
		config.ResponseMIMEType = "application/json"
	}

	if options.Schema != nil {
		config.ResponseJsonSchema = options.Schema.Schema
	}

	var system []*genai.Part

	for _, m := range messages {
		if m.Role != provider.MessageRoleSystem {
			continue
		}

		for _, c := range m.Content {
			if c.Text != "" {
				system = append(system, genai.NewPartFromText(c.Text))
			}
		}
	}

	if len(system) > 0 {
		config.SystemInstruction = genai.NewContentFromParts(system, genai.RoleUser)
	}

	return config
}

func convertContents(messages []provider.Message) ([]*genai.Content, error) {
	var result []*genai.Content

	for _, m := range messages {
		var role genai.Role

		switch m.Role {
		case provider.MessageRoleSystem:
			continue

		case provider.MessageRoleUser:
			role = genai.RoleUser

		case provider.MessageRoleAssistant:
			role = genai.RoleModel

		default:
			return nil, errors.New("unsupported message role: " + string(m.Role))
		}

		var parts []*genai.Part

		for _, c := range m.Content {
			if c.Text != "" {
				parts = append(parts, genai.NewPartFromText(c.Text))
			}

			if c.File != nil {
				switch c.File.ContentType {
				case "image/png", "image/jpeg", "image/webp", "application/pdf":
					parts = append(parts, genai.NewPartFromBytes(c.File.Content, c.File.ContentType))

				default:
					return nil, errors.New("unsupported content type")
				}
			}
		}

		if len(parts) == 0 {
			continue
		}

		result = append(result, genai.NewContentFromParts(parts, role))
	}

	return result, nil
}

func toCompletionReason(reason genai.FinishReason) provider.CompletionReason {
	switch reason {
	case genai.FinishReasonMaxTokens:
		return provider.CompletionReasonLength

	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist, genai.FinishReasonProhibitedContent:
		return provider.CompletionReasonFilter

	default:
		return provider.CompletionReasonStop
	}
}
