package classifier

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/provider"

	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error)

func (f completerFunc) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	return f(ctx, messages, options)
}

func respond(text string) provider.Completer {
	return completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
		return &provider.Completion{
			Message: &provider.Message{
				Role:    provider.MessageRoleAssistant,
				Content: provider.MessageContent{provider.TextContent(text)},
			},
		}, nil
	})
}

func TestParsePageType(t *testing.T) {
	tests := []struct {
		input string
		want  PageType
		ok    bool
	}{
		{"question", PageQuestion, true},
		{"Questions", PageQuestion, true},
		{"answers", PageAnswerKey, true},
		{"answer", PageAnswerKey, true},
		{"Solutions", PageAnswerKey, true},
		{"marking scheme", PageAnswerKey, true},
		{"answer_key", PageAnswerKey, true},
		{"instructions", PageInstruction, true},
		{"title", PageCover, true},
		{"cover page", PageCover, true},
		{"both", PageMixed, true},
		{"mixed", PageMixed, true},
		{"appendix", PageQuestion, false},
		{"", PageQuestion, false},
	}

	for _, tt := range tests {
		got, ok := ParsePageType(tt.input)

		require.Equal(t, tt.want, got, tt.input)
		require.Equal(t, tt.ok, ok, tt.input)
	}
}

func TestClassify(t *testing.T) {
	run := ledger.NewBook().Start("paper.pdf")

	result := New(respond(`{"page_type": "Solutions", "confidence": 0.93}`)).Classify(context.Background(), run, document.Page{Number: 4})

	require.Equal(t, Classification{Page: 4, Type: PageAnswerKey, Confidence: 0.93}, result)
}

func TestClassifyClampsConfidence(t *testing.T) {
	run := ledger.NewBook().Start("paper.pdf")

	high := New(respond(`{"page_type": "cover", "confidence": 7}`)).Classify(context.Background(), run, document.Page{Number: 1})
	low := New(respond(`{"page_type": "cover", "confidence": -1}`)).Classify(context.Background(), run, document.Page{Number: 1})

	require.Equal(t, 1.0, high.Confidence)
	require.Equal(t, 0.0, low.Confidence)
}

func TestClassifyFailOpen(t *testing.T) {
	failing := completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
		return nil, errors.New("service unavailable")
	})

	for name, c := range map[string]provider.Completer{
		"oracle error":  failing,
		"parse failure": respond("this page looks like questions to me"),
		"unknown label": respond(`{"page_type": "appendix", "confidence": 0.99}`),
	} {
		t.Run(name, func(t *testing.T) {
			run := ledger.NewBook().Start("paper.pdf")

			result := New(c).Classify(context.Background(), run, document.Page{Number: 2})

			require.Equal(t, PageQuestion, result.Type)
			require.Equal(t, 0.5, result.Confidence)
			require.Equal(t, 2, result.Page)
		})
	}
}

func TestClassifyPreview(t *testing.T) {
	var prompt string
	var schema *provider.Schema

	c := completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
		prompt = messages[0].Content.String()
		schema = options.Schema

		return nil, errors.New("stop")
	})

	page := document.Page{Number: 1, Text: strings.Repeat("a", PreviewSize) + "TAIL"}

	New(c).Classify(context.Background(), ledger.NewBook().Start("paper.pdf"), page)

	require.Contains(t, prompt, strings.Repeat("a", PreviewSize))
	require.NotContains(t, prompt, "TAIL")
	require.NotNil(t, schema)
	require.Contains(t, schema.Schema, "properties")
}
