package question

import (
	"context"
	"errors"
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

func textCompletion(text string) *provider.Completion {
	return &provider.Completion{
		Message: &provider.Message{
			Role:    provider.MessageRoleAssistant,
			Content: provider.MessageContent{provider.TextContent(text)},
		},

		Usage: &provider.Usage{InputTokens: 10, OutputTokens: 5},
	}
}

func TestExtract(t *testing.T) {
	var prompt string

	c := completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
		prompt = messages[0].Content.String()
		return textCompletion(`{"questions": [{"question_number": "1", "question_text": "2 + 2?"}]}`), nil
	})

	run := ledger.NewBook().Start("paper.pdf")

	questions, infos := New(c, WithModel("gemini-2.5-flash")).Extract(context.Background(), run, document.Page{Number: 1, Text: "1. 2 + 2?"})

	require.Len(t, questions, 1)
	require.Empty(t, infos)
	require.Contains(t, prompt, "1. 2 + 2?")
	require.Contains(t, prompt, `"page_number": 1`)
	require.Equal(t, []string{Agent}, run.Summary().Stages)
}

func TestExtractOracleFailure(t *testing.T) {
	c := completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
		return nil, errors.New("unavailable")
	})

	run := ledger.NewBook().Start("paper.pdf")

	questions, infos := New(c).Extract(context.Background(), run, document.Page{Number: 4})

	require.Nil(t, questions)
	require.Nil(t, infos)

	failures := run.Failures()
	require.Len(t, failures, 1)
	require.Equal(t, 4, failures[0].Page)
	require.Equal(t, Agent, failures[0].Agent)
}
