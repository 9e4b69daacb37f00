package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paperscan/paperscan/pkg/provider"

	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	var body map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4.1-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "length",
				"message": {"role": "assistant", "content": "{\"answers\": []}"}
			}],
			"usage": {"prompt_tokens": 900, "completion_tokens": 40, "total_tokens": 940}
		}`)
	}))

	defer server.Close()

	c, err := NewCompleter(server.URL+"/v1", "gpt-4.1-mini", WithToken("secret"))
	require.NoError(t, err)

	schema := provider.MustSchemaFor[struct {
		Answers []string `json:"answers"`
	}]("answer_key", "answer key entries")

	completion, err := c.Complete(context.Background(), []provider.Message{
		provider.SystemMessage("You are extracting the answer key."),
		provider.UserMessage("Extract the answers."),
	}, &provider.CompleteOptions{
		Schema: schema,
	})

	require.NoError(t, err)
	require.Equal(t, `{"answers": []}`, completion.Text())
	require.Equal(t, provider.CompletionReasonLength, completion.Reason)
	require.Equal(t, 900, completion.Usage.InputTokens)
	require.Equal(t, 40, completion.Usage.OutputTokens)

	format, ok := body["response_format"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "json_schema", format["type"])
	require.Len(t, body["messages"], 2)
}
