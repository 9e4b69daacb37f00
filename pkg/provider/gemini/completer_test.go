package gemini

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paperscan/paperscan/pkg/provider"

	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	var body map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.5-flash:generateContent"), r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("X-Goog-Api-Key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"responseId": "resp-1",
			"modelVersion": "gemini-2.5-flash-001",
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "{\"questions\": []}"}]},
				"finishReason": "MAX_TOKENS"
			}],
			"usageMetadata": {"promptTokenCount": 1500, "candidatesTokenCount": 60}
		}`)
	}))

	defer server.Close()

	c, err := NewCompleter(server.URL, "gemini-2.5-flash", WithToken("secret"))
	require.NoError(t, err)

	completion, err := c.Complete(context.Background(), []provider.Message{
		provider.SystemMessage("You are extracting exam questions."),
		provider.UserMessage("Extract the questions.", &provider.File{
			Name:        "page-1.png",
			Content:     []byte{0x89, 'P', 'N', 'G'},
			ContentType: "image/png",
		}),
	}, &provider.CompleteOptions{
		Format:      provider.CompletionFormatJSON,
		Temperature: provider.Ptr[float32](0.1),
	})

	require.NoError(t, err)
	require.Equal(t, "resp-1", completion.ID)
	require.Equal(t, "gemini-2.5-flash-001", completion.Model)
	require.Equal(t, `{"questions": []}`, completion.Text())
	require.Equal(t, provider.CompletionReasonLength, completion.Reason)
	require.Equal(t, 1500, completion.Usage.InputTokens)
	require.Equal(t, 60, completion.Usage.OutputTokens)

	config, ok := body["generationConfig"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "application/json", config["responseMimeType"])
	require.Contains(t, body, "systemInstruction")
}

func TestConvertContentsUnsupportedRole(t *testing.T) {
	_, err := convertContents([]provider.Message{{Role: "tool"}})
	require.Error(t, err)
}
