package ollama

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
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		require.Equal(t, "llava", req["model"])
		require.Equal(t, "You are classifying exam paper pages.", req["system"])
		require.Equal(t, "Classify this page.", req["prompt"])
		require.Equal(t, false, req["stream"])
		require.Len(t, req["images"], 1)
		require.Contains(t, req["format"], "properties")

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"model":"llava","response":"{\"page_type\":\"question\"}","done":true,"done_reason":"stop","prompt_eval_count":640,"eval_count":12}`)
	}))

	defer server.Close()

	c, err := NewCompleter(server.URL, "llava")
	require.NoError(t, err)

	schema := provider.MustSchemaFor[struct {
		PageType string `json:"page_type"`
	}]("classification", "page classification")

	completion, err := c.Complete(context.Background(), []provider.Message{
		provider.SystemMessage("You are classifying exam paper pages."),
		provider.UserMessage("Classify this page.", &provider.File{
			Name:        "page-1.png",
			Content:     []byte{0x89, 'P', 'N', 'G'},
			ContentType: "image/png",
		}),
	}, &provider.CompleteOptions{
		Temperature: provider.Ptr[float32](0.1),
		Schema:      schema,
	})

	require.NoError(t, err)
	require.Equal(t, `{"page_type":"question"}`, completion.Text())
	require.Equal(t, 640, completion.Usage.InputTokens)
	require.Equal(t, 12, completion.Usage.OutputTokens)
}

func TestCompleteUnsupportedFile(t *testing.T) {
	c, err := NewCompleter("http://localhost:11434", "llava")
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), []provider.Message{
		provider.UserMessage("Read this.", &provider.File{
			Name:        "paper.pdf",
			Content:     []byte("%PDF"),
			ContentType: "application/pdf",
		}),
	}, nil)

	require.Error(t, err)
}
