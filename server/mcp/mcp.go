package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/server/api"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type Handler struct {
	server *mcp.Server
	http   http.Handler

	extractor api.Extractor
	book      *ledger.Book
}

type ExtractInput struct {
	Name    string `json:"name" jsonschema:"file name of the exam paper, ending in .pdf"`
	Content string `json:"content" jsonschema:"base64 encoded PDF document"`
}

type RunsInput struct{}

func New(extractor api.Extractor, book *ledger.Book) *Handler {
	h := &Handler{
		server: mcp.NewServer(&mcp.Implementation{Name: "paperscan", Version: "v1"}, nil),

		extractor: extractor,
		book:      book,
	}

	mcp.AddTool(h.server, &mcp.Tool{
		Name:        "extract_paper",
		Description: "Extract the questions, diagrams and answer keys of an exam paper PDF",
	}, h.extractPaper)

	mcp.AddTool(h.server, &mcp.Tool{
		Name:        "list_runs",
		Description: "List the extraction runs with their token usage and cost",
	}, h.listRuns)

	h.http = mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return h.server
	}, nil)

	return h
}

// Server returns the underlying MCP server.
func (h *Handler) Server() *mcp.Server {
	return h.server
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.http.ServeHTTP(w, r)
}

func (h *Handler) extractPaper(ctx context.Context, req *mcp.CallToolRequest, input ExtractInput) (*mcp.CallToolResult, any, error) {
	name := filepath.Base(input.Name)

	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		return nil, nil, errors.New("name must end in .pdf")
	}

	data, err := base64.StdEncoding.DecodeString(input.Content)

	if err != nil {
		return nil, nil, err
	}

	dir, err := os.MkdirTemp("", "paperscan-mcp-")

	if err != nil {
		return nil, nil, err
	}

	defer os.RemoveAll(dir)

	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, nil, err
	}

	paper, err := h.extractor.Process(ctx, path)

	if err != nil {
		return nil, nil, err
	}

	return textResult(paper)
}

func (h *Handler) listRuns(ctx context.Context, req *mcp.CallToolRequest, input RunsInput) (*mcp.CallToolResult, any, error) {
	tokens, cost := h.book.Totals()

	return textResult(api.RunsResponse{
		Runs: h.book.Runs(),

		TotalTokens: tokens,
		TotalCost:   cost,
	})
}

func textResult(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)

	if err != nil {
		return nil, nil, err
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil, nil
}
