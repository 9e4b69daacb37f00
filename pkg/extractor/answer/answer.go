package answer

import (
	"context"
	_ "embed"
	"log/slog"
	"strings"
	"text/template"

	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/extractor"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/provider"
)

const Agent = "AnswerKeyAgent"

var (
	//go:embed prompt.tmpl
	promptText string

	promptTemplate = template.Must(template.New("answer").Parse(promptText))
)

// Entry is an answer key under the reference it was printed with.
type Entry struct {
	Ref string
	Key *exam.AnswerKey
}

type Extractor struct {
	oracle *extractor.Oracle
	logger *slog.Logger
}

type Option func(*Extractor)

func WithModel(model string) Option {
	return func(e *Extractor) {
		e.oracle.Model = model
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func New(completer provider.Completer, options ...Option) *Extractor {
	e := &Extractor{
		oracle: &extractor.Oracle{
			Completer: completer,
		},

		logger: slog.Default(),
	}

	for _, option := range options {
		option(e)
	}

	return e
}

// Extract returns the answer keys printed on an answer key page. Oracle
// failures are recorded in the run and yield no entries.
func (e *Extractor) Extract(ctx context.Context, run *ledger.Run, page document.Page) []Entry {
	e.logger.Info("extracting answer keys", "page", page.Number)

	var sb strings.Builder

	if err := promptTemplate.Execute(&sb, map[string]any{"Text": page.Text}); err != nil {
		run.Fail(Agent, page.Number, err)
		return nil
	}

	record, err := e.oracle.Ask(ctx, run, extractor.Request{
		Agent:     Agent,
		Operation: "extract_answers",

		Prompt: sb.String(),
		Page:   page,
	})

	if err != nil {
		e.logger.Error("failed to extract answer keys", "page", page.Number, "error", err)
		run.Fail(Agent, page.Number, err)

		return nil
	}

	entries := normalize(record, e.logger)

	e.logger.Info("extracted answer keys", "page", page.Number, "answers", len(entries))

	return entries
}

// Collect indexes entries by reference. A later entry for the same
// reference replaces an earlier one but keeps its position.
func Collect(entries []Entry) (map[string]*exam.AnswerKey, []Entry) {
	keys := make(map[string]*exam.AnswerKey, len(entries))
	index := make(map[string]int, len(entries))

	var ordered []Entry

	for _, e := range entries {
		keys[e.Ref] = e.Key

		if i, ok := index[e.Ref]; ok {
			ordered[i] = e
			continue
		}

		index[e.Ref] = len(ordered)
		ordered = append(ordered, e)
	}

	return keys, ordered
}
