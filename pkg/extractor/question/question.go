package question

import (
	"context"
	_ "embed"
	"log/slog"
	"strings"
	"text/template"

	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/extractor"
	"github.com/paperscan/paperscan/pkg/extractor/diagram"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/provider"
)

const Agent = "QuestionExtractor"

var (
	//go:embed prompt.tmpl
	promptText string

	promptTemplate = template.Must(template.New("question").Parse(promptText))
)

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

// Extract returns the questions of a page and the diagrams reported with
// them. Oracle failures are recorded in the run and yield no questions.
func (e *Extractor) Extract(ctx context.Context, run *ledger.Run, page document.Page) ([]*exam.Question, []diagram.Info) {
	e.logger.Info("extracting questions", "page", page.Number)

	prompt, err := renderPrompt(page)

	if err != nil {
		run.Fail(Agent, page.Number, err)
		return nil, nil
	}

	record, err := e.oracle.Ask(ctx, run, extractor.Request{
		Agent:     Agent,
		Operation: "extract_questions",

		Prompt: prompt,
		Page:   page,
	})

	if err != nil {
		e.logger.Error("failed to extract questions", "page", page.Number, "error", err)
		run.Fail(Agent, page.Number, err)

		return nil, nil
	}

	questions, infos := normalize(record, page.Number, e.logger)

	e.logger.Info("extracted questions", "page", page.Number, "questions", len(questions), "diagrams", len(infos))

	return questions, infos
}

func renderPrompt(page document.Page) (string, error) {
	var sb strings.Builder

	err := promptTemplate.Execute(&sb, map[string]any{
		"Page": page.Number,
		"Text": page.Text,
	})

	return sb.String(), err
}
