package classifier

import (
	"context"
	_ "embed"
	"log/slog"
	"strings"
	"text/template"

	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/extractor"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/provider"
)

const Agent = "PageClassifier"

const (
	// PreviewSize is the number of text characters sent with the page image.
	PreviewSize = 500

	// FallbackConfidence is reported when the page could not be classified.
	FallbackConfidence = 0.5
)

type PageType string

const (
	PageQuestion    PageType = "question"
	PageAnswerKey   PageType = "answer_key"
	PageInstruction PageType = "instruction"
	PageCover       PageType = "cover"
	PageMixed       PageType = "mixed"
)

var pageTypes = map[string]PageType{
	"question":       PageQuestion,
	"questions":      PageQuestion,
	"answer_key":     PageAnswerKey,
	"answer key":     PageAnswerKey,
	"answers":        PageAnswerKey,
	"answer":         PageAnswerKey,
	"solutions":      PageAnswerKey,
	"marking scheme": PageAnswerKey,
	"instruction":    PageInstruction,
	"instructions":   PageInstruction,
	"cover":          PageCover,
	"title":          PageCover,
	"cover page":     PageCover,
	"mixed":          PageMixed,
	"both":           PageMixed,
}

// ParsePageType maps a free-form label onto a PageType. Unknown or empty
// labels yield PageQuestion and false.
func ParsePageType(s string) (PageType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "-", " ")

	if t, ok := pageTypes[s]; ok {
		return t, true
	}

	return PageQuestion, false
}

// Classification is the verdict for a single page.
type Classification struct {
	Page       int      `json:"page"`
	Type       PageType `json:"type"`
	Confidence float64  `json:"confidence"`
}

type verdict struct {
	PageType   string  `json:"page_type" jsonschema:"one of question, answer_key, instruction, cover, mixed"`
	Confidence float64 `json:"confidence" jsonschema:"confidence between 0 and 1"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

var (
	//go:embed prompt.tmpl
	promptText string

	promptTemplate = template.Must(template.New("classifier").Parse(promptText))

	verdictSchema = provider.MustSchemaFor[verdict]("page_classification", "Exam page classification")
)

type Classifier struct {
	oracle *extractor.Oracle
	logger *slog.Logger
}

type Option func(*Classifier)

func WithModel(model string) Option {
	return func(c *Classifier) {
		c.oracle.Model = model
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

func New(completer provider.Completer, options ...Option) *Classifier {
	c := &Classifier{
		oracle: &extractor.Oracle{
			Completer: completer,
			Schema:    verdictSchema,
		},

		logger: slog.Default(),
	}

	for _, option := range options {
		option(c)
	}

	return c
}

// Classify asks the oracle for the type of a page. It never fails: any
// error yields PageQuestion with FallbackConfidence.
func (c *Classifier) Classify(ctx context.Context, run *ledger.Run, page document.Page) Classification {
	fallback := Classification{
		Page:       page.Number,
		Type:       PageQuestion,
		Confidence: FallbackConfidence,
	}

	var sb strings.Builder

	if err := promptTemplate.Execute(&sb, map[string]any{"Preview": page.Preview(PreviewSize)}); err != nil {
		run.Fail(Agent, page.Number, err)
		return fallback
	}

	record, err := c.oracle.Ask(ctx, run, extractor.Request{
		Agent:     Agent,
		Operation: "detect_page_type",

		Prompt: sb.String(),
		Page:   page,
	})

	if err != nil {
		c.logger.Warn("failed to classify page, defaulting to question", "page", page.Number, "error", err)
		run.Fail(Agent, page.Number, err)

		return fallback
	}

	label := record.String("page_type")
	t, ok := ParsePageType(label)

	if !ok {
		c.logger.Warn("unrecognized page type, defaulting to question", "page", page.Number, "type", label)
		return fallback
	}

	confidence, ok := record.Float("confidence")

	if !ok {
		confidence = FallbackConfidence
	}

	result := Classification{
		Page:       page.Number,
		Type:       t,
		Confidence: min(max(confidence, 0), 1),
	}

	c.logger.Debug("classified page", "page", page.Number, "type", result.Type, "confidence", result.Confidence)

	return result
}
