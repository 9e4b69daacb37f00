package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/paperscan/paperscan/pkg/classifier"
	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/paperscan/paperscan/pkg/store"

	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error)

func (f completerFunc) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	return f(ctx, messages, options)
}

type parserFunc func(ctx context.Context, path string) ([]document.Page, error)

func (f parserFunc) Parse(ctx context.Context, path string) ([]document.Page, error) {
	return f(ctx, path)
}

const (
	questionResponse = "```json\n" + `{"questions": [{
		"question_number": "1",
		"question_text": "Which of these animals is a mammal?",
		"response_type": "MULTIPLE_CHOICE",
		"marks": 2,
		"options": [
			{"label": "A", "text": "Shark"},
			{"label": "B", "text": "Whale"},
			{"label": "C", "text": "Trout"},
			{"label": "D", "text": "Octopus"}
		],
		"diagrams": [{
			"diagram_description": "four animals",
			"diagram_type": "ILLUSTRATION",
			"bounding_box": {"x_min": 100, "y_min": 200, "x_max": 900, "y_max": 600}
		}]
	}]}` + "\n```"

	answerResponse = `{"answers": [{"question_ref": "1", "answer": "B", "explanation": "Whales breathe air"}]}`
)

func fakeOracle(calls *atomic.Int32) provider.Completer {
	return completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
		calls.Add(1)

		prompt := messages[0].Content.String()

		var text string

		switch {
		case strings.Contains(prompt, "classifying exam paper pages"):
			text = `{"page_type": "question", "confidence": 0.9}`

			if strings.Contains(prompt, "ANSWER KEY") {
				text = `{"page_type": "Answers", "confidence": 0.95}`
			}

		case strings.Contains(prompt, "extracting exam questions"):
			text = questionResponse

		case strings.Contains(prompt, "extracting the answer key"):
			text = answerResponse

		default:
			return nil, errors.New("unexpected prompt")
		}

		return &provider.Completion{
			Model: "gemini-2.5-flash",

			Message: &provider.Message{
				Role:    provider.MessageRoleAssistant,
				Content: provider.MessageContent{provider.TextContent(text)},
			},

			Usage: &provider.Usage{InputTokens: 1000, OutputTokens: 100},
		}, nil
	})
}

func twoPages(ctx context.Context, path string) ([]document.Page, error) {
	return []document.Page{
		{Number: 1, Text: "Science Paper\n1. Which of these animals is a mammal?\n(A) Shark (B) Whale (C) Trout (D) Octopus"},
		{Number: 2, Text: "ANSWER KEY\n1. B"},
	}, nil
}

func TestProcess(t *testing.T) {
	var calls atomic.Int32

	mem := store.NewMemory()

	p := New(fakeOracle(&calls), parserFunc(twoPages), DefaultOptions(), WithStore(mem))

	paper, err := p.Process(context.Background(), "papers/p6-science-sa2-2023-rosyth.pdf")
	require.NoError(t, err)

	require.Len(t, paper.Questions, 1)

	q := paper.Questions[0]
	require.Equal(t, "1", q.Number)
	require.Equal(t, exam.ResponseMultipleChoice, q.ResponseType)
	require.NotNil(t, q.AnswerKey)
	require.Equal(t, "B", q.AnswerKey.FinalAnswer)

	var correct []string

	for _, o := range q.Options() {
		if o.Correct {
			correct = append(correct, o.Label)
		}
	}

	require.Equal(t, []string{"B"}, correct)

	require.Len(t, q.Diagrams, 1)

	require.Equal(t, exam.SubjectScience, paper.Metadata.Subject)
	require.Equal(t, 2023, paper.Metadata.Year)

	require.Equal(t, 2, paper.Metrics.PagesProcessed)
	require.Equal(t, 1, paper.Metrics.AnswersMerged)
	require.Equal(t, 1, paper.Metrics.AnswerKeysExtracted)
	require.Equal(t, 1, paper.Metrics.DiagramsExtracted)
	require.Equal(t, 4400, paper.Metrics.TotalTokens)
	require.Empty(t, paper.Metrics.Errors)

	// two classifications, one question and one answer extraction
	require.EqualValues(t, 4, calls.Load())

	require.Contains(t, mem.Papers, "p6-science-sa2-2023-rosyth")
	require.Len(t, mem.AnswerKeys["p6-science-sa2-2023-rosyth"].Answers, 1)
	require.Len(t, mem.Runs, 1)
	require.Equal(t, paper.Metrics.RunID, mem.Runs[0].RunID)
}

func TestProcessPricesServingModel(t *testing.T) {
	var calls atomic.Int32

	options := DefaultOptions()
	options.Model = "pool"

	p := New(fakeOracle(&calls), parserFunc(twoPages), options)

	paper, err := p.Process(context.Background(), "p6-science.pdf")
	require.NoError(t, err)

	require.Equal(t, 4400, paper.Metrics.TotalTokens)
	require.InDelta(t, 0.00042, paper.Metrics.TotalCost, 1e-9)
}

func TestProcessLinksReferencedDiagram(t *testing.T) {
	parser := parserFunc(func(ctx context.Context, path string) ([]document.Page, error) {
		return []document.Page{{Number: 1, Text: "1. Which of these animals is a mammal?"}}, nil
	})

	for _, tt := range []struct {
		text     string
		diagrams int
	}{
		{"Refer to the diagram. Which of these animals", 1},
		{"Which of these animals", 0},
	} {
		var calls atomic.Int32

		response := strings.Replace(questionResponse, `"diagram_type": "ILLUSTRATION",`, `"diagram_type": "ILLUSTRATION", "associated_question": "9",`, 1)
		response = strings.Replace(response, "Which of these animals", tt.text, 1)

		oracle := completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
			if strings.Contains(messages[0].Content.String(), "extracting exam questions") {
				return &provider.Completion{
					Message: &provider.Message{Content: provider.MessageContent{provider.TextContent(response)}},
				}, nil
			}

			return fakeOracle(&calls).Complete(ctx, messages, options)
		})

		paper, err := New(oracle, parser, DefaultOptions()).Process(context.Background(), "paper.pdf")
		require.NoError(t, err)

		require.Len(t, paper.Questions, 1)
		require.Len(t, paper.Questions[0].Diagrams, tt.diagrams)
		require.Equal(t, 1, paper.Metrics.DiagramsExtracted)
		require.Nil(t, paper.Questions[0].AnswerKey)
	}
}

func TestProcessWithoutAnswersAndDiagrams(t *testing.T) {
	var calls atomic.Int32

	options := DefaultOptions()
	options.ExtractAnswers = false
	options.ExtractDiagrams = false

	paper, err := New(fakeOracle(&calls), parserFunc(twoPages), options).Process(context.Background(), "paper.pdf")
	require.NoError(t, err)

	require.Len(t, paper.Questions, 1)
	require.Nil(t, paper.Questions[0].AnswerKey)
	require.Zero(t, paper.Metrics.DiagramsExtracted)
	require.EqualValues(t, 3, calls.Load())
}

func TestProcessClassificationFailure(t *testing.T) {
	oracle := completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
		if strings.Contains(messages[0].Content.String(), "classifying exam paper pages") {
			return nil, errors.New("quota exceeded")
		}

		return &provider.Completion{
			Message: &provider.Message{Content: provider.MessageContent{provider.TextContent(`{"questions": []}`)}},
		}, nil
	})

	c := classifier.New(oracle).Classify(context.Background(), ledger.NewBook().Start("paper.pdf"), document.Page{Number: 2, Text: "ANSWER KEY"})

	require.Equal(t, classifier.PageQuestion, c.Type)
	require.Equal(t, classifier.FallbackConfidence, c.Confidence)

	paper, err := New(oracle, parserFunc(twoPages), DefaultOptions()).Process(context.Background(), "paper.pdf")
	require.NoError(t, err)

	require.Empty(t, paper.Questions)
	require.Len(t, paper.Metrics.Errors, 2)
}

func TestProcessParseFailure(t *testing.T) {
	var calls atomic.Int32

	mem := store.NewMemory()

	parser := parserFunc(func(ctx context.Context, path string) ([]document.Page, error) {
		return nil, document.ErrNotFound
	})

	p := New(fakeOracle(&calls), parser, DefaultOptions(), WithStore(mem))

	_, err := p.Process(context.Background(), "missing.pdf")
	require.ErrorIs(t, err, document.ErrNotFound)
	require.Contains(t, err.Error(), "missing.pdf")

	require.Zero(t, calls.Load())
	require.Len(t, mem.Runs, 1)
	require.Len(t, mem.Runs[0].Errors, 1)
}

func TestProcessConcurrentPages(t *testing.T) {
	var calls atomic.Int32

	parser := parserFunc(func(ctx context.Context, path string) ([]document.Page, error) {
		var pages []document.Page

		for i := 1; i <= 6; i++ {
			pages = append(pages, document.Page{Number: i, Text: "question page"})
		}

		return pages, nil
	})

	options := DefaultOptions()
	options.PageConcurrency = 4

	paper, err := New(fakeOracle(&calls), parser, options).Process(context.Background(), "paper.pdf")
	require.NoError(t, err)

	require.Len(t, paper.Questions, 6)

	for i, q := range paper.Questions {
		require.Equal(t, i+1, q.Source.Page)
	}
}

func TestProcessAll(t *testing.T) {
	var calls atomic.Int32

	parser := parserFunc(func(ctx context.Context, path string) ([]document.Page, error) {
		if path == "broken.pdf" {
			return nil, errors.New("malformed xref table")
		}

		return twoPages(ctx, path)
	})

	book := ledger.NewBook()

	for _, parallel := range []bool{false, true} {
		p := New(fakeOracle(&calls), parser, DefaultOptions(), WithBook(book))

		papers, failures := p.ProcessAll(context.Background(), []string{"a.pdf", "broken.pdf", "b.pdf"}, parallel)

		require.Len(t, papers, 2)
		require.Equal(t, "a.pdf", papers[0].Metadata.SourceFile)
		require.Equal(t, "b.pdf", papers[1].Metadata.SourceFile)

		require.Len(t, failures, 1)
		require.Equal(t, "broken.pdf", failures[0].Path)
	}

	require.Len(t, book.Runs(), 6)
}

func TestProcessCanceled(t *testing.T) {
	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fakeOracle(&calls), parserFunc(twoPages), DefaultOptions()).Process(ctx, "paper.pdf")
	require.ErrorIs(t, err, context.Canceled)
}

func TestName(t *testing.T) {
	require.Equal(t, "p6-math", Name("/tmp/papers/p6-math.pdf"))
	require.Equal(t, "paper", Name("paper"))
}
