package ledger

import (
	"log/slog"
	"sync"
)

// Book is the append-only ledger shared by all runs of a process.
type Book struct {
	pricing Pricing
	logger  *slog.Logger

	mu   sync.Mutex
	runs []Summary
}

type Option func(*Book)

func WithPricing(pricing Pricing) Option {
	return func(b *Book) {
		b.pricing = DefaultPricing().Merge(pricing)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Book) {
		b.logger = logger
	}
}

func NewBook(options ...Option) *Book {
	b := &Book{
		pricing: DefaultPricing(),
		logger:  slog.Default(),
	}

	for _, option := range options {
		option(b)
	}

	return b
}

// Start opens a new run segment for the given document.
func (b *Book) Start(document string) *Run {
	run := newRun(document, b.pricing)

	b.logger.Info("started extraction run", "run", run.ID, "document", document)

	return run
}

// Commit ends the run and appends its summary to the book.
func (b *Book) Commit(run *Run) (Summary, error) {
	if err := run.finish(); err != nil {
		return Summary{}, err
	}

	s := run.Summary()

	b.mu.Lock()
	b.runs = append(b.runs, s)
	b.mu.Unlock()

	b.logger.Info("completed extraction run",
		"run", s.RunID,
		"questions", s.QuestionsExtracted,
		"diagrams", s.DiagramsExtracted,
		"tokens", s.TotalTokens,
		"cost", s.TotalCost,
	)

	return s, nil
}

// Runs returns the summaries committed so far.
func (b *Book) Runs() []Summary {
	b.mu.Lock()
	defer b.mu.Unlock()

	return append([]Summary{}, b.runs...)
}

// Totals returns the token and cost totals over all committed runs.
func (b *Book) Totals() (tokens int, cost float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.runs {
		tokens += s.TotalTokens
		cost += s.TotalCost
	}

	return tokens, cost
}
