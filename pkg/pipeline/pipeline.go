package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/paperscan/paperscan/pkg/classifier"
	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/extractor/answer"
	"github.com/paperscan/paperscan/pkg/extractor/diagram"
	"github.com/paperscan/paperscan/pkg/extractor/question"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/linker"
	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/paperscan/paperscan/pkg/store"

	"golang.org/x/sync/errgroup"
)

const Agent = "Orchestrator"

type Options struct {
	Model string

	ExtractDiagrams bool
	ExtractAnswers  bool

	// PageConcurrency bounds the oracle calls in flight per phase.
	PageConcurrency int
}

func DefaultOptions() Options {
	return Options{
		Model: ledger.DefaultModel,

		ExtractDiagrams: true,
		ExtractAnswers:  true,

		PageConcurrency: 1,
	}
}

// Pipeline turns exam documents into structured papers.
type Pipeline struct {
	options Options

	parser document.Parser

	classifier *classifier.Classifier
	questions  *question.Extractor
	answers    *answer.Extractor

	book   *ledger.Book
	store  store.Store
	logger *slog.Logger
}

type Option func(*Pipeline)

func WithBook(book *ledger.Book) Option {
	return func(p *Pipeline) {
		p.book = book
	}
}

func WithStore(store store.Store) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func New(completer provider.Completer, parser document.Parser, options Options, opts ...Option) *Pipeline {
	p := &Pipeline{
		options: options,
		parser:  parser,

		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.book == nil {
		p.book = ledger.NewBook(ledger.WithLogger(p.logger))
	}

	p.classifier = classifier.New(completer, classifier.WithModel(options.Model), classifier.WithLogger(p.logger))
	p.questions = question.New(completer, question.WithModel(options.Model), question.WithLogger(p.logger))
	p.answers = answer.New(completer, answer.WithModel(options.Model), answer.WithLogger(p.logger))

	return p
}

// Book returns the ledger the pipeline records its runs in.
func (p *Pipeline) Book() *ledger.Book {
	return p.book
}

// Process extracts one document. Page level failures are recorded in the run
// and degrade the result; document level failures are returned.
func (p *Pipeline) Process(ctx context.Context, path string) (*exam.Paper, error) {
	name := Name(path)
	run := p.book.Start(path)

	logger := p.logger.With("run", run.ID, "document", name)

	pages, err := p.parser.Parse(ctx, path)

	if err != nil {
		return nil, p.abort(ctx, run, path, err)
	}

	logger.Info("parsed document", "pages", len(pages))

	var first *document.Page

	if len(pages) > 0 {
		first = &pages[0]
	}

	metadata := DetectMetadata(path, first)

	classifications := make([]classifier.Classification, len(pages))

	if err := p.each(ctx, len(pages), func(ctx context.Context, i int) {
		classifications[i] = p.classifier.Classify(ctx, run, pages[i])
	}); err != nil {
		return nil, p.abort(ctx, run, path, err)
	}

	var questionPages, answerPages []document.Page

	for i, c := range classifications {
		switch c.Type {
		case classifier.PageQuestion:
			questionPages = append(questionPages, pages[i])

		case classifier.PageAnswerKey:
			answerPages = append(answerPages, pages[i])

		default:
			logger.Debug("page not routed", "page", c.Page, "type", c.Type)
		}
	}

	logger.Info("classified pages", "questions", len(questionPages), "answers", len(answerPages))

	questions, diagrams, err := p.extractQuestions(ctx, run, questionPages, logger)

	if err != nil {
		return nil, p.abort(ctx, run, path, err)
	}

	var entries []answer.Entry

	if p.options.ExtractAnswers && len(answerPages) > 0 {
		if entries, err = p.extractAnswers(ctx, run, answerPages); err != nil {
			return nil, p.abort(ctx, run, path, err)
		}
	}

	keys, ordered := answer.Collect(entries)

	merged := linker.MergeWithLogger(questions, keys, logger)

	if unmatched := linker.Unmatched(questions, keys); len(unmatched) > 0 {
		logger.Warn("answer keys without question", "refs", unmatched)
	}

	run.Count(len(pages), len(questions), diagrams)

	summary, err := p.book.Commit(run)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	paper := &exam.Paper{
		Metadata:  metadata,
		Questions: questions,

		Metrics: exam.Metrics{
			RunID: summary.RunID,

			TotalTokens: summary.TotalTokens,
			TotalCost:   summary.TotalCost,

			ProcessingSeconds: summary.ProcessingSeconds,

			PagesProcessed:      len(pages),
			QuestionsExtracted:  len(questions),
			DiagramsExtracted:   diagrams,
			AnswerKeysExtracted: len(ordered),
			AnswersMerged:       merged,

			Stages: summary.Stages,
			Errors: summary.Errors,
		},
	}

	if p.store != nil {
		if err := p.save(ctx, name, paper, ordered, summary); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	logger.Info("extracted paper",
		"questions", len(questions),
		"diagrams", diagrams,
		"answers", merged,
		"cost", summary.TotalCost,
	)

	return paper, nil
}

func (p *Pipeline) extractQuestions(ctx context.Context, run *ledger.Run, pages []document.Page, logger *slog.Logger) ([]*exam.Question, int, error) {
	type result struct {
		questions []*exam.Question
		infos     []diagram.Info
	}

	results := make([]result, len(pages))

	err := p.each(ctx, len(pages), func(ctx context.Context, i int) {
		questions, infos := p.questions.Extract(ctx, run, pages[i])
		results[i] = result{questions, infos}
	})

	if err != nil {
		return nil, 0, err
	}

	var questions []*exam.Question
	var diagrams int

	for i, r := range results {
		questions = append(questions, r.questions...)

		if !p.options.ExtractDiagrams || len(r.infos) == 0 {
			continue
		}

		detected := diagram.Build(r.infos, logger)
		diagram.Link(detected, r.questions, pages[i].Number)

		diagrams += len(detected)
	}

	return questions, diagrams, nil
}

func (p *Pipeline) extractAnswers(ctx context.Context, run *ledger.Run, pages []document.Page) ([]answer.Entry, error) {
	results := make([][]answer.Entry, len(pages))

	err := p.each(ctx, len(pages), func(ctx context.Context, i int) {
		results[i] = p.answers.Extract(ctx, run, pages[i])
	})

	if err != nil {
		return nil, err
	}

	var entries []answer.Entry

	for _, r := range results {
		entries = append(entries, r...)
	}

	return entries, nil
}

func (p *Pipeline) save(ctx context.Context, name string, paper *exam.Paper, entries []answer.Entry, summary ledger.Summary) error {
	if err := p.store.SavePaper(ctx, name, paper); err != nil {
		return fmt.Errorf("failed to save paper: %w", err)
	}

	if len(entries) > 0 {
		sheet := &exam.AnswerKeySheet{
			SourcePDF:   name,
			ExtractedAt: time.Now(),
		}

		for _, e := range entries {
			sheet.Answers = append(sheet.Answers, exam.AnswerKeyEntry{
				QuestionRef: e.Ref,
				AnswerKey:   e.Key,
			})
		}

		if err := p.store.SaveAnswerKeys(ctx, name, sheet); err != nil {
			return fmt.Errorf("failed to save answer keys: %w", err)
		}
	}

	if err := p.store.SaveRun(ctx, summary); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// abort records err, ends the run and returns err wrapped with the document.
func (p *Pipeline) abort(ctx context.Context, run *ledger.Run, path string, err error) error {
	run.Fail(Agent, 0, err)

	summary, cerr := p.book.Commit(run)

	if cerr != nil {
		p.logger.Error("failed to commit run", "run", run.ID, "error", cerr)
	} else if p.store != nil {
		if serr := p.store.SaveRun(context.WithoutCancel(ctx), summary); serr != nil {
			p.logger.Error("failed to save run", "run", run.ID, "error", serr)
		}
	}

	return fmt.Errorf("%s: %w", path, err)
}

// each runs fn for every index with at most PageConcurrency calls in flight.
func (p *Pipeline) each(ctx context.Context, n int, fn func(ctx context.Context, i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.options.PageConcurrency))

	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			fn(gctx, i)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	return ctx.Err()
}

// Failure is a document that could not be processed.
type Failure struct {
	Path string
	Err  error
}

func (f Failure) Error() string {
	return f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}

// ProcessAll extracts every document. A failing document does not stop its
// siblings. Papers are returned in input order.
func (p *Pipeline) ProcessAll(ctx context.Context, paths []string, parallel bool) ([]*exam.Paper, []Failure) {
	papers := make([]*exam.Paper, len(paths))
	errs := make([]error, len(paths))

	if parallel {
		var g errgroup.Group

		for i, path := range paths {
			g.Go(func() error {
				papers[i], errs[i] = p.Process(ctx, path)
				return nil
			})
		}

		g.Wait()
	} else {
		for i, path := range paths {
			papers[i], errs[i] = p.Process(ctx, path)
		}
	}

	var result []*exam.Paper
	var failures []Failure

	for i, paper := range papers {
		if errs[i] != nil {
			p.logger.Error("failed to process document", "document", paths[i], "error", errs[i])
			failures = append(failures, Failure{Path: paths[i], Err: errs[i]})

			continue
		}

		result = append(result, paper)
	}

	return result, failures
}

// Name returns the file name of path without its extension.
func Name(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
