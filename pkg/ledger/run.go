package ledger

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Usage is the token consumption of one oracle call.
type Usage struct {
	Agent     string `json:"agent"`
	Operation string `json:"operation"`
	Model     string `json:"model"`

	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`

	Time time.Time `json:"timestamp"`
}

// Failure is a recoverable error recorded during a run.
type Failure struct {
	Agent   string `json:"agent"`
	Page    int    `json:"page,omitempty"`
	Message string `json:"error_message"`

	Time time.Time `json:"timestamp"`
}

type AgentUsage struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Calls  int `json:"calls"`
}

// Run is the ledger segment of a single document. It is safe for
// concurrent use by the stages of that document.
type Run struct {
	ID       string
	Document string

	pricing Pricing

	mu sync.Mutex

	start time.Time
	end   time.Time

	usage    []Usage
	failures []Failure
	stages   []string

	pages     int
	questions int
	diagrams  int
}

func newRun(document string, pricing Pricing) *Run {
	return &Run{
		ID:       uuid.NewString()[:8],
		Document: document,

		pricing: pricing,

		start: time.Now(),
	}
}

// Record appends the token usage of one oracle call.
func (r *Run) Record(agent, operation, model string, input, output int) {
	if model == "" {
		model = DefaultModel
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.usage = append(r.usage, Usage{
		Agent:     agent,
		Operation: operation,
		Model:     model,

		InputTokens:  input,
		OutputTokens: output,
		TotalTokens:  input + output,

		Time: time.Now(),
	})

	r.addStage(agent)
}

// Fail appends a recoverable error. Nil errors are ignored.
func (r *Run) Fail(agent string, page int, err error) {
	if err == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.failures = append(r.failures, Failure{
		Agent:   agent,
		Page:    page,
		Message: err.Error(),

		Time: time.Now(),
	})
}

// Count adds to the extraction counters of the run.
func (r *Run) Count(pages, questions, diagrams int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pages += pages
	r.questions += questions
	r.diagrams += diagrams
}

func (r *Run) addStage(agent string) {
	for _, s := range r.stages {
		if s == agent {
			return
		}
	}

	r.stages = append(r.stages, agent)
}

// Failures returns a copy of the recorded failures.
func (r *Run) Failures() []Failure {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Failure{}, r.failures...)
}

// Summary is the serializable view of a run.
type Summary struct {
	RunID    string `json:"run_id"`
	Document string `json:"pdf_path"`

	Start time.Time  `json:"start_time"`
	End   *time.Time `json:"end_time"`

	ProcessingSeconds float64 `json:"processing_time_seconds"`

	TotalTokens       int     `json:"total_tokens"`
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalCost         float64 `json:"total_cost_usd"`

	PagesProcessed     int `json:"pages_processed"`
	QuestionsExtracted int `json:"questions_extracted"`
	DiagramsExtracted  int `json:"diagrams_extracted"`

	Stages []string `json:"agents_used"`

	ByAgent map[string]AgentUsage `json:"usage_by_agent"`
	Usage   []Usage               `json:"token_usage_details"`

	Errors []Failure `json:"errors"`
}

func (r *Run) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		RunID:    r.ID,
		Document: r.Document,

		Start: r.start,

		PagesProcessed:     r.pages,
		QuestionsExtracted: r.questions,
		DiagramsExtracted:  r.diagrams,

		Stages: append([]string{}, r.stages...),

		ByAgent: map[string]AgentUsage{},
		Usage:   append([]Usage{}, r.usage...),

		Errors: append([]Failure{}, r.failures...),
	}

	end := time.Now()

	if !r.end.IsZero() {
		end = r.end
		s.End = &end
	}

	s.ProcessingSeconds = math.Round(end.Sub(r.start).Seconds()*100) / 100

	var cost float64

	for _, u := range r.usage {
		s.TotalInputTokens += u.InputTokens
		s.TotalOutputTokens += u.OutputTokens

		cost += r.pricing.Cost(u.Model, u.InputTokens, u.OutputTokens)

		a := s.ByAgent[u.Agent]
		a.Input += u.InputTokens
		a.Output += u.OutputTokens
		a.Calls++

		s.ByAgent[u.Agent] = a
	}

	s.TotalTokens = s.TotalInputTokens + s.TotalOutputTokens
	s.TotalCost = math.Round(cost*1e6) / 1e6

	return s
}

var ErrRunEnded = errors.New("run already ended")

func (r *Run) finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.end.IsZero() {
		return fmt.Errorf("run %s: %w", r.ID, ErrRunEnded)
	}

	r.end = time.Now()

	return nil
}
