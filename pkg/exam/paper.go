package exam

import (
	"time"

	"github.com/google/uuid"
	"github.com/paperscan/paperscan/pkg/ledger"
)

type Metadata struct {
	ID         string  `json:"id"`
	SourceFile string  `json:"source_file"`
	Subject    Subject `json:"subject"`

	GradeLevel string `json:"grade_level,omitempty"`
	ExamType   string `json:"exam_type,omitempty"`
	School     string `json:"school,omitempty"`
	Year       int    `json:"year,omitempty"`

	TotalMarks      *float64 `json:"total_marks,omitempty"`
	DurationMinutes *int     `json:"duration_minutes,omitempty"`

	ExtractedAt time.Time `json:"extracted_at"`
}

func NewMetadata(source string) Metadata {
	return Metadata{
		ID:         uuid.NewString(),
		SourceFile: source,
		Subject:    SubjectOther,

		ExtractedAt: time.Now(),
	}
}

type Metrics struct {
	RunID string `json:"run_id"`

	TotalTokens int     `json:"total_tokens_used"`
	TotalCost   float64 `json:"total_cost_usd"`

	ProcessingSeconds float64 `json:"processing_time_seconds"`

	PagesProcessed      int `json:"pages_processed"`
	QuestionsExtracted  int `json:"questions_extracted"`
	DiagramsExtracted   int `json:"diagrams_extracted"`
	AnswerKeysExtracted int `json:"answer_keys_extracted"`
	AnswersMerged       int `json:"answers_merged"`

	Stages []string `json:"agents_used"`

	Errors []ledger.Failure `json:"errors"`
}

// Paper is the root aggregate of one processed document.
type Paper struct {
	Metadata  Metadata    `json:"metadata"`
	Questions []*Question `json:"questions"`
	Metrics   Metrics     `json:"extraction_metrics"`
}

// AnswerKeyEntry is an answer key under the reference printed in the
// answer key pages.
type AnswerKeyEntry struct {
	QuestionRef string `json:"question_ref"`

	*AnswerKey
}

// AnswerKeySheet is the standalone answer key document of a paper.
type AnswerKeySheet struct {
	SourcePDF   string    `json:"source_pdf"`
	ExtractedAt time.Time `json:"extracted_at"`

	Answers []AnswerKeyEntry `json:"answers"`
}
