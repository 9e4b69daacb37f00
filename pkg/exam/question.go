package exam

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrMissingOptions = errors.New("multiple choice question has no options")

type Content struct {
	Text      string `json:"text"`
	TextLatex string `json:"text_latex,omitempty"`
	TextHTML  string `json:"text_html,omitempty"`
}

type MCQOption struct {
	Label   string `json:"label"`
	Text    string `json:"text"`
	Correct bool   `json:"is_correct"`
}

type BlankAnswer struct {
	Position int    `json:"position"`
	Expected string `json:"expected_answer"`

	Acceptable []string `json:"acceptable_answers,omitempty"`
}

type ResponseConfig struct {
	Options []*MCQOption `json:"options,omitempty"`

	Blanks []BlankAnswer `json:"blanks,omitempty"`

	WordLimit   *int `json:"word_limit,omitempty"`
	ShowWorking bool `json:"show_working,omitempty"`

	MatchingPairs []map[string]string `json:"matching_pairs,omitempty"`
}

type SolutionStep struct {
	Step        int    `json:"step_number"`
	Description string `json:"description"`

	Expression      string `json:"expression,omitempty"`
	ExpressionLatex string `json:"expression_latex,omitempty"`
}

type Criterion struct {
	Criterion string  `json:"criterion"`
	Marks     float64 `json:"marks"`
}

type AnswerKey struct {
	FinalAnswer string `json:"final_answer"`

	AcceptableAnswers []string       `json:"acceptable_answers"`
	WorkedSolution    []SolutionStep `json:"worked_solution"`
	MarkingRubric     []Criterion    `json:"marking_rubric"`

	Explanation string `json:"explanation,omitempty"`
}

type Source struct {
	Page int `json:"page_number"`

	Box *BoundingBox `json:"bounding_box,omitempty"`
}

// Question is a root question (Level 0), a part (1) or a subpart (2).
// Subparts are owned exclusively by their parent.
type Question struct {
	ID       string `json:"id"`
	Number   string `json:"question_number"`
	ParentID string `json:"parent_question_id,omitempty"`
	Level    int    `json:"hierarchy_level"`

	Content Content `json:"content"`

	ResponseType   ResponseType    `json:"response_type"`
	ResponseConfig *ResponseConfig `json:"response_config"`

	Diagrams  []*Diagram `json:"diagrams"`
	AnswerKey *AnswerKey `json:"answer_key"`

	Marks *float64 `json:"marks"`

	Subparts []*Question `json:"subparts"`

	Source     Source  `json:"source"`
	Confidence float64 `json:"extraction_confidence"`
}

func NewQuestion(number string, page int) *Question {
	return &Question{
		ID:     uuid.NewString(),
		Number: number,

		ResponseType: DefaultResponseType,

		Diagrams: []*Diagram{},
		Subparts: []*Question{},

		Source: Source{
			Page: page,
		},
	}
}

// Options returns the MCQ options, or nil when no configuration is attached.
func (q *Question) Options() []*MCQOption {
	if q.ResponseConfig == nil {
		return nil
	}

	return q.ResponseConfig.Options
}

// Validate reports semantic problems with the question itself (not its
// subparts). A multiple choice question without options is invalid.
func (q *Question) Validate() error {
	if q.ResponseType == ResponseMultipleChoice && len(q.Options()) == 0 {
		return fmt.Errorf("question %q: %w", q.Number, ErrMissingOptions)
	}

	return nil
}

// AddDiagram attaches d unless it is already attached.
func (q *Question) AddDiagram(d *Diagram) {
	for _, existing := range q.Diagrams {
		if existing == d || existing.ID == d.ID {
			return
		}
	}

	q.Diagrams = append(q.Diagrams, d)
}

// Walk calls fn for q and every nested subpart, depth first.
func (q *Question) Walk(fn func(*Question)) {
	fn(q)

	for _, s := range q.Subparts {
		s.Walk(fn)
	}
}

// Flatten returns every question and nested subpart in document order.
func Flatten(questions []*Question) []*Question {
	var result []*Question

	for _, q := range questions {
		q.Walk(func(q *Question) {
			result = append(result, q)
		})
	}

	return result
}
