package question

import (
	"log/slog"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/extractor/diagram"
	"github.com/paperscan/paperscan/pkg/repair"
)

const (
	// MaxDepth is the deepest hierarchy level a subpart is attached at.
	MaxDepth = 2

	DefaultConfidence = 0.8
)

// Normalize converts a question extraction record into question trees and
// the diagram infos reported with them. It never fabricates MCQ options.
func Normalize(record repair.Record, page int) ([]*exam.Question, []diagram.Info) {
	return normalize(record, page, slog.Default())
}

func normalize(record repair.Record, page int, logger *slog.Logger) ([]*exam.Question, []diagram.Info) {
	n := &normalizer{
		logger: logger,
		page:   page,
	}

	return n.normalize(record)
}

type normalizer struct {
	logger *slog.Logger
	page   int

	diagrams []diagram.Info
}

func (n *normalizer) normalize(record repair.Record) ([]*exam.Question, []diagram.Info) {
	var result []*exam.Question

	for i, v := range record.List("questions") {
		r, ok := repair.AsRecord(v)

		if !ok {
			n.logger.Warn("skipping malformed question entry", "page", n.page, "index", i)
			continue
		}

		result = append(result, n.question(r, nil, "", 0))
	}

	return result, n.diagrams
}

// question builds q from r, attaches it to parent and adds its subparts.
// Subparts below MaxDepth are attached to the parent of the deepest level.
func (n *normalizer) question(r repair.Record, parent *exam.Question, prefix string, level int) *exam.Question {
	number := r.String("question_number")

	if number == "" {
		if label := r.String("part_label"); label != "" {
			number = prefix + label
		}
	}

	q := exam.NewQuestion(number, n.page)
	q.Level = level

	if parent != nil {
		q.ParentID = parent.ID
		parent.Subparts = append(parent.Subparts, q)
	}

	q.Content = exam.Content{
		Text:      r.String("question_text"),
		TextLatex: r.String("question_text_latex"),
		TextHTML:  r.String("question_text_html"),
	}

	if q.Content.TextHTML == "" {
		q.Content.TextHTML = renderHTML(q.Content.Text)
	}

	tag := r.String("response_type")
	t, ok := exam.ParseResponseType(tag)

	if !ok && tag != "" {
		n.logger.Debug("unknown response type", "page", n.page, "question", number, "type", tag, "default", t)
	}

	q.ResponseType = t
	q.ResponseConfig = n.responseConfig(r, q)

	if err := q.Validate(); err != nil {
		n.logger.Warn("invalid question", "page", n.page, "error", err)
	}

	if marks, ok := r.Float("marks"); ok {
		q.Marks = &marks
	}

	q.Confidence = DefaultConfidence

	if c, ok := r.Float("confidence"); ok {
		q.Confidence = c
	}

	n.diagramInfos(r, q)

	for i, v := range r.List("subparts") {
		sr, ok := repair.AsRecord(v)

		if !ok {
			n.logger.Warn("skipping malformed subpart entry", "page", n.page, "question", number, "index", i)
			continue
		}

		if level < MaxDepth {
			n.question(sr, q, q.Number, level+1)
			continue
		}

		n.logger.Warn("subpart nested too deep, attaching at maximum depth", "page", n.page, "question", number)
		n.question(sr, parent, q.Number, MaxDepth)
	}

	return q
}

func (n *normalizer) responseConfig(r repair.Record, q *exam.Question) *exam.ResponseConfig {
	if q.ResponseType == exam.ResponseMultipleChoice {
		var options []*exam.MCQOption

		for _, v := range r.List("options") {
			or, ok := repair.AsRecord(v)

			if !ok {
				n.logger.Warn("skipping malformed option", "page", n.page, "question", q.Number)
				continue
			}

			options = append(options, &exam.MCQOption{
				Label:   or.String("label"),
				Text:    or.String("text"),
				Correct: or.Bool("is_correct"),
			})
		}

		if len(options) == 0 {
			return nil
		}

		return &exam.ResponseConfig{
			Options: options,
		}
	}

	config := &exam.ResponseConfig{
		ShowWorking: r.Bool("show_working") || q.ResponseType == exam.ResponseWorkingArea,
	}

	if limit, ok := r.Float("word_limit"); ok {
		l := int(limit)
		config.WordLimit = &l
	}

	for i, v := range r.List("blanks") {
		br, ok := repair.AsRecord(v)

		if !ok {
			continue
		}

		position := i + 1

		if p, ok := br.Float("position"); ok {
			position = int(p)
		}

		config.Blanks = append(config.Blanks, exam.BlankAnswer{
			Position:   position,
			Expected:   br.First("expected_answer", "answer"),
			Acceptable: br.Strings("acceptable_answers"),
		})
	}

	for _, v := range r.List("matching_pairs") {
		pr, ok := repair.AsRecord(v)

		if !ok {
			continue
		}

		pair := map[string]string{}

		for k := range pr {
			if s := pr.String(k); s != "" {
				pair[k] = s
			}
		}

		if len(pair) > 0 {
			config.MatchingPairs = append(config.MatchingPairs, pair)
		}
	}

	if !config.ShowWorking && config.WordLimit == nil && len(config.Blanks) == 0 && len(config.MatchingPairs) == 0 {
		return nil
	}

	return config
}

func (n *normalizer) diagramInfos(r repair.Record, q *exam.Question) {
	for i, v := range r.List("diagrams") {
		dr, ok := repair.AsRecord(v)

		if !ok {
			n.logger.Warn("skipping malformed diagram entry", "page", n.page, "question", q.Number, "index", i)
			continue
		}

		info := diagram.Info{
			Question:    q.Number,
			Description: dr.First("diagram_description", "description"),
			Type:        dr.First("diagram_type", "type"),

			Box:  rawBox(dr),
			Page: n.page,

			Associated: dr.First("associated_question"),

			Shared:     dr.Bool("is_shared"),
			SharedWith: dr.Strings("shared_with_questions"),
		}

		if c, ok := dr.Float("confidence"); ok {
			info.Confidence = c
		}

		n.diagrams = append(n.diagrams, info)
	}
}

// rawBox reads a box given as {x_min, y_min, x_max, y_max} or
// {x1, y1, x2, y2}.
func rawBox(r repair.Record) *diagram.RawBox {
	br, ok := repair.AsRecord(r["bounding_box"])

	if !ok {
		return nil
	}

	for _, keys := range [][4]string{
		{"x_min", "y_min", "x_max", "y_max"},
		{"x1", "y1", "x2", "y2"},
	} {
		x1, ok1 := br.Float(keys[0])
		y1, ok2 := br.Float(keys[1])
		x2, ok3 := br.Float(keys[2])
		y2, ok4 := br.Float(keys[3])

		if ok1 && ok2 && ok3 && ok4 {
			return &diagram.RawBox{X1: x1, Y1: y1, X2: x2, Y2: y2}
		}
	}

	return nil
}
