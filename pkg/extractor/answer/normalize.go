package answer

import (
	"log/slog"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/repair"
)

// Normalize converts an answer extraction record into entries. Entries
// without a question reference are skipped.
func Normalize(record repair.Record) []Entry {
	return normalize(record, slog.Default())
}

func normalize(record repair.Record, logger *slog.Logger) []Entry {
	var result []Entry

	for i, v := range record.List("answers") {
		r, ok := repair.AsRecord(v)

		if !ok {
			logger.Warn("skipping malformed answer entry", "index", i)
			continue
		}

		ref := r.First("question_ref", "question_number")

		if ref == "" {
			logger.Warn("skipping answer without question reference", "index", i)
			continue
		}

		result = append(result, Entry{
			Ref: ref,
			Key: answerKey(r),
		})
	}

	return result
}

func answerKey(r repair.Record) *exam.AnswerKey {
	key := &exam.AnswerKey{
		FinalAnswer: r.First("answer", "final_answer"),

		AcceptableAnswers: r.Strings("acceptable_answers"),

		WorkedSolution: []exam.SolutionStep{},
		MarkingRubric:  []exam.Criterion{},

		Explanation: r.String("explanation"),
	}

	if key.AcceptableAnswers == nil {
		key.AcceptableAnswers = []string{}
	}

	for i, v := range r.List("worked_solution") {
		sr, ok := repair.AsRecord(v)

		if !ok {
			continue
		}

		step := i + 1

		for _, k := range []string{"step", "step_number"} {
			if n, ok := sr.Float(k); ok {
				step = int(n)
				break
			}
		}

		key.WorkedSolution = append(key.WorkedSolution, exam.SolutionStep{
			Step:        step,
			Description: sr.String("description"),

			Expression:      sr.String("expression"),
			ExpressionLatex: sr.String("expression_latex"),
		})
	}

	rubric := r.List("marks_breakdown")

	if len(rubric) == 0 {
		rubric = r.List("marking_rubric")
	}

	for _, v := range rubric {
		cr, ok := repair.AsRecord(v)

		if !ok {
			continue
		}

		marks, _ := cr.Float("marks")

		key.MarkingRubric = append(key.MarkingRubric, exam.Criterion{
			Criterion: cr.String("criterion"),
			Marks:     marks,
		})
	}

	return key
}
