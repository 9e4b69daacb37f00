package answer

import (
	"context"
	"testing"

	"github.com/paperscan/paperscan/pkg/document"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/provider"
	"github.com/paperscan/paperscan/pkg/repair"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	record := repair.Parse(`{
		"answers": [
			{"question_ref": "1", "answer": "2", "final_answer": "ignored"},
			{"question_number": "7a", "final_answer": "6x + 4",
			 "worked_solution": [
				{"step": 1, "description": "Write perimeter formula", "expression": "P = 2(l + w)"},
				{"step_number": 2, "description": "Simplify"},
				{"description": "Done"}
			 ],
			 "marking_rubric": [{"criterion": "Correct formula", "marks": 1}],
			 "acceptable_answers": ["4 + 6x"]},
			{"answer": "orphan"},
			42
		]
	}`)

	entries := Normalize(record)

	require.Len(t, entries, 2)

	require.Equal(t, "1", entries[0].Ref)
	require.Equal(t, "2", entries[0].Key.FinalAnswer)
	require.Empty(t, entries[0].Key.WorkedSolution)
	require.NotNil(t, entries[0].Key.AcceptableAnswers)

	key := entries[1].Key
	require.Equal(t, "7a", entries[1].Ref)
	require.Equal(t, "6x + 4", key.FinalAnswer)
	require.Equal(t, []string{"4 + 6x"}, key.AcceptableAnswers)
	require.Len(t, key.WorkedSolution, 3)
	require.Equal(t, 1, key.WorkedSolution[0].Step)
	require.Equal(t, 2, key.WorkedSolution[1].Step)
	require.Equal(t, 3, key.WorkedSolution[2].Step)
	require.Equal(t, "Correct formula", key.MarkingRubric[0].Criterion)
	require.Equal(t, 1.0, key.MarkingRubric[0].Marks)
}

func TestNormalizeMarksBreakdown(t *testing.T) {
	entries := Normalize(repair.Parse(`{"answers": [{"question_ref": "3", "answer": "B", "marks_breakdown": [{"criterion": "Method", "marks": "2"}]}]}`))

	require.Len(t, entries, 1)
	require.Equal(t, 2.0, entries[0].Key.MarkingRubric[0].Marks)
}

func TestCollect(t *testing.T) {
	first := Normalize(repair.Parse(`{"answers": [{"question_ref": "1", "answer": "A"}, {"question_ref": "2", "answer": "C"}]}`))
	second := Normalize(repair.Parse(`{"answers": [{"question_ref": "1", "answer": "D"}]}`))

	keys, ordered := Collect(append(first, second...))

	require.Len(t, keys, 2)
	require.Equal(t, "D", keys["1"].FinalAnswer)
	require.Len(t, ordered, 2)
	require.Equal(t, "1", ordered[0].Ref)
	require.Equal(t, "D", ordered[0].Key.FinalAnswer)
}

type completerFunc func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error)

func (f completerFunc) Complete(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
	return f(ctx, messages, options)
}

func TestExtract(t *testing.T) {
	c := completerFunc(func(ctx context.Context, messages []provider.Message, options *provider.CompleteOptions) (*provider.Completion, error) {
		return &provider.Completion{
			Message: &provider.Message{
				Role:    provider.MessageRoleAssistant,
				Content: provider.MessageContent{provider.TextContent(`{"answers": [{"question_ref": "7(a)", "answer": "B"}]}`)},
			},
		}, nil
	})

	run := ledger.NewBook().Start("paper.pdf")

	entries := New(c).Extract(context.Background(), run, document.Page{Number: 5, Text: "Answers"})

	require.Len(t, entries, 1)
	require.Equal(t, "7(a)", entries[0].Ref)
	require.Empty(t, run.Failures())
}
