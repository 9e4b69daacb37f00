package exam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateMissingOptions(t *testing.T) {
	q := NewQuestion("3", 1)
	q.ResponseType = ResponseMultipleChoice

	require.ErrorIs(t, q.Validate(), ErrMissingOptions)

	q.ResponseConfig = &ResponseConfig{}
	require.ErrorIs(t, q.Validate(), ErrMissingOptions)

	q.ResponseConfig.Options = []*MCQOption{{Label: "A", Text: "4"}}
	require.NoError(t, q.Validate())
}

func TestValidateOtherTypes(t *testing.T) {
	q := NewQuestion("1", 1)

	require.Equal(t, ResponseShortAnswer, q.ResponseType)
	require.NoError(t, q.Validate())
}

func TestFlatten(t *testing.T) {
	root := NewQuestion("7", 1)
	a := NewQuestion("7a", 1)
	b := NewQuestion("7b", 1)
	bi := NewQuestion("7bi", 1)

	b.Subparts = append(b.Subparts, bi)
	root.Subparts = append(root.Subparts, a, b)

	var numbers []string

	for _, q := range Flatten([]*Question{root, NewQuestion("8", 2)}) {
		numbers = append(numbers, q.Number)
	}

	require.Equal(t, []string{"7", "7a", "7b", "7bi", "8"}, numbers)
}

func TestAddDiagramDeduplicates(t *testing.T) {
	q := NewQuestion("1", 1)
	d := NewDiagram(DiagramGraph, nil, 1)

	q.AddDiagram(d)
	q.AddDiagram(d)

	require.Len(t, q.Diagrams, 1)
}
