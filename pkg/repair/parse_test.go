package repair

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	r := Parse(`{"questions": [{"question_number": "1"}]}`)

	_, failed := Error(r)
	require.False(t, failed)
	require.Len(t, r.List("questions"), 1)
}

func TestParseFencedEqualsUnfenced(t *testing.T) {
	body := `{"page_type": "question", "confidence": 0.9, "nested": {"a": [1, 2, 3]}}`

	for _, fenced := range []string{
		"```json\n" + body + "\n```",
		"```\n" + body + "\n```",
		"  ```JSON\n" + body + "\n```\n",
	} {
		require.Equal(t, Parse(body), Parse(fenced))
	}
}

func TestParseLatexBackslash(t *testing.T) {
	r := Parse(`{"question_text": "Find \(x^2\) when \alpha = 2"}`)

	_, failed := Error(r)
	require.False(t, failed)
	require.Equal(t, `Find \(x^2\) when \alpha = 2`, r.String("question_text"))
}

func TestParseLatexMultiline(t *testing.T) {
	input := "{\n  \"question_text\": \"Simplify \\(\\dfrac{1}{2}\\)\",\n  \"marks\": 2\n}"

	r := Parse(input)

	_, failed := Error(r)
	require.False(t, failed)
	require.Equal(t, `Simplify \(\dfrac{1}{2}\)`, r.String("question_text"))
}

func TestParseSurroundingProse(t *testing.T) {
	r := Parse(`Here is the result: {"answers": [{"question_ref": "1", "answer": "B"}]} Hope this helps.`)

	_, failed := Error(r)
	require.False(t, failed)
	require.Len(t, r.List("answers"), 1)
}

func TestParseBalancedBraces(t *testing.T) {
	r := Parse(`{"a": {"b": 1}} trailing {"c": 2}`)

	_, failed := Error(r)
	require.False(t, failed)
	require.Contains(t, r, "a")
	require.NotContains(t, r, "c")
}

func TestParseFailure(t *testing.T) {
	input := "{\n  \"questions\": [\n    {\"question_number\": 1,,}\n  ]\n"

	r := Parse(input)

	msg, failed := Error(r)
	require.True(t, failed)
	require.NotEmpty(t, msg)
	require.Equal(t, input[:len(strings.TrimSpace(input))], r[keyPreview])
	require.Equal(t, 3, r[keyLine])
	require.Positive(t, r[keyColumn])
}

func TestParsePreviewTruncated(t *testing.T) {
	r := Parse(strings.Repeat("x", 500))

	_, failed := Error(r)
	require.True(t, failed)
	require.Len(t, r[keyPreview], previewSize)
}

func TestParseNonObjectRoot(t *testing.T) {
	r := Parse(`"just a string"`)

	_, failed := Error(r)
	require.True(t, failed)
}

func TestRecordAccessors(t *testing.T) {
	r := Parse(`{"n": 7, "s": " 7a ", "marks": "3 marks", "f": 2.5, "flag": true, "list": ["a", 1, null]}`)

	require.Equal(t, "7", r.String("n"))
	require.Equal(t, "7a", r.String("s"))
	require.Equal(t, "7a", r.First("missing", "s"))

	marks, ok := r.Float("marks")
	require.True(t, ok)
	require.Equal(t, 3.0, marks)

	f, ok := r.Float("f")
	require.True(t, ok)
	require.Equal(t, 2.5, f)

	_, ok = r.Float("missing")
	require.False(t, ok)

	require.True(t, r.Bool("flag"))
	require.Equal(t, []string{"a", "1"}, r.Strings("list"))
}

func TestParseFenceOnSameLine(t *testing.T) {
	for _, input := range []string{
		"```json {\"a\": 1} ```",
		"```{\"a\": 1}```",
	} {
		r := Parse(input)

		_, failed := Error(r)
		require.False(t, failed, input)
		require.Equal(t, "1", r.String("a"))
	}
}

func TestParseFencedFailurePreview(t *testing.T) {
	input := "```json\n{\"a\": 1,,}\n```"

	r := Parse(input)

	_, failed := Error(r)
	require.True(t, failed)
	require.Equal(t, input, r[keyPreview])
	require.Equal(t, 1, r[keyLine])
}

func TestParseGreedySpan(t *testing.T) {
	// the brace inside the string leaves the balanced scan unclosed
	r := Parse(`Result: {"question_text": "Solve x{y", "marks": 2} done`)

	_, failed := Error(r)
	require.False(t, failed)
	require.Equal(t, "Solve x{y", r.String("question_text"))
}

func TestRepairLine(t *testing.T) {
	text := "{\n  \"a\": \"\\pi\",\n  \"b\": \"\\sigma\"\n}"

	_, err := decode(text)
	require.Error(t, err)
	require.True(t, isEscapeError(err))

	fixed, ok := repairLine(text, err)
	require.True(t, ok)

	lines := strings.Split(fixed, "\n")
	require.Equal(t, `  "a": "\\pi",`, lines[1])
	require.Equal(t, `  "b": "\sigma"`, lines[2])

	_, ok = repairLine(text, errors.New("not a syntax error"))
	require.False(t, ok)
}
