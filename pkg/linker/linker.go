package linker

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/reference"
)

// Merge attaches answer keys to the questions and subparts they answer and
// returns the number of attachments. A key is found by exact reference
// first and by normalized reference second. For multiple choice questions
// the first option matching the final answer is marked correct.
func Merge(questions []*exam.Question, keys map[string]*exam.AnswerKey) int {
	return MergeWithLogger(questions, keys, slog.Default())
}

func MergeWithLogger(questions []*exam.Question, keys map[string]*exam.AnswerKey, logger *slog.Logger) int {
	if len(keys) == 0 {
		return 0
	}

	refs := slices.Sorted(maps.Keys(keys))

	merged := 0

	for _, q := range exam.Flatten(questions) {
		key := lookup(q.Number, refs, keys)

		if key == nil {
			continue
		}

		attach(q, key, logger)
		merged++
	}

	return merged
}

// Unmatched returns the sorted references of keys that match no question.
func Unmatched(questions []*exam.Question, keys map[string]*exam.AnswerKey) []string {
	known := map[string]bool{}

	for _, q := range exam.Flatten(questions) {
		known[q.Number] = true
		known[reference.Normalize(q.Number)] = true
	}

	var result []string

	for ref := range keys {
		if known[ref] || known[reference.Normalize(ref)] {
			continue
		}

		result = append(result, ref)
	}

	slices.Sort(result)

	return result
}

func lookup(number string, refs []string, keys map[string]*exam.AnswerKey) *exam.AnswerKey {
	if key, ok := keys[number]; ok {
		return key
	}

	normalized := reference.Normalize(number)

	if normalized == "" {
		return nil
	}

	for _, ref := range refs {
		if reference.Normalize(ref) == normalized {
			return keys[ref]
		}
	}

	return nil
}

func attach(q *exam.Question, key *exam.AnswerKey, logger *slog.Logger) {
	q.AnswerKey = key

	if q.ResponseType != exam.ResponseMultipleChoice {
		return
	}

	if err := q.Validate(); err != nil {
		logger.Warn("attached answer key to invalid question", "error", err)
		return
	}

	if option := MatchOption(q.Options(), key.FinalAnswer); option != nil {
		option.Correct = true
	}
}

// MatchOption returns the first option whose label equals the answer, whose
// text contains the answer (both case-insensitive) or whose trimmed text
// equals the trimmed answer. An empty answer matches nothing.
func MatchOption(options []*exam.MCQOption, answer string) *exam.MCQOption {
	answer = strings.TrimSpace(answer)

	if answer == "" {
		return nil
	}

	lower := strings.ToLower(answer)

	for _, o := range options {
		if strings.EqualFold(strings.TrimSpace(o.Label), answer) ||
			strings.Contains(strings.ToLower(o.Text), lower) ||
			strings.TrimSpace(o.Text) == answer {
			return o
		}
	}

	return nil
}
