package repair

import (
	"encoding/json"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

const previewSize = 200

const (
	keyError   = "error"
	keyPreview = "raw_response_preview"
	keyLine    = "error_line"
	keyColumn  = "error_column"
)

var greedyObject = regexp.MustCompile(`\{[\s\S]*\}`)

// Parse recovers a JSON object from oracle output. It never fails: when no
// attempt succeeds the returned record carries the error message, a preview
// of the input and, if known, the 1-based line and column of the error.
//
// Fenced output is parsed from its fenced lines first. When that yields
// nothing usable, for example because the opener shares a line with the
// JSON, the whole input is tried again.
func Parse(text string) Record {
	raw := strings.TrimSpace(text)
	body := stripFences(raw)

	result, err := parse(body)

	if err == nil {
		return result
	}

	if body != raw {
		if result, rerr := parse(raw); rerr == nil {
			return result
		}
	}

	slog.Warn("failed to parse json after all repairs", "error", err)

	return failure(raw, body, err)
}

// parse runs the repair attempts on text and returns the error of the
// initial decode when all of them fail.
func parse(text string) (Record, error) {
	result, err := decode(text)

	if err == nil {
		return result, nil
	}

	slog.Debug("initial json decode failed, attempting repairs", "error", err)

	if isEscapeError(err) {
		if result, err := decode(Escapes(text)); err == nil {
			return result, nil
		}

		if fixed, ok := repairLine(text, err); ok {
			if result, err := decode(fixed); err == nil {
				return result, nil
			}
		}
	}

	if start := strings.IndexByte(text, '{'); start >= 0 {
		if end := matchBrace(text, start); end > start {
			if result, err := decode(Escapes(text[start : end+1])); err == nil {
				return result, nil
			}
		}
	}

	if span := greedyObject.FindString(text); span != "" {
		if result, err := decode(Escapes(span)); err == nil {
			return result, nil
		}
	}

	return nil, err
}

// Error returns the message of a failure record produced by Parse.
func Error(r Record) (string, bool) {
	if r == nil {
		return "empty record", true
	}

	msg, ok := r[keyError].(string)

	if !ok || msg == "" {
		return "", false
	}

	return msg, true
}

func decode(text string) (Record, error) {
	var result Record

	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, err
	}

	if result == nil {
		return nil, errors.New("json root is not an object")
	}

	return result, nil
}

func isEscapeError(err error) bool {
	var syntax *json.SyntaxError

	if !errors.As(err, &syntax) {
		return false
	}

	return strings.Contains(syntax.Error(), "escape")
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "```") {
		return text
	}

	var lines []string

	fenced := false

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			fenced = !fenced
			continue
		}

		if fenced {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, "\n")
}

func repairLine(text string, err error) (string, bool) {
	line, _, ok := position(text, err)

	if !ok {
		return "", false
	}

	lines := strings.Split(text, "\n")

	if line < 1 || line > len(lines) {
		return "", false
	}

	lines[line-1] = Escapes(lines[line-1])

	return strings.Join(lines, "\n"), true
}

// matchBrace returns the index of the brace closing the one at start, or -1.
func matchBrace(text string, start int) int {
	depth := 0

	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++

		case '}':
			depth--

			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

// position converts the offset of a syntax error into a 1-based line and
// column.
func position(text string, err error) (line, column int, ok bool) {
	var syntax *json.SyntaxError

	if !errors.As(err, &syntax) {
		return 0, 0, false
	}

	pos := int(syntax.Offset) - 1

	if pos < 0 {
		pos = 0
	}

	if pos > len(text) {
		pos = len(text)
	}

	line = strings.Count(text[:pos], "\n") + 1
	column = pos - strings.LastIndexByte(text[:pos], '\n')

	return line, column, true
}

// failure describes err, which occurred while decoding parsed. The preview
// always shows the raw input.
func failure(raw, parsed string, err error) Record {
	r := Record{
		keyError:   err.Error(),
		keyPreview: preview(raw),
	}

	if line, column, ok := position(parsed, err); ok {
		r[keyLine] = line
		r[keyColumn] = column
	}

	return r
}

func preview(text string) string {
	if len(text) <= previewSize {
		return text
	}

	cut := previewSize

	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut]
}
