package repair

import (
	"regexp"
	"strconv"
	"strings"
)

// Record is a decoded JSON object.
type Record map[string]any

var number = regexp.MustCompile(`\d+(?:\.\d+)?`)

// AsRecord returns v as a Record if it is a JSON object.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true

	case map[string]any:
		return Record(m), true
	}

	return nil, false
}

// String returns the value at key as a string. Numbers are formatted without
// trailing zeros so that a question number of 7 reads "7".
func (r Record) String(key string) string {
	return stringOf(r[key])
}

// Float returns the value at key as a number. Strings yield their first
// embedded number, so "3 marks" is 3.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true

	case string:
		m := number.FindString(v)

		if m == "" {
			return 0, false
		}

		f, err := strconv.ParseFloat(m, 64)

		if err != nil {
			return 0, false
		}

		return f, true
	}

	return 0, false
}

func (r Record) Bool(key string) bool {
	switch v := r[key].(type) {
	case bool:
		return v

	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}

	return false
}

// List returns the value at key if it is a JSON array.
func (r Record) List(key string) []any {
	l, _ := r[key].([]any)
	return l
}

// Strings returns the string (or number) elements of the array at key.
func (r Record) Strings(key string) []string {
	var result []string

	for _, v := range r.List(key) {
		if s := stringOf(v); s != "" {
			result = append(result, s)
		}
	}

	return result
}

// First returns the string value of the first key that is present and
// non-empty.
func (r Record) First(keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}

	return ""
}

func stringOf(v any) string {
	switch v := v.(type) {
	case string:
		return strings.TrimSpace(v)

	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)

	case bool:
		return strconv.FormatBool(v)
	}

	return ""
}
