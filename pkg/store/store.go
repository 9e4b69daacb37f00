package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"
)

// Store persists extraction results. Name is the stem of the source file.
type Store interface {
	SavePaper(ctx context.Context, name string, paper *exam.Paper) error
	SaveAnswerKeys(ctx context.Context, name string, sheet *exam.AnswerKeySheet) error
	SaveRun(ctx context.Context, summary ledger.Summary) error
}

var (
	ErrInvalidName = errors.New("invalid document name")
)

// Encode renders v as indented JSON without HTML escaping.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
