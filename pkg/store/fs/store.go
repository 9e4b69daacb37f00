package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/store"
)

var _ store.Store = (*Store)(nil)

// Store writes results as JSON files below a base directory:
//
//	questions/<name>_extracted.json
//	questions/<name>/q<number>.json (q<number>_<position>.json when repeated)
//	answer_keys/<name>_answer_keys.json
//	logs/costs/<run_id>.json
type Store struct {
	base string
}

func New(base string) (*Store, error) {
	if base == "" {
		base = "output"
	}

	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}

	return &Store{base: base}, nil
}

func (s *Store) SavePaper(ctx context.Context, name string, paper *exam.Paper) error {
	if err := validName(name); err != nil {
		return err
	}

	if err := s.write(filepath.Join("questions", name+"_extracted.json"), paper); err != nil {
		return err
	}

	used := make(map[string]bool, len(paper.Questions))

	for i, q := range paper.Questions {
		number := fileSafe(q.Number)

		if number == "" {
			number = strconv.Itoa(i + 1)
		}

		// repeated numbers get the 1-based position appended
		for used[number] {
			number += "_" + strconv.Itoa(i+1)
		}

		used[number] = true

		if err := s.write(filepath.Join("questions", name, "q"+number+".json"), q); err != nil {
			return err
		}
	}

	return nil
}

func (s *Store) SaveAnswerKeys(ctx context.Context, name string, sheet *exam.AnswerKeySheet) error {
	if err := validName(name); err != nil {
		return err
	}

	return s.write(filepath.Join("answer_keys", name+"_answer_keys.json"), sheet)
}

func (s *Store) SaveRun(ctx context.Context, summary ledger.Summary) error {
	if err := validName(summary.RunID); err != nil {
		return err
	}

	return s.write(filepath.Join("logs", "costs", summary.RunID+".json"), summary)
}

func (s *Store) write(key string, v any) error {
	data, err := store.Encode(v)

	if err != nil {
		return err
	}

	dst := filepath.Join(s.base, filepath.Clean(key))

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", dst, err)
	}

	return nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%q: %w", name, store.ErrInvalidName)
	}

	return nil
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}

		return r
	}, strings.TrimSpace(s))
}
