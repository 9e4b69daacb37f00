package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/pipeline"

	"github.com/stretchr/testify/require"
)

func TestExpand(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a.pdf", "b.PDF", "notes.txt", "sub/c.pdf"} {
		path := filepath.Join(dir, name)

		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	}

	files, err := expand([]string{
		dir,
		filepath.Join(dir, "*.pdf"),
		filepath.Join(dir, "sub", "c.pdf"),
		filepath.Join(dir, "missing.pdf"),
	})

	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.PDF"),
		filepath.Join(dir, "sub", "c.pdf"),
	}, files)

	files, err = expand(nil)
	require.NoError(t, err)
	require.Empty(t, files)
}

func TestLoadConfigRequiresKey(t *testing.T) {
	_, err := loadConfig("", "", "")
	require.Error(t, err)

	cfg, err := loadConfig("", "test-key", "gemini-2.5-pro")
	require.NoError(t, err)
	require.Equal(t, "gemini-2.5-pro", cfg.Model)
}

func TestPrintSummary(t *testing.T) {
	q := exam.NewQuestion("3", 1)
	q.AnswerKey = &exam.AnswerKey{FinalAnswer: "12"}
	q.Subparts = append(q.Subparts, exam.NewQuestion("3a", 1))

	paper := &exam.Paper{
		Metadata:  exam.NewMetadata("p5-math.pdf"),
		Questions: []*exam.Question{q},
	}

	var buf bytes.Buffer

	printSummary(&buf, []*exam.Paper{paper}, []pipeline.Failure{{Path: "broken.pdf", Err: errors.New("malformed")}}, ledger.NewBook())

	out := buf.String()

	require.Contains(t, out, "p5-math.pdf")
	require.Contains(t, out, "Q3     [A-] SHORT_ANSWER (1 subparts)")
	require.Contains(t, out, "FAILED broken.pdf: malformed")
	require.Contains(t, out, "documents: 1 ok, 1 failed")
}
