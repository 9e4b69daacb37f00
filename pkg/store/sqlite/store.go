package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS papers (
	name TEXT PRIMARY KEY,
	paper_id TEXT NOT NULL,
	document TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS answer_keys (
	name TEXT PRIMARY KEY,
	document TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	document_path TEXT NOT NULL,
	document TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Store keeps results as JSON rows in a SQLite database.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)

	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite pragmas: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SavePaper(ctx context.Context, name string, paper *exam.Paper) error {
	data, err := store.Encode(paper)

	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO papers (name, paper_id, document, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET paper_id=EXCLUDED.paper_id, document=EXCLUDED.document, created_at=EXCLUDED.created_at`,
		name, paper.Metadata.ID, string(data), time.Now().Unix())

	return err
}

func (s *Store) SaveAnswerKeys(ctx context.Context, name string, sheet *exam.AnswerKeySheet) error {
	data, err := store.Encode(sheet)

	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO answer_keys (name, document, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET document=EXCLUDED.document, created_at=EXCLUDED.created_at`,
		name, string(data), time.Now().Unix())

	return err
}

func (s *Store) SaveRun(ctx context.Context, summary ledger.Summary) error {
	data, err := store.Encode(summary)

	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `INSERT INTO runs (run_id, document_path, document, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO UPDATE SET document=EXCLUDED.document`,
		summary.RunID, summary.Document, string(data), time.Now().Unix())

	return err
}

// Paper returns the stored paper document of name.
func (s *Store) Paper(ctx context.Context, name string) ([]byte, error) {
	var document string

	if err := s.db.QueryRowContext(ctx, `SELECT document FROM papers WHERE name=$1`, name).Scan(&document); err != nil {
		return nil, err
	}

	return []byte(document), nil
}
