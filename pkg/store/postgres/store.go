package postgres

import (
	"context"
	"fmt"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"
	"github.com/paperscan/paperscan/pkg/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

var _ store.Store = (*Store)(nil)

// Store keeps results as JSONB rows in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{pool: pool}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS papers (
			name TEXT PRIMARY KEY,
			paper_id TEXT NOT NULL,
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS answer_keys (
			name TEXT PRIMARY KEY,
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			document_path TEXT NOT NULL,
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)

	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) SavePaper(ctx context.Context, name string, paper *exam.Paper) error {
	data, err := store.Encode(paper)

	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `INSERT INTO papers (name, paper_id, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET paper_id=EXCLUDED.paper_id, document=EXCLUDED.document, created_at=now()`,
		name, paper.Metadata.ID, string(data))

	return err
}

func (s *Store) SaveAnswerKeys(ctx context.Context, name string, sheet *exam.AnswerKeySheet) error {
	data, err := store.Encode(sheet)

	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `INSERT INTO answer_keys (name, document)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET document=EXCLUDED.document, created_at=now()`,
		name, string(data))

	return err
}

func (s *Store) SaveRun(ctx context.Context, summary ledger.Summary) error {
	data, err := store.Encode(summary)

	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `INSERT INTO runs (run_id, document_path, document)
		VALUES ($1, $2, $3)
		ON CONFLICT (run_id) DO UPDATE SET document=EXCLUDED.document`,
		summary.RunID, summary.Document, string(data))

	return err
}
