package store

import (
	"context"
	"sync"

	"github.com/paperscan/paperscan/pkg/exam"
	"github.com/paperscan/paperscan/pkg/ledger"
)

var _ Store = (*Memory)(nil)

// Memory keeps results in process. It is safe for concurrent use.
type Memory struct {
	mu sync.Mutex

	Papers     map[string]*exam.Paper
	AnswerKeys map[string]*exam.AnswerKeySheet
	Runs       []ledger.Summary
}

func NewMemory() *Memory {
	return &Memory{
		Papers:     map[string]*exam.Paper{},
		AnswerKeys: map[string]*exam.AnswerKeySheet{},
	}
}

func (m *Memory) SavePaper(ctx context.Context, name string, paper *exam.Paper) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Papers[name] = paper
	return nil
}

func (m *Memory) SaveAnswerKeys(ctx context.Context, name string, sheet *exam.AnswerKeySheet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AnswerKeys[name] = sheet
	return nil
}

func (m *Memory) SaveRun(ctx context.Context, summary ledger.Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Runs = append(m.Runs, summary)
	return nil
}
