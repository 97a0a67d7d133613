package tables

import (
	"context"
	"sync"
)

type memoryTable struct {
	columns []string
	rows    []Row
}

// MemoryStore keeps tables in process memory. It backs tests and ephemeral
// runs, and serializes access per table like the file-backed store.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]*memoryTable
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]*memoryTable)}
}

func (s *MemoryStore) Read(ctx context.Context, table string) ([]Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tables[table]
	if !ok {
		return nil, nil
	}
	return cloneRows(existing.rows), nil
}

func (s *MemoryStore) Write(ctx context.Context, table string, columns []string, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tables[table] = &memoryTable{
		columns: append([]string(nil), columns...),
		rows:    cloneRows(rows),
	}
	return nil
}

func (s *MemoryStore) Append(ctx context.Context, table string, columns []string, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tables[table]
	if !ok {
		s.tables[table] = &memoryTable{
			columns: append([]string(nil), columns...),
			rows:    cloneRows(rows),
		}
		return nil
	}
	existing.rows = append(existing.rows, cloneRows(rows)...)
	return nil
}

func (s *MemoryStore) NextID(ctx context.Context, table, idColumn string, start int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tables[table]
	if !ok {
		return start, nil
	}
	return nextIDFromRows(existing.rows, idColumn, start), nil
}
