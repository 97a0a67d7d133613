package tables

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// CSVStore persists one <table>.csv per entity under a directory: a header
// row followed by comma-separated values, replaced wholesale on every write.
// Access is serialized per table inside the process; there is no protection
// against other processes writing the same files.
type CSVStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCSVStore creates the directory if needed and returns a store over it.
func NewCSVStore(dir string) (*CSVStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("csv store: directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv store: create %s: %w", dir, err)
	}
	return &CSVStore{dir: dir, locks: make(map[string]*sync.Mutex)}, nil
}

func (s *CSVStore) path(table string) string {
	return filepath.Join(s.dir, table+".csv")
}

func (s *CSVStore) lock(table string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lock, ok := s.locks[table]; ok {
		return lock
	}
	lock := &sync.Mutex{}
	s.locks[table] = lock
	return lock
}

func (s *CSVStore) Read(ctx context.Context, table string) ([]Row, error) {
	lock := s.lock(table)
	lock.Lock()
	defer lock.Unlock()
	return s.readLocked(table)
}

func (s *CSVStore) readLocked(table string) ([]Row, error) {
	file, err := os.Open(s.path(table))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("csv store: open %s: %w", table, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv store: read %s: %w", table, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			} else {
				row[column] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *CSVStore) Write(ctx context.Context, table string, columns []string, rows []Row) error {
	lock := s.lock(table)
	lock.Lock()
	defer lock.Unlock()
	return s.writeLocked(table, columns, rows)
}

func (s *CSVStore) writeLocked(table string, columns []string, rows []Row) error {
	file, err := os.Create(s.path(table))
	if err != nil {
		return fmt.Errorf("csv store: create %s: %w", table, err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(columns); err != nil {
		return fmt.Errorf("csv store: write header %s: %w", table, err)
	}
	record := make([]string, len(columns))
	for _, row := range rows {
		for i, column := range columns {
			record[i] = row[column]
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("csv store: write row %s: %w", table, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("csv store: flush %s: %w", table, err)
	}
	return nil
}

func (s *CSVStore) Append(ctx context.Context, table string, columns []string, rows []Row) error {
	lock := s.lock(table)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.readLocked(table)
	if err != nil {
		return err
	}
	return s.writeLocked(table, columns, append(existing, rows...))
}

func (s *CSVStore) NextID(ctx context.Context, table, idColumn string, start int) (int, error) {
	rows, err := s.Read(ctx, table)
	if err != nil {
		return 0, err
	}
	return nextIDFromRows(rows, idColumn, start), nil
}
