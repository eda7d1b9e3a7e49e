package storage

import (
	"sync"
	"time"

	"github.com/zakazai/tinysql/internal/types"
)

// HybridStore pairs the row-oriented text files with a columnar parquet
// mirror. The text files are authoritative: loads come only from them and
// their save errors are returned. The mirror is refreshed after each
// successful save, and a failure there is only logged.
type HybridStore struct {
	// primary holds the authoritative copy of every table.
	primary *FileStore

	// mirror receives a parquet copy of each table after it is saved.
	mirror *ParquetMirror
	reader *ParquetReader

	logger *types.Logger

	// mu serializes mirror writes and reads, and guards syncTime.
	mu       sync.Mutex
	syncTime time.Time
}

// NewHybridStore combines primary and mirror.
func NewHybridStore(primary *FileStore, mirror *ParquetMirror, logger *types.Logger) *HybridStore {
	if logger == nil {
		logger = types.GlobalLogger
	}
	return &HybridStore{
		primary: primary,
		mirror:  mirror,
		reader:  NewParquetReader(mirror.baseDir),
		logger:  logger,
	}
}

// Load implements Persister.Load from the primary store only.
func (s *HybridStore) Load(name string) (*Table, bool, error) {
	return s.primary.Load(name)
}

// Save implements Persister.Save by writing the primary, then the mirror.
func (s *HybridStore) Save(t *Table) error {
	if err := s.primary.Save(t); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.mirror.Write(t); err != nil {
		s.logger.Warning("parquet mirror of table %s not updated: %v", t.Name(), err)
		return nil
	}
	s.syncTime = time.Now()
	return nil
}

// ReadMirror returns the rows of t as last written to the mirror, which may
// lag the table when a mirror write failed.
func (s *HybridStore) ReadMirror(t *Table) ([]types.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reader.ReadTable(t.Name(), t.Columns())
}

// GetLastSyncTime returns when the mirror was last written successfully.
func (s *HybridStore) GetLastSyncTime() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncTime
}

// List returns the tables stored by the primary.
func (s *HybridStore) List() ([]string, error) {
	return s.primary.List()
}
