package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/zakazai/tinysql/internal/types"
)

// FileStore keeps one text file per table under a data directory.
type FileStore struct {
	dir    string
	ext    string
	codec  Codec
	logger *types.Logger
}

// NewFileStore creates the data directory if needed.
func NewFileStore(dir, ext string, mode DecodeMode, logger *types.Logger) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, types.Wrapf(types.KindIOFailure, err, "create data directory %s", dir)
	}
	if ext == "" {
		ext = DefaultExtension
	}
	if logger == nil {
		logger = types.GlobalLogger
	}
	return &FileStore{
		dir:    dir,
		ext:    strings.TrimPrefix(ext, "."),
		codec:  Codec{Mode: mode},
		logger: logger,
	}, nil
}

// CheckTableName accepts names made of letters, digits and underscores that
// do not start with a digit, so a table file always stays inside its data
// directory.
func CheckTableName(name string) error {
	if name == "" {
		return types.Errorf(types.KindSchemaMismatch, "table name must not be empty")
	}
	for i, r := range name {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return types.Errorf(types.KindSchemaMismatch, "invalid table name %q", name)
	}
	return nil
}

// Path returns the file that holds table name.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.%s", name, s.ext))
}

// Load reads table name from disk. A missing file is reported as
// found=false with no error.
func (s *FileStore) Load(name string) (*Table, bool, error) {
	if err := CheckTableName(name); err != nil {
		return nil, false, err
	}
	f, err := os.Open(s.Path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, types.Wrapf(types.KindIOFailure, err, "open table %s", name)
	}
	defer f.Close()

	t, err := s.codec.Decode(f, name)
	if err != nil {
		return nil, false, err
	}
	s.logger.Debug("loaded table %s from %s (%d rows, %s decode)", name, s.Path(name), t.Len(), s.codec.Mode)
	return t, true, nil
}

// Save rewrites the whole file for t. The write is not atomic: a failure
// part way through can leave a truncated file behind.
func (s *FileStore) Save(t *Table) error {
	if err := CheckTableName(t.Name()); err != nil {
		return err
	}
	f, err := os.Create(s.Path(t.Name()))
	if err != nil {
		return types.Wrapf(types.KindIOFailure, err, "save table %s", t.Name())
	}
	if err := s.codec.Encode(f, t); err != nil {
		f.Close()
		return types.Wrapf(types.KindIOFailure, err, "save table %s", t.Name())
	}
	if err := f.Close(); err != nil {
		return types.Wrapf(types.KindIOFailure, err, "save table %s", t.Name())
	}
	return nil
}

// Exists reports whether a file for table name is present.
func (s *FileStore) Exists(name string) bool {
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// List returns the names of all tables stored in the data directory.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, types.Wrapf(types.KindIOFailure, err, "list %s", s.dir)
	}
	suffix := "." + s.ext
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), suffix))
	}
	sort.Strings(names)
	return names, nil
}
