package storage

import "github.com/zakazai/tinysql/internal/types"

const (
	// DefaultDataDir is where table files live unless configured otherwise.
	DefaultDataDir = "data"
	// DefaultExtension is the file extension of table files.
	DefaultExtension = "csv"
)

// Config selects where and how tables are persisted.
type Config struct {
	DataDir    string
	Extension  string
	DecodeMode DecodeMode
	// MirrorDir enables the parquet mirror when non-empty.
	MirrorDir string
	Logger    *types.Logger
}

// DefaultConfig returns the configuration used by the binaries when no
// flags are given.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir,
		Extension:  DefaultExtension,
		DecodeMode: DecodeLenient,
	}
}

// NewPersister creates a persister based on the provided configuration: a
// plain FileStore, or a HybridStore when a mirror directory is set.
func NewPersister(config Config) (Persister, error) {
	if config.DataDir == "" {
		config.DataDir = DefaultDataDir
	}
	files, err := NewFileStore(config.DataDir, config.Extension, config.DecodeMode, config.Logger)
	if err != nil {
		return nil, err
	}
	if config.MirrorDir == "" {
		return files, nil
	}
	mirror, err := NewParquetMirror(config.MirrorDir, config.Logger)
	if err != nil {
		return nil, err
	}
	return NewHybridStore(files, mirror, config.Logger), nil
}
