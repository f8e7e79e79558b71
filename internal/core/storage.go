package core

import (
	"fmt"
	"os"

	"farmcore/internal/infra/persistence/file"
	"farmcore/internal/infra/persistence/memory"
	"farmcore/internal/infra/persistence/postgres"
	"farmcore/internal/infra/persistence/sqlite"
	"farmcore/pkg/domain"
)

// StorageDriver identifies a concrete persistence adapter implementation.
type StorageDriver string

const (
	StorageFile     StorageDriver = "file"     // single JSON file (default)
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// StorageOptions selects and parameterizes a persistence adapter.
type StorageOptions struct {
	Driver      StorageDriver
	FilePath    string // file driver
	SQLitePath  string // sqlite driver
	PostgresDSN string // postgres driver
}

// OpenAdapter constructs the persistence adapter named by opts. An empty
// driver defaults to file.
func OpenAdapter(opts StorageOptions) (domain.Adapter, error) {
	driver := opts.Driver
	if driver == "" {
		driver = StorageFile
	}
	switch driver {
	case StorageFile:
		return file.New(opts.FilePath)
	case StorageMemory:
		return memory.New(), nil
	case StorageSQLite:
		return sqlite.New(opts.SQLitePath)
	case StoragePostgres:
		return postgres.New(opts.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenAdapterFromEnv selects a backend using environment variables, the
// config-free path for callers that run without a config directory.
//
//	FARMCORE_STORAGE_DRIVER: file|memory|sqlite|postgres (default file)
//	FARMCORE_STORAGE_FILE_PATH: path to the JSON document (default ./farmcore.json)
//	FARMCORE_STORAGE_SQLITE_PATH: path to the sqlite file (default ./farmcore.db)
//	FARMCORE_STORAGE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenAdapterFromEnv() (domain.Adapter, error) {
	return OpenAdapter(StorageOptions{
		Driver:      StorageDriver(os.Getenv("FARMCORE_STORAGE_DRIVER")),
		FilePath:    os.Getenv("FARMCORE_STORAGE_FILE_PATH"),
		SQLitePath:  os.Getenv("FARMCORE_STORAGE_SQLITE_PATH"),
		PostgresDSN: os.Getenv("FARMCORE_STORAGE_POSTGRES_DSN"),
	})
}
