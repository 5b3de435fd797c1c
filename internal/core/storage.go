package core

import (
	"fmt"
	"os"
	"strings"

	"broodcore/internal/infra/persistence/memory"
	"broodcore/internal/infra/persistence/postgres"
	"broodcore/internal/infra/persistence/sqlite"
	"broodcore/pkg/domain"
)

// StorageDriver selects a persistence backend.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"
	StorageSQLite   StorageDriver = "sqlite"
	StoragePostgres StorageDriver = "postgres"
)

const (
	envStorageDriver = "BROODCORE_STORAGE_DRIVER"
	envSQLitePath    = "BROODCORE_SQLITE_PATH"
	envPostgresDSN   = "BROODCORE_POSTGRES_DSN"
)

// Open constructs a persistent store for the given driver. target is the
// sqlite path or postgres DSN; the memory driver ignores it.
func Open(driver StorageDriver, target string, engine *domain.RulesEngine) (PersistentStore, error) {
	switch driver {
	case StorageMemory, "":
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(target, engine)
	case StoragePostgres:
		return postgres.NewStore(target, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// OpenPersistentStore selects a backend from the environment, defaulting to
// sqlite so a fresh install persists without configuration.
func OpenPersistentStore(engine *domain.RulesEngine) (PersistentStore, error) {
	driver := StorageDriver(strings.ToLower(strings.TrimSpace(os.Getenv(envStorageDriver))))
	switch driver {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StoragePostgres:
		return postgres.NewStore(os.Getenv(envPostgresDSN), engine)
	case StorageSQLite, "":
		return sqlite.NewStore(os.Getenv(envSQLitePath), engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
