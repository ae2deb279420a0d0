package config

import (
	"fmt"
	"strings"
	"time"
)

type Storage struct {
	Backend StorageBackend `env:"STORAGE_BACKEND" envDefault:"POSTGRES"`
}

type SQLite struct {
	Path        string        `env:"SQLITE_PATH" envDefault:"bipagem.db"`
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s"`
	MaxConns    int           `env:"SQLITE_MAX_CONNS" envDefault:"4"`
}

// StorageBackend selects where the catalog lives.
type StorageBackend uint8

const (
	StorageBackendPostgres StorageBackend = iota
	StorageBackendSQLite
	StorageBackendMemory
)

func (b StorageBackend) String() string {
	return []string{"POSTGRES", "SQLITE", "MEMORY"}[b]
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (b *StorageBackend) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "POSTGRES":
		*b = StorageBackendPostgres
	case "SQLITE":
		*b = StorageBackendSQLite
	case "MEMORY":
		*b = StorageBackendMemory
	default:
		return fmt.Errorf("unknown storage backend: %s", text)
	}
	return nil
}

func (b StorageBackend) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}
