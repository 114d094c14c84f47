package backend

import (
	"context"

	"expensek/internal/sheets"
)

// Backend is the full set of storage ports a data backend provides.
type Backend interface {
	sheets.TransactionLister
	sheets.RecentTransactionLister
	sheets.TransactionWriter
	sheets.CategoryReader
}

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// Result is what the factory hands back to the binaries.
type Result struct {
	Backend Backend
	Cleanup CleanupFunc
	// Ping is nil when the backend has no readiness probe.
	Ping func(ctx context.Context) error
}

// Factory creates backends based on configuration.
type Factory interface {
	CreateBackend(ctx context.Context, cfg Config) (*Result, error)
}

type Type string

const (
	MemoryBackend   Type = "memory"
	SQLiteBackend   Type = "sqlite"
	PostgresBackend Type = "postgres"
	SheetsBackend   Type = "sheets"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// IsShared reports whether more than one process can see the same data
// through this backend. The memory store lives inside a single process.
func (t Type) IsShared() bool {
	return t.IsValid() && t != MemoryBackend
}

// Types returns every supported backend type.
func Types() []Type {
	return []Type{MemoryBackend, SQLiteBackend, PostgresBackend, SheetsBackend}
}
