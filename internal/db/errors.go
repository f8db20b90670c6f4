package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound     = errors.New("db: key not found")
	ErrKeyExists       = errors.New("db: key already exists")
	ErrForeignKey      = errors.New("db: foreign key violation")
	ErrNotReady        = errors.New("db: not ready")
	ErrMigrationFailed = errors.New("db: migration failed")
)

// Op constants name the failing operation for error context.
const (
	OpExec     = "EXEC"
	OpQuery    = "QUERY"
	OpQueryRow = "QUERY_ROW"
	OpMigrate  = "MIGRATE"
	OpPing     = "PING"
	OpGet      = "GET"
	OpSet      = "SET"
	OpDel      = "DEL"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
