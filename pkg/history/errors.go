package history

import "fmt"

// StorageError represents an error from the history backend.
type StorageError struct {
	Driver    string // "sqlite", "sqlite3" or "memory"
	Operation string // "open", "record", "list", ...
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("history error [driver=%s, operation=%s]: %v", e.Driver, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

func newStorageError(driver, operation string, cause error) *StorageError {
	return &StorageError{Driver: driver, Operation: operation, Cause: cause}
}
