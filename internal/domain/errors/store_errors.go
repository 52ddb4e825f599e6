package errors

import "fmt"

// StoreCorruptError is returned when the persisted store file cannot be
// parsed. Fatal to the caller: the store does not attempt partial recovery.
type StoreCorruptError struct {
	Path string
	Err  error
}

func (e *StoreCorruptError) Error() string {
	return fmt.Sprintf("payments store %s is corrupt: %v", e.Path, e.Err)
}

func (e *StoreCorruptError) Unwrap() error {
	return e.Err
}

// NewStoreCorruptError creates a new StoreCorruptError
func NewStoreCorruptError(path string, err error) *StoreCorruptError {
	return &StoreCorruptError{
		Path: path,
		Err:  err,
	}
}
