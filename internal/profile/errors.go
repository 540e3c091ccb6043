package profile

import (
	"errors"
	"fmt"

	"github.com/brizzai/auth-profile/internal/store"
)

var (
	ErrEmptyCollection  = errors.New("collection name is empty")
	ErrUnsupportedValue = store.ErrUnsupportedValue
	ErrReservedField    = errors.New("extra field collides with a profile field")
)

// StorageError reports a failed document store operation. Err is the cause.
type StorageError struct {
	Op         string // "create" or "list"
	Collection string
	Err        error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("profile %s %q: %v", e.Op, e.Collection, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
