package sitecontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrObjectNotFound indicates an object-store key does not exist.
	ErrObjectNotFound = errors.New("object not found")

	// ErrBackupNotFound indicates no backup exists for a tracker section.
	ErrBackupNotFound = errors.New("backup not found")

	// ErrNotTrackerSection indicates a backup operation was requested for a
	// section without a snapshot-on-transition policy.
	ErrNotTrackerSection = errors.New("section has no snapshot policy")
)

// ValidationError rejects a payload before any object-store mutation. It is
// raised only for structurally unusable input (not a JSON object, or a
// required identifying field that is not a finite number); partial payloads
// are normalized, not rejected.
type ValidationError struct {
	Section string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload for section %s: %s", e.Section, e.Reason)
}

// StorageError wraps an object-store failure with the key and operation.
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
