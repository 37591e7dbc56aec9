package kv

import "github.com/pkg/errors"

// Sentinel errors every backend must return for the conditions spec.md §4.1
// names. Wrapped with errors.Wrap/Wrapf at call sites for context; callers
// compare with errors.Is.
var (
	// ErrTxFinished is returned by every operation on a transaction that has
	// already been committed or cancelled.
	ErrTxFinished = errors.New("kv: transaction already finished")

	// ErrTxReadonly is returned by write operations on a read-only handle,
	// and by Commit on a read-only handle.
	ErrTxReadonly = errors.New("kv: transaction is read-only")

	// ErrTxConditionNotMet is returned by Putc/Delc when check does not
	// match the current value.
	ErrTxConditionNotMet = errors.New("kv: condition not met")
)

// KeyAlreadyExistsError is returned by Put when the key already exists; it
// carries the category tag so callers can report "record already exists"
// style messages keyed by the index/table the write targeted.
type KeyAlreadyExistsError struct {
	Category string
}

func (e *KeyAlreadyExistsError) Error() string {
	return "kv: key already exists in category " + e.Category
}

// NewKeyAlreadyExistsError constructs a category-tagged already-exists error.
func NewKeyAlreadyExistsError(category string) error {
	return &KeyAlreadyExistsError{Category: category}
}
