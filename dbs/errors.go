package dbs

import (
	"time"

	"github.com/pkg/errors"
)

// Sentinel and detail errors the executor rewrites responses to, per
// spec.md §4.6's cross-statement error propagation and timeout rules.
var (
	// ErrQueryCancelled replaces every buffered response on CANCEL,
	// regardless of the statement's own outcome.
	ErrQueryCancelled = errors.New("query cancelled")

	// ErrQueryNotExecuted replaces a buffered Ok when an earlier statement
	// in the same explicit tx set err, or is returned directly for any
	// statement seen after err was set.
	ErrQueryNotExecuted = errors.New("query not executed due to a previous error")

	// ErrQueryTimedout replaces a statement's result when its compute
	// context's deadline was exceeded during execution.
	ErrQueryTimedout = errors.New("query timed out")

	// ErrNotEnoughPermissions is returned by permission-gated statements
	// (OPTION; any op under an anonymous session with auth enabled).
	ErrNotEnoughPermissions = errors.New("not enough permissions to perform this action")
)

// QueryNotExecutedDetail replaces a buffered Ok when COMMIT itself failed
// (as opposed to err already being set before commit was attempted), so
// the original commit failure reason is preserved for the caller.
type QueryNotExecutedDetail struct {
	Message string
}

func (e *QueryNotExecutedDetail) Error() string {
	return "query not executed: " + e.Message
}

// InvalidTimeout is returned when a statement's TIMEOUT duration exceeds
// the platform's representable range; never silently truncated.
type InvalidTimeout struct {
	Requested time.Duration
}

func (e *InvalidTimeout) Error() string {
	return "invalid timeout duration: " + e.Requested.String()
}

// StatementTimeout is the parsed and validated form of a `TIMEOUT d`
// clause, attached to a GenericStatement/OutputStatement.
type StatementTimeout struct {
	Duration time.Duration
}

// maxRepresentableTimeout bounds what a single statement's context deadline
// may request; larger values are rejected as InvalidTimeout at apply time
// rather than silently clamped.
const maxRepresentableTimeout = 24 * time.Hour

// NewStatementTimeout validates d against the platform's representable
// range, returning InvalidTimeout instead of silently truncating.
func NewStatementTimeout(d time.Duration) (*StatementTimeout, error) {
	if d <= 0 || d > maxRepresentableTimeout {
		return nil, &InvalidTimeout{Requested: d}
	}
	return &StatementTimeout{Duration: d}, nil
}
