package dbs

import (
	"context"

	"github.com/surrealdb/qcore/val"
)

// ComputeContext is what a StatementComputer sees: the session's variable
// bindings (overridable per-statement by SET), the currently-open
// Transaction, and a deadline-aware context.Context for the statement's
// compute. Mirrors spec.md §6's "context carries: session variables
// mapping, notification sender slot, per-statement deadline, transaction
// slot, IAM subject".
type ComputeContext struct {
	context.Context

	Session *Session
	Tx      *Transaction
	Vars    map[string]val.Value
}

// newComputeContext builds a ComputeContext over parent, applying timeout
// if non-nil as a context deadline.
func newComputeContext(parent context.Context, sess *Session, tx *Transaction, timeout *StatementTimeout) (*ComputeContext, context.CancelFunc) {
	vars := make(map[string]val.Value, len(sess.Vars))
	for k, v := range sess.Vars {
		vars[k] = v
	}
	cc := &ComputeContext{Session: sess, Tx: tx, Vars: vars}
	if timeout == nil {
		cc.Context = parent
		return cc, func() {}
	}
	ctx, cancel := context.WithTimeout(parent, timeout.Duration)
	cc.Context = ctx
	return cc, cancel
}

// IsTimedout reports whether the context's deadline has been exceeded,
// checked after a statement's compute returns (spec.md §4.6's "After
// compute, if ctx.is_timedout(), the result is rewritten to QueryTimedout").
func (c *ComputeContext) IsTimedout() bool {
	select {
	case <-c.Done():
		return c.Err() == context.DeadlineExceeded
	default:
		return false
	}
}

// Notify records a live-query notification on the context's transaction,
// to be flushed after commit.
func (c *ComputeContext) Notify(n Notification) {
	if c.Tx != nil {
		c.Tx.Notify(n)
	}
}

// Get resolves a bound variable by name.
func (c *ComputeContext) Get(name string) (val.Value, bool) {
	v, ok := c.Vars[name]
	return v, ok
}
