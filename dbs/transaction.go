package dbs

import (
	"context"
	"runtime"
	"sync"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/surrealdb/qcore/kv"
)

// Transaction wraps one open kv handle (implicit or explicit) with the
// mutex discipline spec.md §5 requires: "an async mutex around the backend
// handle so that the executor can share it with sub-computations". Every
// access to the underlying handle goes through WithTx/WithRwTx.
// Notifications produced by compute paths during this tx's lifetime are
// buffered here and only handed to the session's Notify sink on successful
// Commit (Cancel drains them silently), matching the live-query flush/drain
// rule.
type Transaction struct {
	mu        sync.Mutex
	handle    kv.Tx
	rw        kv.RwTx
	writeable bool
	done      bool

	notifications []Notification
	logger        log.Logger
}

// Begin opens a new Transaction from db, read-write iff writeable.
func Begin(ctx context.Context, db kv.RwDB, writeable bool, logger log.Logger) (*Transaction, error) {
	if logger == nil {
		logger = log.Root()
	}
	if writeable {
		h, err := db.BeginRw(ctx)
		if err != nil {
			return nil, err
		}
		t := &Transaction{handle: h, rw: h, writeable: true, logger: logger}
		runtime.SetFinalizer(t, func(t *Transaction) {
			if !t.isDone() {
				kv.ReportLeakedRwTx(logger, "dbs.Transaction")
			}
		})
		return t, nil
	}
	h, err := db.BeginRo(ctx)
	if err != nil {
		return nil, err
	}
	return &Transaction{handle: h, writeable: false, logger: logger}, nil
}

func (t *Transaction) isDone() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

// Writeable reports whether this transaction permits writes.
func (t *Transaction) Writeable() bool { return t.writeable }

// WithTx runs f against the underlying read handle under the tx's mutex.
func (t *Transaction) WithTx(f func(kv.Tx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return f(t.handle)
}

// WithRwTx runs f against the underlying write handle under the tx's
// mutex, failing with kv.ErrTxReadonly if this transaction is read-only.
func (t *Transaction) WithRwTx(f func(kv.RwTx) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.writeable {
		return kv.ErrTxReadonly
	}
	return f(t.rw)
}

// Notify records a notification produced by compute, to be delivered to
// the session's sink only after this tx commits.
func (t *Transaction) Notify(n Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.notifications = append(t.notifications, n)
}

// Cancel closes the transaction, discarding any staged writes, and drains
// buffered notifications silently.
func (t *Transaction) Cancel() error {
	t.mu.Lock()
	t.done = true
	t.notifications = nil
	handle := t.handle
	t.mu.Unlock()
	return handle.Cancel()
}

// Commit closes the transaction, applying its writes, and returns the
// buffered notifications plus the set of pending live-query registrations
// for the caller to flush/install.
func (t *Transaction) Commit() ([]Notification, []kv.Tracked, error) {
	t.mu.Lock()
	rw := t.rw
	notes := t.notifications
	t.notifications = nil
	t.mu.Unlock()

	if rw == nil {
		return nil, nil, kv.ErrTxReadonly
	}
	tracked := rw.ConsumePendingLiveQueries()
	if err := rw.Commit(); err != nil {
		return nil, nil, err
	}
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
	return notes, tracked, nil
}

// Done reports whether Commit or Cancel has already run.
func (t *Transaction) Done() bool { return t.isDone() }
