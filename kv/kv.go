// Package kv defines the transactional key/value contract every storage
// backend in this module satisfies: scoped reads, conditional writes,
// ordered range scans, versionstamped writes for change feeds, and
// safe-close invariants around write transactions. Grounded on
// fenghaojiang-erigon-lib/kv/kv_interface.go's Tx/RwTx/RoDB/RwDB split,
// adapted from MDBX-cursor semantics to the conditional-write, versionstamp
// contract spec.md §4.1 requires.
package kv

import (
	"context"

	"github.com/VictoriaMetrics/metrics"
)

var (
	commitTotal   = metrics.NewCounter(`qcore_kv_commit_total`)
	commitFailed  = metrics.NewCounter(`qcore_kv_commit_failed_total`)
	cancelTotal   = metrics.NewCounter(`qcore_kv_cancel_total`)
	scanRecords   = metrics.NewCounter(`qcore_kv_scan_records_total`)
	leakedRwTx    = metrics.NewCounter(`qcore_kv_leaked_rwtx_total`)
)

// KeyRange is a half-open [Start, End) byte-range scan boundary. A nil End
// means "to the end of the keyspace"; a nil Start means "from the
// beginning".
type KeyRange struct {
	Start []byte
	End   []byte
}

// KV is a single key/value pair returned from a scan.
type KV struct {
	Key   []byte
	Value []byte
}

// Tracked is a live-query registration pending commit, collected by
// Tx.TrackLiveQuery and drained exactly once by
// Tx.ConsumePendingLiveQueries at commit time.
type Tracked struct {
	ID    string
	Table string
}

// Tx is the read side of the contract, satisfied by both read-only and
// read-write handles. Every error-returning method except Cancel fails with
// ErrTxFinished once the transaction has committed or cancelled; Cancel on
// a finished transaction returns nil.
type Tx interface {
	// Get returns the value for key under the handle's isolation, or
	// ok == false if absent.
	Get(key []byte) (value []byte, ok bool, err error)

	// Exists is equivalent to Get(key) with ok discarded, but backends may
	// implement it without materializing the value.
	Exists(key []byte) (bool, error)

	// Scan returns up to limit key/value pairs in ascending key order
	// within r. limit <= 0 means unbounded.
	Scan(ctx context.Context, r KeyRange, limit int) ([]KV, error)

	// GetTimestamp returns the current read-version as a versionstamp, used
	// for change-feed ordering; within a tx it never exceeds that tx's
	// eventual commit versionstamp.
	GetTimestamp() (Versionstamp, error)

	// TrackLiveQuery registers a pending live-query subscription, consumed
	// by ConsumePendingLiveQueries at commit and discarded on cancel.
	TrackLiveQuery(t Tracked)

	// ConsumePendingLiveQueries extracts and clears the collector. Called
	// only by the executor, exactly once, at commit.
	ConsumePendingLiveQueries() []Tracked

	// Cancel closes the transaction, discarding any writes.
	Cancel() error

	// Writeable reports whether this handle permits write operations.
	Writeable() bool

	// Done reports whether Commit or Cancel has already been called.
	Done() bool
}

// RwTx is the read+write handle. Every write method fails with
// ErrTxReadonly if Writeable() is false (which cannot happen for a value
// obtained through RwDB.BeginRw, but is asserted defensively since RwTx
// embeds Tx and could in principle be handed a read-only-backed handle by a
// future adapter).
type RwTx interface {
	Tx

	// Put inserts key with value, failing with a *KeyAlreadyExistsError
	// tagged with category if key is already present.
	Put(category string, key, value []byte) error

	// Set unconditionally inserts or overwrites key.
	Set(key, value []byte) error

	// Del unconditionally removes key. Idempotent: deleting an absent key
	// is not an error.
	Del(key []byte) error

	// Putc is a conditional write: it succeeds iff the current value
	// equals check (both present), or the key is absent and check is nil;
	// otherwise it fails with ErrTxConditionNotMet.
	Putc(key, value, check []byte) error

	// Delc is a conditional delete with the same check semantics as Putc.
	Delc(key, check []byte) error

	// Delr deletes every key in r.
	Delr(ctx context.Context, r KeyRange) error

	// SetVersionstampedKey stages a write whose key is
	// prefix||placeholder||suffix; the backend substitutes a monotonic
	// versionstamp into the 10-byte placeholder at commit time.
	SetVersionstampedKey(prefix, suffix, value []byte) error

	// Commit closes the transaction, applying all writes. Fails with
	// ErrTxReadonly if called on a read-only handle (structurally
	// impossible through this interface, but documented per spec.md §4.1).
	Commit() error
}

// RoDB is the read-only database handle: it can open read transactions and
// run a convenience View wrapper.
type RoDB interface {
	// BeginRo opens a new read-only transaction.
	BeginRo(ctx context.Context) (Tx, error)

	// View runs f inside a read-only transaction, cancelling it afterward
	// regardless of f's outcome.
	View(ctx context.Context, f func(tx Tx) error) error

	// Close releases the database handle.
	Close()
}

// RwDB is the full read-write database handle.
type RwDB interface {
	RoDB

	// BeginRw opens a new read-write transaction.
	BeginRw(ctx context.Context) (RwTx, error)

	// Update runs f inside a read-write transaction, committing on success
	// and cancelling on error or panic.
	Update(ctx context.Context, f func(tx RwTx) error) error
}
