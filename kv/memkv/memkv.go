// Package memkv is the in-memory reference implementation of the kv
// contract: a sync.RWMutex-guarded btree.BTreeG sorted map, good enough to
// make the executor and index cores testable without an external store.
// Grounded on fenghaojiang-erigon-lib/kv/kv_interface.go's RoDB/RwDB shape
// and chaosmeng-tidb/kv/kv.go's MemBuffer (an in-memory btree-backed
// transaction staging area) for the per-transaction write staging. It has
// no save-point support.
package memkv

import (
	"bytes"
	"context"
	"runtime"
	"sync"

	"github.com/google/btree"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/surrealdb/qcore/kv"
)

type entry struct {
	key, value []byte
	tombstone  bool
}

func lessEntry(a, b entry) bool { return bytes.Compare(a.key, b.key) < 0 }

// DB is an in-memory kv.RwDB. The zero value is not usable; use New.
type DB struct {
	mu     sync.RWMutex
	data   *btree.BTreeG[entry]
	seq    uint64 // commit counter, source of Versionstamp.Counter()
	logger log.Logger
}

// New returns an empty database.
func New(logger log.Logger) *DB {
	if logger == nil {
		logger = log.Root()
	}
	return &DB{
		data:   btree.NewG(32, lessEntry),
		logger: logger,
	}
}

func (db *DB) Close() {}

func (db *DB) BeginRo(ctx context.Context) (kv.Tx, error) {
	db.mu.RLock()
	snapshot := db.data.Clone()
	counter := db.seq
	db.mu.RUnlock()
	return &tx{db: db, snapshot: snapshot, writeable: false, baseCounter: counter}, nil
}

func (db *DB) BeginRw(ctx context.Context) (kv.RwTx, error) {
	db.mu.Lock()
	snapshot := db.data.Clone()
	counter := db.seq
	db.mu.Unlock()
	t := &tx{db: db, snapshot: snapshot, writeable: true, baseCounter: counter}
	runtime.SetFinalizer(t, func(t *tx) {
		if !t.done {
			kv.ReportLeakedRwTx(db.logger, "memkv.tx")
		}
	})
	return t, nil
}

func (db *DB) View(ctx context.Context, f func(kv.Tx) error) error {
	t, err := db.BeginRo(ctx)
	if err != nil {
		return err
	}
	defer t.Cancel()
	return f(t)
}

func (db *DB) Update(ctx context.Context, f func(kv.RwTx) error) error {
	t, err := db.BeginRw(ctx)
	if err != nil {
		return err
	}
	if err := f(t); err != nil {
		_ = t.Cancel()
		return err
	}
	return t.Commit()
}

// commit applies staged writes from t's overlay onto the shared store and
// bumps the commit counter, returning the versionstamp counter assigned to
// this commit.
func (db *DB) commit(overlay map[string]entry, order []string) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, k := range order {
		e := overlay[k]
		if e.tombstone {
			db.data.Delete(entry{key: e.key})
			continue
		}
		db.data.ReplaceOrInsert(e)
	}
	db.seq++
	return db.seq, nil
}
