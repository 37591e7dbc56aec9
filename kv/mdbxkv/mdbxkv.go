// Package mdbxkv implements kv.RwDB over github.com/erigontech/mdbx-go, the
// teacher's actual embedded-store dependency. One MDBX environment holds a
// single DBI ("qcore"); kv.KeyRange scans map onto mdbx cursor
// SetRange/Next walks, and SetVersionstampedKey stages its write in Go
// until Commit, the same staged-write shape memkv.tx uses, since MDBX
// itself has no versionstamp primitive to delegate to.
package mdbxkv

import (
	"bytes"
	"context"
	"runtime"
	"sync"

	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/erigontech/mdbx-go/mdbx"

	"github.com/surrealdb/qcore/kv"
)

const dbiName = "qcore"

// Options mirrors the handful of settings an mdbx.Env takes that this
// module cares about.
type Options struct {
	Path       string
	ReadOnly   bool
	MaxReaders uint64
}

// DB wraps one *mdbx.Env plus the sequence counter SetVersionstampedKey
// writes are assigned from at commit time.
type DB struct {
	env    *mdbx.Env
	dbi    mdbx.DBI
	mu     sync.Mutex
	seq    uint64
	logger log.Logger
}

// Open creates or opens an MDBX environment at opts.Path.
func Open(opts Options, logger log.Logger) (*DB, error) {
	if logger == nil {
		logger = log.Root()
	}
	env, err := mdbx.NewEnv()
	if err != nil {
		return nil, err
	}
	if err := env.SetOption(mdbx.OptMaxDB, 1); err != nil {
		return nil, err
	}
	flags := uint(mdbx.Durable)
	if opts.ReadOnly {
		flags |= mdbx.Readonly
	}
	if err := env.Open(opts.Path, flags, 0o644); err != nil {
		return nil, err
	}

	var dbi mdbx.DBI
	err = env.Update(func(txn *mdbx.Txn) error {
		var err error
		dbi, err = txn.OpenDBISimple(dbiName, mdbx.Create)
		return err
	})
	if err != nil {
		env.Close()
		return nil, err
	}

	logger.Info("mdbxkv: environment opened", "path", opts.Path)
	return &DB{env: env, dbi: dbi, logger: logger}, nil
}

func (db *DB) Close() { db.env.Close() }

func (db *DB) nextCounter() uint64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.seq++
	return db.seq
}

func (db *DB) BeginRo(ctx context.Context) (kv.Tx, error) {
	txn, err := db.env.BeginTxn(nil, mdbx.Readonly)
	if err != nil {
		return nil, err
	}
	return &tx{db: db, txn: txn, writeable: false}, nil
}

func (db *DB) BeginRw(ctx context.Context) (kv.RwTx, error) {
	txn, err := db.env.BeginTxn(nil, 0)
	if err != nil {
		return nil, err
	}
	t := &tx{db: db, txn: txn, writeable: true}
	runtime.SetFinalizer(t, func(t *tx) {
		if !t.Done() {
			kv.ReportLeakedRwTx(db.logger, "mdbxkv.tx")
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

type pendingVersionstamped struct {
	prefix, suffix, value []byte
}

type tx struct {
	mu        sync.Mutex
	db        *DB
	txn       *mdbx.Txn
	writeable bool
	done      bool

	pendVS  []pendingVersionstamped
	tracked []kv.Tracked
}

func (t *tx) Writeable() bool { return t.writeable }
func (t *tx) Done() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done
}

func (t *tx) checkOpen() error {
	if t.done {
		return kv.ErrTxFinished
	}
	return nil
}

func (t *tx) Get(key []byte) ([]byte, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return nil, false, err
	}
	v, err := t.txn.Get(t.db.dbi, key)
	if mdbx.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t *tx) Exists(key []byte) (bool, error) {
	_, ok, err := t.Get(key)
	return ok, err
}

func (t *tx) Scan(ctx context.Context, r kv.KeyRange, limit int) ([]kv.KV, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return nil, err
	}
	cur, err := t.txn.OpenCursor(t.db.dbi)
	if err != nil {
		return nil, err
	}
	defer cur.Close()

	var out []kv.KV
	var k, v []byte
	if r.Start == nil {
		k, v, err = cur.Get(nil, nil, mdbx.First)
	} else {
		k, v, err = cur.Get(r.Start, nil, mdbx.SetRange)
	}
	for err == nil {
		if r.End != nil && bytes.Compare(k, r.End) >= 0 {
			break
		}
		out = append(out, kv.KV{Key: append([]byte(nil), k...), Value: append([]byte(nil), v...)})
		if limit > 0 && len(out) >= limit {
			break
		}
		k, v, err = cur.Get(nil, nil, mdbx.Next)
	}
	if err != nil && !mdbx.IsNotFound(err) {
		return nil, err
	}
	return out, nil
}

func (t *tx) GetTimestamp() (kv.Versionstamp, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return kv.Versionstamp{}, err
	}
	t.db.mu.Lock()
	counter := t.db.seq
	t.db.mu.Unlock()
	return kv.NewVersionstamp(counter, 0), nil
}

func (t *tx) TrackLiveQuery(tr kv.Tracked) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracked = append(t.tracked, tr)
}

func (t *tx) ConsumePendingLiveQueries() []kv.Tracked {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.tracked
	t.tracked = nil
	return out
}

func (t *tx) Cancel() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil
	}
	t.done = true
	t.txn.Abort()
	return nil
}

func (t *tx) Put(category string, key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	if !t.writeable {
		return kv.ErrTxReadonly
	}
	if _, err := t.txn.Get(t.db.dbi, key); err == nil {
		return kv.NewKeyAlreadyExistsError(category)
	} else if !mdbx.IsNotFound(err) {
		return err
	}
	return t.txn.Put(t.db.dbi, key, value, 0)
}

func (t *tx) Set(key, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	if !t.writeable {
		return kv.ErrTxReadonly
	}
	return t.txn.Put(t.db.dbi, key, value, 0)
}

func (t *tx) Del(key []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	if !t.writeable {
		return kv.ErrTxReadonly
	}
	err := t.txn.Del(t.db.dbi, key, nil)
	if mdbx.IsNotFound(err) {
		return nil
	}
	return err
}

func (t *tx) currentValue(key []byte) ([]byte, bool, error) {
	v, err := t.txn.Get(t.db.dbi, key)
	if mdbx.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t *tx) Putc(key, value, check []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	if !t.writeable {
		return kv.ErrTxReadonly
	}
	cur, ok, err := t.currentValue(key)
	if err != nil {
		return err
	}
	switch {
	case check == nil && !ok:
	case check != nil && ok && bytes.Equal(cur, check):
	default:
		return kv.ErrTxConditionNotMet
	}
	return t.txn.Put(t.db.dbi, key, value, 0)
}

func (t *tx) Delc(key, check []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	if !t.writeable {
		return kv.ErrTxReadonly
	}
	cur, ok, err := t.currentValue(key)
	if err != nil {
		return err
	}
	switch {
	case check == nil && !ok:
		return nil
	case check != nil && ok && bytes.Equal(cur, check):
	default:
		return kv.ErrTxConditionNotMet
	}
	return t.txn.Del(t.db.dbi, key, nil)
}

func (t *tx) Delr(ctx context.Context, r kv.KeyRange) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	if !t.writeable {
		return kv.ErrTxReadonly
	}
	cur, err := t.txn.OpenCursor(t.db.dbi)
	if err != nil {
		return err
	}
	defer cur.Close()

	var toDelete [][]byte
	var k []byte
	if r.Start == nil {
		k, _, err = cur.Get(nil, nil, mdbx.First)
	} else {
		k, _, err = cur.Get(r.Start, nil, mdbx.SetRange)
	}
	for err == nil {
		if r.End != nil && bytes.Compare(k, r.End) >= 0 {
			break
		}
		toDelete = append(toDelete, append([]byte(nil), k...))
		k, _, err = cur.Get(nil, nil, mdbx.Next)
	}
	if err != nil && !mdbx.IsNotFound(err) {
		return err
	}
	for _, k := range toDelete {
		if err := t.txn.Del(t.db.dbi, k, nil); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) SetVersionstampedKey(prefix, suffix, value []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return err
	}
	if !t.writeable {
		return kv.ErrTxReadonly
	}
	t.pendVS = append(t.pendVS, pendingVersionstamped{
		prefix: append([]byte(nil), prefix...),
		suffix: append([]byte(nil), suffix...),
		value:  append([]byte(nil), value...),
	})
	return nil
}

func (t *tx) Commit() error {
	t.mu.Lock()
	if err := t.checkOpen(); err != nil {
		t.mu.Unlock()
		return err
	}
	if !t.writeable {
		t.mu.Unlock()
		return kv.ErrTxReadonly
	}
	pendVS := t.pendVS
	t.mu.Unlock()

	if len(pendVS) > 0 {
		counter := t.db.nextCounter()
		var seq uint16
		for _, p := range pendVS {
			vs := kv.NewVersionstamp(counter, seq)
			seq++
			key := make([]byte, 0, len(p.prefix)+kv.VersionstampSize+len(p.suffix))
			key = append(key, p.prefix...)
			key = append(key, vs[:]...)
			key = append(key, p.suffix...)
			if err := t.txn.Put(t.db.dbi, key, p.value, 0); err != nil {
				return err
			}
		}
	}

	if _, err := t.txn.Commit(); err != nil {
		return err
	}
	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
	return nil
}
