package memkv

import (
	"bytes"
	"context"
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/btree"

	"github.com/surrealdb/qcore/kv"
)

var (
	commitTotal  = metrics.NewCounter(`qcore_memkv_commit_total`)
	commitFailed = metrics.NewCounter(`qcore_memkv_commit_failed_total`)
	cancelTotal  = metrics.NewCounter(`qcore_memkv_cancel_total`)
)

type pendingVersionstamped struct {
	prefix, suffix, value []byte
}

// tx is both kv.Tx and kv.RwTx: the read-only case simply never exercises
// the write methods (callers obtained it through BeginRo, which never
// returns the RwTx-widened type).
type tx struct {
	mu          sync.Mutex
	db          *DB
	snapshot    *btree.BTreeG[entry]
	writeable   bool
	done        bool
	baseCounter uint64

	writes  map[string]entry
	order   []string
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
	e, ok := t.snapshot.Get(entry{key: key})
	if !ok || e.tombstone {
		return nil, false, nil
	}
	return e.value, true, nil
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
	var out []kv.KV
	pivot := entry{key: r.Start}
	iter := func(e entry) bool {
		if r.End != nil && bytes.Compare(e.key, r.End) >= 0 {
			return false
		}
		if !e.tombstone {
			out = append(out, kv.KV{Key: append([]byte(nil), e.key...), Value: append([]byte(nil), e.value...)})
		}
		return limit <= 0 || len(out) < limit
	}
	if r.Start == nil {
		t.snapshot.Ascend(iter)
	} else {
		t.snapshot.AscendGreaterOrEqual(pivot, iter)
	}
	return out, nil
}

func (t *tx) GetTimestamp() (kv.Versionstamp, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return kv.Versionstamp{}, err
	}
	return kv.NewVersionstamp(t.baseCounter, 0), nil
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
	cancelTotal.Inc()
	return nil
}

func (t *tx) stageWrite(e entry) {
	k := string(e.key)
	if _, exists := t.writes[k]; !exists {
		t.order = append(t.order, k)
	}
	if t.writes == nil {
		t.writes = map[string]entry{}
	}
	t.writes[k] = e
	if e.tombstone {
		t.snapshot.Delete(entry{key: e.key})
	} else {
		t.snapshot.ReplaceOrInsert(e)
	}
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
	if e, ok := t.snapshot.Get(entry{key: key}); ok && !e.tombstone {
		return kv.NewKeyAlreadyExistsError(category)
	}
	t.stageWrite(entry{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
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
	t.stageWrite(entry{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
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
	t.stageWrite(entry{key: append([]byte(nil), key...), tombstone: true})
	return nil
}

func (t *tx) currentValue(key []byte) ([]byte, bool) {
	e, ok := t.snapshot.Get(entry{key: key})
	if !ok || e.tombstone {
		return nil, false
	}
	return e.value, true
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
	cur, ok := t.currentValue(key)
	switch {
	case check == nil && !ok:
	case check != nil && ok && bytes.Equal(cur, check):
	default:
		return kv.ErrTxConditionNotMet
	}
	t.stageWrite(entry{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
	return nil
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
	cur, ok := t.currentValue(key)
	switch {
	case check == nil && !ok:
	case check != nil && ok && bytes.Equal(cur, check):
	default:
		return kv.ErrTxConditionNotMet
	}
	t.stageWrite(entry{key: append([]byte(nil), key...), tombstone: true})
	return nil
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
	var toDelete [][]byte
	pivot := entry{key: r.Start}
	iter := func(e entry) bool {
		if r.End != nil && bytes.Compare(e.key, r.End) >= 0 {
			return false
		}
		if !e.tombstone {
			toDelete = append(toDelete, append([]byte(nil), e.key...))
		}
		return true
	}
	if r.Start == nil {
		t.snapshot.Ascend(iter)
	} else {
		t.snapshot.AscendGreaterOrEqual(pivot, iter)
	}
	for _, k := range toDelete {
		t.stageWrite(entry{key: k, tombstone: true})
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
	writes := t.writes
	order := t.order
	pendVS := t.pendVS
	t.mu.Unlock()

	counter, err := t.db.commit(writes, order)
	if err != nil {
		commitFailed.Inc()
		return err
	}

	if len(pendVS) > 0 {
		seq := uint16(0)
		vsWrites := make(map[string]entry, len(pendVS))
		vsOrder := make([]string, 0, len(pendVS))
		for _, p := range pendVS {
			vs := kv.NewVersionstamp(counter, seq)
			seq++
			key := append(append(append([]byte(nil), p.prefix...), vs[:]...), p.suffix...)
			e := entry{key: key, value: p.value}
			vsWrites[string(key)] = e
			vsOrder = append(vsOrder, string(key))
		}
		if _, err := t.db.commit(vsWrites, vsOrder); err != nil {
			commitFailed.Inc()
			return err
		}
	}

	t.mu.Lock()
	t.done = true
	t.mu.Unlock()
	commitTotal.Inc()
	return nil
}
