package dbs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/qcore/kv"
	"github.com/surrealdb/qcore/kv/memkv"
)

func TestTransactionCommitAppliesWrites(t *testing.T) {
	r := require.New(t)
	db := memkv.New(nil)
	tx, err := Begin(context.Background(), db, true, nil)
	r.NoError(err)

	r.NoError(tx.WithRwTx(func(rw kv.RwTx) error {
		return rw.Set([]byte("k"), []byte("v"))
	}))

	_, _, err = tx.Commit()
	r.NoError(err)
	r.True(tx.Done())

	ro, err := db.BeginRo(context.Background())
	r.NoError(err)
	defer ro.Cancel()
	v, ok, err := ro.Get([]byte("k"))
	r.NoError(err)
	r.True(ok)
	r.Equal("v", string(v))
}

func TestTransactionCancelDiscardsWrites(t *testing.T) {
	r := require.New(t)
	db := memkv.New(nil)
	tx, err := Begin(context.Background(), db, true, nil)
	r.NoError(err)

	r.NoError(tx.WithRwTx(func(rw kv.RwTx) error {
		return rw.Set([]byte("k"), []byte("v"))
	}))
	r.NoError(tx.Cancel())

	ro, err := db.BeginRo(context.Background())
	r.NoError(err)
	defer ro.Cancel()
	_, ok, err := ro.Get([]byte("k"))
	r.NoError(err)
	r.False(ok)
}

func TestTransactionNotificationsFlushOnlyAfterCommit(t *testing.T) {
	r := require.New(t)
	db := memkv.New(nil)
	tx, err := Begin(context.Background(), db, true, nil)
	r.NoError(err)
	tx.Notify(Notification{LiveID: "lq1", Action: "CREATE"})

	notes, _, err := tx.Commit()
	r.NoError(err)
	r.Len(notes, 1)
	r.Equal("lq1", notes[0].LiveID)
}

func TestTransactionReadOnlyRejectsWrite(t *testing.T) {
	r := require.New(t)
	db := memkv.New(nil)
	tx, err := Begin(context.Background(), db, false, nil)
	r.NoError(err)
	err = tx.WithRwTx(func(rw kv.RwTx) error { return nil })
	r.ErrorIs(err, kv.ErrTxReadonly)
}
