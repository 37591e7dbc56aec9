package dbs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/qcore/kv/memkv"
	"github.com/surrealdb/qcore/val"
)

func TestNewStatementTimeoutRejectsOutOfRangeDuration(t *testing.T) {
	r := require.New(t)
	_, err := NewStatementTimeout(maxRepresentableTimeout + time.Second)
	var invalid *InvalidTimeout
	r.True(errors.As(err, &invalid))
}

func TestNewStatementTimeoutAcceptsValidDuration(t *testing.T) {
	r := require.New(t)
	timeout, err := NewStatementTimeout(5 * time.Second)
	r.NoError(err)
	r.Equal(5*time.Second, timeout.Duration)
}

// TestStatementExceedingTimeoutRewritesToQueryTimedout exercises the
// "after compute, if ctx.is_timedout(), rewrite to QueryTimedout" rule.
func TestStatementExceedingTimeoutRewritesToQueryTimedout(t *testing.T) {
	r := require.New(t)
	db := memkv.New(nil)
	sess := NewSession(Subject{ID: "root"})
	e := NewExecutor(db, sess, &Options{}, nil)

	timeout, err := NewStatementTimeout(1 * time.Nanosecond)
	r.NoError(err)

	slow := GenericStatement{
		IsWriteable: false,
		Timeout:     timeout,
		Compute: func(cc *ComputeContext, stmt Statement) (interface{}, error) {
			time.Sleep(2 * time.Millisecond)
			return val.Str("too-late"), nil
		},
	}
	out, _, err := e.Run(context.Background(), []Statement{slow})
	r.NoError(err)
	r.Len(out, 1)
	r.ErrorIs(out[0].Err, ErrQueryTimedout)
}
