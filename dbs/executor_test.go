package dbs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/surrealdb/qcore/kv"
	"github.com/surrealdb/qcore/kv/memkv"
	"github.com/surrealdb/qcore/val"
)

func newTestExecutor() (*Executor, *memkv.DB) {
	db := memkv.New(nil)
	sess := NewSession(Subject{ID: "root", Scopes: map[Permission]bool{PermEdit: true, PermOption: true, PermDb: true}})
	return NewExecutor(db, sess, &Options{}, nil), db
}

func selectStatement(writeable bool, v val.Value, err error) GenericStatement {
	return GenericStatement{
		IsWriteable: writeable,
		Compute: func(cc *ComputeContext, stmt Statement) (interface{}, error) {
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// TestImplicitSelectReturnsResult is end-to-end scenario S1: a single
// implicit-tx SELECT returns its result directly in out.
func TestImplicitSelectReturnsResult(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()
	out, _, err := e.Run(context.Background(), []Statement{selectStatement(false, val.Str("hit"), nil)})
	r.NoError(err)
	r.Len(out, 1)
	r.False(out[0].IsErr())
	r.Equal("hit", out[0].Result.Str)
}

func TestExplicitTxBuffersUntilCommit(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()
	stmts := []Statement{
		BeginStatement{},
		selectStatement(true, val.Str("a"), nil),
		selectStatement(true, val.Str("b"), nil),
		CommitStatement{},
	}
	out, _, err := e.Run(context.Background(), stmts)
	r.NoError(err)
	r.Len(out, 2)
	r.Equal("a", out[0].Result.Str)
	r.Equal("b", out[1].Result.Str)
}

// TestCancelRewritesBufferedResponsesToQueryCancelled is end-to-end
// scenario S7's cancel-side behavior: CANCEL rewrites every buffered
// response regardless of its own outcome.
func TestCancelRewritesBufferedResponsesToQueryCancelled(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()
	stmts := []Statement{
		BeginStatement{},
		selectStatement(true, val.Str("a"), nil),
		CancelStatement{},
	}
	out, _, err := e.Run(context.Background(), stmts)
	r.NoError(err)
	r.Len(out, 1)
	r.ErrorIs(out[0].Err, ErrQueryCancelled)
}

func TestErrorInExplicitTxShortCircuitsSubsequentStatements(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()
	stmts := []Statement{
		BeginStatement{},
		selectStatement(true, val.Value{}, errBoom),
		selectStatement(true, val.Str("never"), nil),
		CommitStatement{},
	}
	out, _, err := e.Run(context.Background(), stmts)
	r.NoError(err)
	r.Len(out, 2)
	r.True(out[0].IsErr())
	r.ErrorIs(out[1].Err, ErrQueryNotExecuted)
}

// TestCommitFailureRewritesBufferedOksToQueryNotExecutedDetail is
// end-to-end scenario S3.
func TestCommitFailureRewritesBufferedOksToQueryNotExecutedDetail(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()

	// sabotage directly cancels the underlying handle out from under the
	// executor mid-tx, simulating a backend-level failure independent of
	// the CANCEL statement type, so the subsequent COMMIT's rw.Commit()
	// call hits the backend's own ErrTxFinished guard.
	sabotage := GenericStatement{
		IsWriteable: true,
		Compute: func(cc *ComputeContext, stmt Statement) (interface{}, error) {
			_ = cc.Tx.Cancel()
			return val.Str("a"), nil
		},
	}
	stmts := []Statement{
		BeginStatement{},
		sabotage,
		CommitStatement{},
	}
	out, _, err := e.Run(context.Background(), stmts)
	r.NoError(err)
	r.Len(out, 1)
	var detail *QueryNotExecutedDetail
	r.ErrorAs(out[0].Err, &detail)
}

func TestUseStatementUpdatesSessionInPlace(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()
	out, _, err := e.Run(context.Background(), []Statement{UseStatement{NS: "n1", DB: "d1"}})
	r.NoError(err)
	r.Len(out, 1)
	r.False(out[0].IsErr())
	r.Equal("n1", e.session.NS)
	r.Equal("d1", e.session.DB)
}

func TestSetBindsVariableIntoSession(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()
	stmt := SetStatement{
		Name: "x",
		Compute: func(cc *ComputeContext, stmt Statement) (interface{}, error) {
			return val.IntV(42), nil
		},
	}
	out, _, err := e.Run(context.Background(), []Statement{stmt})
	r.NoError(err)
	r.Len(out, 1)
	v, ok := e.session.Vars["x"]
	r.True(ok)
	r.Equal(int64(42), v.Number.Int)
}

func TestOutputStatementClearsBufferKeepingOnlyFinalReturn(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()
	stmts := []Statement{
		BeginStatement{},
		selectStatement(true, val.Str("discarded"), nil),
		OutputStatement{
			IsWriteable: false,
			Compute: func(cc *ComputeContext, stmt Statement) (interface{}, error) {
				return val.Str("final"), nil
			},
		},
		CommitStatement{},
	}
	out, _, err := e.Run(context.Background(), stmts)
	r.NoError(err)
	r.Len(out, 1)
	r.Equal("final", out[0].Result.Str)
}

func TestOptionRequiresPermissionWhenAuthEnabled(t *testing.T) {
	r := require.New(t)
	db := memkv.New(nil)
	anon := NewSession(Subject{IsAnonymous: true})
	e := NewExecutor(db, anon, &Options{AuthEnabled: true}, nil)
	out, _, err := e.Run(context.Background(), []Statement{OptionStatement{Name: "force", Value: true}})
	r.NoError(err)
	r.Len(out, 0) // OPTION never emits a response, rejected or not
	r.False(e.options.ForceAll)
}

func TestLiveQueryRegistrationSurfacesAfterCommit(t *testing.T) {
	r := require.New(t)
	e, _ := newTestExecutor()
	live := GenericStatement{
		StmtKind:    KindLive,
		IsWriteable: true,
		Compute: func(cc *ComputeContext, stmt Statement) (interface{}, error) {
			_ = cc.Tx.WithRwTx(func(tx kv.RwTx) error {
				tx.TrackLiveQuery(kv.Tracked{ID: "lq1", Table: "person"})
				return nil
			})
			return val.Str("live-id"), nil
		},
	}
	_, tracked, err := e.Run(context.Background(), []Statement{live})
	r.NoError(err)
	r.Len(tracked, 1)
	r.Equal("lq1", tracked[0].ID)
}

var errBoom = &boomError{}

type boomError struct{}

func (*boomError) Error() string { return "boom" }
