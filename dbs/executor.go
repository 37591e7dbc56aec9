package dbs

import (
	"context"
	"time"

	"github.com/erigontech/erigon-lib/log/v3"

	"github.com/surrealdb/qcore/kv"
	"github.com/surrealdb/qcore/val"
)

// Executor runs one statement sequence against a Session/Options pair,
// implementing the per-statement algorithm of spec.md §4.6: implicit and
// explicit transaction management, buffered-response rewriting on
// CANCEL/COMMIT, cross-statement error propagation, live-query tracking
// and per-statement timeouts. Grounded on other_examples' db-executor.go
// (the predecessor's begin/cancel/commit branch-then-operate shape) and
// original_source/crates/core/src/dbs/executor.rs for exact rewrite rules.
type Executor struct {
	db      kv.RwDB
	session *Session
	options *Options
	logger  log.Logger

	err bool
	txn *Transaction
}

// NewExecutor builds an Executor bound to db and the given session state.
func NewExecutor(db kv.RwDB, session *Session, options *Options, logger log.Logger) *Executor {
	if logger == nil {
		logger = log.Root()
	}
	if options == nil {
		options = &Options{}
	}
	return &Executor{db: db, session: session, options: options, logger: logger}
}

// Run executes stmts in order, returning the emitted responses and the
// live-query registrations accumulated across the whole call (spec.md §6:
// "(Vec<Response>, Vec<TrackedLiveQuery>)").
func (e *Executor) Run(ctx context.Context, stmts []Statement) ([]Response, []kv.Tracked, error) {
	var out []Response
	var buf []Response
	var liveQueries []kv.Tracked

	for _, stmt := range stmts {
		if e.txn == nil {
			e.err = false
		}
		now := time.Now()

		switch stmt.Kind() {
		case KindOption:
			opt := stmt.(OptionStatement)
			if err := e.options.applyOption(e.session, opt.Name, opt.Value); err != nil {
				e.logger.Warn("dbs: OPTION rejected", "name", opt.Name, "err", err)
			}
			continue

		case KindBegin:
			if e.txn == nil {
				t, err := Begin(ctx, e.db, true, e.logger)
				if err != nil {
					e.logger.Error("dbs: failed to open explicit transaction", "err", err)
					continue
				}
				e.txn = t
			}
			continue

		case KindCancel:
			if e.txn != nil {
				_ = e.txn.Cancel() // notifications drained silently by Cancel
				e.txn = nil
			}
			for i := range buf {
				buf[i] = rewriteErr(buf[i], ErrQueryCancelled)
			}
			out = append(out, buf...)
			buf = nil
			continue

		case KindCommit:
			if e.txn != nil {
				if e.err {
					// err was already set before commit: the commit path
					// behaves as a no-op cancel (no writes applied);
					// buffered Oks become QueryNotExecuted, existing Errs
					// untouched.
					_ = e.txn.Cancel()
					e.txn = nil
					for i := range buf {
						if !buf[i].IsErr() {
							buf[i] = rewriteErr(buf[i], ErrQueryNotExecuted)
						}
					}
					out = append(out, buf...)
					buf = nil
					continue
				}
				notes, tracked, commitErr := e.txn.Commit()
				e.txn = nil
				if commitErr != nil {
					msg := "transaction commit outcome is uncertain: " + commitErr.Error()
					for i := range buf {
						if !buf[i].IsErr() {
							buf[i] = rewriteErr(buf[i], &QueryNotExecutedDetail{Message: msg})
						}
					}
				} else {
					if e.options.Notify != nil {
						for _, n := range notes {
							e.options.Notify(n)
						}
					}
					liveQueries = append(liveQueries, tracked...)
				}
			}
			out = append(out, buf...)
			buf = nil
			continue

		case KindUse:
			u := stmt.(UseStatement)
			if u.NS != "" {
				e.session.NS = u.NS
			}
			if u.DB != "" {
				e.session.DB = u.DB
			}
			resp := ok(time.Since(now), QueryTypeOther, val.None())
			buf, out = e.emit(buf, out, resp, stmt)
			continue

		case KindSet:
			s := stmt.(SetStatement)
			var resp Response
			var tracked []kv.Tracked
			if e.err {
				resp = errResponse(time.Since(now), QueryTypeOther, ErrQueryNotExecuted)
			} else {
				resp, tracked = e.runImplicit(ctx, now, s.IsWriteable, nil, QueryTypeOther, func(cc *ComputeContext) (interface{}, error) {
					v, err := s.Compute(cc, stmt)
					if err != nil {
						return nil, err
					}
					e.session.Vars[s.Name] = v.(val.Value)
					return v, nil
				})
			}
			liveQueries = append(liveQueries, tracked...)
			buf, out = e.emit(buf, out, resp, stmt)
			continue

		default: // KindOther, KindLive, KindKill, KindOutput
			qt := queryTypeFor(stmt.Kind())
			var resp Response
			if e.err {
				resp = errResponse(time.Since(now), qt, ErrQueryNotExecuted)
			} else {
				timeout := statementTimeout(stmt)
				var tracked []kv.Tracked
				resp, tracked = e.runImplicit(ctx, now, stmt.Writeable(), timeout, qt, func(cc *ComputeContext) (interface{}, error) {
					return computerFor(stmt)(cc, stmt)
				})
				liveQueries = append(liveQueries, tracked...)
			}
			if stmt.Kind() == KindOutput && e.txn != nil {
				buf = nil
			}
			buf, out = e.emit(buf, out, resp, stmt)
		}
	}

	return out, liveQueries, nil
}

// runImplicit implements the shared "begin implicit tx, compute, commit-or-
// cancel" shape used by Set and the catch-all branch. If e.txn is already
// open (explicit tx), it reuses that transaction instead of opening a new
// one and never commits/cancels it itself — only Run's KindCommit/KindCancel
// branches close an explicit tx; any live-query registrations then surface
// via that branch's own tx.Commit() call, not here.
func (e *Executor) runImplicit(ctx context.Context, now time.Time, writeable bool, timeout *StatementTimeout, qt QueryType, compute func(*ComputeContext) (interface{}, error)) (Response, []kv.Tracked) {
	tx := e.txn
	implicit := tx == nil
	if implicit {
		t, err := Begin(ctx, e.db, writeable, e.logger)
		if err != nil {
			e.err = true
			return errResponse(time.Since(now), qt, err), nil
		}
		tx = t
	}

	cc, cancel := newComputeContext(ctx, e.session, tx, timeout)
	defer cancel()

	res, err := compute(cc)

	if err == nil && cc.IsTimedout() {
		err = ErrQueryTimedout
	}

	var resp Response
	if err != nil {
		resp = errResponse(time.Since(now), qt, err)
	} else {
		v, _ := res.(val.Value)
		resp = ok(time.Since(now), qt, v)
	}

	var tracked []kv.Tracked
	if implicit {
		if err == nil && writeable {
			notes, tr, commitErr := tx.Commit()
			if commitErr != nil {
				resp = rewriteErr(resp, &QueryNotExecutedDetail{Message: "transaction commit outcome is uncertain: " + commitErr.Error()})
			} else {
				if e.options.Notify != nil {
					for _, n := range notes {
						e.options.Notify(n)
					}
				}
				tracked = tr
			}
		} else {
			_ = tx.Cancel()
		}
	}

	if resp.IsErr() {
		e.err = true
	}
	return resp, tracked
}

// emit applies spec.md §4.6 step 5: buffer inside an explicit tx, else
// emit directly.
func (e *Executor) emit(buf, out []Response, resp Response, stmt Statement) ([]Response, []Response) {
	if e.txn != nil {
		return append(buf, resp), out
	}
	return buf, append(out, resp)
}

func queryTypeFor(k StatementKind) QueryType {
	switch k {
	case KindLive:
		return QueryTypeLive
	case KindKill:
		return QueryTypeKill
	default:
		return QueryTypeOther
	}
}

func statementTimeout(stmt Statement) *StatementTimeout {
	switch s := stmt.(type) {
	case GenericStatement:
		return s.Timeout
	case OutputStatement:
		return s.Timeout
	default:
		return nil
	}
}

func computerFor(stmt Statement) StatementComputer {
	switch s := stmt.(type) {
	case GenericStatement:
		return s.Compute
	case OutputStatement:
		return s.Compute
	default:
		return func(*ComputeContext, Statement) (interface{}, error) { return val.None(), nil }
	}
}
