package dbs

import (
	"time"

	"github.com/surrealdb/qcore/val"
)

// QueryType classifies a Response for the caller: ordinary results versus
// live/kill acknowledgements that the installer (outside the executor)
// must additionally wire up against the change feed.
type QueryType uint8

const (
	QueryTypeOther QueryType = iota
	QueryTypeLive
	QueryTypeKill
)

// Response is one statement's self-describing result: spec.md §4.6 step 4
// ("Build Response with elapsed = now.elapsed(); ... err = true"). Exactly
// one of Result/Err is meaningful.
type Response struct {
	Elapsed   time.Duration
	Result    val.Value
	Err       error
	QueryType QueryType
}

// IsErr reports whether this response carries an error.
func (r Response) IsErr() bool { return r.Err != nil }

func ok(elapsed time.Duration, qt QueryType, v val.Value) Response {
	return Response{Elapsed: elapsed, Result: v, QueryType: qt}
}

func errResponse(elapsed time.Duration, qt QueryType, err error) Response {
	return Response{Elapsed: elapsed, Err: err, QueryType: qt}
}

// rewriteErr replaces r's result with newErr, overwriting any error r
// already carried — used for the buffered-response rewrite rules on
// CANCEL/COMMIT. Callers decide whether to call it for a given response
// based on whether it was Ok or already Err.
func rewriteErr(r Response, newErr error) Response {
	r.Err = newErr
	r.Result = val.Value{}
	return r
}
