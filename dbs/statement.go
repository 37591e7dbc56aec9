// Package dbs implements the query executor: the per-statement state
// machine that drives implicit and explicit transactions, buffers and
// rewrites responses, tracks live queries and enforces statement timeouts.
// Grounded on spec.md §4.6 and original_source/crates/core/src/dbs/executor.rs,
// in the shape of other_examples' db-executor.go (a predecessor executor
// over the same statement-sequence-with-buffered-tx-responses design) and
// fenghaojiang-erigon-lib's context/logger plumbing.
package dbs

// StatementKind tags which branch of the per-statement dispatch table
// (spec.md §4.6) a Statement belongs to.
type StatementKind uint8

const (
	KindOther StatementKind = iota
	KindOption
	KindBegin
	KindCancel
	KindCommit
	KindUse
	KindSet
	KindLive
	KindKill
	KindOutput // RETURN: clears buf before pushing, keeping only the final output
)

// Statement is anything the executor can run. Kind selects the dispatch
// branch; Writeable reports whether an implicit tx opened for this
// statement (the "any other" branch) should be read-write.
type Statement interface {
	Kind() StatementKind
	Writeable() bool
}

// StatementComputer executes one statement's domain logic against a
// read-capable context, yielding the statement's result value (or an
// error). Executor.Run calls it for SET, RETURN and every catch-all
// statement; there is no registration table: SetStatement,
// GenericStatement and OutputStatement each carry their own
// StatementComputer in their Compute field.
type StatementComputer func(ctx *ComputeContext, stmt Statement) (interface{}, error)

// OptionStatement corresponds to spec.md's `Option{name, bool}`: a
// permission-gated session option toggle with no response.
type OptionStatement struct {
	Name  string
	Value bool
}

func (OptionStatement) Kind() StatementKind { return KindOption }
func (OptionStatement) Writeable() bool     { return false }

type BeginStatement struct{}

func (BeginStatement) Kind() StatementKind { return KindBegin }
func (BeginStatement) Writeable() bool     { return false }

type CancelStatement struct{}

func (CancelStatement) Kind() StatementKind { return KindCancel }
func (CancelStatement) Writeable() bool     { return false }

type CommitStatement struct{}

func (CommitStatement) Kind() StatementKind { return KindCommit }
func (CommitStatement) Writeable() bool     { return false }

// UseStatement corresponds to `Use{ns?, db?}`; either field may be empty,
// meaning "leave unchanged".
type UseStatement struct {
	NS string
	DB string
}

func (UseStatement) Kind() StatementKind { return KindUse }
func (UseStatement) Writeable() bool     { return false }

// SetStatement binds the result of Compute's evaluation into the session's
// compute context under Name.
type SetStatement struct {
	Name string
	// IsWriteable reports whether computing the expression requires a
	// writeable implicit tx (e.g. it calls a mutating function).
	IsWriteable bool
	Compute     StatementComputer
}

func (SetStatement) Kind() StatementKind { return KindSet }
func (s SetStatement) Writeable() bool   { return s.IsWriteable }

// GenericStatement is the catch-all "any other" branch: ordinary
// SELECT/CREATE/UPDATE/DELETE/etc. statements, run by calling the
// statement's own Compute function.
type GenericStatement struct {
	StmtKind    StatementKind // KindOther, KindLive or KindKill
	IsWriteable bool
	Timeout     *StatementTimeout
	Compute     StatementComputer
}

func (g GenericStatement) Kind() StatementKind {
	if g.StmtKind == KindLive || g.StmtKind == KindKill {
		return g.StmtKind
	}
	return KindOther
}
func (g GenericStatement) Writeable() bool { return g.IsWriteable }

// OutputStatement is RETURN: same dispatch as GenericStatement, but its
// response clears the pending buffer in an explicit tx so only the final
// RETURN's result is retained (spec.md §4.6 step 5).
type OutputStatement struct {
	IsWriteable bool
	Timeout     *StatementTimeout
	Compute     StatementComputer
}

func (OutputStatement) Kind() StatementKind { return KindOutput }
func (o OutputStatement) Writeable() bool   { return o.IsWriteable }
