//go:build !qcore_debug

package kv

import "github.com/erigontech/erigon-lib/log/v3"

// ReportLeakedRwTx implements the release-build half of the safe-close
// invariant: a writeable transaction finalized without Commit/Cancel is a
// programmer bug, logged loudly rather than crashing the process. Build
// with -tags qcore_debug to panic instead (see safeclose_debug.go). Every
// package that finalizes a writeable handle (memkv, mdbxkv, dbs.Transaction)
// calls this from its runtime.SetFinalizer callback rather than logging
// inline, so the build tag actually governs the leak behavior everywhere.
func ReportLeakedRwTx(logger log.Logger, origin string) {
	leakedRwTx.Inc()
	logger.Warn("kv: writeable transaction dropped without commit or cancel", "origin", origin)
}
