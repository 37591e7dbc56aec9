//go:build qcore_debug

package kv

import "github.com/erigontech/erigon-lib/log/v3"

// ReportLeakedRwTx implements the debug-build half of the safe-close
// invariant: panic immediately so the leak surfaces at the call site
// instead of silently at GC time.
func ReportLeakedRwTx(logger log.Logger, origin string) {
	leakedRwTx.Inc()
	logger.Error("kv: writeable transaction dropped without commit or cancel", "origin", origin)
	panic("kv: writeable transaction dropped without commit or cancel (origin: " + origin + ")")
}
