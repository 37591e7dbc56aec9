package kv

import "encoding/binary"

// VersionstampSize is the fixed width of a Versionstamp, matching the
// 10-byte placeholder convention spec.md §4.1 and §6 describe for
// FoundationDB-class versionstamped keys: an 8-byte monotonic counter plus a
// 2-byte intra-transaction sequence number.
const VersionstampSize = 10

// Versionstamp is a monotonic per-commit token a backend assigns to a
// transaction. It orders change-feed entries and is returned by
// Tx.GetTimestamp.
type Versionstamp [VersionstampSize]byte

// NewVersionstamp builds a versionstamp from a commit counter and an
// intra-commit sequence number (the latter distinguishes multiple
// versionstamped keys written within the same transaction).
func NewVersionstamp(counter uint64, seq uint16) Versionstamp {
	var vs Versionstamp
	binary.BigEndian.PutUint64(vs[0:8], counter)
	binary.BigEndian.PutUint16(vs[8:10], seq)
	return vs
}

// Counter extracts the monotonic commit counter.
func (v Versionstamp) Counter() uint64 { return binary.BigEndian.Uint64(v[0:8]) }

// Seq extracts the intra-commit sequence number.
func (v Versionstamp) Seq() uint16 { return binary.BigEndian.Uint16(v[8:10]) }

// Compare gives the ordering used by Testable Property 10 (versionstamp
// monotonicity): byte-wise, since the encoding is big-endian fixed-width.
func (v Versionstamp) Compare(o Versionstamp) int {
	for i := range v {
		if v[i] != o[i] {
			if v[i] < o[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// versionstampPlaceholder is the all-0xFF sentinel that marks the stamp's
// position in a versionstamped key. SetVersionstampedKey does not take it:
// callers pass prefix and suffix separately and the backend writes the
// real stamp between them at commit.
var versionstampPlaceholder = Versionstamp{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
}

// VersionstampPlaceholder returns the all-0xFF sentinel bytes. The backends
// in this module never read it back or overwrite it.
func VersionstampPlaceholder() Versionstamp { return versionstampPlaceholder }
