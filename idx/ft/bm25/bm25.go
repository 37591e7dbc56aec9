// Package bm25 implements Okapi BM25 scoring over posting lists, in two
// variants: a fast one using a norm-byte-encoded document length (after
// Lucene's technique) and an accurate one using full-precision document
// length. Grounded on spec.md §4.3's formula and
// original_source/crates/core/src/fnc/search.rs's `score` operation.
package bm25

import "math"

// DefaultK1 and DefaultB are BM25's standard tuning constants, matching
// spec.md §4.3's stated defaults.
const (
	DefaultK1 = 1.2
	DefaultB  = 0.75
)

// TermStats is one query term's contribution inputs: its document
// frequency (n_t, how many documents contain it) against the collection
// size N.
type TermStats struct {
	DocFreq uint64 // n_t
}

// IDF computes ln(1 + (N - n_t + 0.5) / (n_t + 0.5)), the inverse document
// frequency weight shared by both scorer variants.
func IDF(totalDocs uint64, t TermStats) float64 {
	n := float64(totalDocs)
	nt := float64(t.DocFreq)
	return math.Log(1 + (n-nt+0.5)/(nt+0.5))
}

// TermMatch is one query term's posting-list hit for the document being
// scored: its term frequency and (already-decoded) document length.
type TermMatch struct {
	Term TermStats
	TF   uint32
	DL   float64
}

// Score computes Okapi BM25 for a document given its per-term matches, the
// collection size, average document length, and k1/b tuning constants.
func Score(totalDocs uint64, avgDL float64, matches []TermMatch, k1, b float64) float64 {
	var total float64
	for _, m := range matches {
		idf := IDF(totalDocs, m.Term)
		tf := float64(m.TF)
		denom := tf + k1*(1-b+b*m.DL/avgDL)
		if denom == 0 {
			continue
		}
		total += idf * (tf * (k1 + 1)) / denom
	}
	return total
}
